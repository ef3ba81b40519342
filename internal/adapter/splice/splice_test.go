package splice

import (
	"io"
	"net"
	"testing"
)

func TestJoin_MirrorsBothDirections(t *testing.T) {
	aServer, aClient := tcpPair(t)
	bServer, bClient := tcpPair(t)

	done := make(chan error, 1)
	go func() { done <- Join(aServer, bServer) }()

	go func() {
		aClient.Write([]byte("ping"))
		aClient.(*net.TCPConn).CloseWrite()
	}()

	buf := make([]byte, 4)
	if _, err := io.ReadFull(bClient, buf); err != nil {
		t.Fatalf("read from b side: %v", err)
	}
	if string(buf) != "ping" {
		t.Errorf("got %q, want %q", buf, "ping")
	}

	bClient.Write([]byte("pong"))
	bClient.(*net.TCPConn).CloseWrite()

	buf2 := make([]byte, 4)
	if _, err := io.ReadFull(aClient, buf2); err != nil {
		t.Fatalf("read from a side: %v", err)
	}
	if string(buf2) != "pong" {
		t.Errorf("got %q, want %q", buf2, "pong")
	}

	aClient.Close()
	bClient.Close()
	<-done
}

func tcpPair(t *testing.T) (server, client net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	acceptCh := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		acceptCh <- c
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	server = <-acceptCh
	return server, client
}

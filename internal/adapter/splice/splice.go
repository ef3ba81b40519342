// Package splice implements the two-way byte-stream join used once a
// proxied connection's framing has been settled: everything
// downstream is mirrored to upstream and back until both directions
// have reached end-of-file or failed.
package splice

import (
	"io"
	"net"

	"golang.org/x/sync/errgroup"
)

const bufferSize = 64 * 1024

// Join copies bytes in both directions between a and b until both
// directions have finished. Each direction is half-closed with
// CloseWrite as soon as its source reaches EOF, so the other direction
// can continue draining any remaining data - this matters for
// protocols that shut down writing but still expect a response, and it
// mirrors the peer connections' own TCP half-close semantics rather
// than severing both sides the moment one is done.
func Join(a, b net.Conn) error {
	g := new(errgroup.Group)

	g.Go(func() error { return copyHalf(b, a) })
	g.Go(func() error { return copyHalf(a, b) })

	return g.Wait()
}

func copyHalf(dst, src net.Conn) error {
	buf := make([]byte, bufferSize)
	_, err := io.CopyBuffer(dst, src, buf)
	closeWrite(dst)
	if err != nil {
		return err
	}
	return nil
}

func closeWrite(c net.Conn) {
	type writeCloser interface {
		CloseWrite() error
	}
	if wc, ok := c.(writeCloser); ok {
		wc.CloseWrite()
	}
}

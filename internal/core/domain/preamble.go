package domain

import (
	"bytes"
	"fmt"
)

// CRLF is the line terminator used throughout the HTTP preamble wire format.
const CRLF = "\r\n"

// Preamble is the HTTP request line plus the raw, unparsed header block
// up to (but excluding) the terminating CRLFCRLF. Header order is
// preserved verbatim because it is replayed byte-for-byte upstream.
type Preamble struct {
	Method      string
	URI         string
	HTTPVersion string
	Headers     []string
}

// IsConnect reports whether this preamble is a CONNECT tunnel request.
// The comparison is byte-for-byte against the literal "CONNECT" -
// lowercase variants are deliberately treated as non-CONNECT.
func (p Preamble) IsConnect() bool {
	return p.Method == "CONNECT"
}

// String renders the preamble in wire form: request line, each header
// line, then a blank line.
func (p Preamble) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s %s%s", p.Method, p.URI, p.HTTPVersion, CRLF)
	for _, h := range p.Headers {
		b.WriteString(h)
		b.WriteString(CRLF)
	}
	b.WriteString(CRLF)
	return b.String()
}

// IncomingResult is what sniffing the downstream socket's preamble yields:
// the parsed preamble, and any bytes already read past the terminating
// CRLFCRLF that still need to be replayed to upstream before splicing.
type IncomingResult struct {
	Preamble Preamble
	Buffered []byte
}

// Package codec reads the HTTP request-line-plus-headers block off a
// downstream socket without losing any body bytes (those read along
// with it are handed back as Buffered), and serializes a
// (possibly-rewritten) preamble back out.
package codec

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"pacproxy/internal/core/domain"
)

const (
	initialBufferSize = 1024
	growthFactor       = 2
)

var delimiter = []byte("\r\n\r\n")

// ReadPreamble reads from r until it has seen a full preamble
// terminated by CRLFCRLF, then parses the request line and headers.
// Any bytes read past the delimiter are returned as IncomingResult.Buffered
// so the caller can flush them upstream before splicing.
func ReadPreamble(r io.Reader) (domain.IncomingResult, error) {
	buf := make([]byte, initialBufferSize)
	position := 0

	for {
		if position == len(buf) {
			grown := make([]byte, len(buf)*growthFactor)
			copy(grown, buf)
			buf = grown
		}

		n, err := r.Read(buf[position:])
		position += n

		if idx := bytes.Index(buf[:position], delimiter); idx >= 0 {
			return parsePreamble(buf[:position], idx)
		}

		if err != nil {
			if err == io.EOF {
				return domain.IncomingResult{}, domain.ErrUnexpectedEOF
			}
			return domain.IncomingResult{}, err
		}
	}
}

func parsePreamble(buf []byte, preambleEnd int) (domain.IncomingResult, error) {
	head := buf[:preambleEnd]
	if !utf8.Valid(head) {
		return domain.IncomingResult{}, domain.ErrNotUTF8
	}

	lines := strings.Split(string(head), "\r\n")
	if len(lines) == 0 {
		return domain.IncomingResult{}, domain.ErrMalformed
	}

	fields := strings.Split(lines[0], " ")
	if len(fields) != 3 {
		return domain.IncomingResult{}, domain.ErrMalformed
	}

	headers := lines[1:]

	buffered := make([]byte, len(buf)-(preambleEnd+len(delimiter)))
	copy(buffered, buf[preambleEnd+len(delimiter):])

	return domain.IncomingResult{
		Preamble: domain.Preamble{
			Method:      fields[0],
			URI:         fields[1],
			HTTPVersion: fields[2],
			Headers:     headers,
		},
		Buffered: buffered,
	}, nil
}

// WritePreamble serializes p to w: the request line, each header
// followed by CRLF, then a final blank line. No re-ordering or
// validation of headers is performed.
func WritePreamble(w io.Writer, p domain.Preamble) error {
	_, err := io.WriteString(w, p.String())
	return err
}

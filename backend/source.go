package backend

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// bodySource yields raw reads from a streaming response body. Used for the
// plain-chat endpoint, which streams unframed text.
type bodySource struct {
	body io.ReadCloser
	buf  []byte
	err  error
}

func newBodySource(body io.ReadCloser) *bodySource {
	return &bodySource{body: body, buf: make([]byte, 4096)}
}

func (s *bodySource) Next(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if err := ctx.Err(); err != nil {
		s.close(err)
		return "", err
	}

	for {
		n, err := s.body.Read(s.buf)
		if n > 0 {
			if err != nil {
				// Deliver the fragment now, the error on the next call.
				s.close(normalizeReadErr(err))
			}
			return string(s.buf[:n]), nil
		}
		if err != nil {
			s.close(normalizeReadErr(err))
			return "", s.err
		}
	}
}

func (s *bodySource) close(err error) {
	s.err = err
	s.body.Close()
}

// eventSource decodes the document endpoint's "data: ..." framing. Each
// fragment is the payload of one data line; "data: [DONE]" ends the stream.
// Lines without the prefix are passed through untouched, since the backend
// does not escape newlines inside a chunk.
type eventSource struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	err     error
}

func newEventSource(body io.ReadCloser) *eventSource {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &eventSource{body: body, scanner: scanner}
}

func (s *eventSource) Next(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if err := ctx.Err(); err != nil {
		s.close(err)
		return "", err
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" {
			continue
		}
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			return line, nil
		}
		if payload == "[DONE]" {
			s.close(io.EOF)
			return "", io.EOF
		}
		return payload, nil
	}

	if err := s.scanner.Err(); err != nil {
		s.close(fmt.Errorf("reading response stream: %w", err))
	} else {
		// Stream ended without the [DONE] terminator; treat as clean EOF and
		// let the marker parser decide whether the content was truncated.
		s.close(io.EOF)
	}
	return "", s.err
}

func (s *eventSource) close(err error) {
	s.err = err
	s.body.Close()
}

func normalizeReadErr(err error) error {
	if err == io.EOF {
		return io.EOF
	}
	return fmt.Errorf("reading response stream: %w", err)
}

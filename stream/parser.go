// Package stream decodes the backend's mixed response stream.
//
// The backend replies with plain text interleaved with tool markers of the
// form __TOOL_USAGE__<name>__TOOL_USAGE__. The sentinel is reserved and never
// appears in ordinary model output. Because the response arrives as arbitrary
// fragments, a marker (or the sentinel itself) can be split across fragment
// boundaries; the Parser buffers just enough input to decode markers
// regardless of where the fragments were cut.
package stream

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel delimits a tool marker in the content stream. It must match the
// token the backend emits exactly.
const Sentinel = "__TOOL_USAGE__"

// EventType discriminates Event variants.
type EventType int

const (
	// EventContent carries user-visible text.
	EventContent EventType = iota
	// EventTool signals that the backend started a named tool.
	EventTool
)

// Event is a decoded element of the response stream. Content events always
// carry non-empty Text; Tool events carry the tool name.
type Event struct {
	Type EventType
	Text string
	Tool string
}

var (
	// ErrUnterminatedMarker reports an opening sentinel with no closing
	// counterpart at end of stream.
	ErrUnterminatedMarker = errors.New("unterminated tool marker at end of stream")

	// ErrBlankToolName reports a marker wrapping an empty or whitespace-only name.
	ErrBlankToolName = errors.New("blank tool name in marker")
)

// Parser decodes one turn's fragments into events. A Parser is single-use:
// create a fresh one per turn and call Close once the stream ends.
type Parser struct {
	buf    string
	closed bool
}

// NewParser returns a parser with an empty buffer.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends a fragment to the buffer and returns the events that can be
// decoded so far. Text that might be the start of a marker is held back until
// a later fragment resolves it.
func (p *Parser) Feed(fragment string) ([]Event, error) {
	if p.closed {
		return nil, errors.New("parser already closed")
	}
	p.buf += fragment
	return p.drain(false)
}

// Close flushes any remaining buffered text as a final content event. A
// dangling opening sentinel is a protocol error and is never emitted as
// content.
func (p *Parser) Close() ([]Event, error) {
	if p.closed {
		return nil, nil
	}
	p.closed = true
	events, err := p.drain(true)
	p.buf = ""
	return events, err
}

// drain repeatedly scans the buffer for complete markers. With final set,
// trailing text that merely looks like the start of a sentinel is flushed as
// content, and an unterminated marker becomes an error.
func (p *Parser) drain(final bool) ([]Event, error) {
	var events []Event

	for {
		open := strings.Index(p.buf, Sentinel)
		if open < 0 {
			// No sentinel. Retain a trailing partial sentinel prefix:
			// it may be completed by the next fragment.
			keep := partialSentinelSuffix(p.buf)
			if final {
				keep = 0
			}
			if cut := len(p.buf) - keep; cut > 0 {
				events = append(events, Event{Type: EventContent, Text: p.buf[:cut]})
				p.buf = p.buf[cut:]
			}
			return events, nil
		}

		rest := p.buf[open+len(Sentinel):]
		end := strings.Index(rest, Sentinel)
		if end < 0 {
			// Opening sentinel without its closing counterpart. Emit the
			// preceding text and keep the rest buffered.
			if open > 0 {
				events = append(events, Event{Type: EventContent, Text: p.buf[:open]})
				p.buf = p.buf[open:]
			}
			if final {
				return events, fmt.Errorf("%w: %q", ErrUnterminatedMarker, p.buf)
			}
			return events, nil
		}

		name := strings.TrimSpace(rest[:end])
		if name == "" {
			return events, ErrBlankToolName
		}

		if open > 0 {
			events = append(events, Event{Type: EventContent, Text: p.buf[:open]})
		}
		events = append(events, Event{Type: EventTool, Tool: name})
		p.buf = rest[end+len(Sentinel):]
	}
}

// partialSentinelSuffix returns the length of the longest suffix of s that is
// a proper prefix of the sentinel.
func partialSentinelSuffix(s string) int {
	max := len(Sentinel) - 1
	if len(s) < max {
		max = len(s)
	}
	for k := max; k > 0; k-- {
		if strings.HasSuffix(s, Sentinel[:k]) {
			return k
		}
	}
	return 0
}

package stream

import (
	"context"
	"io"
)

// Source yields text fragments in arrival order. Next returns io.EOF after
// the final fragment; any other error aborts the stream. The transport layer
// supplies implementations; this package only consumes them.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// SliceSource returns a Source that replays the given fragments in order.
func SliceSource(fragments ...string) Source {
	return &sliceSource{fragments: fragments}
}

type sliceSource struct {
	fragments []string
	pos       int
}

func (s *sliceSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.pos >= len(s.fragments) {
		return "", io.EOF
	}
	frag := s.fragments[s.pos]
	s.pos++
	return frag, nil
}

// Decode drives a fresh parser over src, invoking fn for every event in
// emission order. Events decoded before a failure are still delivered, so a
// consumer keeps whatever partial content arrived.
func Decode(ctx context.Context, src Source, fn func(Event) error) error {
	p := NewParser()

	for {
		frag, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		events, perr := p.Feed(frag)
		for _, ev := range events {
			if err := fn(ev); err != nil {
				return err
			}
		}
		if perr != nil {
			return perr
		}
	}

	events, err := p.Close()
	for _, ev := range events {
		if ferr := fn(ev); ferr != nil {
			return ferr
		}
	}
	return err
}

package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// TrackSource implements LineSource for a single track of a script.
type TrackSource struct {
	name   string
	parser *Parser
	closer io.Closer
	track  int

	// done is set once the track ends, including when the parser runs on
	// into the next track of an unterminated script.
	done bool
}

// NewTrackSource attaches a new Parser to s and positions it on track.
// name is recorded as the Source of every line. closer, if not nil, is
// closed by Close. A track with no data lines yields io.EOF immediately.
func NewTrackSource(name string, s Stream, track int, closer io.Closer, opts ...Option) (*TrackSource, error) {
	p := New(opts...)
	src := &TrackSource{name: name, parser: p, closer: closer, track: track}

	if err := p.Attach(s, track); err != nil {
		if errors.Is(err, ErrSeekTimeUnreachable) && isEndOfTrack(err) {
			src.done = true
			return src, nil
		}
		return nil, fmt.Errorf("opening track %d of %s: %w", track, name, err)
	}
	return src, nil
}

// Next returns the next line of the track.
// Returns io.EOF at the track footer, at the next track header, or at the
// end of the stream.
func (s *TrackSource) Next(ctx context.Context) (*TimedLine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.done {
		return nil, io.EOF
	}
	if !s.parser.HasNextLine() {
		s.done = true
		if err := s.parser.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.name, err)
		}
		return nil, io.EOF
	}

	line, _ := s.parser.Line()
	if line.Track != s.track {
		s.done = true
		return nil, io.EOF
	}
	line.Source = s.name
	s.parser.Pop()
	return &line, nil
}

// Close releases the underlying stream if one was handed over.
func (s *TrackSource) Close() error {
	if s.closer != nil {
		err := s.closer.Close()
		s.closer = nil
		return err
	}
	return nil
}

// OpenTrackSources opens path once per selected track and returns a source
// for each, in track order. An empty tracks list selects every track. Each
// source owns its file handle.
func OpenTrackSources(path string, tracks []int, opts ...Option) ([]LineSource, error) {
	index, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	all, err := IndexTracks(index, opts...)
	index.Close()
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", path, err)
	}

	if len(tracks) == 0 {
		tracks = make([]int, len(all))
		for i := range all {
			tracks[i] = i
		}
	}

	sources := make([]LineSource, 0, len(tracks))
	closeAll := func() {
		for _, s := range sources {
			s.Close()
		}
	}

	for _, t := range tracks {
		if t < 0 || t >= len(all) {
			closeAll()
			return nil, fmt.Errorf("%s: %w: %d (have %d)", path, ErrTrackIndexOutOfRange, t, len(all))
		}
		f, err := OpenFile(path)
		if err != nil {
			closeAll()
			return nil, err
		}
		src, err := NewTrackSource(path, f, t, f, opts...)
		if err != nil {
			f.Close()
			closeAll()
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

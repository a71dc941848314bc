package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// buildIndex scans s to its end and records where every track starts.
// The stream is left exhausted; callers must seek before reading.
func buildIndex(s Stream, o *options) ([]Track, error) {
	var tracks []Track

	for s.Available() {
		line, err := s.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("indexing tracks: %w", err)
		}

		if !strings.HasPrefix(line, o.trackMarker) {
			continue
		}

		if o.maxTracks > 0 && len(tracks) >= o.maxTracks {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyTracks, o.maxTracks)
		}

		tracks = append(tracks, Track{
			Index:  len(tracks),
			Offset: s.Position(),
			Header: strings.TrimSpace(strings.TrimPrefix(line, o.trackMarker)),
		})
	}

	if len(tracks) == 0 {
		return nil, ErrNoTracksFound
	}
	return tracks, nil
}

// IndexTracks scans a stream and returns the tracks it contains without
// positioning a cursor. The stream is left at its end.
func IndexTracks(s Stream, opts ...Option) ([]Track, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return buildIndex(s, &o)
}

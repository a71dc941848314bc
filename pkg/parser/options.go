package parser

import (
	"io"
	"log/slog"
)

// Option configures a Parser.
type Option func(*options)

type options struct {
	maxArgs     int
	maxTracks   int
	trackMarker string
	endMarker   string
	logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		maxArgs:     DefaultMaxArgs,
		trackMarker: DefaultTrackMarker,
		endMarker:   DefaultEndMarker,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithMaxArgs sets the maximum number of arguments per line (default 16).
func WithMaxArgs(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxArgs = n
		}
	}
}

// WithMaxTracks caps the number of tracks indexed. Zero means unlimited.
func WithMaxTracks(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxTracks = n
		}
	}
}

// WithMarkers overrides the track start and end line prefixes.
// Empty values keep the defaults.
func WithMarkers(trackMarker, endMarker string) Option {
	return func(o *options) {
		if trackMarker != "" {
			o.trackMarker = trackMarker
		}
		if endMarker != "" {
			o.endMarker = endMarker
		}
	}
}

// WithLogger sets the logger used for diagnostics. Parsers are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

package parser

import "errors"

var (
	// ErrNotAttached is returned when a stream has not been attached.
	ErrNotAttached = errors.New("no stream attached")

	// ErrNoTracksFound is returned when indexing finds no track marker.
	ErrNoTracksFound = errors.New("no tracks found")

	// ErrTooManyTracks is returned when the stream holds more tracks than allowed.
	ErrTooManyTracks = errors.New("too many tracks")

	// ErrTrackIndexOutOfRange is returned for a track index outside the index.
	ErrTrackIndexOutOfRange = errors.New("track index out of range")

	// ErrSeekTimeUnreachable is returned when a track ends before the seek target.
	ErrSeekTimeUnreachable = errors.New("seek time unreachable")

	// ErrTrackFooterReached reports that the end marker of a track was read.
	ErrTrackFooterReached = errors.New("track footer reached")

	// ErrStreamExhausted reports that the stream has no more data.
	ErrStreamExhausted = errors.New("stream exhausted")

	// ErrTooManyArguments is returned when a line carries more arguments than allowed.
	ErrTooManyArguments = errors.New("too many arguments")

	// ErrMissingArguments flags a data line without any space, which
	// therefore carries a time delta only. It is not fatal.
	ErrMissingArguments = errors.New("line has no arguments")

	// ErrInvalidDelta flags a time field that is not a non-negative integer.
	// The delta is taken as 0. It is not fatal.
	ErrInvalidDelta = errors.New("invalid time delta")
)

// isEndOfTrack reports whether err is one of the normal ways a track ends.
func isEndOfTrack(err error) bool {
	return errors.Is(err, ErrTrackFooterReached) || errors.Is(err, ErrStreamExhausted)
}

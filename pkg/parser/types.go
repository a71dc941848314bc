// Package parser reads MTR motion scripts: line-oriented, time-stamped
// command streams split into tracks.
//
// A script looks like:
//
//	track arm
//	0 servo 1 90;
//	250 servo 1 45;
//	end;
//
// Each data line carries a time delta in milliseconds relative to the
// previous line of the same track, followed by space-separated arguments
// terminated by a semicolon.
package parser

// Default markers and limits.
const (
	DefaultTrackMarker = "track"
	DefaultEndMarker   = "end;"
	DefaultMaxArgs     = 16
)

// Track is a track section discovered while indexing a stream.
type Track struct {
	// Index is the 0-based discovery order of the track.
	Index int `json:"index"`

	// Offset is the byte position of the first line after the track marker.
	Offset int64 `json:"offset"`

	// Header is whatever followed the track marker on its line, trimmed.
	Header string `json:"header,omitempty"`
}

// Line is one tokenized data line.
type Line struct {
	// Delta is the time in milliseconds since the previous line of the track.
	Delta int64

	// Args are the command arguments in order.
	Args []string
}

// TimedLine is a data line resolved to its absolute position in a track.
type TimedLine struct {
	// Source names the script the line came from, if known.
	Source string `json:"source,omitempty"`

	// Track is the index of the track the line belongs to.
	Track int `json:"track"`

	// TimeMs is the accumulated time since the start of the sought track.
	// It does not restart when the parser runs on into the next track of an
	// unterminated script; compare Track to detect that.
	TimeMs int64 `json:"time_ms"`

	// DeltaMs is the relative delta the line was written with.
	DeltaMs int64 `json:"delta_ms"`

	// Args are the command arguments in order.
	Args []string `json:"args"`
}

// State is the cursor state of a Parser.
type State int

const (
	// StateUnattached means no track index is usable yet.
	StateUnattached State = iota
	// StateHolding means a line is held and can be read.
	StateHolding
	// StateReady means the cursor is inside a track but the held line was popped.
	StateReady
	// StateExhausted means the track or stream ended; seek to continue.
	StateExhausted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnattached:
		return "unattached"
	case StateHolding:
		return "holding"
	case StateReady:
		return "ready"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

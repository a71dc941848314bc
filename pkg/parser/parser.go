package parser

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// Parser is a cursor over the tracks of an MTR stream.
//
// Attach indexes the stream and positions the cursor on a track. The caller
// then polls HasNextLine, reads NextTimeMs and the arguments of the held
// line, and calls Pop before polling again. Seek jumps to a time within any
// track. A Parser is not safe for concurrent use.
type Parser struct {
	opts   options
	stream Stream
	tracks []Track

	state State
	track int

	timeMs    int64
	timeValid bool
	delta     int64
	args      []string

	err error
}

// New creates a Parser with the given options.
func New(opts ...Option) *Parser {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Parser{opts: o, track: -1}
}

// Attach indexes s and seeks to the start of the given track.
// On index failure the parser stays unattached.
func (p *Parser) Attach(s Stream, track int) error {
	p.stream = s
	p.tracks = nil
	p.err = nil
	p.track = -1
	p.clear()
	p.state = StateUnattached

	tracks, err := buildIndex(s, &p.opts)
	if err != nil {
		p.opts.logger.Error("indexing failed", "error", err)
		return err
	}
	p.tracks = tracks
	p.opts.logger.Debug("tracks indexed", "count", len(tracks))

	if track < 0 || track >= len(tracks) {
		p.opts.logger.Error("track index out of range", "track", track, "tracks", len(tracks))
		return fmt.Errorf("%w: %d (have %d)", ErrTrackIndexOutOfRange, track, len(tracks))
	}
	return p.Seek(track, 0)
}

// HasNextLine reports whether a line is available. A held line is reported
// without consuming anything, so repeated calls are idempotent until Pop.
// Otherwise one line is parsed. Once the track or stream ends it keeps
// returning false until the next Seek or Attach.
func (p *Parser) HasNextLine() bool {
	switch p.state {
	case StateHolding:
		return true
	case StateReady:
		return p.advance() == nil
	default:
		return false
	}
}

// NextTimeMs returns the accumulated track time of the held line. ok is
// false when no line is held.
func (p *Parser) NextTimeMs() (ms int64, ok bool) {
	if !p.timeValid {
		return 0, false
	}
	return p.timeMs, true
}

// Seek repositions to the start of track and reads forward until a line at or
// after timeMs is held. At least one line is always read. If the track ends
// first, the error wraps ErrSeekTimeUnreachable and the cause.
func (p *Parser) Seek(track int, timeMs int64) error {
	if p.stream == nil {
		return ErrNotAttached
	}
	if track < 0 || track >= len(p.tracks) {
		p.opts.logger.Error("seek track index out of range", "track", track, "tracks", len(p.tracks))
		return fmt.Errorf("%w: %d (have %d)", ErrTrackIndexOutOfRange, track, len(p.tracks))
	}

	p.clear()
	p.err = nil
	if err := p.stream.SeekTo(p.tracks[track].Offset); err != nil {
		p.state = StateExhausted
		p.opts.logger.Error("seek track failed", "track", track, "error", err)
		return fmt.Errorf("seeking to track %d: %w", track, err)
	}
	p.track = track
	p.timeMs = 0
	p.timeValid = true
	p.state = StateReady

	for {
		if err := p.advance(); err != nil {
			p.opts.logger.Error("seek time failed", "track", track, "time_ms", timeMs, "error", err)
			return fmt.Errorf("%w: track %d at %d ms: %w", ErrSeekTimeUnreachable, track, timeMs, err)
		}
		if p.timeMs >= timeMs {
			return nil
		}
	}
}

// SeekTime seeks within track 0.
func (p *Parser) SeekTime(timeMs int64) error {
	return p.Seek(0, timeMs)
}

// Pop releases the held arguments without advancing. The accumulated time
// is kept, so the next HasNextLine continues from it.
func (p *Parser) Pop() {
	p.args = nil
	if p.state == StateHolding {
		p.state = StateReady
	}
}

// Err returns the last failure that was not a normal track or stream end,
// such as an oversized line or an I/O error.
func (p *Parser) Err() error {
	return p.err
}

// State returns the cursor state.
func (p *Parser) State() State {
	return p.state
}

// Track returns the index of the track being read, or -1 before the first seek.
// When a track has no end marker the parser reads on through the next
// header and Track moves to that track, while the accumulated time keeps
// counting from the earlier track's start. Callers walking one track should
// stop once Track (or TimedLine.Track) differs from the track they sought.
func (p *Parser) Track() int {
	return p.track
}

// Tracks returns a copy of the track index.
func (p *Parser) Tracks() []Track {
	out := make([]Track, len(p.tracks))
	copy(out, p.tracks)
	return out
}

// NumTracks returns the number of indexed tracks.
func (p *Parser) NumTracks() int {
	return len(p.tracks)
}

// NumArgs returns the argument count of the held line.
func (p *Parser) NumArgs() int {
	return len(p.args)
}

// Args returns a copy of the held arguments.
func (p *Parser) Args() []string {
	out := make([]string, len(p.args))
	copy(out, p.args)
	return out
}

// Line returns the held line with its absolute time. After running on past
// an unterminated track, Track names the new track but TimeMs still counts
// from the start of the track that was sought.
func (p *Parser) Line() (TimedLine, bool) {
	if p.state != StateHolding {
		return TimedLine{}, false
	}
	return TimedLine{
		Track:   p.track,
		TimeMs:  p.timeMs,
		DeltaMs: p.delta,
		Args:    p.Args(),
	}, true
}

// ArgString returns argument i, or "" when out of range.
func (p *Parser) ArgString(i int) string {
	if i < 0 || i >= len(p.args) {
		p.opts.logger.Debug("argument index out of range", "index", i, "args", len(p.args))
		return ""
	}
	return p.args[i]
}

// ArgInt returns argument i as an integer, or 0 when it does not start with digits.
func (p *Parser) ArgInt(i int) int {
	return toInt(p.ArgString(i))
}

// ArgFloat32 returns argument i as a float32, or 0 when it is not numeric.
func (p *Parser) ArgFloat32(i int) float32 {
	return float32(toFloat(p.ArgString(i), 32))
}

// ArgFloat64 returns argument i as a float64, or 0 when it is not numeric.
func (p *Parser) ArgFloat64(i int) float64 {
	return toFloat(p.ArgString(i), 64)
}

func (p *Parser) clear() {
	p.timeValid = false
	p.timeMs = 0
	p.delta = 0
	p.args = nil
}

// exhaust drops the cursor state after the track or stream ended.
func (p *Parser) exhaust() {
	p.clear()
	p.state = StateExhausted
}

// advance parses the next data line into the cursor.
func (p *Parser) advance() error {
	if !p.stream.Available() {
		p.opts.logger.Info("end of stream reached")
		p.exhaust()
		return ErrStreamExhausted
	}

	raw, err := p.readLine()
	if err != nil {
		return err
	}

	if p.isTrackStart(raw) {
		// A header inside a track (an unterminated previous track) is
		// skipped; time keeps accumulating.
		p.opts.logger.Info("track header", "header", raw)
		if p.track >= 0 {
			p.track++
		}
		if !p.stream.Available() {
			p.opts.logger.Info("end of stream reached")
			p.exhaust()
			return ErrStreamExhausted
		}
		if raw, err = p.readLine(); err != nil {
			return err
		}
	}

	if p.isTrackEnd(raw) {
		p.opts.logger.Info("track footer", "track", p.track)
		p.exhaust()
		return ErrTrackFooterReached
	}

	line, err := Tokenize(raw, p.opts.maxArgs)
	if errors.Is(err, ErrTooManyArguments) {
		p.opts.logger.Error("line rejected", "line", raw, "error", err)
		p.exhaust()
		p.err = err
		return err
	}
	if err != nil {
		p.opts.logger.Warn("malformed line", "line", raw, "error", err)
	}

	p.timeMs = addTime(p.timeMs, line.Delta)
	p.timeValid = true
	p.delta = line.Delta
	p.args = line.Args
	p.state = StateHolding
	return nil
}

// addTime adds a non-negative delta, saturating at math.MaxInt64 so track
// time never decreases.
func addTime(ms, delta int64) int64 {
	if delta > math.MaxInt64-ms {
		return math.MaxInt64
	}
	return ms + delta
}

func (p *Parser) readLine() (string, error) {
	raw, err := p.stream.ReadLine()
	if errors.Is(err, io.EOF) {
		p.exhaust()
		return "", ErrStreamExhausted
	}
	if err != nil {
		p.opts.logger.Error("read failed", "error", err)
		p.exhaust()
		p.err = err
		return "", err
	}
	return raw, nil
}

func (p *Parser) isTrackStart(line string) bool {
	return strings.HasPrefix(line, p.opts.trackMarker)
}

func (p *Parser) isTrackEnd(line string) bool {
	return strings.HasPrefix(line, p.opts.endMarker)
}

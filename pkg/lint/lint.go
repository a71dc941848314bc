// Package lint checks MTR scripts for structural problems the parser
// tolerates silently.
package lint

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ccollicutt/mtr/pkg/parser"
)

// Finding is one problem found in a script.
type Finding struct {
	// Line is the 1-based line number.
	Line int `json:"line"`

	// Track is the track index, or -1 outside any track.
	Track int `json:"track"`

	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	// Text is the offending line, if there is one.
	Text string `json:"text,omitempty"`
}

// Result holds the findings for one script.
type Result struct {
	Source    string    `json:"source,omitempty"`
	Lines     int       `json:"lines"`
	Tracks    int       `json:"tracks"`
	DataLines int       `json:"data_lines"`
	Findings  []Finding `json:"findings"`
}

// Errors returns the number of error findings.
func (r *Result) Errors() int {
	return r.count(SeverityError)
}

// Warnings returns the number of warning findings.
func (r *Result) Warnings() int {
	return r.count(SeverityWarning)
}

// HasErrors returns true if any finding is an error.
func (r *Result) HasErrors() bool {
	return r.Errors() > 0
}

func (r *Result) count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// Linter checks scripts line by line.
type Linter struct {
	maxArgs     int
	trackMarker string
	endMarker   string
	disabled    map[Code]bool
}

// Option configures the Linter.
type Option func(*Linter)

// WithMaxArgs sets the argument limit checked by too_many_args (default 16).
func WithMaxArgs(n int) Option {
	return func(l *Linter) {
		if n > 0 {
			l.maxArgs = n
		}
	}
}

// WithMarkers overrides the track start and end prefixes.
func WithMarkers(trackMarker, endMarker string) Option {
	return func(l *Linter) {
		if trackMarker != "" {
			l.trackMarker = trackMarker
		}
		if endMarker != "" {
			l.endMarker = endMarker
		}
	}
}

// WithDisabled turns checks off.
func WithDisabled(codes ...Code) Option {
	return func(l *Linter) {
		for _, c := range codes {
			l.disabled[c] = true
		}
	}
}

// New creates a new Linter.
func New(opts ...Option) *Linter {
	l := &Linter{
		maxArgs:     parser.DefaultMaxArgs,
		trackMarker: parser.DefaultTrackMarker,
		endMarker:   parser.DefaultEndMarker,
		disabled:    make(map[Code]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LintFile checks the script at path.
func (l *Linter) LintFile(ctx context.Context, path string) (*Result, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	result, err := l.LintReader(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("linting %s: %w", path, err)
	}
	result.Source = path
	return result, nil
}

// LintReader checks a script read from r.
func (l *Linter) LintReader(ctx context.Context, r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	s := l.newScan()
	for scanner.Scan() {
		if s.result.Lines%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s.line(strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s.finish(), nil
}

// LintLines checks a script given as lines without newlines.
func (l *Linter) LintLines(lines []string) *Result {
	s := l.newScan()
	for _, line := range lines {
		s.line(line)
	}
	return s.finish()
}

// scan is the state of one pass over a script.
type scan struct {
	l       *Linter
	result  *Result
	inTrack bool
	track   int
	started int // line number of the current track marker
	data    int // data lines in the current track
}

func (l *Linter) newScan() *scan {
	return &scan{
		l:      l,
		result: &Result{Findings: []Finding{}},
		track:  -1,
	}
}

func (s *scan) add(code Code, text, format string, args ...any) {
	if s.l.disabled[code] {
		return
	}
	track := -1
	if s.inTrack {
		track = s.track
	}
	s.result.Findings = append(s.result.Findings, Finding{
		Line:     s.result.Lines,
		Track:    track,
		Code:     code,
		Severity: severityOf(code),
		Message:  fmt.Sprintf(format, args...),
		Text:     text,
	})
}

func (s *scan) line(text string) {
	s.result.Lines++

	switch {
	case strings.HasPrefix(text, s.l.trackMarker):
		if s.inTrack {
			s.closeTrack(false)
		}
		s.track++
		s.result.Tracks++
		s.inTrack = true
		s.started = s.result.Lines
		s.data = 0

	case strings.HasPrefix(text, s.l.endMarker):
		if !s.inTrack {
			s.add(CodeStrayEnd, text, "end marker outside any track")
			return
		}
		s.closeTrack(true)

	case strings.TrimSpace(text) == "":
		if s.inTrack {
			s.add(CodeBlankLine, "", "blank line inside track %d", s.track)
		}

	case !s.inTrack:
		s.add(CodeOutsideTrack, text, "data line outside any track")

	default:
		s.data++
		s.result.DataLines++
		s.dataLine(text)
	}
}

func (s *scan) dataLine(text string) {
	_, err := parser.Tokenize(text, s.l.maxArgs)
	if errors.Is(err, parser.ErrTooManyArguments) {
		s.add(CodeTooManyArgs, text, "%v", err)
		return
	}
	if errors.Is(err, parser.ErrMissingArguments) {
		s.add(CodeNoArguments, text, "line has a time delta but no arguments")
	}
	if errors.Is(err, parser.ErrInvalidDelta) {
		s.add(CodeInvalidDelta, text, "time delta is not a non-negative integer")
	}
	if !strings.Contains(text, ";") {
		s.add(CodeMissingTerminator, text, "line does not end with ';'")
	}
}

// closeTrack ends the current track. terminated is false when the track ran
// into another marker or the end of the script.
func (s *scan) closeTrack(terminated bool) {
	if !terminated {
		s.add(CodeUnterminatedTrack, "", "track %d (line %d) has no end marker", s.track, s.started)
	}
	if s.data == 0 {
		s.add(CodeEmptyTrack, "", "track %d (line %d) has no data lines", s.track, s.started)
	}
	s.inTrack = false
}

func (s *scan) finish() *Result {
	if s.inTrack {
		s.closeTrack(false)
	}
	if s.result.Tracks == 0 {
		s.add(CodeNoTracks, "", "no %q marker found", s.l.trackMarker)
	}
	return s.result
}

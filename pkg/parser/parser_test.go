package parser

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const twoTracks = "track\n10 a;\n20 b;\nend;\ntrack\n5 c;\nend;\n"

func attach(t *testing.T, script string, track int, opts ...Option) *Parser {
	t.Helper()
	p := New(opts...)
	if err := p.Attach(NewStringStream(script), track); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	return p
}

func mustTime(t *testing.T, p *Parser) int64 {
	t.Helper()
	ms, ok := p.NextTimeMs()
	if !ok {
		t.Fatal("NextTimeMs() reported no held line")
	}
	return ms
}

func TestParser_EndToEndSecondTrack(t *testing.T) {
	p := attach(t, twoTracks, 1)

	if got := p.NumTracks(); got != 2 {
		t.Errorf("NumTracks() = %d, want 2", got)
	}
	if got := mustTime(t, p); got != 5 {
		t.Errorf("NextTimeMs() = %d, want 5", got)
	}
	if got := p.ArgString(0); got != "c" {
		t.Errorf("ArgString(0) = %q, want %q", got, "c")
	}
	if p.Track() != 1 {
		t.Errorf("Track() = %d, want 1", p.Track())
	}

	p.Pop()
	if p.HasNextLine() {
		t.Error("HasNextLine() = true, want false at track footer")
	}
	if p.State() != StateExhausted {
		t.Errorf("State() = %v, want exhausted", p.State())
	}
	if _, ok := p.NextTimeMs(); ok {
		t.Error("NextTimeMs() reported a line after the footer")
	}
	if p.Err() != nil {
		t.Errorf("Err() = %v, want nil for a normal footer", p.Err())
	}
}

func TestParser_WalkTrack(t *testing.T) {
	p := attach(t, twoTracks, 0)

	var times []int64
	var args []string
	for p.HasNextLine() {
		times = append(times, mustTime(t, p))
		args = append(args, p.ArgString(0))
		p.Pop()
	}

	if len(times) != 2 || times[0] != 10 || times[1] != 30 {
		t.Errorf("times = %v, want [10 30]", times)
	}
	if strings.Join(args, ",") != "a,b" {
		t.Errorf("args = %v, want [a b]", args)
	}

	// Exhausted stays exhausted until the next seek.
	if p.HasNextLine() {
		t.Error("HasNextLine() = true after exhaustion")
	}
}

func TestParser_HasNextLineIsIdempotent(t *testing.T) {
	p := attach(t, "track\n100 a b c;\n50 x;\nend;\n", 0)

	for i := 0; i < 3; i++ {
		if !p.HasNextLine() {
			t.Fatalf("HasNextLine() call %d = false", i)
		}
		if got := mustTime(t, p); got != 100 {
			t.Errorf("call %d: NextTimeMs() = %d, want 100", i, got)
		}
		if got := p.NumArgs(); got != 3 {
			t.Errorf("call %d: NumArgs() = %d, want 3", i, got)
		}
	}

	p.Pop()
	if !p.HasNextLine() {
		t.Fatal("HasNextLine() = false, want second line")
	}
	if got := mustTime(t, p); got != 150 {
		t.Errorf("NextTimeMs() = %d, want 150", got)
	}
	if got := p.Args(); len(got) != 1 || got[0] != "x" {
		t.Errorf("Args() = %v, want [x]", got)
	}
}

func TestParser_SeekLandsOnFirstLineAtOrAfterTarget(t *testing.T) {
	script := "track\n0 a;\n100 b;\n50 c;\n200 d;\nend;\n"

	tests := []struct {
		target   int64
		wantTime int64
		wantArg  string
	}{
		{0, 0, "a"},
		{1, 100, "b"},
		{100, 100, "b"},
		{101, 150, "c"},
		{150, 150, "c"},
		{151, 350, "d"},
		{350, 350, "d"},
	}

	p := attach(t, script, 0)
	for _, tt := range tests {
		if err := p.Seek(0, tt.target); err != nil {
			t.Errorf("Seek(0, %d) error = %v", tt.target, err)
			continue
		}
		if got := mustTime(t, p); got != tt.wantTime {
			t.Errorf("Seek(0, %d): NextTimeMs() = %d, want %d", tt.target, got, tt.wantTime)
		}
		if got := p.ArgString(0); got != tt.wantArg {
			t.Errorf("Seek(0, %d): ArgString(0) = %q, want %q", tt.target, got, tt.wantArg)
		}
	}
}

func TestParser_SeekConsumesAtLeastOneLine(t *testing.T) {
	p := attach(t, "track\n250 first;\n10 second;\nend;\n", 0)

	if err := p.SeekTime(0); err != nil {
		t.Fatalf("SeekTime(0) error = %v", err)
	}
	if got := mustTime(t, p); got != 250 {
		t.Errorf("NextTimeMs() = %d, want 250", got)
	}
}

func TestParser_SeekPastTrackEnd(t *testing.T) {
	p := attach(t, twoTracks, 0)

	err := p.Seek(0, 31)
	if !errors.Is(err, ErrSeekTimeUnreachable) {
		t.Fatalf("Seek() error = %v, want ErrSeekTimeUnreachable", err)
	}
	if !errors.Is(err, ErrTrackFooterReached) {
		t.Errorf("Seek() error = %v, want it to wrap ErrTrackFooterReached", err)
	}
	if p.State() != StateExhausted {
		t.Errorf("State() = %v, want exhausted", p.State())
	}
	if p.HasNextLine() {
		t.Error("HasNextLine() = true after failed seek")
	}

	// The parser stays usable.
	if err := p.Seek(1, 0); err != nil {
		t.Fatalf("Seek(1, 0) after failure error = %v", err)
	}
	if got := mustTime(t, p); got != 5 {
		t.Errorf("NextTimeMs() = %d, want 5", got)
	}
}

func TestParser_SeekPastStreamEnd(t *testing.T) {
	p := attach(t, "track\n10 a;\n", 0)

	err := p.Seek(0, 100)
	if !errors.Is(err, ErrSeekTimeUnreachable) || !errors.Is(err, ErrStreamExhausted) {
		t.Errorf("Seek() error = %v, want ErrSeekTimeUnreachable wrapping ErrStreamExhausted", err)
	}
}

func TestParser_SeekResetsTime(t *testing.T) {
	p := attach(t, twoTracks, 0)
	p.Pop()
	if !p.HasNextLine() {
		t.Fatal("HasNextLine() = false")
	}
	if got := mustTime(t, p); got != 30 {
		t.Fatalf("NextTimeMs() = %d, want 30", got)
	}

	if err := p.Seek(0, 0); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if got := mustTime(t, p); got != 10 {
		t.Errorf("NextTimeMs() after re-seek = %d, want 10", got)
	}
}

func TestParser_SkipsHeaderInsideTrack(t *testing.T) {
	p := attach(t, "track one\n10 a;\ntrack two\n5 b;\nend;\n", 0)

	p.Pop()
	if !p.HasNextLine() {
		t.Fatal("HasNextLine() = false, want line after header")
	}
	if got := p.ArgString(0); got != "b" {
		t.Errorf("ArgString(0) = %q, want %q", got, "b")
	}
	if got := mustTime(t, p); got != 15 {
		t.Errorf("NextTimeMs() = %d, want 15 (time keeps accumulating)", got)
	}
	if p.Track() != 1 {
		t.Errorf("Track() = %d, want 1", p.Track())
	}
}

func TestParser_AttachNoTracks(t *testing.T) {
	p := New()
	err := p.Attach(NewStringStream("10 a;\n20 b;\n"), 0)
	if !errors.Is(err, ErrNoTracksFound) {
		t.Fatalf("Attach() error = %v, want ErrNoTracksFound", err)
	}
	if p.State() != StateUnattached {
		t.Errorf("State() = %v, want unattached", p.State())
	}
	if p.HasNextLine() {
		t.Error("HasNextLine() = true on unattached parser")
	}
}

func TestParser_AttachTrackOutOfRange(t *testing.T) {
	p := New()
	err := p.Attach(NewStringStream(twoTracks), 2)
	if !errors.Is(err, ErrTrackIndexOutOfRange) {
		t.Fatalf("Attach() error = %v, want ErrTrackIndexOutOfRange", err)
	}
	if p.State() != StateUnattached {
		t.Errorf("State() = %v, want unattached", p.State())
	}
	if p.NumTracks() != 2 {
		t.Errorf("NumTracks() = %d, want 2", p.NumTracks())
	}

	if err := p.Seek(-1, 0); !errors.Is(err, ErrTrackIndexOutOfRange) {
		t.Errorf("Seek(-1) error = %v, want ErrTrackIndexOutOfRange", err)
	}
}

func TestParser_ReattachRebuildsIndex(t *testing.T) {
	p := attach(t, twoTracks, 0)
	if err := p.Attach(NewStringStream("track\n1 z;\nend;\n"), 0); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if p.NumTracks() != 1 {
		t.Errorf("NumTracks() = %d, want 1", p.NumTracks())
	}
	if got := p.ArgString(0); got != "z" {
		t.Errorf("ArgString(0) = %q, want %q", got, "z")
	}
}

func TestParser_SeekNotAttached(t *testing.T) {
	p := New()
	if err := p.Seek(0, 0); !errors.Is(err, ErrNotAttached) {
		t.Errorf("Seek() error = %v, want ErrNotAttached", err)
	}
}

func TestParser_TooManyArguments(t *testing.T) {
	p := New(WithMaxArgs(2))
	err := p.Attach(NewStringStream("track\n10 a b c;\nend;\n"), 0)
	if !errors.Is(err, ErrTooManyArguments) {
		t.Fatalf("Attach() error = %v, want ErrTooManyArguments", err)
	}
	if !errors.Is(p.Err(), ErrTooManyArguments) {
		t.Errorf("Err() = %v, want ErrTooManyArguments", p.Err())
	}
	if p.NumArgs() != 0 {
		t.Errorf("NumArgs() = %d, want 0", p.NumArgs())
	}
}

func TestParser_TooManyArgumentsMidTrack(t *testing.T) {
	p := attach(t, "track\n10 a b;\n10 a b c;\nend;\n", 0, WithMaxArgs(2))
	p.Pop()
	if p.HasNextLine() {
		t.Fatal("HasNextLine() = true for oversized line")
	}
	if !errors.Is(p.Err(), ErrTooManyArguments) {
		t.Errorf("Err() = %v, want ErrTooManyArguments", p.Err())
	}
}

func TestParser_MaxTracks(t *testing.T) {
	p := New(WithMaxTracks(1))
	err := p.Attach(NewStringStream(twoTracks), 0)
	if !errors.Is(err, ErrTooManyTracks) {
		t.Errorf("Attach() error = %v, want ErrTooManyTracks", err)
	}
}

func TestParser_LineWithoutArguments(t *testing.T) {
	p := attach(t, "track\n100;\n5 a;\nend;\n", 0)

	if !p.HasNextLine() {
		t.Fatal("HasNextLine() = false for a delta-only line")
	}
	if got := mustTime(t, p); got != 100 {
		t.Errorf("NextTimeMs() = %d, want 100", got)
	}
	if p.NumArgs() != 0 {
		t.Errorf("NumArgs() = %d, want 0", p.NumArgs())
	}
}

func TestParser_TimeSaturates(t *testing.T) {
	p := attach(t, "track\n9223372036854775807 a;\n9223372036854775807 b;\n99999999999999999999 c;\nend;\n", 0)

	var prev int64
	for i := 0; p.HasNextLine(); i++ {
		ms := mustTime(t, p)
		if ms < prev {
			t.Fatalf("line %d: time went from %d to %d", i, prev, ms)
		}
		if ms != math.MaxInt64 {
			t.Errorf("line %d: NextTimeMs() = %d, want %d", i, ms, int64(math.MaxInt64))
		}
		prev = ms
		p.Pop()
	}
}

func TestAddTime(t *testing.T) {
	tests := []struct {
		ms, delta, want int64
	}{
		{0, 0, 0},
		{10, 5, 15},
		{math.MaxInt64 - 1, 1, math.MaxInt64},
		{math.MaxInt64, 1, math.MaxInt64},
		{1, math.MaxInt64, math.MaxInt64},
	}

	for _, tt := range tests {
		if got := addTime(tt.ms, tt.delta); got != tt.want {
			t.Errorf("addTime(%d, %d) = %d, want %d", tt.ms, tt.delta, got, tt.want)
		}
	}
}

func TestParser_ArgConversions(t *testing.T) {
	p := attach(t, "track\n0 servo 12 -3 1.5 2.5e2 abc;\nend;\n", 0)

	if got := p.ArgString(0); got != "servo" {
		t.Errorf("ArgString(0) = %q", got)
	}
	if got := p.ArgInt(1); got != 12 {
		t.Errorf("ArgInt(1) = %d, want 12", got)
	}
	if got := p.ArgInt(2); got != -3 {
		t.Errorf("ArgInt(2) = %d, want -3", got)
	}
	if got := p.ArgFloat32(3); got != 1.5 {
		t.Errorf("ArgFloat32(3) = %v, want 1.5", got)
	}
	if got := p.ArgFloat64(4); got != 250 {
		t.Errorf("ArgFloat64(4) = %v, want 250", got)
	}
	if got := p.ArgInt(5); got != 0 {
		t.Errorf("ArgInt(5) on non-numeric = %d, want 0", got)
	}
	if got := p.ArgInt(0); got != 0 {
		t.Errorf("ArgInt(0) on non-numeric = %d, want 0", got)
	}
	if got := p.ArgFloat64(99); got != 0 {
		t.Errorf("ArgFloat64(99) out of range = %v, want 0", got)
	}
	if got := p.ArgString(-1); got != "" {
		t.Errorf("ArgString(-1) = %q, want empty", got)
	}
}

func TestParser_CustomMarkers(t *testing.T) {
	script := "BEGIN\n10 a;\nSTOP\nBEGIN\n20 b;\nSTOP\n"
	p := attach(t, script, 1, WithMarkers("BEGIN", "STOP"))

	if p.NumTracks() != 2 {
		t.Errorf("NumTracks() = %d, want 2", p.NumTracks())
	}
	if got := p.ArgString(0); got != "b" {
		t.Errorf("ArgString(0) = %q, want %q", got, "b")
	}
	p.Pop()
	if p.HasNextLine() {
		t.Error("HasNextLine() = true, want custom footer to end the track")
	}
}

func TestParser_Line(t *testing.T) {
	p := attach(t, twoTracks, 0)

	line, ok := p.Line()
	if !ok {
		t.Fatal("Line() reported nothing held")
	}
	if line.Track != 0 || line.TimeMs != 10 || line.DeltaMs != 10 {
		t.Errorf("Line() = %+v", line)
	}

	p.Pop()
	if _, ok := p.Line(); ok {
		t.Error("Line() reported a line after Pop")
	}
}

func TestParser_LogsFooter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := attach(t, twoTracks, 1, WithLogger(logger))
	p.Pop()
	p.HasNextLine()

	if !strings.Contains(buf.String(), "track footer") {
		t.Errorf("log output missing footer entry:\n%s", buf.String())
	}
}

func TestParser_FileStream(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "walk.mtr")
	if err := os.WriteFile(path, []byte("track walk\r\n0 hip 10;\r\n500 hip 20;\r\nend;\r\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer s.Close()

	p := New()
	if err := p.Attach(s, 0); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if got := p.Tracks()[0].Header; got != "walk" {
		t.Errorf("Header = %q, want %q", got, "walk")
	}
	if err := p.SeekTime(1); err != nil {
		t.Fatalf("SeekTime() error = %v", err)
	}
	if got := p.ArgInt(1); got != 20 {
		t.Errorf("ArgInt(1) = %d, want 20", got)
	}
}

func TestOpenFile_NotFound(t *testing.T) {
	if _, err := OpenFile("/nonexistent/script.mtr"); err == nil {
		t.Error("OpenFile() expected error for missing file")
	}
}

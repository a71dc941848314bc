package lint

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func codes(r *Result) []Code {
	out := make([]Code, 0, len(r.Findings))
	for _, f := range r.Findings {
		out = append(out, f.Code)
	}
	return out
}

func hasCode(r *Result, code Code) bool {
	for _, f := range r.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

func TestLinter_CleanScript(t *testing.T) {
	lines := []string{
		"# header comment",
		"track arm",
		"0 servo 1 90;",
		"250 servo 1 45;",
		"end;",
		"track leg",
		"100 servo 2 10;",
		"end;",
	}

	result := New().LintLines(lines)

	// The comment sits outside any track.
	if got := codes(result); len(got) != 1 || got[0] != CodeOutsideTrack {
		t.Errorf("findings = %v, want [outside_track]", got)
	}
	if result.Tracks != 2 {
		t.Errorf("Tracks = %d, want 2", result.Tracks)
	}
	if result.DataLines != 3 {
		t.Errorf("DataLines = %d, want 3", result.DataLines)
	}
	if result.Lines != 8 {
		t.Errorf("Lines = %d, want 8", result.Lines)
	}
	if result.HasErrors() {
		t.Error("HasErrors() = true for a clean script")
	}
}

func TestLinter_Checks(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  Code
		track int
		line  int
	}{
		{"no tracks", []string{"10 a;"}, CodeNoTracks, -1, 1},
		{"stray end", []string{"end;", "track", "1 a;", "end;"}, CodeStrayEnd, -1, 1},
		{"unterminated at eof", []string{"track", "1 a;"}, CodeUnterminatedTrack, 0, 2},
		{"unterminated before next", []string{"track", "1 a;", "track", "1 b;", "end;"}, CodeUnterminatedTrack, 0, 3},
		{"empty track", []string{"track", "end;"}, CodeEmptyTrack, 0, 2},
		{"blank line", []string{"track", "1 a;", "", "end;"}, CodeBlankLine, 0, 3},
		{"no arguments", []string{"track", "100;", "end;"}, CodeNoArguments, 0, 2},
		{"missing terminator", []string{"track", "10 a b", "end;"}, CodeMissingTerminator, 0, 2},
		{"invalid delta", []string{"track", "x a;", "end;"}, CodeInvalidDelta, 0, 2},
		{"negative delta", []string{"track", "-10 a;", "end;"}, CodeInvalidDelta, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New().LintLines(tt.lines)

			var found *Finding
			for i := range result.Findings {
				if result.Findings[i].Code == tt.want {
					found = &result.Findings[i]
					break
				}
			}
			if found == nil {
				t.Fatalf("findings = %v, want %s", codes(result), tt.want)
			}
			if found.Track != tt.track {
				t.Errorf("Track = %d, want %d", found.Track, tt.track)
			}
			if found.Line != tt.line {
				t.Errorf("Line = %d, want %d", found.Line, tt.line)
			}
			if found.Severity != severityOf(tt.want) {
				t.Errorf("Severity = %s, want %s", found.Severity, severityOf(tt.want))
			}
		})
	}
}

func TestLinter_TooManyArgs(t *testing.T) {
	lines := []string{"track", "0 a b c;", "end;"}

	if result := New().LintLines(lines); hasCode(result, CodeTooManyArgs) {
		t.Error("too_many_args reported under the default limit")
	}

	result := New(WithMaxArgs(2)).LintLines(lines)
	if !hasCode(result, CodeTooManyArgs) {
		t.Fatalf("findings = %v, want too_many_args", codes(result))
	}
	if !result.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
}

func TestLinter_CustomMarkers(t *testing.T) {
	result := New(WithMarkers("BEGIN", "STOP")).LintLines([]string{"BEGIN", "1 a;", "STOP"})
	if len(result.Findings) != 0 {
		t.Errorf("findings = %v, want none", codes(result))
	}
}

func TestLinter_Disabled(t *testing.T) {
	lines := []string{"# comment", "track", "1 a;", "end;"}
	result := New(WithDisabled(CodeOutsideTrack)).LintLines(lines)
	if len(result.Findings) != 0 {
		t.Errorf("findings = %v, want none", codes(result))
	}
}

func TestLinter_Counts(t *testing.T) {
	result := New().LintLines([]string{"track", "x;", "end;"})
	// x; has no arguments and a bad delta.
	if result.Errors() != 1 || result.Warnings() != 1 {
		t.Errorf("Errors() = %d, Warnings() = %d, want 1 and 1", result.Errors(), result.Warnings())
	}
}

func TestLinter_LintFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "walk.mtr")
	content := "track\r\n0 a;\r\n\r\nend;\r\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := New().LintFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LintFile() error = %v", err)
	}
	if result.Source != path {
		t.Errorf("Source = %q, want %q", result.Source, path)
	}
	if got := codes(result); len(got) != 1 || got[0] != CodeBlankLine {
		t.Errorf("findings = %v, want [blank_line]", got)
	}
}

func TestLinter_LintFile_NotFound(t *testing.T) {
	_, err := New().LintFile(context.Background(), "/nonexistent/walk.mtr")
	if err == nil {
		t.Error("LintFile() expected error for missing file")
	}
}

func TestLinter_LintReader_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().LintReader(ctx, strings.NewReader("track\n1 a;\nend;\n"))
	if err == nil {
		t.Error("LintReader() expected error for canceled context")
	}
}

func TestDefaultChecks(t *testing.T) {
	seen := make(map[Code]bool)
	for _, c := range DefaultChecks() {
		if seen[c.Code] {
			t.Errorf("duplicate check %s", c.Code)
		}
		seen[c.Code] = true
		if c.Description == "" {
			t.Errorf("check %s has no description", c.Code)
		}
	}
	if len(seen) != 10 {
		t.Errorf("got %d checks, want 10", len(seen))
	}
}

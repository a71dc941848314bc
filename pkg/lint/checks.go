package lint

// Severity ranks a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code identifies a lint check.
type Code string

const (
	CodeNoTracks          Code = "no_tracks"
	CodeOutsideTrack      Code = "outside_track"
	CodeStrayEnd          Code = "stray_end"
	CodeUnterminatedTrack Code = "unterminated_track"
	CodeEmptyTrack        Code = "empty_track"
	CodeBlankLine         Code = "blank_line"
	CodeNoArguments       Code = "no_arguments"
	CodeMissingTerminator Code = "missing_terminator"
	CodeInvalidDelta      Code = "invalid_delta"
	CodeTooManyArgs       Code = "too_many_args"
)

// Check describes one lint check.
type Check struct {
	Code        Code
	Severity    Severity
	Description string
}

// DefaultChecks returns every check the linter runs, in report order.
func DefaultChecks() []Check {
	return []Check{
		{CodeNoTracks, SeverityError, "the script contains no track marker"},
		{CodeOutsideTrack, SeverityWarning, "a data line sits outside any track and is never played"},
		{CodeStrayEnd, SeverityWarning, "an end marker appears outside any track"},
		{CodeUnterminatedTrack, SeverityWarning, "a track runs into the next track or the end of the file without an end marker"},
		{CodeEmptyTrack, SeverityWarning, "a track has no data lines, so seeking into it fails"},
		{CodeBlankLine, SeverityWarning, "a blank line inside a track is read as a zero-delta line"},
		{CodeNoArguments, SeverityWarning, "a data line has a time delta but no arguments"},
		{CodeMissingTerminator, SeverityWarning, "a data line does not end with ';'"},
		{CodeInvalidDelta, SeverityError, "the time delta is not a non-negative integer"},
		{CodeTooManyArgs, SeverityError, "a data line has more arguments than the parser accepts"},
	}
}

func severityOf(code Code) Severity {
	for _, c := range DefaultChecks() {
		if c.Code == code {
			return c.Severity
		}
	}
	return SeverityWarning
}

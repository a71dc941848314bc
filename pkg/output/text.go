package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/ccollicutt/mtr/pkg/analyzer"
	"github.com/ccollicutt/mtr/pkg/lint"
)

// Palette
var (
	colorTitle   = lipgloss.Color("#8B5CF6")
	colorOK      = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
)

type styles struct {
	title   lipgloss.Style
	heading lipgloss.Style
	ok      lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
}

// newStyles binds styles to w, so color is only emitted when w is a
// terminal that supports it.
func newStyles(w io.Writer, noColor bool) styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		title:   r.NewStyle().Foreground(colorTitle).Bold(true),
		heading: r.NewStyle().Bold(true),
		ok:      r.NewStyle().Foreground(colorOK),
		warning: r.NewStyle().Foreground(colorWarning),
		err:     r.NewStyle().Foreground(colorError).Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	st := newStyles(w, f.opts.NoColor)
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w, st)
}

// FormatLint renders only the lint results of a report.
func (f *TextFormatter) FormatLint(report *Report, w io.Writer) error {
	st := newStyles(w, f.opts.NoColor)
	for _, res := range report.Lint {
		f.formatLint(res, w, st)
	}
	_, err := fmt.Fprintf(w, "Lint: %d errors, %d warnings\n", report.Summary.LintErrors, report.Summary.LintWarnings)
	return err
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "mtr: %d tracks, %d rules checked, %d with issues, %d total issues\n",
		report.Summary.Tracks,
		report.Summary.RulesChecked,
		report.Summary.RulesWithIssues,
		report.Summary.TotalIssues)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer, st styles) error {
	fmt.Fprintln(w, st.title.Render("=== MTR Analysis Report ==="))
	fmt.Fprintln(w)

	if f.opts.Verbose {
		f.formatTracks(report.Tracks, w, st)
	}

	for _, res := range report.Lint {
		f.formatLint(res, w, st)
	}

	for _, result := range report.Results {
		f.formatRuleResult(result, w, st)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d tracks, %d rules checked, %d rules with issues, %d total issues\n",
		report.Summary.Tracks,
		report.Summary.RulesChecked,
		report.Summary.RulesWithIssues,
		report.Summary.TotalIssues)

	if report.Lint != nil {
		fmt.Fprintf(w, "Lint: %d errors, %d warnings\n", report.Summary.LintErrors, report.Summary.LintWarnings)
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Run: %s\n", report.RunID)
		fmt.Fprintf(w, "Lines processed: %d\n", report.Summary.LinesProcessed)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatTracks(tracks []*analyzer.TrackSummary, w io.Writer, st styles) {
	fmt.Fprintln(w, st.heading.Render("Tracks"))
	for _, t := range tracks {
		header := t.Header
		if header == "" {
			header = "-"
		}
		fmt.Fprintf(w, "  %s #%d %s: %d lines, %dms, max gap %dms, max args %d\n",
			t.Source, t.Index, header, t.Lines, t.DurationMs, t.MaxGapMs, t.MaxArgs)
		if t.Error != "" {
			fmt.Fprintf(w, "    %s\n", st.err.Render(t.Error))
		}
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatLint(res *lint.Result, w io.Writer, st styles) {
	fmt.Fprintf(w, "%s %s\n", st.heading.Render("[LINT]"), res.Source)
	if len(res.Findings) == 0 {
		fmt.Fprintf(w, "  %s\n\n", st.ok.Render("No findings"))
		return
	}
	for _, finding := range res.Findings {
		sev := st.warning.Render(string(finding.Severity))
		if finding.Severity == lint.SeverityError {
			sev = st.err.Render(string(finding.Severity))
		}
		fmt.Fprintf(w, "  - line %d: %s %s: %s\n", finding.Line, sev, finding.Code, finding.Message)
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatRuleResult(result *analyzer.RuleResult, w io.Writer, st styles) {
	ruleType := strings.ToUpper(string(result.RuleType))
	fmt.Fprintf(w, "%s %s\n", st.heading.Render("["+ruleType+"]"), result.RuleName)

	if result.Description != "" && f.opts.Verbose {
		fmt.Fprintf(w, "  %s\n", st.muted.Render(result.Description))
	}

	if !result.HasIssues() {
		fmt.Fprintf(w, "  %s\n\n", st.ok.Render("No issues detected"))
		return
	}

	fmt.Fprintf(w, "  %s\n", st.err.Render(fmt.Sprintf("%d issue(s)", len(result.Issues))))

	for i := range result.Issues {
		f.formatIssue(&result.Issues[i], w, st)
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "  %s\n", st.muted.Render(fmt.Sprintf("%d of %d lines in scope",
			result.Stats.LinesMatched, result.Stats.LinesProcessed)))
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatIssue(issue *analyzer.Issue, w io.Writer, st styles) {
	ctx := issue.Context
	switch issue.Type {
	case analyzer.IssueTypeGapExceeded:
		fmt.Fprintf(w, "  - track %d at %dms: gap of %dms (max allowed: %dms)\n",
			ctx.Track, ctx.TimeMs, ctx.Actual, ctx.Limit)
	case analyzer.IssueTypeDurationExceeded:
		fmt.Fprintf(w, "  - track %d: runs %dms (max allowed: %dms)\n",
			ctx.Track, ctx.Actual, ctx.Limit)
	case analyzer.IssueTypeTooFewLines:
		fmt.Fprintf(w, "  - track %d: %d lines (minimum required: %d)\n",
			ctx.Track, ctx.Actual, ctx.Limit)
	default:
		fmt.Fprintf(w, "  - %s\n", issue.Description)
	}

	if f.opts.Verbose && ctx.Source != "" {
		fmt.Fprintf(w, "    %s\n", st.muted.Render("Source: "+ctx.Source))
	}
}

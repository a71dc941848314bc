// Package output provides formatting and output generation for analysis results.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/mtr/pkg/analyzer"
	"github.com/ccollicutt/mtr/pkg/lint"
)

// Report is the complete analysis output.
type Report struct {
	// RunID identifies this run across webhook deliveries.
	RunID string `json:"run_id"`

	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Tracks summarizes every track that was walked.
	Tracks []*analyzer.TrackSummary `json:"tracks"`

	// Results contains findings from each rule.
	Results []*analyzer.RuleResult `json:"results"`

	// Lint holds structural findings per script, when linting ran.
	Lint []*lint.Result `json:"lint,omitempty"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	// Tracks is the number of tracks walked.
	Tracks int `json:"tracks"`

	// EmptyTracks is the number of tracks without data lines.
	EmptyTracks int `json:"empty_tracks"`

	// LinesProcessed is the total number of data lines read.
	LinesProcessed int `json:"lines_processed"`

	// RulesChecked is the number of rules that were executed.
	RulesChecked int `json:"rules_checked"`

	// RulesWithIssues is the number of rules that detected issues.
	RulesWithIssues int `json:"rules_with_issues"`

	// TotalIssues is the total number of issues detected.
	TotalIssues int `json:"total_issues"`

	LintErrors   int `json:"lint_errors"`
	LintWarnings int `json:"lint_warnings"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the scripts that were analyzed.
	Sources []string `json:"sources"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration_ns"`
}

// NewReport creates a Report from analysis results.
func NewReport(result *analyzer.AnalysisResult, configFile string) *Report {
	report := &Report{
		RunID:   uuid.New().String(),
		Tracks:  result.Tracks,
		Results: result.Results,
		Metadata: Metadata{
			ConfigFile: configFile,
			Sources:    result.Metadata.Sources,
			AnalyzedAt: result.Metadata.EndTime,
			Duration:   result.Metadata.EndTime.Sub(result.Metadata.StartTime),
		},
		Summary: Summary{
			Tracks:          len(result.Tracks),
			RulesChecked:    len(result.Results),
			RulesWithIssues: result.RulesWithIssues(),
			TotalIssues:     result.TotalIssues(),
			LinesProcessed:  result.Metadata.LinesProcessed,
		},
	}

	for _, t := range result.Tracks {
		if t.Empty() {
			report.Summary.EmptyTracks++
		}
	}

	return report
}

// AddLint attaches lint results and updates the summary counts.
func (r *Report) AddLint(results ...*lint.Result) {
	for _, res := range results {
		r.Lint = append(r.Lint, res)
		r.Summary.LintErrors += res.Errors()
		r.Summary.LintWarnings += res.Warnings()
	}
}

// HasIssues returns true if any rule issue or lint error was found.
func (r *Report) HasIssues() bool {
	return r.Summary.TotalIssues > 0 || r.Summary.LintErrors > 0
}

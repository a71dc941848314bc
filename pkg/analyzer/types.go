// Package analyzer checks the tracks of MTR scripts against timing rules.
package analyzer

import (
	"time"

	"github.com/ccollicutt/mtr/pkg/config"
)

// RuleType enumerates rule strategies.
type RuleType = config.RuleType

const (
	RuleTypeMaxGap      = config.RuleTypeMaxGap
	RuleTypeMaxDuration = config.RuleTypeMaxDuration
	RuleTypeMinLines    = config.RuleTypeMinLines
)

// IssueType categorizes detected issues.
type IssueType string

const (
	// IssueTypeGapExceeded indicates a line delta above the allowed gap.
	IssueTypeGapExceeded IssueType = "gap_exceeded"

	// IssueTypeDurationExceeded indicates a track that runs too long.
	IssueTypeDurationExceeded IssueType = "duration_exceeded"

	// IssueTypeTooFewLines indicates a track with fewer data lines than required.
	IssueTypeTooFewLines IssueType = "too_few_lines"
)

// TrackSummary describes one track after a full pass over it.
type TrackSummary struct {
	// Source is the script the track belongs to.
	Source string `json:"source"`

	// Index is the track index within its script.
	Index int `json:"index"`

	// Header is the text after the track marker.
	Header string `json:"header,omitempty"`

	// Lines is the number of data lines read.
	Lines int `json:"lines"`

	// DurationMs is the time of the last line.
	DurationMs int64 `json:"duration_ms"`

	// MaxGapMs is the largest delta seen.
	MaxGapMs int64 `json:"max_gap_ms"`

	// MaxArgs is the largest argument count seen.
	MaxArgs int `json:"max_args"`

	// Error is set when reading stopped on a malformed line.
	Error string `json:"error,omitempty"`
}

// Empty reports whether the track has no data lines.
func (s *TrackSummary) Empty() bool {
	return s.Lines == 0
}

// RuleResult contains findings from executing a single rule.
type RuleResult struct {
	// RuleName is the name of the rule that produced these results.
	RuleName string

	// RuleType indicates the rule strategy.
	RuleType RuleType

	// Description is the rule's description, if any.
	Description string

	// Issues contains all detected problems.
	Issues []Issue

	// Stats provides execution statistics.
	Stats RuleStats
}

// RuleStats contains execution statistics for a rule.
type RuleStats struct {
	// LinesProcessed is the total number of lines examined.
	LinesProcessed int

	// LinesMatched is the number of lines in tracks the rule applies to.
	LinesMatched int

	// StartTime is when rule processing began.
	StartTime time.Time

	// EndTime is when rule processing completed.
	EndTime time.Time
}

// HasIssues returns true if any issues were detected.
func (r *RuleResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// Issue represents a single detected problem.
type Issue struct {
	// Type categorizes the issue.
	Type IssueType

	// Description is a human-readable summary of the issue.
	Description string

	// Context locates the issue.
	Context IssueContext
}

// IssueContext provides detailed information about an issue.
type IssueContext struct {
	Source string
	Track  int

	// TimeMs is the track time of the offending line, if the issue has one.
	TimeMs int64

	// Limit is the configured threshold.
	Limit int64

	// Actual is the measured value.
	Actual int64
}

package analyzer

import (
	"context"

	"github.com/ccollicutt/mtr/pkg/parser"
)

// RuleEngine checks timed lines against one rule.
// Each rule type (max_gap, max_duration, min_lines) implements this interface.
type RuleEngine interface {
	// Name returns the rule name for reporting.
	Name() string

	// Type returns the rule type.
	Type() RuleType

	// Process handles a single line, updating internal state.
	// Returns nil on success, error on fatal problems.
	Process(ctx context.Context, line *parser.TimedLine) error

	// Finalize completes analysis and returns detected issues.
	// tracks holds a summary of every track that was walked, in order.
	Finalize(ctx context.Context, tracks []*TrackSummary) (*RuleResult, error)

	// Reset clears internal state for reuse.
	Reset()
}

// trackFilter selects the tracks a rule applies to. A nil filter selects all.
type trackFilter map[int]bool

func newTrackFilter(tracks []int) trackFilter {
	if len(tracks) == 0 {
		return nil
	}
	f := make(trackFilter, len(tracks))
	for _, t := range tracks {
		f[t] = true
	}
	return f
}

func (f trackFilter) match(track int) bool {
	return f == nil || f[track]
}

package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ccollicutt/mtr/pkg/config"
	"github.com/ccollicutt/mtr/pkg/parser"
)

// MinLinesEngine implements RuleEngine for min_lines rules.
// Empty tracks count as zero lines.
type MinLinesEngine struct {
	name        string
	description string
	minLines    int
	tracks      trackFilter

	mu    sync.Mutex
	stats RuleStats
}

// NewMinLinesEngine creates a new min_lines engine from a rule config.
func NewMinLinesEngine(rule *config.RuleConfig) (*MinLinesEngine, error) {
	if rule.RuleTypeEnum() != config.RuleTypeMinLines {
		return nil, fmt.Errorf("rule %q is not a min_lines rule", rule.Name)
	}
	if rule.MinLines <= 0 {
		return nil, fmt.Errorf("rule %q has no min_lines", rule.Name)
	}

	return &MinLinesEngine{
		name:        rule.Name,
		description: rule.Description,
		minLines:    rule.MinLines,
		tracks:      newTrackFilter(rule.Tracks),
		stats:       RuleStats{StartTime: time.Now()},
	}, nil
}

// Name returns the rule name.
func (e *MinLinesEngine) Name() string {
	return e.name
}

// Type returns the rule type.
func (e *MinLinesEngine) Type() RuleType {
	return RuleTypeMinLines
}

// Process counts the line.
func (e *MinLinesEngine) Process(_ context.Context, line *parser.TimedLine) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.LinesProcessed++
	if e.tracks.match(line.Track) {
		e.stats.LinesMatched++
	}
	return nil
}

// Finalize checks the line count of every selected track.
func (e *MinLinesEngine) Finalize(_ context.Context, tracks []*TrackSummary) (*RuleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.EndTime = time.Now()

	result := &RuleResult{
		RuleName:    e.name,
		RuleType:    RuleTypeMinLines,
		Description: e.description,
		Issues:      make([]Issue, 0),
		Stats:       e.stats,
	}

	for _, t := range tracks {
		if !e.tracks.match(t.Index) || t.Lines >= e.minLines {
			continue
		}
		result.Issues = append(result.Issues, Issue{
			Type: IssueTypeTooFewLines,
			Description: fmt.Sprintf("Track %d has %d lines (minimum required: %d)",
				t.Index, t.Lines, e.minLines),
			Context: IssueContext{
				Source: t.Source,
				Track:  t.Index,
				Limit:  int64(e.minLines),
				Actual: int64(t.Lines),
			},
		})
	}

	return result, nil
}

// Reset clears internal state for reuse.
func (e *MinLinesEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats = RuleStats{StartTime: time.Now()}
}

package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ccollicutt/mtr/pkg/config"
	"github.com/ccollicutt/mtr/pkg/parser"
)

// DurationEngine implements RuleEngine for max_duration rules.
// It reports tracks whose last line lands after the allowed duration.
type DurationEngine struct {
	name          string
	description   string
	maxDurationMs int64
	tracks        trackFilter

	mu    sync.Mutex
	stats RuleStats
}

// NewDurationEngine creates a new duration engine from a rule config.
func NewDurationEngine(rule *config.RuleConfig) (*DurationEngine, error) {
	if rule.RuleTypeEnum() != config.RuleTypeMaxDuration {
		return nil, fmt.Errorf("rule %q is not a max_duration rule", rule.Name)
	}
	if rule.MaxDurationMs <= 0 {
		return nil, fmt.Errorf("rule %q has no max_duration_ms", rule.Name)
	}

	return &DurationEngine{
		name:          rule.Name,
		description:   rule.Description,
		maxDurationMs: rule.MaxDurationMs,
		tracks:        newTrackFilter(rule.Tracks),
		stats:         RuleStats{StartTime: time.Now()},
	}, nil
}

// Name returns the rule name.
func (e *DurationEngine) Name() string {
	return e.name
}

// Type returns the rule type.
func (e *DurationEngine) Type() RuleType {
	return RuleTypeMaxDuration
}

// Process counts the line. Durations are checked against track summaries.
func (e *DurationEngine) Process(_ context.Context, line *parser.TimedLine) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.LinesProcessed++
	if e.tracks.match(line.Track) {
		e.stats.LinesMatched++
	}
	return nil
}

// Finalize checks the duration of every selected track.
func (e *DurationEngine) Finalize(_ context.Context, tracks []*TrackSummary) (*RuleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.EndTime = time.Now()

	result := &RuleResult{
		RuleName:    e.name,
		RuleType:    RuleTypeMaxDuration,
		Description: e.description,
		Issues:      make([]Issue, 0),
		Stats:       e.stats,
	}

	for _, t := range tracks {
		if !e.tracks.match(t.Index) || t.DurationMs <= e.maxDurationMs {
			continue
		}
		result.Issues = append(result.Issues, Issue{
			Type: IssueTypeDurationExceeded,
			Description: fmt.Sprintf("Track %d runs for %dms (max allowed: %dms)",
				t.Index, t.DurationMs, e.maxDurationMs),
			Context: IssueContext{
				Source: t.Source,
				Track:  t.Index,
				TimeMs: t.DurationMs,
				Limit:  e.maxDurationMs,
				Actual: t.DurationMs,
			},
		})
	}

	return result, nil
}

// Reset clears internal state for reuse.
func (e *DurationEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats = RuleStats{StartTime: time.Now()}
}

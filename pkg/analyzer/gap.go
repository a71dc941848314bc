package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ccollicutt/mtr/pkg/config"
	"github.com/ccollicutt/mtr/pkg/parser"
)

// GapEngine implements RuleEngine for max_gap rules.
// It reports every line whose delta exceeds the allowed gap.
type GapEngine struct {
	name        string
	description string
	maxGapMs    int64
	tracks      trackFilter

	// State
	mu     sync.Mutex
	issues []Issue
	stats  RuleStats
}

// NewGapEngine creates a new gap engine from a rule config.
func NewGapEngine(rule *config.RuleConfig) (*GapEngine, error) {
	if rule.RuleTypeEnum() != config.RuleTypeMaxGap {
		return nil, fmt.Errorf("rule %q is not a max_gap rule", rule.Name)
	}
	if rule.MaxGapMs <= 0 {
		return nil, fmt.Errorf("rule %q has no max_gap_ms", rule.Name)
	}

	return &GapEngine{
		name:        rule.Name,
		description: rule.Description,
		maxGapMs:    rule.MaxGapMs,
		tracks:      newTrackFilter(rule.Tracks),
		issues:      make([]Issue, 0),
		stats:       RuleStats{StartTime: time.Now()},
	}, nil
}

// Name returns the rule name.
func (e *GapEngine) Name() string {
	return e.name
}

// Type returns the rule type.
func (e *GapEngine) Type() RuleType {
	return RuleTypeMaxGap
}

// Process handles a single line.
func (e *GapEngine) Process(_ context.Context, line *parser.TimedLine) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.LinesProcessed++
	if !e.tracks.match(line.Track) {
		return nil
	}
	e.stats.LinesMatched++

	if line.DeltaMs > e.maxGapMs {
		e.issues = append(e.issues, Issue{
			Type: IssueTypeGapExceeded,
			Description: fmt.Sprintf("Gap of %dms before line at %dms (max allowed: %dms)",
				line.DeltaMs, line.TimeMs, e.maxGapMs),
			Context: IssueContext{
				Source: line.Source,
				Track:  line.Track,
				TimeMs: line.TimeMs,
				Limit:  e.maxGapMs,
				Actual: line.DeltaMs,
			},
		})
	}
	return nil
}

// Finalize completes analysis and returns detected issues.
func (e *GapEngine) Finalize(_ context.Context, _ []*TrackSummary) (*RuleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.EndTime = time.Now()

	return &RuleResult{
		RuleName:    e.name,
		RuleType:    RuleTypeMaxGap,
		Description: e.description,
		Issues:      append(make([]Issue, 0, len(e.issues)), e.issues...),
		Stats:       e.stats,
	}, nil
}

// Reset clears internal state for reuse.
func (e *GapEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.issues = make([]Issue, 0)
	e.stats = RuleStats{StartTime: time.Now()}
}

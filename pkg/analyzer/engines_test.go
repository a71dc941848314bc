package analyzer

import (
	"context"
	"testing"

	"github.com/ccollicutt/mtr/pkg/config"
	"github.com/ccollicutt/mtr/pkg/parser"
)

func TestNewEngines_WrongType(t *testing.T) {
	rule := &config.RuleConfig{Name: "test", Type: "min_lines", MinLines: 1}

	if _, err := NewGapEngine(rule); err == nil {
		t.Error("NewGapEngine() expected error for wrong type")
	}
	if _, err := NewDurationEngine(rule); err == nil {
		t.Error("NewDurationEngine() expected error for wrong type")
	}

	rule.Type = "max_gap"
	rule.MaxGapMs = 10
	if _, err := NewMinLinesEngine(rule); err == nil {
		t.Error("NewMinLinesEngine() expected error for wrong type")
	}
}

func TestNewEngines_MissingThreshold(t *testing.T) {
	tests := []struct {
		name string
		rule config.RuleConfig
		make func(*config.RuleConfig) error
	}{
		{"max_gap", config.RuleConfig{Name: "t", Type: "max_gap"}, func(r *config.RuleConfig) error {
			_, err := NewGapEngine(r)
			return err
		}},
		{"max_duration", config.RuleConfig{Name: "t", Type: "max_duration"}, func(r *config.RuleConfig) error {
			_, err := NewDurationEngine(r)
			return err
		}},
		{"min_lines", config.RuleConfig{Name: "t", Type: "min_lines"}, func(r *config.RuleConfig) error {
			_, err := NewMinLinesEngine(r)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.make(&tt.rule); err == nil {
				t.Error("expected error for missing threshold")
			}
		})
	}
}

func TestGapEngine(t *testing.T) {
	engine, err := NewGapEngine(&config.RuleConfig{Name: "gaps", Type: "max_gap", MaxGapMs: 500})
	if err != nil {
		t.Fatalf("NewGapEngine() error = %v", err)
	}

	if engine.Name() != "gaps" {
		t.Errorf("Name() = %q, want %q", engine.Name(), "gaps")
	}
	if engine.Type() != RuleTypeMaxGap {
		t.Errorf("Type() = %v, want %v", engine.Type(), RuleTypeMaxGap)
	}

	ctx := context.Background()
	lines := []parser.TimedLine{
		{Source: "s", Track: 0, TimeMs: 0, DeltaMs: 0},
		{Source: "s", Track: 0, TimeMs: 500, DeltaMs: 500},
		{Source: "s", Track: 0, TimeMs: 1200, DeltaMs: 700},
		{Source: "s", Track: 1, TimeMs: 900, DeltaMs: 900},
	}
	for i := range lines {
		if err := engine.Process(ctx, &lines[i]); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
	}

	result, err := engine.Finalize(ctx, nil)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if len(result.Issues) != 2 {
		t.Fatalf("Issues = %d, want 2", len(result.Issues))
	}
	issue := result.Issues[0]
	if issue.Type != IssueTypeGapExceeded {
		t.Errorf("Type = %v, want %v", issue.Type, IssueTypeGapExceeded)
	}
	if issue.Context.Track != 0 || issue.Context.TimeMs != 1200 || issue.Context.Actual != 700 || issue.Context.Limit != 500 {
		t.Errorf("Context = %+v", issue.Context)
	}
	if result.Stats.LinesProcessed != 4 || result.Stats.LinesMatched != 4 {
		t.Errorf("Stats = %+v, want 4 processed and matched", result.Stats)
	}
}

func TestGapEngine_TrackFilter(t *testing.T) {
	engine, err := NewGapEngine(&config.RuleConfig{Name: "gaps", Type: "max_gap", MaxGapMs: 500, Tracks: []int{1}})
	if err != nil {
		t.Fatalf("NewGapEngine() error = %v", err)
	}

	ctx := context.Background()
	for _, line := range []parser.TimedLine{
		{Track: 0, TimeMs: 900, DeltaMs: 900},
		{Track: 1, TimeMs: 100, DeltaMs: 100},
	} {
		if err := engine.Process(ctx, &line); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
	}

	result, err := engine.Finalize(ctx, nil)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if len(result.Issues) != 0 {
		t.Errorf("Issues = %d, want 0 (track 0 not selected)", len(result.Issues))
	}
	if result.Stats.LinesMatched != 1 {
		t.Errorf("LinesMatched = %d, want 1", result.Stats.LinesMatched)
	}
}

func TestGapEngine_Reset(t *testing.T) {
	engine, err := NewGapEngine(&config.RuleConfig{Name: "gaps", Type: "max_gap", MaxGapMs: 1})
	if err != nil {
		t.Fatalf("NewGapEngine() error = %v", err)
	}

	ctx := context.Background()
	if err := engine.Process(ctx, &parser.TimedLine{DeltaMs: 10}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	engine.Reset()

	result, err := engine.Finalize(ctx, nil)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if len(result.Issues) != 0 {
		t.Errorf("Issues = %d after Reset, want 0", len(result.Issues))
	}
	if result.Stats.LinesProcessed != 0 {
		t.Errorf("LinesProcessed = %d after Reset, want 0", result.Stats.LinesProcessed)
	}
}

func TestDurationEngine(t *testing.T) {
	engine, err := NewDurationEngine(&config.RuleConfig{Name: "length", Type: "max_duration", MaxDurationMs: 1000, Tracks: []int{0, 2}})
	if err != nil {
		t.Fatalf("NewDurationEngine() error = %v", err)
	}
	if engine.Type() != RuleTypeMaxDuration {
		t.Errorf("Type() = %v, want %v", engine.Type(), RuleTypeMaxDuration)
	}

	tracks := []*TrackSummary{
		{Source: "s", Index: 0, Lines: 3, DurationMs: 1000},
		{Source: "s", Index: 1, Lines: 3, DurationMs: 5000},
		{Source: "s", Index: 2, Lines: 3, DurationMs: 1001},
	}

	result, err := engine.Finalize(context.Background(), tracks)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if len(result.Issues) != 1 {
		t.Fatalf("Issues = %d, want 1", len(result.Issues))
	}
	if got := result.Issues[0].Context; got.Track != 2 || got.Actual != 1001 || got.Limit != 1000 {
		t.Errorf("Context = %+v", got)
	}
	if result.Issues[0].Type != IssueTypeDurationExceeded {
		t.Errorf("Type = %v, want %v", result.Issues[0].Type, IssueTypeDurationExceeded)
	}
}

func TestMinLinesEngine(t *testing.T) {
	engine, err := NewMinLinesEngine(&config.RuleConfig{Name: "density", Type: "min_lines", MinLines: 2})
	if err != nil {
		t.Fatalf("NewMinLinesEngine() error = %v", err)
	}
	if engine.Type() != RuleTypeMinLines {
		t.Errorf("Type() = %v, want %v", engine.Type(), RuleTypeMinLines)
	}

	tracks := []*TrackSummary{
		{Source: "s", Index: 0, Lines: 2},
		{Source: "s", Index: 1},
		{Source: "s", Index: 2, Lines: 1},
	}

	result, err := engine.Finalize(context.Background(), tracks)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if len(result.Issues) != 2 {
		t.Fatalf("Issues = %d, want 2", len(result.Issues))
	}
	if result.Issues[0].Context.Track != 1 || result.Issues[0].Context.Actual != 0 {
		t.Errorf("Issues[0].Context = %+v", result.Issues[0].Context)
	}
	if result.Issues[1].Type != IssueTypeTooFewLines {
		t.Errorf("Type = %v, want %v", result.Issues[1].Type, IssueTypeTooFewLines)
	}
}

func TestRuleResult_HasIssues(t *testing.T) {
	if (&RuleResult{}).HasIssues() {
		t.Error("HasIssues() = true for no issues")
	}
	if !(&RuleResult{Issues: []Issue{{}}}).HasIssues() {
		t.Error("HasIssues() = false with one issue")
	}
}

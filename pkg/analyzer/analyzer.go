package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ccollicutt/mtr/pkg/config"
	"github.com/ccollicutt/mtr/pkg/parser"
)

// Analyzer walks every track of one or more scripts and runs the configured
// rules over them.
type Analyzer struct {
	cfg     *config.Config
	engines []RuleEngine

	// Options
	ruleFilter map[string]bool // nil means all rules
	parserOpts []parser.Option
	logger     *slog.Logger
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithRuleFilter limits analysis to the specified rules.
func WithRuleFilter(rules []string) AnalyzerOption {
	return func(a *Analyzer) {
		if len(rules) > 0 {
			a.ruleFilter = make(map[string]bool)
			for _, r := range rules {
				a.ruleFilter[r] = true
			}
		}
	}
}

// WithLogger sets the logger for progress and parser diagnostics.
func WithLogger(l *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAnalyzer creates a new analyzer from configuration. A configuration
// without rules still produces track summaries.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		cfg:     cfg,
		engines: make([]RuleEngine, 0, len(cfg.Rules)),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.parserOpts = append(cfg.Parser.Options(), parser.WithLogger(a.logger))

	for i := range cfg.Rules {
		rule := &cfg.Rules[i]

		if a.ruleFilter != nil && !a.ruleFilter[rule.Name] {
			continue
		}

		engine, err := createEngine(rule)
		if err != nil {
			return nil, fmt.Errorf("creating engine for rule %q: %w", rule.Name, err)
		}
		a.engines = append(a.engines, engine)
	}

	if a.ruleFilter != nil && len(a.engines) == 0 {
		return nil, fmt.Errorf("no rules to execute (check --rule filter)")
	}

	return a, nil
}

// createEngine creates the appropriate rule engine based on rule type.
func createEngine(rule *config.RuleConfig) (RuleEngine, error) {
	switch rule.RuleTypeEnum() {
	case config.RuleTypeMaxGap:
		return NewGapEngine(rule)
	case config.RuleTypeMaxDuration:
		return NewDurationEngine(rule)
	case config.RuleTypeMinLines:
		return NewMinLinesEngine(rule)
	default:
		return nil, fmt.Errorf("unknown rule type: %s", rule.Type)
	}
}

// Script is a named stream to analyze.
type Script struct {
	Name   string
	Stream parser.Stream
}

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	// Tracks summarizes every track walked, in script then track order.
	Tracks []*TrackSummary

	// Results contains findings from each rule.
	Results []*RuleResult

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// Sources lists the scripts that were analyzed.
	Sources []string

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time

	// LinesProcessed is the total number of data lines examined.
	LinesProcessed int
}

// TotalIssues returns the total number of issues across all rules.
func (r *AnalysisResult) TotalIssues() int {
	total := 0
	for _, result := range r.Results {
		total += len(result.Issues)
	}
	return total
}

// RulesWithIssues returns the count of rules that detected issues.
func (r *AnalysisResult) RulesWithIssues() int {
	count := 0
	for _, result := range r.Results {
		if result.HasIssues() {
			count++
		}
	}
	return count
}

// Analyze walks every track of every script and returns the results.
func (a *Analyzer) Analyze(ctx context.Context, scripts ...Script) (*AnalysisResult, error) {
	result := &AnalysisResult{
		Tracks:  make([]*TrackSummary, 0),
		Results: make([]*RuleResult, 0, len(a.engines)),
		Metadata: AnalysisMetadata{
			StartTime: time.Now(),
		},
	}

	for _, engine := range a.engines {
		engine.Reset()
	}

	for _, script := range scripts {
		if err := a.walk(ctx, result, script); err != nil {
			return nil, err
		}
		result.Metadata.Sources = append(result.Metadata.Sources, script.Name)
	}

	for _, engine := range a.engines {
		ruleResult, err := engine.Finalize(ctx, result.Tracks)
		if err != nil {
			return nil, fmt.Errorf("finalizing rule %q: %w", engine.Name(), err)
		}
		result.Results = append(result.Results, ruleResult)
	}

	result.Metadata.EndTime = time.Now()

	return result, nil
}

// AnalyzeFiles opens each path and analyzes them together.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) (*AnalysisResult, error) {
	scripts := make([]Script, 0, len(paths))
	for _, path := range paths {
		f, err := parser.OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		scripts = append(scripts, Script{Name: path, Stream: f})
	}
	return a.Analyze(ctx, scripts...)
}

// walk seeks to the start of each track in turn and reads it to its end.
func (a *Analyzer) walk(ctx context.Context, result *AnalysisResult, script Script) error {
	p := parser.New(a.parserOpts...)

	// An unreachable first line only means track 0 is empty or malformed;
	// the index is still built.
	if err := p.Attach(script.Stream, 0); err != nil && !errors.Is(err, parser.ErrSeekTimeUnreachable) {
		return fmt.Errorf("indexing %s: %w", script.Name, err)
	}

	for i, track := range p.Tracks() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		summary := &TrackSummary{Source: script.Name, Index: i, Header: track.Header}
		result.Tracks = append(result.Tracks, summary)

		if err := p.Seek(i, 0); err != nil {
			if cause := p.Err(); cause != nil {
				summary.Error = cause.Error()
			}
			a.logger.Debug("track has no lines", "source", script.Name, "track", i)
			continue
		}

		for p.HasNextLine() {
			line, _ := p.Line()
			// A header without a preceding end marker starts the next
			// track, which gets its own pass.
			if line.Track != i {
				break
			}
			line.Source = script.Name

			summary.Lines++
			summary.DurationMs = line.TimeMs
			summary.MaxGapMs = max(summary.MaxGapMs, line.DeltaMs)
			summary.MaxArgs = max(summary.MaxArgs, len(line.Args))
			result.Metadata.LinesProcessed++

			for _, engine := range a.engines {
				if err := engine.Process(ctx, &line); err != nil {
					return fmt.Errorf("processing line with rule %q: %w", engine.Name(), err)
				}
			}
			p.Pop()
		}

		if err := p.Err(); err != nil {
			summary.Error = err.Error()
			a.logger.Warn("track stopped early", "source", script.Name, "track", i, "error", err)
		}
	}

	return nil
}

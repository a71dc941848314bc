package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mtr/pkg/analyzer"
	"github.com/ccollicutt/mtr/pkg/config"
	"github.com/ccollicutt/mtr/pkg/output"
	"github.com/ccollicutt/mtr/pkg/webhook"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Output  string
	Rules   []string
	Verbose bool
	Quiet   bool
	Lint    bool
	NoColor bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(g *Globals) *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [script]...",
		Short: "Check script tracks against timing rules",
		Long: `Walk every track of the given scripts, summarize each track, and check
the rules defined in the configuration file.

Rule types:
  - max_gap       a line whose delta exceeds max_gap_ms
  - max_duration  a track that runs longer than max_duration_ms
  - min_lines     a track with fewer than min_lines data lines

Scripts default to the sources listed in the configuration file.

Exit codes:
  0 - No issues detected
  1 - Issues detected
  2 - Configuration or runtime error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, g, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run specific rule(s) only (can be repeated)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show track summaries and rule statistics")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.Lint, "lint", false, "Also lint each script and include the findings")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, g *Globals, args []string, opts *AnalyzeOptions) error {
	ctx := commandContext(cmd)

	cfg, logger, err := g.setup(cmd)
	if err != nil {
		return err
	}

	paths, err := scriptPaths(args, cfg.Sources)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
		NoColor: opts.NoColor || !colorEnabled(cmd.OutOrStdout()),
	})
	if err != nil {
		return err
	}

	var analyzerOpts []analyzer.AnalyzerOption
	if len(opts.Rules) > 0 {
		analyzerOpts = append(analyzerOpts, analyzer.WithRuleFilter(opts.Rules))
	}
	analyzerOpts = append(analyzerOpts, analyzer.WithLogger(logger))

	a, err := analyzer.NewAnalyzer(cfg, analyzerOpts...)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	result, err := a.AnalyzeFiles(ctx, paths)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, g.ConfigPath)

	if opts.Lint {
		linter, err := newLinter(cfg, nil)
		if err != nil {
			return err
		}
		for _, path := range paths {
			res, err := linter.LintFile(ctx, path)
			if err != nil {
				return err
			}
			report.AddLint(res)
		}
	}

	logger.Info("analysis complete",
		"run_id", report.RunID,
		"tracks", report.Summary.Tracks,
		"issues", report.Summary.TotalIssues)

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Webhook failures are logged but don't fail the analysis.
	sendWebhooks(ctx, logger, cfg, opts, report)

	if report.HasIssues() {
		ExitCode = 1
	}

	return nil
}

// sendWebhooks sends the report to all configured webhooks.
func sendWebhooks(ctx context.Context, logger *slog.Logger, cfg *config.Config, opts *AnalyzeOptions, report *output.Report) {
	webhooks := collectWebhooks(cfg, opts)

	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, report.HasIssues()) {
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
			Retries: wh.Retries,
			Backoff: webhookBackoff,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			logger.Info("webhook sent", "webhook", name, "status", resp.StatusCode, "attempts", resp.Attempts, "duration", resp.Duration)
		} else {
			logger.Error("webhook failed", "webhook", name, "attempts", resp.Attempts, "error", resp.Error)
		}
	}
}

// webhookBackoff is the pause between webhook retries.
var webhookBackoff = 500 * time.Millisecond

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)

	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnIssues
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire based on trigger and issues.
func shouldFireWebhook(trigger config.WebhookTrigger, hasIssues bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasIssues
	}
}

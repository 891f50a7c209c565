// Package runtime executes cleanup runs for the CLI and Lambda entrypoints.
package runtime

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/isometry/gh-cleanowners-app/internal/cleanup"
	"github.com/isometry/gh-cleanowners-app/internal/helpers"
	"github.com/isometry/gh-cleanowners-app/internal/models"
)

// Runner performs a single cleanup run.
type Runner interface {
	Run(ctx context.Context) (*cleanup.Report, error)
}

// ReportWriter persists the report of a run.
type ReportWriter interface {
	Write(r *cleanup.Report) error
}

// RateLimitLogger logs the remaining API budget after a run.
type RateLimitLogger interface {
	LogRateLimits(ctx context.Context)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the Runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithReportWriter writes the report of every run through w.
func WithReportWriter(w ReportWriter) Option {
	return func(r *Runtime) {
		r.reportWriter = w
	}
}

// WithRateLimitLogger logs rate limits after every run.
func WithRateLimitLogger(l RateLimitLogger) Option {
	return func(r *Runtime) {
		r.rateLimits = l
	}
}

// WithStatsOutput sets where the run statistics are printed.
func WithStatsOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.stats = w
	}
}

// Runtime wraps a Runner with the reporting extensions shared by every entrypoint.
type Runtime struct {
	runner       Runner
	reportWriter ReportWriter
	rateLimits   RateLimitLogger
	stats        io.Writer
	logger       *slog.Logger
}

// NewRuntime creates a new runtime instance
func NewRuntime(runner Runner, opts ...Option) *Runtime {
	_inst := &Runtime{runner: runner, stats: os.Stdout}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst
}

// Run executes one cleanup run, prints its statistics and writes its report.
// A report write failure is logged and does not fail the run.
func (r *Runtime) Run(ctx context.Context) (*cleanup.Report, error) {
	report, err := r.runner.Run(ctx)
	if report != nil {
		cleanup.PrintStats(r.stats, report.Stats)
		r.extensions(ctx, report)
	}
	return report, err
}

// Summary is the Lambda response of a run.
type Summary struct {
	EventID      string                `json:"eventId,omitempty"`
	DryRun       bool                  `json:"dryRun"`
	Stats        cleanup.RunStatistics `json:"stats"`
	PullRequests []string              `json:"pullRequests"`
	Failed       []string              `json:"failed,omitempty"`
}

// LambdaForEvent is the Lambda handler for scheduled EventBridge invocations.
func (r *Runtime) LambdaForEvent(ctx context.Context, event models.Event) (*Summary, error) {
	r.logger.Info("received event", slog.String("id", event.ID), slog.Bool("scheduled", models.IsScheduled(event)))

	report, err := r.Run(ctx)
	if err != nil {
		r.logger.Error("run failed", slog.String("id", event.ID), slog.Any("error", err))
		return nil, err
	}

	summary := &Summary{
		EventID:      event.ID,
		DryRun:       report.DryRun,
		Stats:        report.Stats,
		PullRequests: make([]string, 0, len(report.PullRequests)),
	}
	for _, pr := range report.PullRequests {
		summary.PullRequests = append(summary.PullRequests, pr.HTMLURL)
	}
	for _, f := range report.Failed {
		summary.Failed = append(summary.Failed, f.Repository)
	}
	return summary, nil
}

// extensions runs the post-run steps.
func (r *Runtime) extensions(ctx context.Context, report *cleanup.Report) {
	if r.reportWriter != nil {
		if err := r.reportWriter.Write(report); err != nil {
			r.logger.Error("failed to write report", slog.Any("error", err))
		}
	}
	if r.rateLimits != nil {
		r.rateLimits.LogRateLimits(ctx)
	}
}

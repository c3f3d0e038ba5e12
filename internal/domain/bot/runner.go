// Package bot runs the report engine for one webhook delivery or one CLI
// invocation.
package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"crosstab/internal/core/apperror"
	appctx "crosstab/internal/core/context"
	"crosstab/internal/domain/form"
	"crosstab/internal/domain/reports"
	"crosstab/internal/domain/runs"
	"crosstab/pkg/logger"
)

var tracer = otel.Tracer("crosstab/bot")

// ApprovalChoice is posted when the bot picks up a task.
const ApprovalChoice = "approved"

// Platform is the task platform bound to one access token.
type Platform interface {
	reports.Store
	Task(ctx context.Context, taskID int) (*form.Task, error)
}

// Connector opens a Platform. An empty token means the connector must
// authenticate with its own credentials.
type Connector interface {
	Connect(ctx context.Context, accessToken string) (Platform, error)
}

// Config holds the run-level switches.
type Config struct {
	AllowForms      []int
	ApproveOnRun    bool
	ApprovalComment string
}

// Allowed reports whether tasks of formID may be processed. An empty list
// allows nothing.
func (c Config) Allowed(formID int) bool {
	return slices.Contains(c.AllowForms, formID)
}

// Job is one task to process.
type Job struct {
	TaskID int
	// Task is the webhook payload; nil makes the runner fetch it.
	Task        *form.Task
	AccessToken string
	Session     appctx.Session
}

// Journal records finished runs.
type Journal interface {
	Record(ctx context.Context, run *runs.Run)
}

// ReportProcessor rebuilds the report tables of a task.
type ReportProcessor interface {
	Process(ctx context.Context, task *form.Task, schema *form.Form) (*reports.RunReport, error)
}

// ProcessorFactory binds the report engine to a platform connection.
type ProcessorFactory func(store reports.Store) ReportProcessor

// Runner processes jobs.
type Runner struct {
	cfg       Config
	connector Connector
	processor ProcessorFactory
	journal   Journal
}

// NewRunner creates a runner. journal may be nil.
func NewRunner(cfg Config, connector Connector, processor ProcessorFactory, journal Journal) *Runner {
	return &Runner{cfg: cfg, connector: connector, processor: processor, journal: journal}
}

// NewReportsFactory returns a ProcessorFactory over reports.Service.
func NewReportsFactory(cfg reports.Config) ProcessorFactory {
	return func(store reports.Store) ReportProcessor {
		return reports.NewService(store, cfg)
	}
}

// Run processes job to completion. Failures and panics are logged and
// journaled; the returned Run is never nil.
func (r *Runner) Run(ctx context.Context, job Job) (run *runs.Run) {
	sess := job.Session
	sess.TaskID = job.TaskID
	ctx = appctx.WithSession(ctx, &sess)

	ctx, span := tracer.Start(ctx, "bot.Run")
	span.SetAttributes(
		attribute.Int("task.id", job.TaskID),
		attribute.String("session.id", sess.SessionID),
	)
	defer span.End()

	run = runs.NewRun(sess.SessionID, job.TaskID, sess.Retry)
	var formID int

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error(ctx, "report run panicked", "panic", rec, "stack", string(debug.Stack()))
			run.Finish(formID, nil, apperror.NewInternal(fmt.Errorf("panic: %v", rec)))
		}
		if run.Error != "" {
			span.SetStatus(codes.Error, run.Error)
		}
		if r.journal != nil {
			r.journal.Record(ctx, run)
		}
	}()

	logger.Info(ctx, "report run started")

	platform, err := r.connector.Connect(ctx, job.AccessToken)
	if err != nil {
		r.fail(ctx, run, formID, apperror.NewUpstream("connect", err))
		return run
	}

	task := job.Task
	if task == nil {
		task, err = platform.Task(ctx, job.TaskID)
		if err != nil {
			r.fail(ctx, run, formID, apperror.NewUpstream("get task", err))
			return run
		}
	}
	formID = task.FormID
	span.SetAttributes(attribute.Int("form.id", formID))

	if !r.cfg.Allowed(formID) {
		logger.Info(ctx, "form is not allowed, skipping", "form_id", formID)
		run.Skip(formID)
		return run
	}

	schema, err := platform.Form(ctx, formID)
	if err != nil {
		r.fail(ctx, run, formID, apperror.NewUpstream("get form", err))
		return run
	}

	if r.cfg.ApproveOnRun {
		comment := form.Comment{Text: r.cfg.ApprovalComment, ApprovalChoice: ApprovalChoice}
		if err := platform.CommentTask(ctx, task.ID, comment); err != nil {
			logger.Warn(ctx, "failed to approve task", "error", err)
		}
	}

	report, err := r.processor(platform).Process(ctx, task, schema)
	run.Finish(formID, report, err)
	if err != nil {
		logger.Error(ctx, "report run failed", "error", err)
		return run
	}

	logger.Info(ctx, "report run finished",
		"status", run.Status,
		"tables", run.TablesTotal,
		"failed", run.TablesFailed,
		"duration", run.Duration())
	return run
}

func (r *Runner) fail(ctx context.Context, run *runs.Run, formID int, err error) {
	logger.Error(ctx, "report run failed", "error", err)
	run.Finish(formID, nil, err)
}

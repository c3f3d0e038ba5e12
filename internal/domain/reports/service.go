package reports

import (
	"context"
	"fmt"

	"crosstab/internal/core/apperror"
	"crosstab/internal/domain/filter"
	"crosstab/internal/domain/form"
	"crosstab/pkg/logger"
)

// Service rebuilds every report table of a task.
type Service struct {
	store     Store
	cfg       Config
	cacheSize int
}

// NewService creates a new reports service.
func NewService(store Store, cfg Config) *Service {
	return &Service{store: store, cfg: cfg.withDefaults(), cacheSize: DefaultCacheSize}
}

// Process builds all report tables declared on the task's form and publishes
// the ones that succeeded. Table failures are reported in the RunReport;
// the returned error is set only when publishing failed.
func (s *Service) Process(ctx context.Context, task *form.Task, schema *form.Form) (*RunReport, error) {
	report := &RunReport{TaskID: task.ID}
	task.Annotate(schema)

	var rules map[string][]filter.Rule
	if s.cfg.FiltersCode != "" {
		rules = filter.Discover(task.FlatFields(), s.cfg.FiltersCode)
	}

	specs, skipped := DiscoverTables(schema.FlatFields())
	for _, f := range skipped {
		logger.Warn(ctx, "report table names no source form", "field_id", f.ID, "code", f.Code())
	}
	if len(specs) == 0 {
		logger.Info(ctx, "no report tables on form", "form_id", schema.ID)
		return report, nil
	}

	store, err := NewCachingStore(s.store, s.cacheSize)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	builder := NewBuilder(s.cfg, store)

	for _, spec := range specs {
		res := builder.Build(ctx, spec, rules[spec.Code])
		report.Tables = append(report.Tables, res)
		s.logResult(ctx, res)

		if apperror.IsCode(res.Err, apperror.CodeConfiguration) {
			s.notify(ctx, task.ID, res)
		}
	}

	if err := NewPublisher(store).Publish(ctx, task, report.Ready()); err != nil {
		return report, err
	}
	report.Published = len(report.Ready()) > 0

	logger.Info(ctx, "report tables processed",
		"task_id", task.ID,
		"tables", len(report.Tables),
		"failed", len(report.Failed()),
		"warnings", report.WarningCount())
	return report, nil
}

func (s *Service) logResult(ctx context.Context, res *TableResult) {
	for _, w := range res.Warnings {
		logger.Warn(ctx, w.Message, "code", w.Code, "details", w.Details)
	}
	if res.Err != nil {
		logger.Error(ctx, "report table aborted",
			"table", res.Code,
			"stage", string(res.Stage),
			"error", res.Err)
		return
	}
	logger.Debug(ctx, "report table built", "table", res.Code, "rows", len(res.Table.Rows))
}

// notify tells the task owner why a table was left untouched.
func (s *Service) notify(ctx context.Context, taskID int, res *TableResult) {
	msg := res.Err.Error()
	if appErr, ok := apperror.AsAppError(res.Err); ok {
		msg = appErr.Message
	}
	text := fmt.Sprintf("Report table %s was not updated: %s", res.Code, msg)
	if err := s.store.CommentTask(ctx, taskID, form.Comment{Text: text}); err != nil {
		logger.Error(ctx, "failed to post configuration error", "table", res.Code, "error", err)
	}
}

package runs

import (
	"context"
	"fmt"

	"crosstab/internal/core/apperror"
	"crosstab/internal/core/id"
	"crosstab/pkg/logger"
)

// Paging bounds of List.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Service records and lists report runs.
type Service struct {
	repo Repository
}

// NewService creates a new runs service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores a finished run. A journal failure is logged and never fails
// the run itself.
func (s *Service) Record(ctx context.Context, run *Run) {
	if err := s.repo.Save(ctx, run); err != nil {
		logger.Error(ctx, "failed to record run", "run_id", run.ID, "error", err)
		return
	}
	logger.Info(ctx, "run recorded",
		"run_id", run.ID,
		"status", run.Status,
		"tables", run.TablesTotal,
		"failed", run.TablesFailed,
		"duration", run.Duration())
}

// Get returns a run with its table outcomes.
func (s *Service) Get(ctx context.Context, runID id.ID) (*Run, error) {
	run, err := s.repo.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns runs, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Run, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		return nil, apperror.NewValidation("offset must not be negative").WithDetail("field", "offset")
	}
	switch filter.Status {
	case "", StatusSucceeded, StatusPartial, StatusFailed, StatusSkipped:
	default:
		return nil, apperror.NewValidation(fmt.Sprintf("unknown status %q", filter.Status)).WithDetail("field", "status")
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return items, nil
}

package runs

import (
	"context"

	"crosstab/internal/core/id"
)

// ListFilter selects journal entries, newest first.
type ListFilter struct {
	TaskID int
	Status Status
	Limit  int
	Offset int
}

// Repository stores journal entries.
type Repository interface {
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, runID id.ID) (*Run, error)
	List(ctx context.Context, filter ListFilter) ([]Run, error)
}

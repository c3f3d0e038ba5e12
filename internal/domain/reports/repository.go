package reports

import (
	"context"

	"crosstab/internal/domain/form"
)

// Store is the task platform as seen by the report engine.
type Store interface {
	Form(ctx context.Context, formID int) (*form.Form, error)
	Registry(ctx context.Context, formID int) (*form.Registry, error)
	Catalog(ctx context.Context, catalogID int) (*form.Catalog, error)
	Contacts(ctx context.Context) (*form.Contacts, error)
	// CommentTask posts a comment, optionally updating field values.
	CommentTask(ctx context.Context, taskID int, comment form.Comment) error
}

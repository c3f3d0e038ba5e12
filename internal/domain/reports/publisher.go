package reports

import (
	"context"

	"crosstab/internal/core/apperror"
	"crosstab/internal/domain/form"
)

// Publisher replaces report table contents on the task in two comments: the
// first deletes every existing row of all tables, the second writes the new
// rows. The phases are not atomic; a failure between them leaves the tables
// empty until the next run.
type Publisher struct {
	store Store
}

// NewPublisher creates a publisher.
func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Publish replaces the rows of tables on task.
func (p *Publisher) Publish(ctx context.Context, task *form.Task, tables []*Table) error {
	if len(tables) == 0 {
		return nil
	}

	current := task.FlatFields()
	deletes := make([]form.Field, 0, len(tables))
	write := make([]form.Field, 0, len(tables))
	for _, t := range tables {
		deletes = append(deletes, form.Field{ID: t.FieldID, Value: deletedRows(current, t.FieldID)})
		write = append(write, form.Field{ID: t.FieldID, Value: t.TableRows()})
	}

	if err := p.store.CommentTask(ctx, task.ID, form.Comment{FieldUpdates: deletes}); err != nil {
		return apperror.NewUpstream("clear report tables", err).WithDetail("task_id", task.ID)
	}
	if err := p.store.CommentTask(ctx, task.ID, form.Comment{FieldUpdates: write}); err != nil {
		return apperror.NewUpstream("write report tables", err).WithDetail("task_id", task.ID)
	}
	return nil
}

func deletedRows(fields []form.Field, tableID form.FieldID) form.Table {
	rows := form.Table{}
	f, ok := form.ByID(fields, tableID)
	if !ok {
		return rows
	}
	existing, _ := f.Value.(form.Table)
	for _, r := range existing {
		rows = append(rows, form.TableRow{RowID: r.RowID, Delete: true})
	}
	return rows
}

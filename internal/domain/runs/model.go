// Package runs keeps a journal of report runs: one entry per processed
// webhook delivery or CLI invocation, with the outcome of every table.
package runs

import (
	"time"

	"crosstab/internal/core/id"
	"crosstab/internal/domain/reports"
)

// Status is the outcome of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	// StatusPartial means at least one table was aborted.
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
	// StatusSkipped means the task's form is not allowed.
	StatusSkipped Status = "skipped"
)

// Run is one journal entry.
type Run struct {
	ID           id.ID     `db:"id" json:"id"`
	SessionID    string    `db:"session_id" json:"sessionId"`
	TaskID       int       `db:"task_id" json:"taskId"`
	FormID       int       `db:"form_id" json:"formId"`
	Retry        string    `db:"retry" json:"retry,omitempty"`
	Status       Status    `db:"status" json:"status"`
	TablesTotal  int       `db:"tables_total" json:"tablesTotal"`
	TablesFailed int       `db:"tables_failed" json:"tablesFailed"`
	Warnings     int       `db:"warnings" json:"warnings"`
	Error        string    `db:"error" json:"error,omitempty"`
	StartedAt    time.Time `db:"started_at" json:"startedAt"`
	FinishedAt   time.Time `db:"finished_at" json:"finishedAt"`

	Tables []TableOutcome `db:"-" json:"tables,omitempty"`
}

// TableOutcome is the result of one report table within a run.
type TableOutcome struct {
	FieldID  int    `json:"fieldId"`
	Code     string `json:"code"`
	FormID   int    `json:"formId"`
	Stage    string `json:"stage"`
	Rows     int    `json:"rows"`
	Warnings int    `json:"warnings"`
	Error    string `json:"error,omitempty"`
}

// NewRun starts a journal entry.
func NewRun(sessionID string, taskID int, retry string) *Run {
	return &Run{
		ID:        id.New(),
		SessionID: sessionID,
		TaskID:    taskID,
		Retry:     retry,
		StartedAt: time.Now().UTC(),
	}
}

// Skip finishes the run without processing.
func (r *Run) Skip(formID int) {
	r.FormID = formID
	r.Status = StatusSkipped
	r.FinishedAt = time.Now().UTC()
}

// Finish records the report and the run-level error, if any.
func (r *Run) Finish(formID int, report *reports.RunReport, err error) {
	r.FormID = formID
	r.FinishedAt = time.Now().UTC()

	if report != nil {
		r.TablesTotal = len(report.Tables)
		r.TablesFailed = len(report.Failed())
		r.Warnings = report.WarningCount()
		r.Tables = make([]TableOutcome, 0, len(report.Tables))
		for _, t := range report.Tables {
			r.Tables = append(r.Tables, outcome(t))
		}
	}

	switch {
	case err != nil:
		r.Status = StatusFailed
		r.Error = err.Error()
	case r.TablesFailed > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusSucceeded
	}
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func outcome(t *reports.TableResult) TableOutcome {
	o := TableOutcome{
		FieldID:  t.FieldID,
		Code:     t.Code,
		FormID:   t.FormID,
		Stage:    string(t.Stage),
		Warnings: len(t.Warnings),
	}
	if t.Table != nil {
		o.Rows = len(t.Table.Rows)
	}
	if t.Err != nil {
		o.Error = t.Err.Error()
	}
	return o
}

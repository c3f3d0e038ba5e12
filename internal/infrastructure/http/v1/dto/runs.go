package dto

import (
	"time"

	"crosstab/internal/domain/runs"
)

// ListRunsRequest holds query parameters of GET /api/v1/runs.
type ListRunsRequest struct {
	TaskID int    `form:"taskId" binding:"omitempty,min=1"`
	Status string `form:"status" binding:"omitempty,oneof=succeeded partial failed skipped"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// Filter converts the request into a journal filter.
func (r ListRunsRequest) Filter() runs.ListFilter {
	return runs.ListFilter{
		TaskID: r.TaskID,
		Status: runs.Status(r.Status),
		Limit:  r.Limit,
		Offset: r.Offset,
	}
}

// RunResponse is one journal entry.
type RunResponse struct {
	ID           string              `json:"id"`
	SessionID    string              `json:"sessionId"`
	TaskID       int                 `json:"taskId"`
	FormID       int                 `json:"formId"`
	Retry        string              `json:"retry,omitempty"`
	Status       string              `json:"status"`
	TablesTotal  int                 `json:"tablesTotal"`
	TablesFailed int                 `json:"tablesFailed"`
	Warnings     int                 `json:"warnings"`
	Error        string              `json:"error,omitempty"`
	StartedAt    time.Time           `json:"startedAt"`
	FinishedAt   time.Time           `json:"finishedAt"`
	DurationMs   int64               `json:"durationMs"`
	Tables       []runs.TableOutcome `json:"tables,omitempty"`
}

// FromRun creates RunResponse from runs.Run.
func FromRun(r runs.Run) RunResponse {
	return RunResponse{
		ID:           r.ID.String(),
		SessionID:    r.SessionID,
		TaskID:       r.TaskID,
		FormID:       r.FormID,
		Retry:        r.Retry,
		Status:       string(r.Status),
		TablesTotal:  r.TablesTotal,
		TablesFailed: r.TablesFailed,
		Warnings:     r.Warnings,
		Error:        r.Error,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		DurationMs:   r.Duration().Milliseconds(),
		Tables:       r.Tables,
	}
}

package dto

import "crosstab/internal/domain/form"

// WebhookRequest is the body of a platform bot webhook.
type WebhookRequest struct {
	TaskID      int        `json:"task_id"`
	Task        *form.Task `json:"task"`
	AccessToken string     `json:"access_token"`
	UserID      int        `json:"user_id"`
}

// ResolveTaskID returns the task id from the envelope or the task itself.
func (r WebhookRequest) ResolveTaskID() int {
	if r.TaskID != 0 {
		return r.TaskID
	}
	if r.Task != nil {
		return r.Task.ID
	}
	return 0
}

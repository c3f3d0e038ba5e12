package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"crosstab/internal/core/apperror"
	appctx "crosstab/internal/core/context"
	"crosstab/internal/domain/bot"
	"crosstab/internal/domain/runs"
	"crosstab/internal/infrastructure/http/v1/dto"
	"crosstab/internal/worker"
	"crosstab/pkg/logger"
)

// JobQueue accepts background jobs without blocking.
type JobQueue interface {
	Submit(job worker.Job) error
}

// JobRunner processes one bot job.
type JobRunner interface {
	Run(ctx context.Context, job bot.Job) *runs.Run
}

// WebhookHandler accepts platform bot webhooks.
type WebhookHandler struct {
	*BaseHandler
	queue  JobQueue
	runner JobRunner
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(base *BaseHandler, queue JobQueue, runner JobRunner) *WebhookHandler {
	return &WebhookHandler{BaseHandler: base, queue: queue, runner: runner}
}

// Handle queues the task for processing and answers at once.
// POST /
func (h *WebhookHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.WebhookRequest
	if !h.BindJSON(c, &req) {
		return
	}

	taskID := req.ResolveTaskID()
	if taskID == 0 {
		h.Error(c, apperror.NewValidation("task_id is required").WithDetail("field", "task_id"))
		return
	}

	job := bot.Job{
		TaskID:      taskID,
		Task:        req.Task,
		AccessToken: req.AccessToken,
	}
	if s := appctx.GetSession(ctx); s != nil {
		job.Session = *s
	}

	if err := h.queue.Submit(func(runCtx context.Context) {
		h.runner.Run(runCtx, job)
	}); err != nil {
		logger.Warn(ctx, "webhook rejected", "task_id", taskID, "error", err)
		h.Error(c, apperror.NewUnavailable("report queue is full").WithCause(err))
		return
	}

	logger.Debug(ctx, "webhook accepted", "task_id", taskID, "user_id", req.UserID)
	c.String(http.StatusOK, "")
}

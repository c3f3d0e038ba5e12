package handlers

import (
	"github.com/gin-gonic/gin"

	"crosstab/internal/core/apperror"
	"crosstab/internal/core/id"
	"crosstab/internal/domain/runs"
	"crosstab/internal/infrastructure/http/v1/dto"
)

// RunsHandler exposes the run journal.
type RunsHandler struct {
	*BaseHandler
	service *runs.Service
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(base *BaseHandler, service *runs.Service) *RunsHandler {
	return &RunsHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers journal routes.
func (h *RunsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}

// List handles GET /runs
func (h *RunsHandler) List(c *gin.Context) {
	var req dto.ListRunsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := req.Filter()
	if filter.Limit == 0 {
		filter.Limit = runs.DefaultListLimit
	}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.ListResponse[dto.RunResponse]{
		Items:  make([]dto.RunResponse, 0, len(items)),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for _, r := range items {
		resp.Items = append(resp.Items, dto.FromRun(r))
	}
	h.OK(c, resp)
}

// Get handles GET /runs/:id
func (h *RunsHandler) Get(c *gin.Context) {
	runID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid run id").WithDetail("id", c.Param("id")))
		return
	}

	run, err := h.service.Get(c.Request.Context(), runID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRun(*run))
}

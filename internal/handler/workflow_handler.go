package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pulseboard/pulseboard-backend/internal/model"
	"github.com/pulseboard/pulseboard-backend/internal/response"
	"github.com/pulseboard/pulseboard-backend/internal/service"
	"github.com/pulseboard/pulseboard-backend/internal/validator"
)

// WorkflowHandler handles workflow item CRUD.
type WorkflowHandler struct {
	workflowService *service.WorkflowService
}

// NewWorkflowHandler creates a new WorkflowHandler.
func NewWorkflowHandler(workflowService *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService}
}

// ListWorkflows returns all workflow items.
func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	items, err := h.workflowService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetWorkflow returns a single workflow item by ID.
func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	item, err := h.workflowService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// WorkflowItemRequest is the create/update payload for a workflow item.
type WorkflowItemRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Status   string `json:"status"`
	Assignee string `json:"assignee"`
}

// CreateWorkflow creates a workflow item.
func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	var req WorkflowItemRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	item, err := h.workflowService.Create(c.Request.Context(), req.Name, model.WorkflowStatus(req.Status), req.Assignee)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, item)
}

// UpdateWorkflow modifies a workflow item.
func (h *WorkflowHandler) UpdateWorkflow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req WorkflowItemRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	item, err := h.workflowService.Update(c.Request.Context(), id, req.Name, model.WorkflowStatus(req.Status), req.Assignee)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, item)
}

// DeleteWorkflow removes a workflow item.
func (h *WorkflowHandler) DeleteWorkflow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.workflowService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Workflow item deleted successfully"})
}

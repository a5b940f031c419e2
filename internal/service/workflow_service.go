package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pulseboard/pulseboard-backend/internal/model"
	"github.com/pulseboard/pulseboard-backend/internal/repository"
)

// ErrInvalidStatus is returned for workflow statuses outside the closed set.
var ErrInvalidStatus = errors.New("invalid workflow status")

// WorkflowService handles business logic for workflow items.
type WorkflowService struct {
	workflowRepo *repository.WorkflowRepository
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(workflowRepo *repository.WorkflowRepository) *WorkflowService {
	return &WorkflowService{workflowRepo: workflowRepo}
}

// List retrieves all workflow items.
func (s *WorkflowService) List(ctx context.Context) ([]model.WorkflowItem, error) {
	return s.workflowRepo.List(ctx)
}

// Get retrieves a single workflow item.
func (s *WorkflowService) Get(ctx context.Context, id uuid.UUID) (*model.WorkflowItem, error) {
	return s.workflowRepo.GetByID(ctx, id)
}

// Create validates and inserts a workflow item.
func (s *WorkflowService) Create(ctx context.Context, name string, status model.WorkflowStatus, assignee string) (*model.WorkflowItem, error) {
	if status == "" {
		status = model.WorkflowPending
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.workflowRepo.Create(ctx, name, status, assignee)
}

// Update validates and modifies a workflow item.
func (s *WorkflowService) Update(ctx context.Context, id uuid.UUID, name string, status model.WorkflowStatus, assignee string) (*model.WorkflowItem, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.workflowRepo.Update(ctx, id, name, status, assignee)
}

// Delete removes a workflow item.
func (s *WorkflowService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.workflowRepo.Delete(ctx, id)
}

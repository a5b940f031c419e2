package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulseboard/pulseboard-backend/internal/model"
)

// WorkflowRepository handles workflow item data access.
type WorkflowRepository struct {
	pool *pgxpool.Pool
}

// NewWorkflowRepository creates a new WorkflowRepository.
func NewWorkflowRepository(pool *pgxpool.Pool) *WorkflowRepository {
	return &WorkflowRepository{pool: pool}
}

// List retrieves all workflow items, newest first.
func (r *WorkflowRepository) List(ctx context.Context) ([]model.WorkflowItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, status, assignee, created_at, updated_at
		 FROM workflow_items ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.WorkflowItem
	for rows.Next() {
		var it model.WorkflowItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Status, &it.Assignee, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetByID retrieves a single workflow item.
func (r *WorkflowRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WorkflowItem, error) {
	it := &model.WorkflowItem{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, status, assignee, created_at, updated_at
		 FROM workflow_items WHERE id = $1`, id).
		Scan(&it.ID, &it.Name, &it.Status, &it.Assignee, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// Create inserts a workflow item and returns the stored row.
func (r *WorkflowRepository) Create(ctx context.Context, name string, status model.WorkflowStatus, assignee string) (*model.WorkflowItem, error) {
	it := &model.WorkflowItem{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO workflow_items (name, status, assignee)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, status, assignee, created_at, updated_at`,
		name, string(status), assignee).
		Scan(&it.ID, &it.Name, &it.Status, &it.Assignee, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// Update modifies a workflow item and returns the stored row.
func (r *WorkflowRepository) Update(ctx context.Context, id uuid.UUID, name string, status model.WorkflowStatus, assignee string) (*model.WorkflowItem, error) {
	it := &model.WorkflowItem{}
	err := r.pool.QueryRow(ctx,
		`UPDATE workflow_items
		 SET name = $2, status = $3, assignee = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, name, status, assignee, created_at, updated_at`,
		id, name, string(status), assignee).
		Scan(&it.ID, &it.Name, &it.Status, &it.Assignee, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// Delete removes a workflow item.
func (r *WorkflowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM workflow_items WHERE id = $1`, id)
	return err
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulseboard/pulseboard-backend/internal/model"
)

// PermissionStore is the persistence port consumed by the permission
// service. FindByRole reports genuine absence as (nil, nil) so the service
// can distinguish "not bootstrapped yet" from a store failure.
type PermissionStore interface {
	FindByRole(ctx context.Context, role model.Role) (*model.PermissionRecord, error)
	FindAll(ctx context.Context) ([]model.PermissionRecord, error)
	Upsert(ctx context.Context, role model.Role, patch model.PermissionPatch) (*model.PermissionRecord, error)
}

// PermissionRepository implements PermissionStore on PostgreSQL. Page and
// resource grants are stored as jsonb columns on a single row per role.
type PermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository creates a new PermissionRepository.
func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{pool: pool}
}

// FindByRole retrieves the permission record for a role, or (nil, nil) if
// no record exists yet.
func (r *PermissionRepository) FindByRole(ctx context.Context, role model.Role) (*model.PermissionRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT role, pages, resources, created_at, updated_at
		 FROM permissions WHERE role = $1`, string(role))

	rec, err := scanPermissionRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// FindAll retrieves every existing permission record, one per role that has
// been bootstrapped so far.
func (r *PermissionRepository) FindAll(ctx context.Context) ([]model.PermissionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role, pages, resources, created_at, updated_at
		 FROM permissions ORDER BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.PermissionRecord
	for rows.Next() {
		rec, err := scanPermissionRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Upsert creates the record from the patch if the role has none, otherwise
// merges only the fields present in the patch. A single statement keeps the
// merge atomic with respect to concurrent writers on the same role: a nil
// patch field becomes SQL NULL and COALESCE preserves the stored value.
func (r *PermissionRepository) Upsert(ctx context.Context, role model.Role, patch model.PermissionPatch) (*model.PermissionRecord, error) {
	pagesJSON, err := marshalOrNil(patch.Pages)
	if err != nil {
		return nil, fmt.Errorf("encode pages: %w", err)
	}
	resourcesJSON, err := marshalOrNil(patch.Resources)
	if err != nil {
		return nil, fmt.Errorf("encode resources: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO permissions (role, pages, resources)
		 VALUES ($1, COALESCE($2, '[]'::jsonb), COALESCE($3, '[]'::jsonb))
		 ON CONFLICT (role) DO UPDATE SET
			pages = COALESCE($2, permissions.pages),
			resources = COALESCE($3, permissions.resources),
			updated_at = NOW()
		 RETURNING role, pages, resources, created_at, updated_at`,
		string(role), pagesJSON, resourcesJSON)

	return scanPermissionRow(row)
}

// marshalOrNil encodes v to JSON, passing nil slices through as nil so
// they arrive at Postgres as NULL.
func marshalOrNil[T any](v []T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func scanPermissionRow(row pgx.Row) (*model.PermissionRecord, error) {
	var rec model.PermissionRecord
	var pagesJSON, resourcesJSON []byte

	if err := row.Scan(&rec.Role, &pagesJSON, &resourcesJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(pagesJSON, &rec.Pages); err != nil {
		return nil, fmt.Errorf("decode pages: %w", err)
	}
	if err := json.Unmarshal(resourcesJSON, &rec.Resources); err != nil {
		return nil, fmt.Errorf("decode resources: %w", err)
	}
	return &rec, nil
}

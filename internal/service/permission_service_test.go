package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pulseboard/pulseboard-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory PermissionStore with the same contract as the
// Postgres repository: absence is (nil, nil), upsert creates from the
// patch on absence and merges field-wise on existence.
type memStore struct {
	mu      sync.Mutex
	records map[model.Role]*model.PermissionRecord
	failing bool
}

func newMemStore() *memStore {
	return &memStore{records: make(map[model.Role]*model.PermissionRecord)}
}

func (m *memStore) FindByRole(_ context.Context, role model.Role) (*model.PermissionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errStoreDown
	}
	rec, ok := m.records[role]
	if !ok {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

func (m *memStore) FindAll(_ context.Context) ([]model.PermissionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errStoreDown
	}
	var out []model.PermissionRecord
	for _, role := range model.AllRoles {
		if rec, ok := m.records[role]; ok {
			out = append(out, *cloneRecord(rec))
		}
	}
	return out, nil
}

func (m *memStore) Upsert(_ context.Context, role model.Role, patch model.PermissionPatch) (*model.PermissionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errStoreDown
	}

	now := time.Now()
	rec, ok := m.records[role]
	if !ok {
		rec = &model.PermissionRecord{
			Role:      role,
			Pages:     []model.PagePermission{},
			Resources: []model.ResourcePermission{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		m.records[role] = rec
	} else {
		rec.UpdatedAt = now
	}

	if patch.Pages != nil {
		rec.Pages = clonePages(patch.Pages)
	}
	if patch.Resources != nil {
		rec.Resources = cloneResources(patch.Resources)
	}

	return cloneRecord(rec), nil
}

func cloneRecord(rec *model.PermissionRecord) *model.PermissionRecord {
	out := *rec
	out.Pages = clonePages(rec.Pages)
	out.Resources = cloneResources(rec.Resources)
	return &out
}

func clonePages(pages []model.PagePermission) []model.PagePermission {
	out := make([]model.PagePermission, len(pages))
	copy(out, pages)
	return out
}

func cloneResources(resources []model.ResourcePermission) []model.ResourcePermission {
	out := make([]model.ResourcePermission, len(resources))
	for i, r := range resources {
		actions := make([]model.Action, len(r.Actions))
		copy(actions, r.Actions)
		out[i] = model.ResourcePermission{ResourceID: r.ResourceID, Actions: actions}
	}
	return out
}

func newTestService(store *memStore) *PermissionService {
	return NewPermissionService(store, model.NewCatalog(), nil, 0, zerolog.Nop())
}

func TestGetByRoleSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)
	catalog := model.NewCatalog()

	for _, role := range model.AllRoles {
		rec, err := svc.GetByRole(ctx, string(role))
		require.NoError(t, err)

		d := catalog.DefaultsFor(role)
		assert.Equal(t, role, rec.Role)
		assert.Equal(t, d.Pages, rec.Pages)
		assert.Equal(t, d.Resources, rec.Resources)

		// The seeded record must actually be persisted.
		stored, err := store.FindByRole(ctx, role)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, d.Pages, stored.Pages)
	}
}

func TestGetByRoleRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	_, err := svc.GetByRole(ctx, "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)

	// No record may be created for a rejected role.
	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetAllBootstrapsEmptyStore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())
	catalog := model.NewCatalog()

	records, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, len(model.AllRoles))

	for _, rec := range records {
		d := catalog.DefaultsFor(rec.Role)
		assert.Equal(t, d.Pages, rec.Pages, "role %s", rec.Role)
		assert.Equal(t, d.Resources, rec.Resources, "role %s", rec.Role)
	}
}

func TestEnsureDefaultsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	require.NoError(t, svc.EnsureDefaults(ctx))

	// A manual edit in between must survive the second bootstrap.
	_, err := svc.Update(ctx, "viewer", model.PermissionPatch{
		Resources: []model.ResourcePermission{
			{ResourceID: model.ResourceBarChart2, Actions: []model.Action{model.ActionView}},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.EnsureDefaults(ctx))

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(model.AllRoles))

	viewer, err := svc.GetByRole(ctx, "viewer")
	require.NoError(t, err)
	assert.True(t, model.CanView(viewer, model.ResourceBarChart2), "bootstrap overwrote a manual update")
}

func TestUpdateRejectsAdminLockout(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	before, err := svc.GetByRole(ctx, "admin")
	require.NoError(t, err)

	_, err = svc.Update(ctx, "admin", model.PermissionPatch{
		Pages: []model.PagePermission{
			{PageID: model.PageAccessControl, CanAccess: false},
		},
	})
	assert.ErrorIs(t, err, ErrAdminLockout)

	// Rejected wholesale: the stored record is untouched.
	after, err := store.FindByRole(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, before.Pages, after.Pages)
	assert.Equal(t, before.Resources, after.Resources)
}

func TestUpdateAdminAccessControlTrueIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())

	before, err := svc.GetByRole(ctx, "admin")
	require.NoError(t, err)

	after, err := svc.Update(ctx, "admin", model.PermissionPatch{
		Pages: []model.PagePermission{
			{PageID: model.PageAccessControl, CanAccess: true},
		},
	})
	require.NoError(t, err)

	// The flag stays true and every other page entry keeps its prior value.
	assert.Equal(t, before.Pages, after.Pages)
	assert.True(t, model.CanAccessPage(after, model.PageAccessControl))
}

func TestUpdateMergesSingleResource(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())

	before, err := svc.GetByRole(ctx, "viewer")
	require.NoError(t, err)
	require.False(t, model.CanView(before, model.ResourceBarChart2))

	_, err = svc.Update(ctx, "viewer", model.PermissionPatch{
		Resources: []model.ResourcePermission{
			{ResourceID: model.ResourceBarChart2, Actions: []model.Action{model.ActionView}},
		},
	})
	require.NoError(t, err)

	after, err := svc.GetByRole(ctx, "viewer")
	require.NoError(t, err)

	assert.True(t, model.CanView(after, model.ResourceBarChart2))

	// Every other resource entry is unchanged from before the call.
	for _, r := range before.Resources {
		if r.ResourceID == model.ResourceBarChart2 {
			continue
		}
		for _, prev := range after.Resources {
			if prev.ResourceID == r.ResourceID {
				assert.Equal(t, r.Actions, prev.Actions, "resource %s", r.ResourceID)
			}
		}
	}

	// Pages were not part of the patch and must be untouched.
	assert.Equal(t, before.Pages, after.Pages)
}

func TestUpdateNormalizesActions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())

	rec, err := svc.Update(ctx, "analyst", model.PermissionPatch{
		Resources: []model.ResourcePermission{
			{ResourceID: model.ResourceLineChart, Actions: []model.Action{
				model.ActionView, model.ActionCreate, model.ActionView,
			}},
		},
	})
	require.NoError(t, err)

	for _, r := range rec.Resources {
		if r.ResourceID == model.ResourceLineChart {
			assert.Equal(t, []model.Action{model.ActionCreate, model.ActionView}, r.Actions)
		}
	}
}

func TestUpdateRejectsUnknownIdentifiers(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	_, err := svc.Update(ctx, "superuser", model.PermissionPatch{})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.Update(ctx, "viewer", model.PermissionPatch{
		Pages: []model.PagePermission{{PageID: "settings", CanAccess: true}},
	})
	assert.ErrorIs(t, err, ErrInvalidGrant)

	_, err = svc.Update(ctx, "viewer", model.PermissionPatch{
		Resources: []model.ResourcePermission{
			{ResourceID: model.ResourceBarChart1, Actions: []model.Action{"execute"}},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidGrant)

	// None of the rejected updates may have created a record.
	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateCreatesPartialRecord(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	// Updating a role that was never bootstrapped creates a record holding
	// only the patched entries; everything else fails closed.
	rec, err := svc.Update(ctx, "analyst", model.PermissionPatch{
		Resources: []model.ResourcePermission{
			{ResourceID: model.ResourcePieChart, Actions: []model.Action{model.ActionView}},
		},
	})
	require.NoError(t, err)

	assert.Empty(t, rec.Pages)
	require.Len(t, rec.Resources, 1)
	assert.True(t, model.CanView(rec, model.ResourcePieChart))
	assert.False(t, model.CanAccessPage(rec, model.PageDashboard))

	stored, err := store.FindByRole(ctx, model.RoleAnalyst)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.Pages)
}

func TestResetRestoresDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())
	catalog := model.NewCatalog()

	_, err := svc.Update(ctx, "analyst", model.PermissionPatch{
		Pages: []model.PagePermission{{PageID: model.PageWorkflows, CanAccess: true}},
		Resources: []model.ResourcePermission{
			{ResourceID: model.ResourceWorkflowItems, Actions: []model.Action{model.ActionDelete}},
		},
	})
	require.NoError(t, err)

	rec, err := svc.Reset(ctx, "analyst")
	require.NoError(t, err)

	d := catalog.DefaultsFor(model.RoleAnalyst)
	assert.Equal(t, d.Pages, rec.Pages)
	assert.Equal(t, d.Resources, rec.Resources)
}

func TestResetRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())

	_, err := svc.Reset(ctx, "root")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestGetForClaims(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())

	_, err := svc.GetForClaims(ctx, nil)
	assert.ErrorIs(t, err, ErrRoleRequired)

	_, err = svc.GetForClaims(ctx, &Claims{})
	assert.ErrorIs(t, err, ErrRoleRequired)

	rec, err := svc.GetForClaims(ctx, &Claims{Role: model.RoleViewer})
	require.NoError(t, err)
	assert.Equal(t, model.RoleViewer, rec.Role)
}

func TestStoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.failing = true
	svc := newTestService(store)

	_, err := svc.GetByRole(ctx, "admin")
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.GetAll(ctx)
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.Update(ctx, "admin", model.PermissionPatch{})
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.Reset(ctx, "admin")
	assert.ErrorIs(t, err, errStoreDown)
}

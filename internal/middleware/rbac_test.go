package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard-backend/internal/model"
	"github.com/pulseboard/pulseboard-backend/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// staticStore serves fixed permission records, faking the Postgres layer.
type staticStore struct {
	records map[model.Role]*model.PermissionRecord
}

func (s *staticStore) FindByRole(_ context.Context, role model.Role) (*model.PermissionRecord, error) {
	return s.records[role], nil
}

func (s *staticStore) FindAll(_ context.Context) ([]model.PermissionRecord, error) {
	var out []model.PermissionRecord
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	return out, nil
}

func (s *staticStore) Upsert(_ context.Context, role model.Role, patch model.PermissionPatch) (*model.PermissionRecord, error) {
	rec := &model.PermissionRecord{Role: role}
	if patch.Pages != nil {
		rec.Pages = patch.Pages
	}
	if patch.Resources != nil {
		rec.Resources = patch.Resources
	}
	s.records[role] = rec
	return rec, nil
}

func newGateService(records map[model.Role]*model.PermissionRecord) *service.PermissionService {
	return service.NewPermissionService(&staticStore{records: records}, model.NewCatalog(), nil, 0, zerolog.Nop())
}

// withClaims injects claims the way RequireJWT would after validation.
func withClaims(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyClaims, &service.Claims{Role: role})
		c.Next()
	}
}

func errCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func performGET(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) {
	c.Status(http.StatusOK)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		role       model.Role
		wantStatus int
	}{
		{"admin passes", model.RoleAdmin, http.StatusOK},
		{"analyst forbidden", model.RoleAnalyst, http.StatusForbidden},
		{"viewer forbidden", model.RoleViewer, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", withClaims(tt.role), RequireAdmin(), okHandler)

			w := performGET(r, "/admin")
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Equal(t, "ADMIN_ACCESS_ONLY", errCodeOf(t, w))
			}
		})
	}
}

func TestRequireAdminWithoutClaims(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireAdmin(), okHandler)

	w := performGET(r, "/admin")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REQUIRED", errCodeOf(t, w))
}

func TestRequirePageAccess(t *testing.T) {
	svc := newGateService(map[model.Role]*model.PermissionRecord{
		model.RoleViewer: {
			Role: model.RoleViewer,
			Pages: []model.PagePermission{
				{PageID: model.PageDashboard, CanAccess: true},
				{PageID: model.PageWorkflows, CanAccess: false},
			},
		},
	})

	r := gin.New()
	r.GET("/dashboard", withClaims(model.RoleViewer), RequirePageAccess(svc, model.PageDashboard), okHandler)
	r.GET("/workflows", withClaims(model.RoleViewer), RequirePageAccess(svc, model.PageWorkflows), okHandler)
	r.GET("/access-control", withClaims(model.RoleViewer), RequirePageAccess(svc, model.PageAccessControl), okHandler)

	assert.Equal(t, http.StatusOK, performGET(r, "/dashboard").Code)

	w := performGET(r, "/workflows")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "PAGE_ACCESS_DENIED", errCodeOf(t, w))

	// An entry absent from the record denies, same as an explicit false.
	assert.Equal(t, http.StatusForbidden, performGET(r, "/access-control").Code)
}

func TestRequireAction(t *testing.T) {
	svc := newGateService(map[model.Role]*model.PermissionRecord{
		model.RoleAnalyst: {
			Role: model.RoleAnalyst,
			Resources: []model.ResourcePermission{
				{ResourceID: model.ResourceWorkflowItems, Actions: []model.Action{model.ActionView, model.ActionEdit}},
			},
		},
	})

	r := gin.New()
	r.GET("/view", withClaims(model.RoleAnalyst), RequireAction(svc, model.ResourceWorkflowItems, model.ActionView), okHandler)
	r.GET("/delete", withClaims(model.RoleAnalyst), RequireAction(svc, model.ResourceWorkflowItems, model.ActionDelete), okHandler)
	r.GET("/other", withClaims(model.RoleAnalyst), RequireAction(svc, model.ResourcePieChart, model.ActionView), okHandler)

	assert.Equal(t, http.StatusOK, performGET(r, "/view").Code)

	w := performGET(r, "/delete")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "ACTION_DENIED", errCodeOf(t, w))

	assert.Equal(t, http.StatusForbidden, performGET(r, "/other").Code)
}

func TestPageGateWithRolelessClaims(t *testing.T) {
	svc := newGateService(map[model.Role]*model.PermissionRecord{})

	// Claims present but carrying no role: an authentication problem,
	// not a server fault.
	r := gin.New()
	r.GET("/dashboard", withClaims(""), RequirePageAccess(svc, model.PageDashboard), okHandler)

	w := performGET(r, "/dashboard")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REQUIRED", errCodeOf(t, w))
}

func TestPageGateWithoutClaims(t *testing.T) {
	svc := newGateService(map[model.Role]*model.PermissionRecord{})

	r := gin.New()
	r.GET("/dashboard", RequirePageAccess(svc, model.PageDashboard), okHandler)

	w := performGET(r, "/dashboard")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REQUIRED", errCodeOf(t, w))
}

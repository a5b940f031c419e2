package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard-backend/internal/middleware"
	"github.com/pulseboard/pulseboard-backend/internal/model"
	"github.com/pulseboard/pulseboard-backend/internal/response"
	"github.com/pulseboard/pulseboard-backend/internal/service"
	"github.com/pulseboard/pulseboard-backend/internal/validator"
)

// PermissionHandler exposes the permission resolution and mutation
// operations over HTTP.
type PermissionHandler struct {
	permissionService *service.PermissionService
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(permissionService *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// GetMine returns the authenticated caller's own permission record,
// seeding defaults on first access.
func (h *PermissionHandler) GetMine(c *gin.Context) {
	claims := middleware.GetClaims(c)

	rec, err := h.permissionService.GetForClaims(c.Request.Context(), claims)
	if err != nil {
		if errors.Is(err, service.ErrRoleRequired) {
			response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if errors.Is(err, service.ErrInvalidRole) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidRole)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, rec)
}

// GetAll returns every role's record, bootstrapping defaults when the
// store is empty.
func (h *PermissionHandler) GetAll(c *gin.Context) {
	records, err := h.permissionService.GetAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, records)
}

// GetByRole returns the record for the role in the path, seeding defaults
// on first access.
func (h *PermissionHandler) GetByRole(c *gin.Context) {
	rec, err := h.permissionService.GetByRole(c.Request.Context(), c.Param("role"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidRole)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, rec)
}

// UpdatePermissionsRequest carries a partial permission update. Omitting
// pages or resources leaves the stored field untouched.
type UpdatePermissionsRequest struct {
	Role      string                     `json:"role" binding:"required"`
	Pages     []model.PagePermission     `json:"pages"`
	Resources []model.ResourcePermission `json:"resources"`
}

// Update applies a partial patch to a role's record.
func (h *PermissionHandler) Update(c *gin.Context) {
	var req UpdatePermissionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, err := h.permissionService.Update(c.Request.Context(), req.Role, model.PermissionPatch{
		Pages:     req.Pages,
		Resources: req.Resources,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidRole)
		case errors.Is(err, service.ErrInvalidGrant):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidGrant)
		case errors.Is(err, service.ErrAdminLockout):
			response.Fail(c, http.StatusBadRequest, response.ErrPermissionLocked)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, rec)
}

// Reset restores the catalog defaults for the role in the path.
func (h *PermissionHandler) Reset(c *gin.Context) {
	rec, err := h.permissionService.Reset(c.Request.Context(), c.Param("role"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidRole)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, rec)
}

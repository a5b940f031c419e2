package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard-backend/internal/model"
	"github.com/pulseboard/pulseboard-backend/internal/response"
	"github.com/pulseboard/pulseboard-backend/internal/service"
)

// RequireAdmin checks that the authenticated user carries the admin role.
// Unlike the fine-grained gates below it never consults the permission
// store: the admin role itself is the privilege.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if claims.Role != model.RoleAdmin {
			response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
			return
		}

		c.Next()
	}
}

// RequirePageAccess resolves the caller's permission record and checks the
// page flag. Absence of data denies; only a store failure is an error.
func RequirePageAccess(permissionService *service.PermissionService, page model.PageID) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := resolveRecord(c, permissionService)
		if !ok {
			return
		}

		if !model.CanAccessPage(rec, page) {
			response.AbortFail(c, http.StatusForbidden, response.ErrPageDenied)
			return
		}

		c.Next()
	}
}

// RequireAction resolves the caller's permission record and checks a single
// action grant on a resource.
func RequireAction(permissionService *service.PermissionService, resource model.ResourceID, action model.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := resolveRecord(c, permissionService)
		if !ok {
			return
		}

		if !model.HasAction(rec, resource, action) {
			response.AbortFail(c, http.StatusForbidden, response.ErrActionDenied)
			return
		}

		c.Next()
	}
}

func resolveRecord(c *gin.Context, permissionService *service.PermissionService) (*model.PermissionRecord, bool) {
	claims := GetClaims(c)
	if claims == nil {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	rec, err := permissionService.GetForClaims(c.Request.Context(), claims)
	if err != nil {
		// A principal without a role is an authentication problem, not a
		// server fault.
		if errors.Is(err, service.ErrRoleRequired) {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return nil, false
		}
		response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, false
	}
	return rec, true
}

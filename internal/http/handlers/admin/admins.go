package admin

import (
	"errors"
	"strconv"

	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAdminRequest 创建管理员
type CreateAdminRequest struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Roles    []string `json:"roles"`
}

// ListAdmins 管理员列表及其角色
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.AuthService.ListAdmins()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	items := make([]gin.H, 0, len(admins))
	for _, admin := range admins {
		roles, roleErr := h.AuthzService.GetAdminRoles(admin.ID)
		if roleErr != nil {
			respondError(c, response.CodeInternal, "error.role_fetch_failed", roleErr)
			return
		}
		items = append(items, gin.H{
			"id":          admin.ID,
			"username":    admin.Username,
			"isSuper":     admin.IsSuper,
			"lastLoginAt": admin.LastLoginAt,
			"createdAt":   admin.CreatedAt,
			"roles":       roles,
		})
	}
	response.Success(c, gin.H{"admins": items})
}

// CreateAdmin 创建普通管理员并可选分配角色
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, err := h.AuthService.CreateAdmin(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminExists):
			respondError(c, response.CodeConflict, "error.admin_exists", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		default:
			respondError(c, response.CodeInternal, "error.admin_create_failed", err)
		}
		return
	}

	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
			respondError(c, response.CodeBadRequest, "error.role_invalid", err)
			return
		}
	}
	h.recordAudit(c, service.AuditActionAdminCreate, "admin", strconv.FormatUint(uint64(admin.ID), 10), map[string]interface{}{
		"username": admin.Username,
		"roles":    req.Roles,
	})
	response.Success(c, admin)
}

package admin

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/station-rewards/internal/authz"
	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/service"

	"github.com/gin-gonic/gin"
)

type authzPolicyPayload struct {
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// ListAuthzRoles 角色列表及各角色策略
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.role_fetch_failed", err)
		return
	}
	items := make([]gin.H, 0, len(roles))
	for _, role := range roles {
		policies, err := h.AuthzService.GetRolePolicies(role)
		if err != nil {
			respondError(c, response.CodeInternal, "error.role_fetch_failed", err)
			return
		}
		items = append(items, gin.H{
			"role":     role,
			"builtin":  authz.IsBuiltinRole(role),
			"policies": policies,
		})
	}
	response.Success(c, gin.H{"roles": items})
}

// GetAdminRoles 查询管理员角色
func (h *Handler) GetAdminRoles(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.role_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"adminId": id, "roles": roles})
}

// SetAdminRoles 覆盖设置管理员角色
func (h *Handler) SetAdminRoles(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if _, err := h.AuthService.GetAdmin(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.role_update_failed", err)
		return
	}
	if err := h.AuthzService.SetAdminRoles(id, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.role_fetch_failed", err)
		return
	}
	h.recordAudit(c, service.AuditActionAdminRolesSet, "admin", strconv.FormatUint(uint64(id), 10), map[string]interface{}{
		"roles": roles,
	})
	response.Success(c, gin.H{"adminId": id, "roles": roles})
}

// GrantRolePolicy 为自定义角色授予策略
func (h *Handler) GrantRolePolicy(c *gin.Context) {
	h.changeRolePolicy(c, true)
}

// RevokeRolePolicy 撤销自定义角色策略
func (h *Handler) RevokeRolePolicy(c *gin.Context) {
	h.changeRolePolicy(c, false)
}

func (h *Handler) changeRolePolicy(c *gin.Context, grant bool) {
	role, err := url.PathUnescape(c.Param("role"))
	if err != nil || role == "" {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	action := service.AuditActionRolePolicyGrant
	if grant {
		err = h.AuthzService.GrantRolePolicy(role, req.Object, req.Action)
	} else {
		action = service.AuditActionRolePolicyRevoke
		err = h.AuthzService.RevokeRolePolicy(role, req.Object, req.Action)
	}
	if err != nil {
		if errors.Is(err, authz.ErrBuiltinRole) {
			respondError(c, response.CodeForbidden, "error.role_builtin_immutable", nil)
			return
		}
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}

	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.role_fetch_failed", err)
		return
	}
	h.recordAudit(c, action, "role", role, map[string]interface{}{
		"object": authz.NormalizeObject(req.Object),
		"action": authz.NormalizeAction(req.Action),
	})
	response.Success(c, gin.H{"role": role, "policies": policies})
}

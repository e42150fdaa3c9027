package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/station-rewards/internal/http/handlers/shared"
	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAuditLogs 后台操作审计日志
func (h *Handler) GetAuditLogs(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.AdminAuditLogListFilter{
		Page:       page,
		PageSize:   pageSize,
		Action:     strings.TrimSpace(c.Query("action")),
		TargetType: strings.TrimSpace(c.Query("targetType")),
		TargetID:   strings.TrimSpace(c.Query("targetId")),
	}
	if raw := strings.TrimSpace(c.Query("operatorId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		filter.OperatorAdminID = uint(id)
	}
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		filter.CreatedFrom = &from
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		filter.CreatedTo = &to
	}

	logs, total, err := h.AdminAuditService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.audit_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}

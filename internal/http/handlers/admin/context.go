package admin

import (
	"strconv"

	handlershared "github.com/station-rewards/internal/http/handlers/shared"
	"github.com/station-rewards/internal/logger"
	"github.com/station-rewards/internal/service"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "admin_id", "error.bad_request", "error.internal")
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

// auditFromContext 组装带操作人与 request_id 的审计记录
func auditFromContext(c *gin.Context, action, targetType, targetID string, detail map[string]interface{}) service.AdminAuditRecordInput {
	input := service.AdminAuditRecordInput{
		OperatorUsername: c.GetString("admin_username"),
		Action:           action,
		TargetType:       targetType,
		TargetID:         targetID,
		RequestID:        c.GetString("request_id"),
		Detail:           detail,
	}
	if value, ok := c.Get("admin_id"); ok {
		if id, ok := value.(uint); ok {
			input.OperatorAdminID = id
		}
	}
	return input
}

func (h *Handler) recordAudit(c *gin.Context, action, targetType, targetID string, detail map[string]interface{}) {
	if h.AdminAuditService == nil {
		return
	}
	h.AdminAuditService.RecordQuietly(auditFromContext(c, action, targetType, targetID, detail))
}

// invalidateStats 后台变更后清理统计缓存，失败只记录日志
func (h *Handler) invalidateStats(c *gin.Context) {
	if h.StatsService == nil {
		return
	}
	if err := h.StatsService.Invalidate(c.Request.Context()); err != nil {
		logger.Warnw("stats_cache_invalidate_failed", "error", err)
	}
}

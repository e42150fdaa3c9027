package service

import (
	"strings"
	"time"

	"github.com/station-rewards/internal/logger"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/repository"
)

// 审计动作
const (
	AuditActionCouponIssueManual = "coupon_issue_manual"
	AuditActionReviewFlag        = "review_flag"
	AuditActionStationCreate     = "station_create"
	AuditActionStationUpdate     = "station_update"
	AuditActionAdminCreate       = "admin_create"
	AuditActionAdminRolesSet     = "admin_roles_set"
	AuditActionRolePolicyGrant   = "role_policy_grant"
	AuditActionRolePolicyRevoke  = "role_policy_revoke"
)

// AdminAuditRecordInput 审计记录输入
type AdminAuditRecordInput struct {
	OperatorAdminID  uint
	OperatorUsername string
	Action           string
	TargetType       string
	TargetID         string
	RequestID        string
	Detail           models.JSON
}

// AdminAuditService 后台操作审计服务
type AdminAuditService struct {
	repo repository.AdminAuditLogRepository
}

// NewAdminAuditService 创建审计服务
func NewAdminAuditService(repo repository.AdminAuditLogRepository) *AdminAuditService {
	return &AdminAuditService{repo: repo}
}

// Record 写入审计日志，缺少操作人或动作时忽略
func (s *AdminAuditService) Record(input AdminAuditRecordInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	if input.OperatorAdminID == 0 || strings.TrimSpace(input.Action) == "" {
		return nil
	}
	item := &models.AdminAuditLog{
		OperatorAdminID:  input.OperatorAdminID,
		OperatorUsername: strings.TrimSpace(input.OperatorUsername),
		Action:           strings.TrimSpace(input.Action),
		TargetType:       strings.TrimSpace(input.TargetType),
		TargetID:         strings.TrimSpace(input.TargetID),
		RequestID:        strings.TrimSpace(input.RequestID),
		DetailJSON:       input.Detail,
		CreatedAt:        time.Now(),
	}
	return s.repo.Create(item)
}

// RecordQuietly 写入审计日志，失败只记录告警，不影响主流程
func (s *AdminAuditService) RecordQuietly(input AdminAuditRecordInput) {
	if err := s.Record(input); err != nil {
		logger.Warnw("admin_audit_record_failed",
			"action", input.Action,
			"operator_admin_id", input.OperatorAdminID,
			"error", err,
		)
	}
}

// List 查询审计日志
func (s *AdminAuditService) List(filter repository.AdminAuditLogListFilter) ([]models.AdminAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AdminAuditLog{}, 0, nil
	}
	return s.repo.List(filter)
}

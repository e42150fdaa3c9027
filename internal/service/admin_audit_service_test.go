package service

import (
	"testing"

	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/repository"
)

func TestAdminAuditRecordAndList(t *testing.T) {
	env := setupRewardsTest(t)
	svc := NewAdminAuditService(repository.NewAdminAuditLogRepository(env.db))

	if err := svc.Record(AdminAuditRecordInput{Action: AuditActionReviewFlag}); err != nil {
		t.Fatalf("record without operator: %v", err)
	}
	if err := svc.Record(AdminAuditRecordInput{
		OperatorAdminID:  7,
		OperatorUsername: " ops ",
		Action:           AuditActionCouponIssueManual,
		TargetType:       "customer",
		TargetID:         "12",
		Detail:           models.JSON{"count": 3},
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	svc.RecordQuietly(AdminAuditRecordInput{OperatorAdminID: 7, Action: AuditActionReviewFlag, TargetType: "review", TargetID: "1"})

	logs, total, err := svc.List(repository.AdminAuditLogListFilter{Action: AuditActionCouponIssueManual})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(logs) != 1 {
		t.Fatalf("expected one manual issue log, got total=%d len=%d", total, len(logs))
	}
	if logs[0].OperatorUsername != "ops" {
		t.Fatalf("operator username not trimmed: %q", logs[0].OperatorUsername)
	}
	if got, ok := logs[0].DetailJSON["count"].(float64); !ok || got != 3 {
		t.Fatalf("unexpected detail: %#v", logs[0].DetailJSON)
	}

	_, all, err := svc.List(repository.AdminAuditLogListFilter{OperatorAdminID: 7})
	if err != nil {
		t.Fatalf("list by operator: %v", err)
	}
	if all != 2 {
		t.Fatalf("expected 2 logs for operator, got %d", all)
	}
}

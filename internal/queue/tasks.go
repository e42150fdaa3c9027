package queue

import (
	"encoding/json"

	"github.com/station-rewards/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCouponIssued 发券后通知任务
	TaskCouponIssued = constants.TaskCouponIssued
	// TaskCodeSpaceExhaustedAlert 券码空间耗尽告警任务
	TaskCodeSpaceExhaustedAlert = constants.TaskCodeSpaceExhaustedAlert
)

// CouponIssuedPayload 发券通知载荷
type CouponIssuedPayload struct {
	CouponID   uint   `json:"coupon_id"`
	CustomerID uint   `json:"customer_id"`
	StationID  uint   `json:"station_id"`
	Origin     string `json:"origin"`
}

// CodeSpaceExhaustedPayload 券码空间耗尽告警载荷
type CodeSpaceExhaustedPayload struct {
	CustomerID uint  `json:"customer_id"`
	StationID  uint  `json:"station_id"`
	Attempts   int   `json:"attempts"`
	OccurredAt int64 `json:"occurred_at"`
}

// NewCouponIssuedTask 创建发券通知任务
func NewCouponIssuedTask(payload CouponIssuedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCouponIssued, body), nil
}

// NewCodeSpaceExhaustedTask 创建券码空间耗尽告警任务
func NewCodeSpaceExhaustedTask(payload CodeSpaceExhaustedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCodeSpaceExhaustedAlert, body), nil
}

package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/station-rewards/internal/logger"
	"github.com/station-rewards/internal/provider"
	"github.com/station-rewards/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCouponIssued, c.handleCouponIssued)
	mux.HandleFunc(queue.TaskCodeSpaceExhaustedAlert, c.handleCodeSpaceExhausted)
}

func (c *Consumer) handleCouponIssued(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || c.NotificationService == nil || task == nil {
		logger.Debugw("worker_coupon_issued_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CouponIssuedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_coupon_issued_unmarshal_failed", "error", err)
		return err
	}
	if payload.CouponID == 0 {
		logger.Debugw("worker_coupon_issued_skip_invalid_payload", "coupon_id", payload.CouponID)
		return nil
	}
	if err := c.NotificationService.NotifyCouponIssued(ctx, payload.CouponID); err != nil {
		logger.Warnw("worker_coupon_issued_notify_failed",
			"coupon_id", payload.CouponID,
			"customer_id", payload.CustomerID,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleCodeSpaceExhausted(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || c.NotificationService == nil || task == nil {
		logger.Debugw("worker_code_space_alert_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CodeSpaceExhaustedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_code_space_alert_unmarshal_failed", "error", err)
		return err
	}
	occurredAt := time.Now()
	if payload.OccurredAt > 0 {
		occurredAt = time.Unix(payload.OccurredAt, 0)
	}
	c.NotificationService.AlertCodeSpaceExhausted(ctx, payload.CustomerID, payload.StationID, payload.Attempts, occurredAt)
	return nil
}

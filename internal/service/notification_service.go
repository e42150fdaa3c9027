package service

import (
	"context"
	"errors"
	"time"

	"github.com/station-rewards/internal/logger"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/repository"
)

// NotificationService 发券通知与运维告警（由异步任务驱动）
type NotificationService struct {
	couponRepo   repository.CouponRepository
	customerRepo repository.CustomerRepository
	emailSvc     *EmailService
}

// NewNotificationService 创建通知服务，emailSvc 为 nil 时只记录日志
func NewNotificationService(couponRepo repository.CouponRepository, customerRepo repository.CustomerRepository, emailSvc *EmailService) *NotificationService {
	return &NotificationService{couponRepo: couponRepo, customerRepo: customerRepo, emailSvc: emailSvc}
}

// NotifyCouponIssued 通知顾客并标记已通知，重复投递时跳过
// 邮箱顾客在 SMTP 可用时收到券码邮件；投递失败返回错误交由队列重试，收件人被拒则不再重试。
func (s *NotificationService) NotifyCouponIssued(ctx context.Context, couponID uint) error {
	coupon, err := s.couponRepo.GetByID(couponID)
	if err != nil {
		return err
	}
	if coupon == nil {
		logger.Warnw("notification_coupon_missing", "coupon_id", couponID)
		return nil
	}
	if coupon.NotifiedAt != nil {
		return nil
	}
	customer, err := s.customerRepo.GetByID(coupon.CustomerID)
	if err != nil {
		return err
	}

	fields := []interface{}{
		"coupon_id", coupon.ID,
		"customer_id", coupon.CustomerID,
		"station_id", coupon.StationID,
		"origin", coupon.Origin,
	}
	if customer != nil {
		fields = append(fields, "contact", customer.Contact, "visits", customer.Visits)
	}
	logger.SW(fields...).Info("coupon_issued_notification")

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.emailCoupon(coupon, customer); err != nil {
		return err
	}
	return s.couponRepo.MarkNotified(coupon.ID, time.Now())
}

func (s *NotificationService) emailCoupon(coupon *models.Coupon, customer *models.Customer) error {
	if customer == nil || customer.Email == "" || !s.emailSvc.Enabled() {
		return nil
	}
	input := CouponEmailInput{
		CustomerName: customer.Name,
		Code:         coupon.Code,
		Visits:       customer.Visits,
	}
	if coupon.Station != nil {
		input.StationName = coupon.Station.Name
	}
	err := s.emailSvc.SendCouponIssued(customer.Email, input, "")
	switch {
	case err == nil:
		logger.Infow("coupon_email_sent", "coupon_id", coupon.ID, "customer_id", customer.ID)
		return nil
	case errors.Is(err, ErrEmailRecipientRejected), errors.Is(err, ErrInvalidEmail):
		logger.Warnw("coupon_email_rejected", "coupon_id", coupon.ID, "customer_id", customer.ID, "error", err)
		return nil
	default:
		return err
	}
}

// AlertCodeSpaceExhausted 券码空间耗尽告警
func (s *NotificationService) AlertCodeSpaceExhausted(ctx context.Context, customerID, stationID uint, attempts int, occurredAt time.Time) {
	logger.Errorw("alert_coupon_code_space_exhausted",
		"customer_id", customerID,
		"station_id", stationID,
		"attempts", attempts,
		"occurred_at", occurredAt.Format(time.RFC3339),
	)
	if !s.emailSvc.Enabled() || ctx.Err() != nil {
		return
	}
	if err := s.emailSvc.SendCodeSpaceAlert(customerID, stationID, attempts, occurredAt); err != nil {
		logger.Warnw("alert_email_failed", "error", err)
	}
}

package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrAdminExists        = errors.New("admin already exists")
	ErrCaptchaRequired    = errors.New("captcha required")
	ErrCaptchaInvalid     = errors.New("captcha invalid")
	ErrCaptchaDisabled    = errors.New("captcha disabled")
	ErrConcurrentUpdate   = errors.New("concurrent update conflict")
	ErrReviewInvalid      = errors.New("review invalid")
	ErrReviewCooldown     = errors.New("review cooldown not elapsed")
	ErrReviewNotFound     = errors.New("review not found")
	ErrStationNotFound    = errors.New("station not found")
	ErrStationInvalid     = errors.New("station invalid")
	ErrStationCodeExists  = errors.New("station code already exists")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrPhoneRequired      = errors.New("phone required")
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponAlreadyUsed  = errors.New("coupon already used")
	ErrCouponCodeRequired = errors.New("coupon code required")
	ErrCouponCountInvalid = errors.New("coupon count invalid")
	ErrCodeSpaceExhausted = errors.New("coupon code space exhausted")
	ErrStatsRangeInvalid  = errors.New("stats date range invalid")
	ErrRoleInvalid        = errors.New("role invalid")
	ErrAuthzUnavailable   = errors.New("authz unavailable")

	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)

// 评价校验失败的具体原因，均可用 errors.Is(err, ErrReviewInvalid) 判定
var (
	ErrReviewRatingInvalid   = fmt.Errorf("%w: rating must be between 1 and 5", ErrReviewInvalid)
	ErrReviewNameRequired    = fmt.Errorf("%w: name is required", ErrReviewInvalid)
	ErrReviewContactRequired = fmt.Errorf("%w: contact is required", ErrReviewInvalid)
	ErrReviewStationRequired = fmt.Errorf("%w: station is required", ErrReviewInvalid)
	ErrReviewLocationInvalid = fmt.Errorf("%w: gps coordinate out of range", ErrReviewInvalid)
	ErrReviewCommentTooLong  = fmt.Errorf("%w: comment too long", ErrReviewInvalid)
)

// CooldownError 评价冷却期内的拒绝，携带剩余等待时间
type CooldownError struct {
	RetryAfter time.Duration
	Window     time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrReviewCooldown.Error(), e.RetryAfter)
}

// Is 使 errors.Is(err, ErrReviewCooldown) 成立
func (e *CooldownError) Is(target error) bool {
	return target == ErrReviewCooldown
}

// WindowHours 冷却窗口小时数
func (e *CooldownError) WindowHours() int {
	return int(e.Window / time.Hour)
}

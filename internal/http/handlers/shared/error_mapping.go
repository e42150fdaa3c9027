package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/i18n"
	"github.com/station-rewards/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 业务错误到接口错误响应的映射
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// ReviewErrorRules 评价提交相关错误
var ReviewErrorRules = []MappedError{
	{Target: service.ErrReviewRatingInvalid, Code: response.CodeBadRequest, Key: "error.review_rating_invalid"},
	{Target: service.ErrReviewNameRequired, Code: response.CodeBadRequest, Key: "error.review_name_required"},
	{Target: service.ErrReviewContactRequired, Code: response.CodeBadRequest, Key: "error.review_contact_required"},
	{Target: service.ErrReviewStationRequired, Code: response.CodeBadRequest, Key: "error.review_station_required"},
	{Target: service.ErrReviewLocationInvalid, Code: response.CodeBadRequest, Key: "error.review_location_invalid"},
	{Target: service.ErrReviewCommentTooLong, Code: response.CodeBadRequest, Key: "error.review_comment_too_long"},
	{Target: service.ErrReviewInvalid, Code: response.CodeBadRequest, Key: "error.review_invalid"},
	{Target: service.ErrReviewNotFound, Code: response.CodeNotFound, Key: "error.review_not_found"},
}

// CouponErrorRules 发券与核销相关错误
var CouponErrorRules = []MappedError{
	{Target: service.ErrCouponNotFound, Code: response.CodeNotFound, Key: "error.coupon_not_found"},
	{Target: service.ErrCouponAlreadyUsed, Code: response.CodeConflict, Key: "error.coupon_already_used"},
	{Target: service.ErrCouponCodeRequired, Code: response.CodeBadRequest, Key: "error.coupon_code_required"},
	{Target: service.ErrCustomerNotFound, Code: response.CodeNotFound, Key: "error.customer_not_found"},
	{Target: service.ErrPhoneRequired, Code: response.CodeBadRequest, Key: "error.phone_required"},
}

// StationErrorRules 站点相关错误
var StationErrorRules = []MappedError{
	{Target: service.ErrStationNotFound, Code: response.CodeNotFound, Key: "error.station_not_found"},
	{Target: service.ErrStationInvalid, Code: response.CodeBadRequest, Key: "error.station_invalid"},
	{Target: service.ErrStationCodeExists, Code: response.CodeConflict, Key: "error.station_code_exists"},
}

// CommonErrorRules 跨模块通用错误
var CommonErrorRules = []MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrStatsRangeInvalid, Code: response.CodeBadRequest, Key: "error.stats_range_invalid"},
	{Target: service.ErrConcurrentUpdate, Code: response.CodeServiceUnavailable, Key: "error.service_busy"},
	{Target: service.ErrCodeSpaceExhausted, Code: response.CodeInternal, Key: "error.internal"},
}

// ConcatMappedErrors 合并多组映射规则
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// RespondMappedError 按规则输出业务错误，未命中时使用兜底错误并记录原始错误
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		RespondCooldown(c, cooldown)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			// 券码空间耗尽等服务端错误保留原始错误日志
			if rule.Code >= response.CodeInternal {
				RespondError(c, rule.Code, rule.Key, err)
				return
			}
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// RespondCooldown 输出评价冷却 409，消息包含冷却时长与剩余等待时间
func RespondCooldown(c *gin.Context, cooldown *service.CooldownError) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.Sprintf(locale, "error.review_cooldown", cooldown.WindowHours(), FormatRetryAfter(cooldown.RetryAfter))
	response.ErrorWithData(c, response.CodeConflict, msg, gin.H{
		"retryAfterSeconds": int64(cooldown.RetryAfter.Round(time.Second) / time.Second),
	})
}

// FormatRetryAfter 将剩余等待时间格式化为 "3h 12m" 形式，不足一分钟按一分钟计
func FormatRetryAfter(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	minutes := int64((d + time.Minute - 1) / time.Minute)
	hours := minutes / 60
	minutes %= 60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", minutes)
	case minutes == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
}

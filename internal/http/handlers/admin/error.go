package admin

import (
	"errors"

	handlershared "github.com/station-rewards/internal/http/handlers/shared"
	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/i18n"
	"github.com/station-rewards/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var couponIssueErrorRules = handlershared.ConcatMappedErrors(
	handlershared.CouponErrorRules,
	handlershared.StationErrorRules,
	handlershared.ReviewErrorRules,
	handlershared.CommonErrorRules,
)

var stationErrorRules = handlershared.ConcatMappedErrors(
	handlershared.StationErrorRules,
	handlershared.CommonErrorRules,
)

var reviewErrorRules = handlershared.ConcatMappedErrors(
	handlershared.ReviewErrorRules,
	handlershared.CommonErrorRules,
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

func respondMappedError(c *gin.Context, err error, rules []handlershared.MappedError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, fallbackCode, fallbackKey)
}

// respondCouponIssueError 发券数量超限时在消息中带上上限
func (h *Handler) respondCouponIssueError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrCouponCountInvalid) {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), "error.coupon_count_invalid", h.Config.Rewards.Normalize().ManualMaxCount)
		respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	respondMappedError(c, err, couponIssueErrorRules, response.CodeInternal, "error.coupon_issue_failed")
}

package public

import (
	handlershared "github.com/station-rewards/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

var reviewSubmitErrorRules = handlershared.ConcatMappedErrors(
	handlershared.ReviewErrorRules,
	handlershared.StationErrorRules,
	handlershared.CommonErrorRules,
)

var rewardsErrorRules = handlershared.ConcatMappedErrors(
	handlershared.CouponErrorRules,
	handlershared.CommonErrorRules,
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondMappedError(c *gin.Context, err error, rules []handlershared.MappedError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, fallbackCode, fallbackKey)
}

package public

import (
	"strings"
	"time"

	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/service"

	"github.com/gin-gonic/gin"
)

const cashierClaimedBy = "cashier"

// ClaimCouponRequest 核销请求
type ClaimCouponRequest struct {
	Code string `json:"code"`
}

// VisitEntry 到访记录
type VisitEntry struct {
	ID        uint      `json:"id"`
	Station   string    `json:"station"`
	CreatedAt time.Time `json:"createdAt"`
}

// SearchRewardsResponse 手机号查询结果
type SearchRewardsResponse struct {
	Coupons    []models.Coupon          `json:"coupons"`
	Visits     int                      `json:"visits"`
	VisitsLeft int                      `json:"visitsLeft"`
	VisitsList []VisitEntry             `json:"visitsList"`
	Profile    *service.CustomerProfile `json:"profile"`
}

// ClaimCouponResponse 核销结果
type ClaimCouponResponse struct {
	Code    string     `json:"code"`
	Station string     `json:"station"`
	Used    bool       `json:"used"`
	UsedAt  *time.Time `json:"usedAt"`
}

// CouponProfileResponse 券状态与持有人画像
type CouponProfileResponse struct {
	Code    string                   `json:"code"`
	Used    bool                     `json:"used"`
	UsedAt  *time.Time               `json:"usedAt,omitempty"`
	Station string                   `json:"station"`
	Profile *service.CustomerProfile `json:"profile"`
}

// ScanCouponResponse 扫码核销结果
type ScanCouponResponse struct {
	ClaimCouponResponse
	Profile *service.CustomerProfile `json:"profile"`
}

// SearchRewards 按手机号查询到访次数与优惠券
func (h *Handler) SearchRewards(c *gin.Context) {
	result, err := h.RedemptionService.Search(c.Query("phone"))
	if err != nil {
		respondMappedError(c, err, rewardsErrorRules, response.CodeInternal, "error.coupon_fetch_failed")
		return
	}
	visits := make([]VisitEntry, 0, len(result.VisitsList))
	for _, review := range result.VisitsList {
		visits = append(visits, VisitEntry{
			ID:        review.ID,
			Station:   stationName(review.Station),
			CreatedAt: review.CreatedAt,
		})
	}
	response.Success(c, SearchRewardsResponse{
		Coupons:    result.Coupons,
		Visits:     result.Visits,
		VisitsLeft: result.VisitsLeft,
		VisitsList: visits,
		Profile:    result.Profile,
	})
}

// ClaimCoupon 核销券码
func (h *Handler) ClaimCoupon(c *gin.Context) {
	var req ClaimCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.RedemptionService.Claim(req.Code, cashierClaimedBy, time.Now())
	if err != nil {
		respondMappedError(c, err, rewardsErrorRules, response.CodeInternal, "error.coupon_claim_failed")
		return
	}
	response.Success(c, buildClaimResponse(coupon))
}

// GetCouponProfile 按券码查询状态与持有人画像，不核销
func (h *Handler) GetCouponProfile(c *gin.Context) {
	profile, err := h.RedemptionService.Profile(c.Query("code"))
	if err != nil {
		respondMappedError(c, err, rewardsErrorRules, response.CodeInternal, "error.coupon_fetch_failed")
		return
	}
	response.Success(c, CouponProfileResponse{
		Code:    profile.Coupon.Code,
		Used:    profile.Coupon.Used,
		UsedAt:  profile.Coupon.UsedAt,
		Station: stationName(profile.Coupon.Station),
		Profile: profile.Profile,
	})
}

// ScanCoupon 解析扫码内容（code|name|contact）并核销
func (h *Handler) ScanCoupon(c *gin.Context) {
	var req ClaimCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		respondError(c, response.CodeBadRequest, "error.coupon_code_required", nil)
		return
	}
	profile, err := h.RedemptionService.Scan(req.Code, cashierClaimedBy, time.Now())
	if err != nil {
		respondMappedError(c, err, rewardsErrorRules, response.CodeInternal, "error.coupon_claim_failed")
		return
	}
	response.Success(c, ScanCouponResponse{
		ClaimCouponResponse: buildClaimResponse(profile.Coupon),
		Profile:             profile.Profile,
	})
}

func buildClaimResponse(coupon *models.Coupon) ClaimCouponResponse {
	return ClaimCouponResponse{
		Code:    coupon.Code,
		Station: stationName(coupon.Station),
		Used:    coupon.Used,
		UsedAt:  coupon.UsedAt,
	}
}

func stationName(station *models.Station) string {
	if station == nil {
		return ""
	}
	return station.Name
}

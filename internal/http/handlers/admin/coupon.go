package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/station-rewards/internal/http/handlers/shared"
	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/repository"
	"github.com/station-rewards/internal/service"

	"github.com/gin-gonic/gin"
)

// IssueCouponsRequest 按顾客手动发券
type IssueCouponsRequest struct {
	UserID    uint   `json:"userId" binding:"required"`
	StationID string `json:"stationId" binding:"required"`
	ReviewID  *uint  `json:"reviewId"`
	Count     int    `json:"count"`
}

// IssueCouponsByPhoneRequest 按手机号手动发券
type IssueCouponsByPhoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	StationID   string `json:"stationId" binding:"required"`
	Count       int    `json:"count"`
}

// IssueCouponsResponse 手动发券结果
type IssueCouponsResponse struct {
	Coupons []models.Coupon `json:"coupons"`
}

// IssueCoupons 后台手动发券
func (h *Handler) IssueCoupons(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req IssueCouponsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	coupons, err := h.CouponIssuer.IssueManual(service.ManualIssueInput{
		CustomerID: req.UserID,
		StationRef: req.StationID,
		ReviewID:   req.ReviewID,
		Count:      req.Count,
		IssuedBy:   adminID,
	})
	if err != nil {
		h.respondCouponIssueError(c, err)
		return
	}

	h.recordAudit(c, service.AuditActionCouponIssueManual, "customer", strconv.FormatUint(uint64(req.UserID), 10), map[string]interface{}{
		"station": req.StationID,
		"count":   len(coupons),
	})
	h.invalidateStats(c)
	response.Success(c, IssueCouponsResponse{Coupons: coupons})
}

// IssueCouponsByPhone 按手机号发券，顾客不存在时自动创建
func (h *Handler) IssueCouponsByPhone(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req IssueCouponsByPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	coupons, err := h.CouponIssuer.IssueManualByPhone(req.PhoneNumber, req.StationID, req.Count, adminID)
	if err != nil {
		h.respondCouponIssueError(c, err)
		return
	}

	targetID := ""
	if len(coupons) > 0 {
		targetID = strconv.FormatUint(uint64(coupons[0].CustomerID), 10)
	}
	h.recordAudit(c, service.AuditActionCouponIssueManual, "customer", targetID, map[string]interface{}{
		"station": req.StationID,
		"count":   len(coupons),
		"byPhone": true,
	})
	h.invalidateStats(c)
	response.Success(c, IssueCouponsResponse{Coupons: coupons})
}

// GetCoupons 优惠券分页列表
func (h *Handler) GetCoupons(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
		Origin:   strings.TrimSpace(c.Query("origin")),
		Used:     handlershared.ParseOptionalBool(c.Query("used")),
	}
	if ref := strings.TrimSpace(c.Query("stationId")); ref != "" {
		station, err := h.StationService.Get(ref)
		if err != nil {
			respondMappedError(c, err, stationErrorRules, response.CodeInternal, "error.coupon_fetch_failed")
			return
		}
		filter.StationID = station.ID
	}
	if raw := strings.TrimSpace(c.Query("customerId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		filter.CustomerID = uint(id)
	}

	coupons, total, err := h.CouponIssuer.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, coupons, response.BuildPagination(page, pageSize, total))
}

// GetCouponStats 按站点汇总优惠券发放与使用情况
func (h *Handler) GetCouponStats(c *gin.Context) {
	stats, err := h.StatsService.CouponStats(c.Request.Context(), statsQueryFromContext(c))
	if err != nil {
		respondMappedError(c, err, stationErrorRules, response.CodeInternal, "error.stats_fetch_failed")
		return
	}
	response.Success(c, stats)
}

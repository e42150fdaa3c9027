package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/station-rewards/internal/http/handlers/shared"
	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/repository"
	"github.com/station-rewards/internal/service"

	"github.com/gin-gonic/gin"
)

// FlagReviewRequest 评价审核标记
type FlagReviewRequest struct {
	Flagged *bool `json:"flagged" binding:"required"`
}

// GetReviews 评价分页列表，可按站点与标记过滤
func (h *Handler) GetReviews(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.ReviewListFilter{
		Page:     page,
		PageSize: pageSize,
		Flagged:  handlershared.ParseOptionalBool(c.Query("flagged")),
	}
	if ref := strings.TrimSpace(c.Query("stationId")); ref != "" {
		station, err := h.StationService.Get(ref)
		if err != nil {
			respondMappedError(c, err, stationErrorRules, response.CodeInternal, "error.review_fetch_failed")
			return
		}
		filter.StationID = station.ID
	}

	reviews, total, err := h.ReviewService.ListReviews(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.review_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, reviews, response.BuildPagination(page, pageSize, total))
}

// FlagReview 标记或取消标记评价
func (h *Handler) FlagReview(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req FlagReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	review, err := h.ReviewService.SetFlagged(id, *req.Flagged)
	if err != nil {
		respondMappedError(c, err, reviewErrorRules, response.CodeInternal, "error.review_update_failed")
		return
	}
	h.recordAudit(c, service.AuditActionReviewFlag, "review", strconv.FormatUint(uint64(id), 10), map[string]interface{}{
		"flagged": *req.Flagged,
	})
	h.invalidateStats(c)
	response.Success(c, review)
}

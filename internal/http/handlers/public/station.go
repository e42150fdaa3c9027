package public

import (
	"errors"
	"strings"
	"time"

	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/service"

	"github.com/gin-gonic/gin"
)

// GetStations 启用站点列表，可按 stationId 过滤
func (h *Handler) GetStations(c *gin.Context) {
	stations, err := h.StationService.ListActive(strings.TrimSpace(c.Query("stationId")))
	if err != nil {
		respondError(c, response.CodeInternal, "error.station_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"stations": stations})
}

// GetStation 站点详情，支持站点编号或数字 ID
func (h *Handler) GetStation(c *gin.Context) {
	station, err := h.StationService.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrStationNotFound) {
			respondError(c, response.CodeNotFound, "error.station_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.station_fetch_failed", err)
		return
	}
	if !station.IsActive {
		respondError(c, response.CodeNotFound, "error.station_not_found", nil)
		return
	}
	response.Success(c, station)
}

// StationReviewItem 站点公开评价，不含联系方式
type StationReviewItem struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Rating            int       `json:"rating"`
	Cleanliness       *int      `json:"cleanliness,omitempty"`
	ServiceSpeed      *int      `json:"serviceSpeed,omitempty"`
	StaffFriendliness *int      `json:"staffFriendliness,omitempty"`
	Comment           string    `json:"comment"`
	CreatedAt         time.Time `json:"createdAt"`
}

// GetStationReviews 站点最近的未标记评价
func (h *Handler) GetStationReviews(c *gin.Context) {
	station, err := h.StationService.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrStationNotFound) {
			respondError(c, response.CodeNotFound, "error.station_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.station_fetch_failed", err)
		return
	}
	reviews, err := h.ReviewService.ListStationReviews(station.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.review_fetch_failed", err)
		return
	}
	items := make([]StationReviewItem, 0, len(reviews))
	for _, review := range reviews {
		item := StationReviewItem{
			ID:                review.ID,
			Rating:            review.Rating,
			Cleanliness:       review.Cleanliness,
			ServiceSpeed:      review.ServiceSpeed,
			StaffFriendliness: review.StaffFriendliness,
			Comment:           review.Comment,
			CreatedAt:         review.CreatedAt,
		}
		if review.Customer != nil {
			item.Name = review.Customer.Name
		}
		items = append(items, item)
	}
	response.Success(c, gin.H{"station": station.Summary(), "reviews": items})
}

package public

import (
	"time"

	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/service"

	"github.com/gin-gonic/gin"
)

// GPSRequest 提交评价时的定位
type GPSRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// SubmitReviewRequest 顾客评价请求
type SubmitReviewRequest struct {
	StationID         string      `json:"stationId"`
	Rating            int         `json:"rating"`
	Cleanliness       *int        `json:"cleanliness"`
	ServiceSpeed      *int        `json:"serviceSpeed"`
	StaffFriendliness *int        `json:"staffFriendliness"`
	Comment           string      `json:"comment"`
	Name              string      `json:"name"`
	Contact           string      `json:"contact"`
	GPS               *GPSRequest `json:"gps"`
}

// SubmitReviewResponse 评价提交结果
type SubmitReviewResponse struct {
	ReviewID   uint           `json:"reviewId"`
	Visits     int            `json:"visits"`
	VisitsLeft int            `json:"visitsLeft"`
	Coupon     *models.Coupon `json:"coupon,omitempty"`
}

// SubmitReview 提交评价并累计到访，满阈值时自动发券
func (h *Handler) SubmitReview(c *gin.Context) {
	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input := service.SubmitReviewInput{
		StationRef:        req.StationID,
		Rating:            req.Rating,
		Cleanliness:       req.Cleanliness,
		ServiceSpeed:      req.ServiceSpeed,
		StaffFriendliness: req.StaffFriendliness,
		Comment:           req.Comment,
		Name:              req.Name,
		Contact:           req.Contact,
	}
	if req.GPS != nil {
		input.Latitude = req.GPS.Lat
		input.Longitude = req.GPS.Lng
	}

	result, err := h.ReviewService.SubmitReview(input, time.Now())
	if err != nil {
		respondMappedError(c, err, reviewSubmitErrorRules, response.CodeInternal, "error.review_submit_failed")
		return
	}

	resp := SubmitReviewResponse{
		Visits:     result.Visits,
		VisitsLeft: result.VisitsLeft,
		Coupon:     result.Coupon,
	}
	if result.Review != nil {
		resp.ReviewID = result.Review.ID
	}
	response.Success(c, resp)
}

package admin

import (
	"strings"

	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/service"

	"github.com/gin-gonic/gin"
)

func statsQueryFromContext(c *gin.Context) service.StatsQueryInput {
	return service.StatsQueryInput{
		StartDate:    strings.TrimSpace(c.Query("startDate")),
		EndDate:      strings.TrimSpace(c.Query("endDate")),
		StationRef:   strings.TrimSpace(c.Query("stationId")),
		ForceRefresh: c.Query("forceRefresh") == "true",
	}
}

// GetStats 仪表盘聚合统计
func (h *Handler) GetStats(c *gin.Context) {
	overview, err := h.StatsService.ComputeStats(c.Request.Context(), statsQueryFromContext(c))
	if err != nil {
		respondMappedError(c, err, stationErrorRules, response.CodeInternal, "error.stats_fetch_failed")
		return
	}
	response.Success(c, overview)
}

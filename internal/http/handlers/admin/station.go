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

// StationRequest 创建/更新站点
type StationRequest struct {
	StationID string  `json:"stationId"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsActive  *bool   `json:"isActive"`
}

func (r StationRequest) toInput() service.StationInput {
	return service.StationInput{
		Code:      r.StationID,
		Name:      r.Name,
		Address:   r.Address,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		IsActive:  r.IsActive,
	}
}

// GetStations 后台站点列表，含停用站点
func (h *Handler) GetStations(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	stations, total, err := h.StationService.List(repository.StationListFilter{
		Page:       page,
		PageSize:   pageSize,
		Code:       strings.TrimSpace(c.Query("stationId")),
		Search:     strings.TrimSpace(c.Query("search")),
		OnlyActive: c.Query("active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.station_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, stations, response.BuildPagination(page, pageSize, total))
}

// CreateStation 创建站点
func (h *Handler) CreateStation(c *gin.Context) {
	var req StationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	station, err := h.StationService.Create(req.toInput())
	if err != nil {
		respondMappedError(c, err, stationErrorRules, response.CodeInternal, "error.station_save_failed")
		return
	}
	h.recordAudit(c, service.AuditActionStationCreate, "station", station.Code, map[string]interface{}{"name": station.Name})
	h.invalidateStats(c)
	response.Success(c, station)
}

// UpdateStation 更新站点
func (h *Handler) UpdateStation(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req StationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	station, err := h.StationService.Update(id, req.toInput())
	if err != nil {
		respondMappedError(c, err, stationErrorRules, response.CodeInternal, "error.station_save_failed")
		return
	}
	h.recordAudit(c, service.AuditActionStationUpdate, "station", strconv.FormatUint(uint64(id), 10), map[string]interface{}{
		"stationId": station.Code,
		"isActive":  station.IsActive,
	})
	h.invalidateStats(c)
	response.Success(c, station)
}

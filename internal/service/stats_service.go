package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/station-rewards/internal/cache"
	"github.com/station-rewards/internal/config"
	"github.com/station-rewards/internal/constants"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/repository"

	"github.com/shopspring/decimal"
)

// StatsService 后台统计报表，只读
type StatsService struct {
	cfg         config.RewardsConfig
	repo        repository.StatsRepository
	stationRepo repository.StationRepository
}

// StatsQueryInput 统计查询参数，日期为 YYYY-MM-DD 闭区间
type StatsQueryInput struct {
	StartDate    string
	EndDate      string
	StationRef   string
	ForceRefresh bool
}

// CouponStationStat 单站点优惠券统计
type CouponStationStat struct {
	ID              uint    `json:"id"`
	StationID       string  `json:"stationId"`
	StationName     string  `json:"stationName"`
	TotalCoupons    int64   `json:"totalCoupons"`
	Used            int64   `json:"used"`
	Unused          int64   `json:"unused"`
	Manual          int64   `json:"manual"`
	ReviewBased     int64   `json:"reviewBased"`
	UtilisationRate float64 `json:"utilisationRate"`
}

// StationRanking 站点评分排名
type StationRanking struct {
	ID          uint    `json:"id"`
	StationID   string  `json:"stationId"`
	Name        string  `json:"name"`
	AvgRating   float64 `json:"avgRating"`
	ReviewCount int64   `json:"reviewCount"`
}

// StationReviewEntry 站点最新评价
type StationReviewEntry struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Flagged   bool      `json:"flagged"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatsOverview 仪表盘聚合结果
type StatsOverview struct {
	StartDate              string                          `json:"startDate,omitempty"`
	EndDate                string                          `json:"endDate,omitempty"`
	TotalReviews           int64                           `json:"totalReviews"`
	TotalStations          int64                           `json:"totalStations"`
	TotalCoupons           int64                           `json:"totalCoupons"`
	AvgRating              float64                         `json:"avgRating"`
	TopStations            []StationRanking                `json:"topStations"`
	LowStations            []StationRanking                `json:"lowStations"`
	StationReviews         map[string][]StationReviewEntry `json:"stationReviews"`
	PerStationCouponStats  []CouponStationStat             `json:"perStationCouponStats"`
	OverallUtilisationRate float64                         `json:"overallUtilisationRate"`
}

type statsWindow struct {
	startDate string
	endDate   string
	station   *models.Station
	repo      repository.StatsWindow
}

// NewStatsService 创建统计服务
func NewStatsService(cfg config.RewardsConfig, repo repository.StatsRepository, stationRepo repository.StationRepository) *StatsService {
	return &StatsService{cfg: cfg.Normalize(), repo: repo, stationRepo: stationRepo}
}

// ComputeStats 仪表盘聚合：评价、发券与站点排名
func (s *StatsService) ComputeStats(ctx context.Context, input StatsQueryInput) (*StatsOverview, error) {
	window, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}
	cacheKey := window.cacheKey("overview")
	if !input.ForceRefresh {
		var cached StatsOverview
		if hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached); cacheErr == nil && hit {
			return &cached, nil
		}
	}

	couponStats, err := s.couponStats(window)
	if err != nil {
		return nil, err
	}
	reviewRows, err := s.repo.ReviewStatsByStation(window.repo)
	if err != nil {
		return nil, err
	}
	stations, err := s.stationIndex(reviewRows)
	if err != nil {
		return nil, err
	}

	overview := &StatsOverview{
		StartDate:              window.startDate,
		EndDate:                window.endDate,
		StationReviews:         make(map[string][]StationReviewEntry, len(reviewRows)),
		PerStationCouponStats:  couponStats,
		OverallUtilisationRate: overallUtilisation(couponStats),
	}

	if window.station != nil {
		overview.TotalStations = 1
	} else if overview.TotalStations, err = s.stationRepo.Count(true); err != nil {
		return nil, err
	}

	var ratingSum int64
	for _, row := range reviewRows {
		overview.TotalReviews += row.ReviewCount
		ratingSum += row.RatingSum
	}
	for _, row := range couponStats {
		overview.TotalCoupons += row.TotalCoupons
	}
	overview.AvgRating = ratioRounded(ratingSum, overview.TotalReviews, 1)

	overview.TopStations = rankStations(reviewRows, stations, true, s.cfg.StatsRankingLimit)
	overview.LowStations = rankStations(reviewRows, stations, false, s.cfg.StatsRankingLimit)

	for _, row := range reviewRows {
		reviews, err := s.repo.ListRecentReviews(window.repo, row.StationID, s.cfg.StationReviewLimit)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("%d", row.StationID)
		if station, ok := stations[row.StationID]; ok && station.Code != "" {
			key = station.Code
		}
		overview.StationReviews[key] = buildStationReviewEntries(reviews)
	}

	s.store(ctx, cacheKey, overview)
	return overview, nil
}

// CouponStats 按站点的优惠券使用率
func (s *StatsService) CouponStats(ctx context.Context, input StatsQueryInput) ([]CouponStationStat, error) {
	window, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}
	cacheKey := window.cacheKey("coupons")
	if !input.ForceRefresh {
		var cached []CouponStationStat
		if hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached); cacheErr == nil && hit {
			return cached, nil
		}
	}
	stats, err := s.couponStats(window)
	if err != nil {
		return nil, err
	}
	s.store(ctx, cacheKey, stats)
	return stats, nil
}

// Invalidate 清理统计缓存
func (s *StatsService) Invalidate(ctx context.Context) error {
	return cache.DelByPrefix(ctx, "stats:")
}

func (s *StatsService) store(ctx context.Context, key string, value interface{}) {
	if s.cfg.StatsCacheSeconds <= 0 {
		return
	}
	_ = cache.SetJSON(ctx, key, value, time.Duration(s.cfg.StatsCacheSeconds)*time.Second)
}

func (s *StatsService) couponStats(window statsWindow) ([]CouponStationStat, error) {
	rows, err := s.repo.CouponStatsByStation(window.repo)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.StationID)
	}
	stations, err := s.stationsByID(ids)
	if err != nil {
		return nil, err
	}

	result := make([]CouponStationStat, 0, len(rows))
	for _, row := range rows {
		stat := CouponStationStat{
			ID:              row.StationID,
			TotalCoupons:    row.Total,
			Used:            row.Used,
			Unused:          row.Total - row.Used,
			Manual:          row.Manual,
			ReviewBased:     row.ReviewBased,
			UtilisationRate: ratioRounded(row.Used, row.Total, 100),
		}
		if station, ok := stations[row.StationID]; ok {
			stat.StationID = station.Code
			stat.StationName = station.Name
		}
		result = append(result, stat)
	}
	return result, nil
}

func (s *StatsService) stationIndex(rows []repository.ReviewStationRow) (map[uint]models.Station, error) {
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.StationID)
	}
	return s.stationsByID(ids)
}

func (s *StatsService) stationsByID(ids []uint) (map[uint]models.Station, error) {
	stations, err := s.stationRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	index := make(map[uint]models.Station, len(stations))
	for _, station := range stations {
		index[station.ID] = station
	}
	return index, nil
}

func (s *StatsService) resolveWindow(input StatsQueryInput) (statsWindow, error) {
	window := statsWindow{
		startDate: strings.TrimSpace(input.StartDate),
		endDate:   strings.TrimSpace(input.EndDate),
	}
	if window.startDate != "" {
		startAt, err := time.ParseInLocation(constants.DateLayout, window.startDate, time.Local)
		if err != nil {
			return statsWindow{}, ErrStatsRangeInvalid
		}
		window.repo.StartAt = &startAt
	}
	if window.endDate != "" {
		endDay, err := time.ParseInLocation(constants.DateLayout, window.endDate, time.Local)
		if err != nil {
			return statsWindow{}, ErrStatsRangeInvalid
		}
		endAt := endDay.AddDate(0, 0, 1)
		window.repo.EndAt = &endAt
	}
	if window.repo.StartAt != nil && window.repo.EndAt != nil && !window.repo.EndAt.After(*window.repo.StartAt) {
		return statsWindow{}, ErrStatsRangeInvalid
	}

	if ref := strings.TrimSpace(input.StationRef); ref != "" {
		station, err := s.stationRepo.GetByRef(ref)
		if err != nil {
			return statsWindow{}, err
		}
		if station == nil {
			return statsWindow{}, ErrStationNotFound
		}
		window.station = station
		window.repo.StationID = station.ID
	}
	return window, nil
}

func (w statsWindow) cacheKey(kind string) string {
	return fmt.Sprintf("stats:%s:%s:%s:%d", kind, w.startDate, w.endDate, w.repo.StationID)
}

// overallUtilisation 各站点使用率的算术平均，不按发券量加权
func overallUtilisation(stats []CouponStationStat) float64 {
	if len(stats) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, stat := range stats {
		sum = sum.Add(exactRatio(stat.Used, stat.TotalCoupons, 100))
	}
	return sum.Div(decimal.NewFromInt(int64(len(stats)))).Round(2).InexactFloat64()
}

func exactRatio(numerator, denominator int64, scale int64) decimal.Decimal {
	if denominator <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(numerator).Mul(decimal.NewFromInt(scale)).DivRound(decimal.NewFromInt(denominator), 8)
}

func ratioRounded(numerator, denominator int64, scale int64) float64 {
	return exactRatio(numerator, denominator, scale).Round(2).InexactFloat64()
}

// rankStations 按平均分排序，同分时评价数多者在前，再按站点 ID 升序
func rankStations(rows []repository.ReviewStationRow, stations map[uint]models.Station, descending bool, limit int) []StationRanking {
	candidates := make([]repository.ReviewStationRow, 0, len(rows))
	for _, row := range rows {
		if row.ReviewCount > 0 {
			candidates = append(candidates, row)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		// 交叉相乘比较平均分，避免浮点误差
		left := a.RatingSum * b.ReviewCount
		right := b.RatingSum * a.ReviewCount
		if left != right {
			if descending {
				return left > right
			}
			return left < right
		}
		if a.ReviewCount != b.ReviewCount {
			return a.ReviewCount > b.ReviewCount
		}
		return a.StationID < b.StationID
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	result := make([]StationRanking, 0, len(candidates))
	for _, row := range candidates {
		item := StationRanking{
			ID:          row.StationID,
			AvgRating:   ratioRounded(row.RatingSum, row.ReviewCount, 1),
			ReviewCount: row.ReviewCount,
		}
		if station, ok := stations[row.StationID]; ok {
			item.StationID = station.Code
			item.Name = station.Name
		}
		result = append(result, item)
	}
	return result
}

func buildStationReviewEntries(reviews []models.Review) []StationReviewEntry {
	entries := make([]StationReviewEntry, 0, len(reviews))
	for _, review := range reviews {
		entry := StationReviewEntry{
			ID:        review.ID,
			Rating:    review.Rating,
			Comment:   review.Comment,
			Flagged:   review.Flagged,
			CreatedAt: review.CreatedAt,
		}
		if review.Customer != nil {
			entry.Name = review.Customer.Name
			entry.Contact = review.Customer.Contact
		}
		entries = append(entries, entry)
	}
	return entries
}

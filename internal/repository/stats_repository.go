package repository

import (
	"github.com/station-rewards/internal/constants"
	"github.com/station-rewards/internal/models"

	"gorm.io/gorm"
)

// StatsRepository 统计聚合查询接口
// 说明：只做分组计数，比率与排名在服务层计算。
type StatsRepository interface {
	CouponStatsByStation(window StatsWindow) ([]CouponStationRow, error)
	ReviewStatsByStation(window StatsWindow) ([]ReviewStationRow, error)
	ListRecentReviews(window StatsWindow, stationID uint, limit int) ([]models.Review, error)
}

// CouponStationRow 单站点优惠券计数
type CouponStationRow struct {
	StationID   uint
	Total       int64
	Used        int64
	Manual      int64
	ReviewBased int64
}

// ReviewStationRow 单站点评价计数
type ReviewStationRow struct {
	StationID   uint
	ReviewCount int64
	RatingSum   int64
}

// GormStatsRepository GORM 实现
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓库
func NewStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

func applyStatsWindow(query *gorm.DB, window StatsWindow) *gorm.DB {
	if window.StartAt != nil {
		query = query.Where("created_at >= ?", *window.StartAt)
	}
	if window.EndAt != nil {
		query = query.Where("created_at < ?", *window.EndAt)
	}
	if window.StationID != 0 {
		query = query.Where("station_id = ?", window.StationID)
	}
	return query
}

// CouponStatsByStation 按站点统计发券与核销数量
func (r *GormStatsRepository) CouponStatsByStation(window StatsWindow) ([]CouponStationRow, error) {
	var rows []CouponStationRow
	query := applyStatsWindow(r.db.Model(&models.Coupon{}), window)
	err := query.
		Select(
			"station_id, COUNT(*) AS total, "+
				"SUM(CASE WHEN used = ? THEN 1 ELSE 0 END) AS used, "+
				"SUM(CASE WHEN origin = ? THEN 1 ELSE 0 END) AS manual, "+
				"SUM(CASE WHEN origin = ? THEN 1 ELSE 0 END) AS review_based",
			true, constants.CouponOriginManual, constants.CouponOriginReview,
		).
		Group("station_id").
		Order("station_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReviewStatsByStation 按站点统计评价数量与评分总和
func (r *GormStatsRepository) ReviewStatsByStation(window StatsWindow) ([]ReviewStationRow, error) {
	var rows []ReviewStationRow
	query := applyStatsWindow(r.db.Model(&models.Review{}), window)
	err := query.
		Select("station_id, COUNT(*) AS review_count, COALESCE(SUM(rating), 0) AS rating_sum").
		Group("station_id").
		Order("station_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListRecentReviews 站点在窗口内的最新评价
func (r *GormStatsRepository) ListRecentReviews(window StatsWindow, stationID uint, limit int) ([]models.Review, error) {
	if limit <= 0 {
		limit = 10
	}
	window.StationID = stationID
	var reviews []models.Review
	err := applyStatsWindow(r.db.Model(&models.Review{}), window).
		Preload("Customer").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

package repository

import (
	"errors"

	"github.com/station-rewards/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository 评价数据访问接口
type ReviewRepository interface {
	Create(review *models.Review) error
	GetByID(id uint) (*models.Review, error)
	List(filter ReviewListFilter) ([]models.Review, int64, error)
	ListRecentByStation(stationID uint, limit int) ([]models.Review, error)
	SetFlagged(id uint, flagged bool) error
	WithTx(tx *gorm.DB) *GormReviewRepository
}

// GormReviewRepository GORM 实现
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓库
func NewReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReviewRepository) WithTx(tx *gorm.DB) *GormReviewRepository {
	if tx == nil {
		return r
	}
	return &GormReviewRepository{db: tx}
}

// Create 创建评价
func (r *GormReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// GetByID 根据 ID 获取评价
func (r *GormReviewRepository) GetByID(id uint) (*models.Review, error) {
	if id == 0 {
		return nil, nil
	}
	var review models.Review
	if err := r.db.Preload("Customer").Preload("Station").First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// List 评价列表（后台）
func (r *GormReviewRepository) List(filter ReviewListFilter) ([]models.Review, int64, error) {
	query := r.db.Model(&models.Review{})
	if filter.StationID != 0 {
		query = query.Where("station_id = ?", filter.StationID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Flagged != nil {
		query = query.Where("flagged = ?", *filter.Flagged)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	var reviews []models.Review
	if err := query.Preload("Customer").Preload("Station").Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// ListRecentByStation 站点最近的未标记评价
func (r *GormReviewRepository) ListRecentByStation(stationID uint, limit int) ([]models.Review, error) {
	if limit <= 0 {
		limit = 10
	}
	var reviews []models.Review
	err := r.db.
		Where("station_id = ? AND flagged = ?", stationID, false).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// SetFlagged 更新审核标记，评价其余字段不可变
func (r *GormReviewRepository) SetFlagged(id uint, flagged bool) error {
	result := r.db.Model(&models.Review{}).Where("id = ?", id).Update("flagged", flagged)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

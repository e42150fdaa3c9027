package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/station-rewards/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	ExistsByCode(code string) (bool, error)
	ExistsByMultiple(customerID uint, multipleIndex int) (bool, error)
	Create(coupon *models.Coupon) error
	MarkUsed(code string, usedAt time.Time, claimedBy string) (bool, error)
	MarkNotified(id uint, at time.Time) error
	ListByCustomer(customerID uint) ([]models.Coupon, error)
	List(filter CouponListFilter) ([]models.Coupon, int64, error)
	WithTx(tx *gorm.DB) *GormCouponRepository
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) *GormCouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// GetByID 根据 ID 获取优惠券
func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	if id == 0 {
		return nil, nil
	}
	var coupon models.Coupon
	if err := r.db.Preload("Station").First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByCode 根据券码获取优惠券
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var coupon models.Coupon
	if err := r.db.Preload("Customer").Preload("Station").Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// ExistsByCode 券码是否已被占用
func (r *GormCouponRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Coupon{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByMultiple 顾客的第 N 个阈值倍数是否已发券
func (r *GormCouponRepository) ExistsByMultiple(customerID uint, multipleIndex int) (bool, error) {
	var count int64
	err := r.db.Model(&models.Coupon{}).
		Where("customer_id = ? AND multiple_index = ?", customerID, multipleIndex).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 创建优惠券
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

// MarkUsed 条件更新核销状态，返回是否由本次调用完成核销
func (r *GormCouponRepository) MarkUsed(code string, usedAt time.Time, claimedBy string) (bool, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("code = ? AND used = ?", code, false).
		UpdateColumns(map[string]interface{}{
			"used":       true,
			"used_at":    usedAt,
			"claimed_by": claimedBy,
			"updated_at": usedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkNotified 记录发券通知时间
func (r *GormCouponRepository) MarkNotified(id uint, at time.Time) error {
	return r.db.Model(&models.Coupon{}).Where("id = ?", id).UpdateColumn("notified_at", at).Error
}

// ListByCustomer 顾客的全部优惠券，最新在前
func (r *GormCouponRepository) ListByCustomer(customerID uint) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.Preload("Station").
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Find(&coupons).Error
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

// List 优惠券列表（后台）
func (r *GormCouponRepository) List(filter CouponListFilter) ([]models.Coupon, int64, error) {
	query := r.db.Model(&models.Coupon{})
	if filter.StationID != 0 {
		query = query.Where("station_id = ?", filter.StationID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if code := strings.TrimSpace(filter.Code); code != "" {
		query = query.Where("code = ?", strings.ToUpper(code))
	}
	if origin := strings.TrimSpace(filter.Origin); origin != "" {
		query = query.Where("origin = ?", origin)
	}
	if filter.Used != nil {
		query = query.Where("used = ?", *filter.Used)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	var coupons []models.Coupon
	if err := query.Preload("Customer").Preload("Station").Order("created_at DESC, id DESC").Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

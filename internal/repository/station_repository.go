package repository

import (
	"errors"
	"strconv"
	"strings"

	"github.com/station-rewards/internal/models"

	"gorm.io/gorm"
)

// StationRepository 站点数据访问接口
type StationRepository interface {
	GetByID(id uint) (*models.Station, error)
	GetByCode(code string) (*models.Station, error)
	GetByRef(ref string) (*models.Station, error)
	ListByIDs(ids []uint) ([]models.Station, error)
	List(filter StationListFilter) ([]models.Station, int64, error)
	Count(onlyActive bool) (int64, error)
	Create(station *models.Station) error
	Update(station *models.Station) error
	WithTx(tx *gorm.DB) *GormStationRepository
}

// GormStationRepository GORM 实现
type GormStationRepository struct {
	db *gorm.DB
}

// NewStationRepository 创建站点仓库
func NewStationRepository(db *gorm.DB) *GormStationRepository {
	return &GormStationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStationRepository) WithTx(tx *gorm.DB) *GormStationRepository {
	if tx == nil {
		return r
	}
	return &GormStationRepository{db: tx}
}

// GetByID 根据 ID 获取站点
func (r *GormStationRepository) GetByID(id uint) (*models.Station, error) {
	if id == 0 {
		return nil, nil
	}
	var station models.Station
	if err := r.db.First(&station, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &station, nil
}

// GetByCode 根据对外编号获取站点
func (r *GormStationRepository) GetByCode(code string) (*models.Station, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var station models.Station
	if err := r.db.Where("code = ?", code).First(&station).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &station, nil
}

// GetByRef 按站点编号查找，未命中且为纯数字时回退按主键查找
func (r *GormStationRepository) GetByRef(ref string) (*models.Station, error) {
	ref = strings.TrimSpace(ref)
	station, err := r.GetByCode(ref)
	if err != nil || station != nil {
		return station, err
	}
	id, parseErr := strconv.ParseUint(ref, 10, 64)
	if parseErr != nil || id == 0 {
		return nil, nil
	}
	return r.GetByID(uint(id))
}

// ListByIDs 批量获取站点
func (r *GormStationRepository) ListByIDs(ids []uint) ([]models.Station, error) {
	if len(ids) == 0 {
		return []models.Station{}, nil
	}
	var stations []models.Station
	if err := r.db.Where("id IN ?", ids).Find(&stations).Error; err != nil {
		return nil, err
	}
	return stations, nil
}

// List 站点列表
func (r *GormStationRepository) List(filter StationListFilter) ([]models.Station, int64, error) {
	query := r.db.Model(&models.Station{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if code := strings.TrimSpace(filter.Code); code != "" {
		query = query.Where("code = ?", code)
	}
	query = applyLikeSearch(query, filter.Search, "name", "code", "address")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	var stations []models.Station
	if err := query.Order("name ASC, id ASC").Find(&stations).Error; err != nil {
		return nil, 0, err
	}
	return stations, total, nil
}

// Count 统计站点数量
func (r *GormStationRepository) Count(onlyActive bool) (int64, error) {
	query := r.db.Model(&models.Station{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建站点
func (r *GormStationRepository) Create(station *models.Station) error {
	return r.db.Create(station).Error
}

// Update 更新站点
func (r *GormStationRepository) Update(station *models.Station) error {
	return r.db.Save(station).Error
}

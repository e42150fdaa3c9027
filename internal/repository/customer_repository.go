package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/station-rewards/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerRepository 顾客数据访问接口
type CustomerRepository interface {
	GetByID(id uint) (*models.Customer, error)
	GetByContact(contact string) (*models.Customer, error)
	GetByContactForUpdate(contact string) (*models.Customer, error)
	GetByPhone(phone string) (*models.Customer, error)
	Create(customer *models.Customer) error
	IncrementVisits(id uint, name string, at time.Time) error
	List(filter CustomerListFilter) ([]models.Customer, int64, error)
	WithTx(tx *gorm.DB) *GormCustomerRepository
}

// GormCustomerRepository GORM 实现
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建顾客仓库
func NewCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCustomerRepository) WithTx(tx *gorm.DB) *GormCustomerRepository {
	if tx == nil {
		return r
	}
	return &GormCustomerRepository{db: tx}
}

// GetByID 根据 ID 获取顾客
func (r *GormCustomerRepository) GetByID(id uint) (*models.Customer, error) {
	if id == 0 {
		return nil, nil
	}
	var customer models.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// GetByContact 根据归一化联系方式获取顾客
func (r *GormCustomerRepository) GetByContact(contact string) (*models.Customer, error) {
	return r.findByContact(r.db, contact)
}

// GetByContactForUpdate 加行锁读取顾客（SQLite 忽略锁子句，依赖写事务串行）
func (r *GormCustomerRepository) GetByContactForUpdate(contact string) (*models.Customer, error) {
	return r.findByContact(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), contact)
}

func (r *GormCustomerRepository) findByContact(query *gorm.DB, contact string) (*models.Customer, error) {
	contact = models.NormalizeContact(contact)
	if contact == "" {
		return nil, nil
	}
	var customer models.Customer
	if err := query.Where("contact = ?", contact).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// GetByPhone 根据手机号获取顾客，兼容联系方式字段直接存储手机号
func (r *GormCustomerRepository) GetByPhone(phone string) (*models.Customer, error) {
	phone = models.NormalizeContact(phone)
	if phone == "" {
		return nil, nil
	}
	var customer models.Customer
	if err := r.db.Where("phone = ? OR contact = ?", phone, phone).Order("id ASC").First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// Create 创建顾客
func (r *GormCustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// IncrementVisits 原子递增访问次数并记录最近评价时间
func (r *GormCustomerRepository) IncrementVisits(id uint, name string, at time.Time) error {
	updates := map[string]interface{}{
		"visits":         gorm.Expr("visits + ?", 1),
		"last_review_at": at,
		"updated_at":     at,
	}
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
	}
	result := r.db.Model(&models.Customer{}).Where("id = ?", id).UpdateColumns(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 顾客列表
func (r *GormCustomerRepository) List(filter CustomerListFilter) ([]models.Customer, int64, error) {
	query := r.db.Model(&models.Customer{})
	query = applyLikeSearch(query, filter.Search, "name", "contact")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	var customers []models.Customer
	if err := query.Order("id DESC").Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

package service

import (
	"errors"
	"time"

	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/repository"

	"gorm.io/gorm"
)

// VisitCounter 顾客到访计数，只增不减
type VisitCounter struct {
	threshold int
	locks     *keyedLock
}

// NewVisitCounter 创建到访计数器
func NewVisitCounter(threshold int) *VisitCounter {
	if threshold <= 0 {
		threshold = 5
	}
	return &VisitCounter{threshold: threshold, locks: newKeyedLock()}
}

// Threshold 发券阈值
func (v *VisitCounter) Threshold() int {
	return v.threshold
}

// VisitsLeft 距离下一张券还需的到访次数，恰好达到倍数时为 0
func (v *VisitCounter) VisitsLeft(visits int) int {
	return VisitsLeft(visits, v.threshold)
}

// VisitsLeft (threshold - visits % threshold) % threshold
func VisitsLeft(visits, threshold int) int {
	if threshold <= 0 || visits < 0 {
		return 0
	}
	return (threshold - visits%threshold) % threshold
}

// Serialize 进程内按联系方式串行化，返回释放函数
// 多实例部署时由事务内的行锁与原子自增兜底。
func (v *VisitCounter) Serialize(contact string) func() {
	return v.locks.Lock(models.NormalizeContact(contact))
}

// Increment 在事务内原子自增并返回新计数
func (v *VisitCounter) Increment(repo repository.CustomerRepository, customer *models.Customer, name string, at time.Time) (int, error) {
	if customer == nil || customer.ID == 0 {
		return 0, ErrCustomerNotFound
	}
	if err := repo.IncrementVisits(customer.ID, name, at); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCustomerNotFound
		}
		return 0, err
	}
	fresh, err := repo.GetByID(customer.ID)
	if err != nil {
		return 0, err
	}
	if fresh == nil {
		return 0, ErrCustomerNotFound
	}
	*customer = *fresh
	return fresh.Visits, nil
}

// GetCount 读取顾客当前计数，不存在的顾客视为 0
func (v *VisitCounter) GetCount(repo repository.CustomerRepository, contact string) (int, error) {
	customer, err := repo.GetByContact(contact)
	if err != nil {
		return 0, err
	}
	if customer == nil {
		return 0, nil
	}
	return customer.Visits, nil
}

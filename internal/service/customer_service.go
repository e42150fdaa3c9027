package service

import (
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/repository"
)

// CustomerService 顾客查询（后台手动发券选择顾客）
type CustomerService struct {
	repo   repository.CustomerRepository
	visits *VisitCounter
}

// NewCustomerService 创建顾客服务
func NewCustomerService(repo repository.CustomerRepository, visits *VisitCounter) *CustomerService {
	return &CustomerService{repo: repo, visits: visits}
}

// List 顾客列表
func (s *CustomerService) List(filter repository.CustomerListFilter) ([]models.Customer, int64, error) {
	return s.repo.List(filter)
}

// VisitsLeft 距离下一张券的次数
func (s *CustomerService) VisitsLeft(visits int) int {
	return s.visits.VisitsLeft(visits)
}

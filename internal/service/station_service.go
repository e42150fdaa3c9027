package service

import (
	"errors"
	"strings"

	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/repository"

	"gorm.io/gorm"
)

// StationService 站点管理
type StationService struct {
	repo repository.StationRepository
}

// StationInput 创建/更新站点参数
type StationInput struct {
	Code      string
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	IsActive  *bool
}

// NewStationService 创建站点服务
func NewStationService(repo repository.StationRepository) *StationService {
	return &StationService{repo: repo}
}

// ListActive 前台可选站点
func (s *StationService) ListActive(code string) ([]models.Station, error) {
	stations, _, err := s.repo.List(repository.StationListFilter{Code: code, OnlyActive: true})
	return stations, err
}

// List 后台站点列表
func (s *StationService) List(filter repository.StationListFilter) ([]models.Station, int64, error) {
	return s.repo.List(filter)
}

// Get 按站点编号或 ID 获取
func (s *StationService) Get(ref string) (*models.Station, error) {
	station, err := s.repo.GetByRef(ref)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, ErrStationNotFound
	}
	return station, nil
}

// Create 创建站点
func (s *StationService) Create(input StationInput) (*models.Station, error) {
	station := &models.Station{IsActive: true}
	if err := applyStationInput(station, input); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByCode(station.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrStationCodeExists
	}
	if err := s.repo.Create(station); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStationCodeExists
		}
		return nil, err
	}
	return station, nil
}

// Update 更新站点
func (s *StationService) Update(id uint, input StationInput) (*models.Station, error) {
	station, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, ErrStationNotFound
	}
	if err := applyStationInput(station, input); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByCode(station.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != station.ID {
		return nil, ErrStationCodeExists
	}
	if err := s.repo.Update(station); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStationCodeExists
		}
		return nil, err
	}
	return station, nil
}

func applyStationInput(station *models.Station, input StationInput) error {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" || strings.Contains(code, "|") {
		return ErrStationInvalid
	}
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		return ErrStationInvalid
	}
	station.Code = code
	station.Name = name
	station.Address = strings.TrimSpace(input.Address)
	station.Latitude = input.Latitude
	station.Longitude = input.Longitude
	if input.IsActive != nil {
		station.IsActive = *input.IsActive
	}
	return nil
}

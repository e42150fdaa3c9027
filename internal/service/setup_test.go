package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/station-rewards/internal/config"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/queue"
	"github.com/station-rewards/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type rewardsTestEnv struct {
	db           *gorm.DB
	cfg          config.RewardsConfig
	stationRepo  *repository.GormStationRepository
	customerRepo *repository.GormCustomerRepository
	reviewRepo   *repository.GormReviewRepository
	couponRepo   *repository.GormCouponRepository
	visits       *VisitCounter
	issuer       *CouponIssuer
	reviews      *ReviewService
	redemption   *RedemptionService
	stats        *StatsService
}

func setupRewardsTest(t *testing.T) *rewardsTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), models.NewGormConfig(logger.Default.LogMode(logger.Silent)))
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	t.Cleanup(func() { _ = sqlDB.Close() })

	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}

	env := &rewardsTestEnv{
		db:           db,
		cfg:          config.DefaultRewardsConfig(),
		stationRepo:  repository.NewStationRepository(db),
		customerRepo: repository.NewCustomerRepository(db),
		reviewRepo:   repository.NewReviewRepository(db),
		couponRepo:   repository.NewCouponRepository(db),
	}
	env.cfg.StatsCacheSeconds = 0
	env.visits = NewVisitCounter(env.cfg.VisitThreshold)
	env.issuer = NewCouponIssuer(env.cfg, env.couponRepo, env.customerRepo, env.stationRepo, env.reviewRepo, queueClient)
	env.reviews = NewReviewService(env.cfg, env.reviewRepo, env.customerRepo, env.stationRepo, env.visits, env.issuer)
	env.redemption = NewRedemptionService(env.couponRepo, env.customerRepo, env.reviewRepo, env.visits)
	env.stats = NewStatsService(env.cfg, repository.NewStatsRepository(db), env.stationRepo)
	return env
}

func (e *rewardsTestEnv) createStation(t *testing.T, code, name string) *models.Station {
	t.Helper()
	station := &models.Station{Code: code, Name: name, IsActive: true}
	if err := e.db.Create(station).Error; err != nil {
		t.Fatalf("create station failed: %v", err)
	}
	return station
}

func (e *rewardsTestEnv) createCustomer(t *testing.T, name, contact string, visits int) *models.Customer {
	t.Helper()
	customer := &models.Customer{Name: name, Visits: visits}
	customer.ApplyContact(contact)
	if err := e.db.Create(customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return customer
}

func (e *rewardsTestEnv) reloadCustomer(t *testing.T, id uint) *models.Customer {
	t.Helper()
	customer, err := e.customerRepo.GetByID(id)
	if err != nil || customer == nil {
		t.Fatalf("reload customer failed: %v", err)
	}
	return customer
}

func intPtr(v int) *int {
	return &v
}

func reviewInput(stationRef, name, contact string, rating int) SubmitReviewInput {
	return SubmitReviewInput{
		StationRef: stationRef,
		Rating:     rating,
		Name:       name,
		Contact:    contact,
		Comment:    "quick service",
	}
}

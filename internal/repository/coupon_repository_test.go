package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/station-rewards/internal/constants"
	"github.com/station-rewards/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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
		t.Fatalf("migrate models failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedStationAndCustomer(t *testing.T, db *gorm.DB) (*models.Station, *models.Customer) {
	t.Helper()
	station := &models.Station{Code: "ST-001", Name: "North Gate", IsActive: true}
	if err := db.Create(station).Error; err != nil {
		t.Fatalf("create station failed: %v", err)
	}
	customer := &models.Customer{Name: "Alice"}
	customer.ApplyContact("0917 000 0001")
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return station, customer
}

func TestCouponMarkUsedOnlyOnce(t *testing.T) {
	db := setupRepositoryTestDB(t)
	station, customer := seedStationAndCustomer(t, db)
	repo := NewCouponRepository(db)

	coupon := &models.Coupon{Code: "ABCD234567", CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginManual}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	now := time.Now()
	ok, err := repo.MarkUsed(coupon.Code, now, "cashier-1")
	if err != nil || !ok {
		t.Fatalf("first mark used should win, ok=%v err=%v", ok, err)
	}
	ok, err = repo.MarkUsed(coupon.Code, now.Add(time.Minute), "cashier-2")
	if err != nil {
		t.Fatalf("second mark used failed: %v", err)
	}
	if ok {
		t.Fatalf("second mark used should not win")
	}

	stored, err := repo.GetByCode(coupon.Code)
	if err != nil || stored == nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if !stored.Used || stored.ClaimedBy != "cashier-1" {
		t.Fatalf("unexpected claim state: used=%v claimed_by=%s", stored.Used, stored.ClaimedBy)
	}
}

func TestCouponMultipleIndexIsUnique(t *testing.T) {
	db := setupRepositoryTestDB(t)
	station, customer := seedStationAndCustomer(t, db)
	repo := NewCouponRepository(db)

	multiple := 1
	first := &models.Coupon{Code: "FIRST23456", CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginReview, MultipleIndex: &multiple}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create first coupon failed: %v", err)
	}
	second := &models.Coupon{Code: "SECND23456", CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginReview, MultipleIndex: &multiple}
	err := repo.Create(second)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicated key, got %v", err)
	}

	exists, err := repo.ExistsByMultiple(customer.ID, multiple)
	if err != nil || !exists {
		t.Fatalf("expected multiple to exist, exists=%v err=%v", exists, err)
	}

	// 手动券 multiple_index 为空，可以重复
	for i := 0; i < 2; i++ {
		manual := &models.Coupon{Code: fmt.Sprintf("MANUAL%04d", i+2), CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginManual}
		if err := repo.Create(manual); err != nil {
			t.Fatalf("create manual coupon failed: %v", err)
		}
	}
	coupons, err := repo.ListByCustomer(customer.ID)
	if err != nil {
		t.Fatalf("list coupons failed: %v", err)
	}
	if len(coupons) != 3 {
		t.Fatalf("expected 3 coupons, got %d", len(coupons))
	}
}

func TestCustomerIncrementVisits(t *testing.T) {
	db := setupRepositoryTestDB(t)
	_, customer := seedStationAndCustomer(t, db)
	repo := NewCustomerRepository(db)

	at := time.Now()
	for i := 0; i < 2; i++ {
		if err := repo.IncrementVisits(customer.ID, "Alice B", at); err != nil {
			t.Fatalf("increment visits failed: %v", err)
		}
	}
	stored, err := repo.GetByContact("09170000001")
	if err != nil || stored == nil {
		t.Fatalf("get by contact failed: %v", err)
	}
	if stored.Visits != 2 || stored.Name != "Alice B" || stored.LastReviewAt == nil {
		t.Fatalf("unexpected customer state: %+v", stored)
	}

	if err := repo.IncrementVisits(9999, "", at); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

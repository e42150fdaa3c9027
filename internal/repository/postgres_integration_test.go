//go:build integration
// +build integration

package repository

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/station-rewards/internal/constants"
	"github.com/station-rewards/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), models.NewGormConfig(logger.Default.LogMode(logger.Silent)))
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.Coupon{},
		&models.Review{},
		&models.Customer{},
		&models.Station{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Station{},
		&models.Customer{},
		&models.Review{},
		&models.Coupon{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCouponConstraints(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	station, customer := seedStationAndCustomer(t, db)
	repo := NewCouponRepository(db)

	multiple := 1
	first := &models.Coupon{Code: "PGFIRST234", CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginReview, MultipleIndex: &multiple}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create first coupon failed: %v", err)
	}
	dup := &models.Coupon{Code: "PGSECND234", CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginReview, MultipleIndex: &multiple}
	if err := repo.Create(dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("postgres multiple index should translate to ErrDuplicatedKey, got %v", err)
	}
	sameCode := &models.Coupon{Code: "PGFIRST234", CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginManual}
	if err := repo.Create(sameCode); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("postgres code unique should translate to ErrDuplicatedKey, got %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	ok, err := repo.MarkUsed("PGFIRST234", now, "cashier")
	if err != nil || !ok {
		t.Fatalf("first mark used want ok, ok=%v err=%v", ok, err)
	}
	ok, err = repo.MarkUsed("PGFIRST234", now, "cashier")
	if err != nil || ok {
		t.Fatalf("second mark used want not ok, ok=%v err=%v", ok, err)
	}
}

func TestPostgresStatsQueries(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	station, customer := seedStationAndCustomer(t, db)
	repo := NewStatsRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	coupons := []models.Coupon{
		{Code: "PGSTAT0001", CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginReview, Used: true, UsedAt: &now},
		{Code: "PGSTAT0002", CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginManual},
		{Code: "PGSTAT0003", CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginManual},
	}
	for i := range coupons {
		if err := db.Create(&coupons[i]).Error; err != nil {
			t.Fatalf("create coupon failed: %v", err)
		}
	}
	for _, rating := range []int{5, 3} {
		review := &models.Review{CustomerID: customer.ID, StationID: station.ID, Rating: rating}
		if err := db.Create(review).Error; err != nil {
			t.Fatalf("create review failed: %v", err)
		}
	}

	couponRows, err := repo.CouponStatsByStation(StatsWindow{})
	if err != nil {
		t.Fatalf("coupon stats failed: %v", err)
	}
	if len(couponRows) != 1 {
		t.Fatalf("coupon rows want 1 got %d", len(couponRows))
	}
	row := couponRows[0]
	if row.Total != 3 || row.Used != 1 || row.Manual != 2 || row.ReviewBased != 1 {
		t.Fatalf("unexpected coupon row: %+v", row)
	}

	reviewRows, err := repo.ReviewStatsByStation(StatsWindow{})
	if err != nil {
		t.Fatalf("review stats failed: %v", err)
	}
	if len(reviewRows) != 1 || reviewRows[0].ReviewCount != 2 || reviewRows[0].RatingSum != 8 {
		t.Fatalf("unexpected review rows: %+v", reviewRows)
	}

	future := now.Add(time.Hour)
	empty, err := repo.CouponStatsByStation(StatsWindow{StartAt: &future})
	if err != nil {
		t.Fatalf("windowed coupon stats failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("future window should be empty, got %+v", empty)
	}
}

func TestPostgresCustomerSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewCustomerRepository(db)
	customer := &models.Customer{Name: "Nora Haddad", Visits: 2}
	customer.ApplyContact("Nora@Example.com")
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	rows, total, err := repo.List(CustomerListFilter{Page: 1, PageSize: 20, Search: "HADDAD"})
	if err != nil {
		t.Fatalf("customer search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("customer search want 1 got total=%d len=%d", total, len(rows))
	}
}

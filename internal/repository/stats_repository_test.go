package repository

import (
	"testing"
	"time"

	"github.com/station-rewards/internal/constants"
	"github.com/station-rewards/internal/models"
)

func TestCouponStatsByStationGroupsCounts(t *testing.T) {
	db := setupRepositoryTestDB(t)
	station, customer := seedStationAndCustomer(t, db)
	other := &models.Station{Code: "ST-002", Name: "South Gate", IsActive: true}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("create station failed: %v", err)
	}

	now := time.Now()
	rows := []models.Coupon{
		{Code: "AAAA000001", CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginManual, Used: true, UsedAt: &now},
		{Code: "AAAA000002", CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginManual},
		{Code: "BBBB000001", CustomerID: customer.ID, StationID: other.ID, Origin: constants.CouponOriginManual, Used: true, UsedAt: &now},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("create coupons failed: %v", err)
	}

	repo := NewStatsRepository(db)
	result, err := repo.CouponStatsByStation(StatsWindow{})
	if err != nil {
		t.Fatalf("coupon stats failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 station rows, got %d", len(result))
	}
	if result[0].StationID != station.ID || result[0].Total != 2 || result[0].Used != 1 || result[0].Manual != 2 || result[0].ReviewBased != 0 {
		t.Fatalf("unexpected first row: %+v", result[0])
	}
	if result[1].StationID != other.ID || result[1].Total != 1 || result[1].Used != 1 {
		t.Fatalf("unexpected second row: %+v", result[1])
	}

	filtered, err := repo.CouponStatsByStation(StatsWindow{StationID: other.ID})
	if err != nil {
		t.Fatalf("filtered coupon stats failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].StationID != other.ID {
		t.Fatalf("unexpected filtered rows: %+v", filtered)
	}

	future := now.Add(time.Hour)
	empty, err := repo.CouponStatsByStation(StatsWindow{StartAt: &future})
	if err != nil {
		t.Fatalf("windowed coupon stats failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no rows after window start, got %d", len(empty))
	}
}

func TestReviewStatsByStationSumsRatings(t *testing.T) {
	db := setupRepositoryTestDB(t)
	station, customer := seedStationAndCustomer(t, db)

	for _, rating := range []int{5, 4, 2} {
		review := &models.Review{CustomerID: customer.ID, StationID: station.ID, Rating: rating}
		if err := db.Create(review).Error; err != nil {
			t.Fatalf("create review failed: %v", err)
		}
	}

	repo := NewStatsRepository(db)
	rows, err := repo.ReviewStatsByStation(StatsWindow{})
	if err != nil {
		t.Fatalf("review stats failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ReviewCount != 3 || rows[0].RatingSum != 11 {
		t.Fatalf("unexpected review rows: %+v", rows)
	}

	recent, err := repo.ListRecentReviews(StatsWindow{}, station.ID, 2)
	if err != nil {
		t.Fatalf("recent reviews failed: %v", err)
	}
	if len(recent) != 2 || recent[0].Customer == nil {
		t.Fatalf("expected 2 recent reviews with customer, got %+v", recent)
	}
}

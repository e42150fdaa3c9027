package service

import (
	"errors"
	"testing"

	"github.com/station-rewards/internal/constants"
	"github.com/station-rewards/internal/models"

	"gorm.io/gorm"
)

type fixedCodeGenerator struct {
	codes []string
	calls int
}

func (g *fixedCodeGenerator) Generate() (string, error) {
	code := g.codes[g.calls%len(g.codes)]
	g.calls++
	return code, nil
}

func TestIssueManualKeepsVisitsUnchanged(t *testing.T) {
	env := setupRewardsTest(t)
	station := env.createStation(t, "ST-001", "North Gate")
	customer := env.createCustomer(t, "Fay", "0917 100 2000", 0)

	coupons, err := env.issuer.IssueManual(ManualIssueInput{
		CustomerID: customer.ID,
		StationRef: station.Code,
		Count:      3,
		IssuedBy:   1,
	})
	if err != nil {
		t.Fatalf("issue manual failed: %v", err)
	}
	if len(coupons) != 3 {
		t.Fatalf("expected 3 coupons, got %d", len(coupons))
	}
	seen := make(map[string]bool)
	for _, coupon := range coupons {
		if coupon.Used || coupon.Origin != constants.CouponOriginManual || coupon.MultipleIndex != nil {
			t.Fatalf("unexpected manual coupon: %+v", coupon)
		}
		if seen[coupon.Code] {
			t.Fatalf("duplicate code issued: %s", coupon.Code)
		}
		seen[coupon.Code] = true
	}
	if stored := env.reloadCustomer(t, customer.ID); stored.Visits != 0 {
		t.Fatalf("manual issuance must not change visits, got %d", stored.Visits)
	}
}

func TestIssueManualValidatesInput(t *testing.T) {
	env := setupRewardsTest(t)
	station := env.createStation(t, "ST-001", "North Gate")
	customer := env.createCustomer(t, "Gus", "0917", 0)

	for _, count := range []int{0, -1, 101} {
		_, err := env.issuer.IssueManual(ManualIssueInput{CustomerID: customer.ID, StationRef: station.Code, Count: count})
		if !errors.Is(err, ErrCouponCountInvalid) {
			t.Fatalf("count %d: expected count invalid, got %v", count, err)
		}
	}
	if _, err := env.issuer.IssueManual(ManualIssueInput{CustomerID: customer.ID, StationRef: "missing", Count: 1}); !errors.Is(err, ErrStationNotFound) {
		t.Fatalf("expected station not found, got %v", err)
	}
	if _, err := env.issuer.IssueManual(ManualIssueInput{CustomerID: 9999, StationRef: station.Code, Count: 1}); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected customer not found, got %v", err)
	}
	reviewID := uint(4242)
	if _, err := env.issuer.IssueManual(ManualIssueInput{CustomerID: customer.ID, StationRef: station.Code, ReviewID: &reviewID, Count: 1}); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected review not found, got %v", err)
	}
}

func TestIssueManualByPhoneResolvesOrCreatesCustomer(t *testing.T) {
	env := setupRewardsTest(t)
	station := env.createStation(t, "ST-001", "North Gate")

	coupons, err := env.issuer.IssueManualByPhone(" 0918 777 8888 ", station.Code, 2, 1)
	if err != nil {
		t.Fatalf("issue by phone failed: %v", err)
	}
	if len(coupons) != 2 {
		t.Fatalf("expected 2 coupons, got %d", len(coupons))
	}
	customer, err := env.customerRepo.GetByPhone("09187778888")
	if err != nil || customer == nil {
		t.Fatalf("customer should be created: %v", err)
	}

	again, err := env.issuer.IssueManualByPhone("09187778888", station.Code, 1, 1)
	if err != nil {
		t.Fatalf("second issue by phone failed: %v", err)
	}
	if again[0].CustomerID != customer.ID {
		t.Fatalf("expected existing customer %d, got %d", customer.ID, again[0].CustomerID)
	}

	var customers int64
	env.db.Model(&models.Customer{}).Count(&customers)
	if customers != 1 {
		t.Fatalf("expected one customer, got %d", customers)
	}

	if _, err := env.issuer.IssueManualByPhone("  ", station.Code, 1, 1); !errors.Is(err, ErrPhoneRequired) {
		t.Fatalf("expected phone required, got %v", err)
	}
}

func TestEvaluateAndIssueOnlyOnThresholdMultiples(t *testing.T) {
	env := setupRewardsTest(t)
	station := env.createStation(t, "ST-001", "North Gate")
	customer := env.createCustomer(t, "Hal", "0917 333", 0)

	issued := 0
	for count := 1; count <= 10; count++ {
		coupon, err := env.issuer.EvaluateAndIssue(env.db, customer, station, 0, count)
		if err != nil {
			t.Fatalf("evaluate %d failed: %v", count, err)
		}
		if (count%5 == 0) != (coupon != nil) {
			t.Fatalf("count %d: unexpected issuance %v", count, coupon)
		}
		if coupon != nil {
			issued++
		}
	}
	if issued != 2 {
		t.Fatalf("expected 2 coupons, got %d", issued)
	}

	// 同一倍数重复评估不会再次发券
	coupon, err := env.issuer.EvaluateAndIssue(env.db, customer, station, 0, 10)
	if err != nil || coupon != nil {
		t.Fatalf("repeated multiple should not issue, coupon=%v err=%v", coupon, err)
	}
}

func TestCodeSpaceExhausted(t *testing.T) {
	env := setupRewardsTest(t)
	station := env.createStation(t, "ST-001", "North Gate")
	customer := env.createCustomer(t, "Ivy", "0917 444", 0)

	taken := &models.Coupon{Code: "TAKEN23456", CustomerID: customer.ID, StationID: station.ID, Origin: constants.CouponOriginManual}
	if err := env.db.Create(taken).Error; err != nil {
		t.Fatalf("seed coupon failed: %v", err)
	}
	generator := &fixedCodeGenerator{codes: []string{"TAKEN23456", "taken23456"}}
	env.issuer.SetCodeGenerator(generator)

	_, err := env.issuer.IssueManual(ManualIssueInput{CustomerID: customer.ID, StationRef: station.Code, Count: 1})
	if !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Fatalf("expected code space exhausted, got %v", err)
	}
	if generator.calls != env.cfg.CodeMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", env.cfg.CodeMaxAttempts, generator.calls)
	}

	var count int64
	env.db.Model(&models.Coupon{}).Count(&count)
	if count != 1 {
		t.Fatalf("failed issuance must not persist coupons, got %d", count)
	}
}

func TestRetryOnConflictIsBounded(t *testing.T) {
	calls := 0
	err := retryOnConflict("test", 3, func() error {
		calls++
		return gorm.ErrDuplicatedKey
	})
	if !errors.Is(err, ErrConcurrentUpdate) || calls != 3 {
		t.Fatalf("expected 3 attempts and concurrent update, got calls=%d err=%v", calls, err)
	}

	calls = 0
	err = retryOnConflict("test", 3, func() error {
		calls++
		if calls < 2 {
			return ErrConcurrentUpdate
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("expected success on second attempt, got calls=%d err=%v", calls, err)
	}

	sentinel := errors.New("boom")
	if err := retryOnConflict("test", 3, func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("non conflict errors must pass through, got %v", err)
	}
}

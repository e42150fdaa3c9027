package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/station-rewards/internal/models"
)

func issueOne(t *testing.T, env *rewardsTestEnv, customer *models.Customer, station *models.Station) models.Coupon {
	t.Helper()
	coupons, err := env.issuer.IssueManual(ManualIssueInput{CustomerID: customer.ID, StationRef: station.Code, Count: 1})
	if err != nil {
		t.Fatalf("issue coupon failed: %v", err)
	}
	return coupons[0]
}

func TestClaimSucceedsOnce(t *testing.T) {
	env := setupRewardsTest(t)
	station := env.createStation(t, "ST-001", "North Gate")
	customer := env.createCustomer(t, "Jo", "0917 555", 0)
	coupon := issueOne(t, env, customer, station)

	now := time.Now()
	claimed, err := env.redemption.Claim(" "+coupon.Code+" ", "cashier", now)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if !claimed.Used || claimed.UsedAt == nil || claimed.Station == nil || claimed.Station.ID != station.ID {
		t.Fatalf("unexpected claimed coupon: %+v", claimed)
	}

	for i := 0; i < 3; i++ {
		if _, err := env.redemption.Claim(coupon.Code, "cashier", now); !errors.Is(err, ErrCouponAlreadyUsed) {
			t.Fatalf("replay %d: expected already used, got %v", i, err)
		}
	}
	stored, err := env.couponRepo.GetByCode(coupon.Code)
	if err != nil || stored == nil || !stored.Used {
		t.Fatalf("coupon should stay used: %+v err=%v", stored, err)
	}

	if _, err := env.redemption.Claim("NOSUCHCODE", "cashier", now); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := env.redemption.Claim("   ", "cashier", now); !errors.Is(err, ErrCouponCodeRequired) {
		t.Fatalf("expected code required, got %v", err)
	}
}

func TestConcurrentClaimsExactlyOneWins(t *testing.T) {
	env := setupRewardsTest(t)
	station := env.createStation(t, "ST-001", "North Gate")
	customer := env.createCustomer(t, "Kim", "0917 666", 0)
	coupon := issueOne(t, env, customer, station)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.redemption.Claim(coupon.Code, "cashier", time.Now())
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	wins, replays := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrCouponAlreadyUsed):
			replays++
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	if wins != 1 || replays != workers-1 {
		t.Fatalf("expected exactly one winner, got wins=%d replays=%d", wins, replays)
	}
}

func TestQRPayloadRoundTrip(t *testing.T) {
	env := setupRewardsTest(t)
	station := env.createStation(t, "ST-001", "North Gate")
	customer := env.createCustomer(t, "Lee", "0917 777", 0)
	coupon := issueOne(t, env, customer, station)

	payload := BuildQRPayload(coupon.Code, "Lee|Jr", customer.Contact)
	resolved, err := env.redemption.ResolveScannedCode(payload)
	if err != nil {
		t.Fatalf("resolve scanned code failed: %v", err)
	}
	direct, err := env.redemption.ResolveScannedCode(coupon.Code)
	if err != nil {
		t.Fatalf("resolve direct code failed: %v", err)
	}
	if resolved.ID != coupon.ID || direct.ID != coupon.ID {
		t.Fatalf("round trip resolved to %d/%d, want %d", resolved.ID, direct.ID, coupon.ID)
	}
	if resolved.Used {
		t.Fatalf("resolving must not claim the coupon")
	}

	scanned, err := env.redemption.Scan(payload, "scanner", time.Now())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !scanned.Coupon.Used || scanned.Profile == nil || scanned.Profile.ID != customer.ID {
		t.Fatalf("unexpected scan result: %+v", scanned)
	}
	if _, err := env.redemption.Scan(payload, "scanner", time.Now()); !errors.Is(err, ErrCouponAlreadyUsed) {
		t.Fatalf("second scan should be a replay, got %v", err)
	}
}

func TestParseScannedCode(t *testing.T) {
	cases := map[string]string{
		"ABCD234567":              "ABCD234567",
		" abcd234567 ":            "ABCD234567",
		"ABCD234567|Lee|0917 777": "ABCD234567",
		" abcd234567 |Lee|0917":   "ABCD234567",
		"|Lee|0917":               "",
	}
	for raw, want := range cases {
		if got := ParseScannedCode(raw); got != want {
			t.Fatalf("ParseScannedCode(%q)=%q, want %q", raw, got, want)
		}
	}
}

func TestSearchByPhone(t *testing.T) {
	env := setupRewardsTest(t)
	station := env.createStation(t, "ST-001", "North Gate")
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		if _, err := env.reviews.SubmitReview(reviewInput(station.Code, "Max", "0917 888 9999", 5), now.Add(time.Duration(i)*20*time.Hour)); err != nil {
			t.Fatalf("submit review failed: %v", err)
		}
	}
	customer, _ := env.customerRepo.GetByContact("09178889999")
	issueOne(t, env, customer, station)

	result, err := env.redemption.Search("0917 888 9999")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.Visits != 2 || result.VisitsLeft != 3 {
		t.Fatalf("unexpected visits: %d left %d", result.Visits, result.VisitsLeft)
	}
	if len(result.Coupons) != 1 || len(result.VisitsList) != 2 {
		t.Fatalf("unexpected search payload: coupons=%d visits=%d", len(result.Coupons), len(result.VisitsList))
	}
	if result.Profile == nil || result.Profile.Name != "Max" {
		t.Fatalf("unexpected profile: %+v", result.Profile)
	}

	empty, err := env.redemption.Search("0000")
	if err != nil {
		t.Fatalf("search unknown phone failed: %v", err)
	}
	if empty.Profile != nil || len(empty.Coupons) != 0 || empty.Visits != 0 {
		t.Fatalf("unknown phone should return an empty result: %+v", empty)
	}
	if _, err := env.redemption.Search(" "); !errors.Is(err, ErrPhoneRequired) {
		t.Fatalf("expected phone required, got %v", err)
	}
}

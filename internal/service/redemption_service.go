package service

import (
	"strings"
	"time"

	"github.com/station-rewards/internal/logger"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/repository"
)

const searchVisitsLimit = 20

// RedemptionService 优惠券核销与查询
type RedemptionService struct {
	couponRepo   repository.CouponRepository
	customerRepo repository.CustomerRepository
	reviewRepo   repository.ReviewRepository
	visits       *VisitCounter
}

// CustomerProfile 顾客画像快照
type CustomerProfile struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Contact      string     `json:"contact"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	Visits       int        `json:"visits"`
	VisitsLeft   int        `json:"visitsLeft"`
	LastReviewAt *time.Time `json:"lastReviewAt"`
}

// SearchResult 按手机号查询结果
type SearchResult struct {
	Customer   *models.Customer
	Profile    *CustomerProfile
	Visits     int
	VisitsLeft int
	Coupons    []models.Coupon
	VisitsList []models.Review
}

// CouponProfile 券码与持有人画像
type CouponProfile struct {
	Coupon  *models.Coupon
	Profile *CustomerProfile
}

// NewRedemptionService 创建核销服务
func NewRedemptionService(
	couponRepo repository.CouponRepository,
	customerRepo repository.CustomerRepository,
	reviewRepo repository.ReviewRepository,
	visits *VisitCounter,
) *RedemptionService {
	return &RedemptionService{
		couponRepo:   couponRepo,
		customerRepo: customerRepo,
		reviewRepo:   reviewRepo,
		visits:       visits,
	}
}

// Claim 核销优惠券，同一券码只会成功一次
func (s *RedemptionService) Claim(code, claimedBy string, now time.Time) (*models.Coupon, error) {
	code = NormalizeCouponCode(code)
	if code == "" {
		return nil, ErrCouponCodeRequired
	}
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if coupon.Used {
		return nil, ErrCouponAlreadyUsed
	}

	claimedBy = strings.TrimSpace(claimedBy)
	won, err := s.couponRepo.MarkUsed(code, now, claimedBy)
	if err != nil {
		return nil, err
	}
	if !won {
		logger.Infow("coupon_claim_lost_race", "coupon_id", coupon.ID)
		return nil, ErrCouponAlreadyUsed
	}

	coupon.Used = true
	coupon.UsedAt = &now
	coupon.ClaimedBy = claimedBy
	logger.Infow("coupon_claimed",
		"coupon_id", coupon.ID,
		"customer_id", coupon.CustomerID,
		"station_id", coupon.StationID,
		"claimed_by", claimedBy,
	)
	return coupon, nil
}

// Search 按手机号查询到访与优惠券，只读
// 未找到顾客时返回空结果。
func (s *RedemptionService) Search(phone string) (*SearchResult, error) {
	phone = models.NormalizeContact(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	customer, err := s.customerRepo.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	result := &SearchResult{
		Coupons:    []models.Coupon{},
		VisitsList: []models.Review{},
	}
	if customer == nil {
		return result, nil
	}

	coupons, err := s.couponRepo.ListByCustomer(customer.ID)
	if err != nil {
		return nil, err
	}
	reviews, _, err := s.reviewRepo.List(repository.ReviewListFilter{
		CustomerID: customer.ID,
		Page:       1,
		PageSize:   searchVisitsLimit,
	})
	if err != nil {
		return nil, err
	}

	result.Customer = customer
	result.Profile = s.buildProfile(customer)
	result.Visits = customer.Visits
	result.VisitsLeft = s.visits.VisitsLeft(customer.Visits)
	result.Coupons = coupons
	result.VisitsList = reviews
	return result, nil
}

// Profile 根据券码查询券状态与持有人画像，只读
func (s *RedemptionService) Profile(code string) (*CouponProfile, error) {
	code = NormalizeCouponCode(code)
	if code == "" {
		return nil, ErrCouponCodeRequired
	}
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return s.profileFor(coupon)
}

// ResolveScannedCode 解析扫码载荷并返回对应优惠券，不改变状态
func (s *RedemptionService) ResolveScannedCode(raw string) (*models.Coupon, error) {
	profile, err := s.Profile(ParseScannedCode(raw))
	if err != nil {
		return nil, err
	}
	return profile.Coupon, nil
}

// Scan 扫码核销：解析载荷、核销并返回持有人画像
func (s *RedemptionService) Scan(raw, claimedBy string, now time.Time) (*CouponProfile, error) {
	coupon, err := s.Claim(ParseScannedCode(raw), claimedBy, now)
	if err != nil {
		return nil, err
	}
	return s.profileFor(coupon)
}

func (s *RedemptionService) profileFor(coupon *models.Coupon) (*CouponProfile, error) {
	customer, err := s.customerRepo.GetByID(coupon.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		coupon.Customer = customer
	}
	return &CouponProfile{Coupon: coupon, Profile: s.buildProfile(customer)}, nil
}

func (s *RedemptionService) buildProfile(customer *models.Customer) *CustomerProfile {
	if customer == nil {
		return nil
	}
	return &CustomerProfile{
		ID:           customer.ID,
		Name:         customer.Name,
		Contact:      customer.Contact,
		Phone:        customer.Phone,
		Email:        customer.Email,
		Visits:       customer.Visits,
		VisitsLeft:   s.visits.VisitsLeft(customer.Visits),
		LastReviewAt: customer.LastReviewAt,
	}
}

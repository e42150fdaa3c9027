package service

import (
	"strings"
	"time"

	"github.com/station-rewards/internal/config"
	"github.com/station-rewards/internal/constants"
	"github.com/station-rewards/internal/logger"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/queue"
	"github.com/station-rewards/internal/repository"

	"gorm.io/gorm"
)

// CouponIssuer 优惠券发放：满阈值自动发券与后台手动发券
type CouponIssuer struct {
	cfg          config.RewardsConfig
	couponRepo   repository.CouponRepository
	customerRepo repository.CustomerRepository
	stationRepo  repository.StationRepository
	reviewRepo   repository.ReviewRepository
	generator    CodeGenerator
	queueClient  *queue.Client
}

// ManualIssueInput 后台手动发券参数
type ManualIssueInput struct {
	CustomerID uint
	StationRef string
	ReviewID   *uint
	Count      int
	IssuedBy   uint
}

// NewCouponIssuer 创建发券服务
func NewCouponIssuer(
	cfg config.RewardsConfig,
	couponRepo repository.CouponRepository,
	customerRepo repository.CustomerRepository,
	stationRepo repository.StationRepository,
	reviewRepo repository.ReviewRepository,
	queueClient *queue.Client,
) *CouponIssuer {
	cfg = cfg.Normalize()
	return &CouponIssuer{
		cfg:          cfg,
		couponRepo:   couponRepo,
		customerRepo: customerRepo,
		stationRepo:  stationRepo,
		reviewRepo:   reviewRepo,
		generator:    NewRandomCodeGenerator(cfg.CodeLength),
		queueClient:  queueClient,
	}
}

// SetCodeGenerator 替换券码生成器
func (s *CouponIssuer) SetCodeGenerator(generator CodeGenerator) {
	if generator != nil {
		s.generator = generator
	}
}

// EvaluateAndIssue 在评价事务内判定是否达到阈值倍数并发券
// 同一 (customer, multiple_index) 只会发放一张；并发插入由唯一索引拦截。
func (s *CouponIssuer) EvaluateAndIssue(tx *gorm.DB, customer *models.Customer, station *models.Station, reviewID uint, newCount int) (*models.Coupon, error) {
	threshold := s.cfg.VisitThreshold
	if customer == nil || station == nil || newCount <= 0 || newCount%threshold != 0 {
		return nil, nil
	}
	multiple := newCount / threshold
	repo := s.couponRepo.WithTx(tx)

	exists, err := repo.ExistsByMultiple(customer.ID, multiple)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	code, err := s.uniqueCode(repo, customer.ID, station.ID)
	if err != nil {
		return nil, err
	}
	coupon := &models.Coupon{
		Code:          code,
		CustomerID:    customer.ID,
		MultipleIndex: &multiple,
		StationID:     station.ID,
		Origin:        constants.CouponOriginReview,
	}
	if reviewID != 0 {
		coupon.ReviewID = &reviewID
	}
	if err := repo.Create(coupon); err != nil {
		return nil, err
	}
	coupon.Station = station
	return coupon, nil
}

// IssueManual 后台手动发券，不经过阈值判定，也不改变到访计数
func (s *CouponIssuer) IssueManual(input ManualIssueInput) ([]models.Coupon, error) {
	if input.Count < 1 || input.Count > s.cfg.ManualMaxCount {
		return nil, ErrCouponCountInvalid
	}
	station, err := s.stationRepo.GetByRef(input.StationRef)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, ErrStationNotFound
	}
	customer, err := s.customerRepo.GetByID(input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	if input.ReviewID != nil && *input.ReviewID != 0 {
		review, err := s.reviewRepo.GetByID(*input.ReviewID)
		if err != nil {
			return nil, err
		}
		if review == nil {
			return nil, ErrReviewNotFound
		}
	}
	return s.issueManualBatch(customer, station, input)
}

// IssueManualByPhone 按手机号发券，顾客不存在时先创建
func (s *CouponIssuer) IssueManualByPhone(phone, stationRef string, count int, issuedBy uint) ([]models.Coupon, error) {
	phone = models.NormalizeContact(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	if count < 1 || count > s.cfg.ManualMaxCount {
		return nil, ErrCouponCountInvalid
	}
	station, err := s.stationRepo.GetByRef(stationRef)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, ErrStationNotFound
	}

	var customer *models.Customer
	err = retryOnConflict("resolve_customer_by_phone", s.cfg.ConflictRetries, func() error {
		found, err := s.customerRepo.GetByPhone(phone)
		if err != nil {
			return err
		}
		if found != nil {
			customer = found
			return nil
		}
		created := &models.Customer{Name: phone}
		created.ApplyContact(phone)
		if err := s.customerRepo.Create(created); err != nil {
			return err
		}
		logger.Infow("customer_created_for_manual_issue", "customer_id", created.ID)
		customer = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issueManualBatch(customer, station, ManualIssueInput{
		CustomerID: customer.ID,
		StationRef: stationRef,
		Count:      count,
		IssuedBy:   issuedBy,
	})
}

func (s *CouponIssuer) issueManualBatch(customer *models.Customer, station *models.Station, input ManualIssueInput) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := retryOnConflict("issue_manual_coupons", s.cfg.ConflictRetries, func() error {
		coupons = make([]models.Coupon, 0, input.Count)
		return models.DB.Transaction(func(tx *gorm.DB) error {
			repo := s.couponRepo.WithTx(tx)
			for i := 0; i < input.Count; i++ {
				code, err := s.uniqueCode(repo, customer.ID, station.ID)
				if err != nil {
					return err
				}
				coupon := models.Coupon{
					Code:       code,
					CustomerID: customer.ID,
					StationID:  station.ID,
					ReviewID:   input.ReviewID,
					Origin:     constants.CouponOriginManual,
				}
				if input.IssuedBy != 0 {
					issuedBy := input.IssuedBy
					coupon.IssuedBy = &issuedBy
				}
				if err := repo.Create(&coupon); err != nil {
					return err
				}
				coupon.Station = station
				coupons = append(coupons, coupon)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("coupon_manual_issued",
		"customer_id", customer.ID,
		"station_id", station.ID,
		"count", len(coupons),
		"issued_by", input.IssuedBy,
	)
	for i := range coupons {
		s.notifyIssued(&coupons[i])
	}
	return coupons, nil
}

// uniqueCode 生成未被占用的券码，超过尝试次数视为券码空间耗尽
func (s *CouponIssuer) uniqueCode(repo repository.CouponRepository, customerID, stationID uint) (string, error) {
	attempts := s.cfg.CodeMaxAttempts
	for i := 0; i < attempts; i++ {
		code, err := s.generator.Generate()
		if err != nil {
			logger.Warnw("coupon_code_generate_failed", "attempt", i+1, "error", err)
			continue
		}
		code = NormalizeCouponCode(code)
		if code == "" || strings.Contains(code, constants.QRPayloadSeparator) {
			continue
		}
		exists, err := repo.ExistsByCode(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	logger.Errorw("coupon_code_space_exhausted",
		"customer_id", customerID,
		"station_id", stationID,
		"attempts", attempts,
	)
	if err := s.queueClient.EnqueueCodeSpaceExhausted(queue.CodeSpaceExhaustedPayload{
		CustomerID: customerID,
		StationID:  stationID,
		Attempts:   attempts,
		OccurredAt: time.Now().Unix(),
	}); err != nil {
		logger.Errorw("coupon_enqueue_code_space_alert_failed", "error", err)
	}
	return "", ErrCodeSpaceExhausted
}

// notifyIssued 提交后投递发券通知，失败只记录日志
func (s *CouponIssuer) notifyIssued(coupon *models.Coupon) {
	if coupon == nil {
		return
	}
	err := s.queueClient.EnqueueCouponIssued(queue.CouponIssuedPayload{
		CouponID:   coupon.ID,
		CustomerID: coupon.CustomerID,
		StationID:  coupon.StationID,
		Origin:     coupon.Origin,
	})
	if err != nil {
		logger.Warnw("coupon_enqueue_issued_failed", "coupon_id", coupon.ID, "error", err)
	}
}

// List 后台优惠券列表
func (s *CouponIssuer) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.couponRepo.List(filter)
}

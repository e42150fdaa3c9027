package service

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/station-rewards/internal/config"
	"github.com/station-rewards/internal/logger"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/repository"

	"gorm.io/gorm"
)

const reviewCommentMaxRunes = 2000

// ReviewService 评价提交与审核
type ReviewService struct {
	cfg          config.RewardsConfig
	reviewRepo   repository.ReviewRepository
	customerRepo repository.CustomerRepository
	stationRepo  repository.StationRepository
	visits       *VisitCounter
	issuer       *CouponIssuer
}

// SubmitReviewInput 顾客提交评价参数
type SubmitReviewInput struct {
	StationRef        string
	Rating            int
	Cleanliness       *int
	ServiceSpeed      *int
	StaffFriendliness *int
	Comment           string
	Name              string
	Contact           string
	Latitude          *float64
	Longitude         *float64
}

// SubmitReviewResult 提交结果
type SubmitReviewResult struct {
	Review     *models.Review
	Customer   *models.Customer
	Visits     int
	VisitsLeft int
	Coupon     *models.Coupon
}

// NewReviewService 创建评价服务
func NewReviewService(
	cfg config.RewardsConfig,
	reviewRepo repository.ReviewRepository,
	customerRepo repository.CustomerRepository,
	stationRepo repository.StationRepository,
	visits *VisitCounter,
	issuer *CouponIssuer,
) *ReviewService {
	return &ReviewService{
		cfg:          cfg.Normalize(),
		reviewRepo:   reviewRepo,
		customerRepo: customerRepo,
		stationRepo:  stationRepo,
		visits:       visits,
		issuer:       issuer,
	}
}

// SubmitReview 校验并受理评价
// 评价写入、到访计数自增与发券判定在同一事务内完成，同一顾客的提交串行执行。
func (s *ReviewService) SubmitReview(input SubmitReviewInput, now time.Time) (*SubmitReviewResult, error) {
	name, contact, err := validateReviewInput(&input)
	if err != nil {
		return nil, err
	}

	station, err := s.stationRepo.GetByRef(input.StationRef)
	if err != nil {
		return nil, err
	}
	if station == nil || !station.IsActive {
		return nil, ErrStationNotFound
	}

	unlock := s.visits.Serialize(contact)
	defer unlock()

	var result *SubmitReviewResult
	err = retryOnConflict("submit_review", s.cfg.ConflictRetries, func() error {
		result = nil
		return models.DB.Transaction(func(tx *gorm.DB) error {
			customerRepo := s.customerRepo.WithTx(tx)
			customer, err := customerRepo.GetByContactForUpdate(contact)
			if err != nil {
				return err
			}
			if customer == nil {
				customer = &models.Customer{Name: name}
				customer.ApplyContact(contact)
				if err := customerRepo.Create(customer); err != nil {
					return err
				}
			} else if err := s.checkCooldown(customer, now); err != nil {
				return err
			}

			review := &models.Review{
				CustomerID:        customer.ID,
				StationID:         station.ID,
				Rating:            input.Rating,
				Cleanliness:       clampSubRating(input.Cleanliness),
				ServiceSpeed:      clampSubRating(input.ServiceSpeed),
				StaffFriendliness: clampSubRating(input.StaffFriendliness),
				Comment:           strings.TrimSpace(input.Comment),
				Latitude:          input.Latitude,
				Longitude:         input.Longitude,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if err := s.reviewRepo.WithTx(tx).Create(review); err != nil {
				return err
			}

			newCount, err := s.visits.Increment(customerRepo, customer, name, now)
			if err != nil {
				return err
			}
			coupon, err := s.issuer.EvaluateAndIssue(tx, customer, station, review.ID, newCount)
			if err != nil {
				return err
			}

			review.Station = station
			result = &SubmitReviewResult{
				Review:     review,
				Customer:   customer,
				Visits:     newCount,
				VisitsLeft: s.visits.VisitsLeft(newCount),
				Coupon:     coupon,
			}
			return nil
		})
	})
	if err != nil {
		var cooldown *CooldownError
		if !errors.As(err, &cooldown) && !errors.Is(err, ErrReviewInvalid) {
			logger.Errorw("review_submit_tx_failed", "station_id", station.ID, "error", err)
		}
		return nil, err
	}

	if result.Coupon != nil {
		logger.Infow("coupon_review_issued",
			"coupon_id", result.Coupon.ID,
			"customer_id", result.Customer.ID,
			"station_id", station.ID,
			"visits", result.Visits,
		)
		s.issuer.notifyIssued(result.Coupon)
	}
	return result, nil
}

func (s *ReviewService) checkCooldown(customer *models.Customer, now time.Time) error {
	if customer.LastReviewAt == nil {
		return nil
	}
	window := s.cfg.Cooldown()
	elapsed := now.Sub(*customer.LastReviewAt)
	if elapsed >= window {
		return nil
	}
	retryAfter := window - elapsed
	if retryAfter > window {
		retryAfter = window
	}
	return &CooldownError{RetryAfter: retryAfter, Window: window}
}

// validateReviewInput 在任何写入之前完成校验，返回归一化的姓名与联系方式
func validateReviewInput(input *SubmitReviewInput) (string, string, error) {
	input.StationRef = strings.TrimSpace(input.StationRef)
	if input.StationRef == "" {
		return "", "", ErrReviewStationRequired
	}
	if input.Rating < 1 || input.Rating > 5 {
		return "", "", ErrReviewRatingInvalid
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", "", ErrReviewNameRequired
	}
	contact := models.NormalizeContact(input.Contact)
	if contact == "" {
		return "", "", ErrReviewContactRequired
	}
	if utf8.RuneCountInString(input.Comment) > reviewCommentMaxRunes {
		return "", "", ErrReviewCommentTooLong
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return "", "", ErrReviewLocationInvalid
	}
	if input.Latitude != nil {
		if *input.Latitude < -90 || *input.Latitude > 90 || *input.Longitude < -180 || *input.Longitude > 180 {
			return "", "", ErrReviewLocationInvalid
		}
	}
	return name, contact, nil
}

// clampSubRating 子评分存在时收敛到 1-5
func clampSubRating(v *int) *int {
	if v == nil {
		return nil
	}
	clamped := *v
	if clamped < 1 {
		clamped = 1
	}
	if clamped > 5 {
		clamped = 5
	}
	return &clamped
}

// ListReviews 后台评价列表
func (s *ReviewService) ListReviews(filter repository.ReviewListFilter) ([]models.Review, int64, error) {
	return s.reviewRepo.List(filter)
}

// SetFlagged 审核标记，评价其余字段保持不变
func (s *ReviewService) SetFlagged(id uint, flagged bool) (*models.Review, error) {
	if err := s.reviewRepo.SetFlagged(id, flagged); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	review, err := s.reviewRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

// ListStationReviews 站点公开展示的最近评价
func (s *ReviewService) ListStationReviews(stationID uint) ([]models.Review, error) {
	return s.reviewRepo.ListRecentByStation(stationID, s.cfg.StationReviewLimit)
}

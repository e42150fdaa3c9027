package provider

import (
	"github.com/station-rewards/internal/authz"
	"github.com/station-rewards/internal/cache"
	"github.com/station-rewards/internal/config"
	"github.com/station-rewards/internal/logger"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/queue"
	"github.com/station-rewards/internal/repository"
	"github.com/station-rewards/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	StationRepo       repository.StationRepository
	CustomerRepo      repository.CustomerRepository
	ReviewRepo        repository.ReviewRepository
	CouponRepo        repository.CouponRepository
	StatsRepo         repository.StatsRepository
	AdminAuditLogRepo repository.AdminAuditLogRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	CaptchaService      *service.CaptchaService
	VisitCounter        *service.VisitCounter
	CouponIssuer        *service.CouponIssuer
	ReviewService       *service.ReviewService
	RedemptionService   *service.RedemptionService
	StatsService        *service.StatsService
	StationService      *service.StationService
	CustomerService     *service.CustomerService
	NotificationService *service.NotificationService
	AdminAuditService   *service.AdminAuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 队列关闭时返回禁用态客户端，发券通知直接跳过
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(&config.QueueConfig{Enabled: false})
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.StationRepo = repository.NewStationRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.StatsRepo = repository.NewStatsRepository(db)
	c.AdminAuditLogRepo = repository.NewAdminAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	rewards := c.Config.Rewards.Normalize()
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.VisitCounter = service.NewVisitCounter(rewards.VisitThreshold)
	c.CouponIssuer = service.NewCouponIssuer(rewards, c.CouponRepo, c.CustomerRepo, c.StationRepo, c.ReviewRepo, c.QueueClient)
	c.ReviewService = service.NewReviewService(rewards, c.ReviewRepo, c.CustomerRepo, c.StationRepo, c.VisitCounter, c.CouponIssuer)
	c.RedemptionService = service.NewRedemptionService(c.CouponRepo, c.CustomerRepo, c.ReviewRepo, c.VisitCounter)
	c.StatsService = service.NewStatsService(rewards, c.StatsRepo, c.StationRepo)
	c.StationService = service.NewStationService(c.StationRepo)
	c.CustomerService = service.NewCustomerService(c.CustomerRepo, c.VisitCounter)
	c.NotificationService = service.NewNotificationService(c.CouponRepo, c.CustomerRepo, service.NewEmailService(&c.Config.Email))
	c.AdminAuditService = service.NewAdminAuditService(c.AdminAuditLogRepo)
}

// Close 释放队列客户端与 Redis 连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}

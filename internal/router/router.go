package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/station-rewards/internal/authz"
	"github.com/station-rewards/internal/cache"
	"github.com/station-rewards/internal/config"
	adminhandlers "github.com/station-rewards/internal/http/handlers/admin"
	publichandlers "github.com/station-rewards/internal/http/handlers/public"
	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/logger"
	"github.com/station-rewards/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sr"
	}
	redisClient := cache.Client()
	loginRule := NewRateLimitRule(fmt.Sprintf("%s:rate:admin_login", redisPrefix), cfg.Security.LoginRateLimit, "error.login_too_many")
	reviewRule := NewRateLimitRule(fmt.Sprintf("%s:rate:review", redisPrefix), cfg.Security.ReviewRateLimit, "error.review_too_frequent")
	claimRule := NewRateLimitRule(fmt.Sprintf("%s:rate:claim", redisPrefix), cfg.Security.ClaimRateLimit, "error.rate_limited")

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	api := r.Group("/api")
	{
		// 站点与评价（顾客扫码入口）
		api.GET("/stations", publicHandler.GetStations)
		api.GET("/stations/:id", publicHandler.GetStation)
		api.GET("/stations/:id/reviews", publicHandler.GetStationReviews)
		api.POST("/reviews", RateLimitMiddleware(redisClient, reviewRule, KeyByIPAndJSONField("contact")), publicHandler.SubmitReview)

		// 收银台：查询与核销
		rewards := api.Group("/rewards")
		{
			rewards.GET("/search", publicHandler.SearchRewards)
			rewards.POST("/claim", RateLimitMiddleware(redisClient, claimRule, KeyByIP), publicHandler.ClaimCoupon)
			rewards.GET("/profile", publicHandler.GetCouponProfile)
			rewards.POST("/scan", RateLimitMiddleware(redisClient, claimRule, KeyByIP), publicHandler.ScanCoupon)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)
			auth.GET("/captcha", adminHandler.GetCaptcha)
		}

		jwtAuth := JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo)

		// 当前管理员自身资料，只需登录
		self := api.Group("/admin")
		self.Use(jwtAuth)
		{
			self.GET("/me", adminHandler.GetAdminProfile)
			self.PUT("/password", adminHandler.UpdateAdminPassword)
		}

		admin := api.Group("/admin")
		admin.Use(jwtAuth, AdminRBACMiddleware(c.AuthzService))
		{
			// 优惠券
			admin.GET("/coupons", adminHandler.GetCoupons)
			admin.POST("/coupons", adminHandler.IssueCoupons)
			admin.POST("/coupons-by-phone", adminHandler.IssueCouponsByPhone)
			admin.GET("/coupons-stats", adminHandler.GetCouponStats)

			// 统计与评价
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/reviews", adminHandler.GetReviews)
			admin.PATCH("/reviews/:id/flag", adminHandler.FlagReview)

			// 站点与顾客
			admin.GET("/stations", adminHandler.GetStations)
			admin.POST("/stations", adminHandler.CreateStation)
			admin.PUT("/stations/:id", adminHandler.UpdateStation)
			admin.GET("/customers", adminHandler.GetCustomers)

			// 管理员与权限
			admin.GET("/admins", adminHandler.ListAdmins)
			admin.POST("/admins", adminHandler.CreateAdmin)
			admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
			admin.POST("/authz/roles/:role/policies", adminHandler.GrantRolePolicy)
			admin.DELETE("/authz/roles/:role/policies", adminHandler.RevokeRolePolicy)
			admin.GET("/authz/admins/:id/roles", adminHandler.GetAdminRoles)
			admin.PUT("/authz/admins/:id/roles", adminHandler.SetAdminRoles)
			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, gin.H{"permissions": buildAdminPermissionCatalog(r)})
			})
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

var selfServicePaths = map[string]struct{}{
	"/api/admin/me":       {},
	"/api/admin/password": {},
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/admin/") {
			continue
		}
		if _, ok := selfServicePaths[item.Path]; ok {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	module := segments[1]
	if idx := strings.Index(module, "-"); idx > 0 {
		module = module[:idx]
	}
	return module
}

package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/station-rewards/internal/config"
	"github.com/station-rewards/internal/logger"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type apiResponse struct {
	StatusCode int                    `json:"status_code"`
	Msg        string                 `json:"msg"`
	Data       map[string]interface{} `json:"data"`
}

func setupRouterTest(t *testing.T) (*gin.Engine, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.L = zap.NewNop()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), models.NewGormConfig(gormlogger.Default.LogMode(gormlogger.Silent)))
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Create(&models.Station{Code: "ST-1", Name: "North Gate", IsActive: true}).Error; err != nil {
		t.Fatalf("create station failed: %v", err)
	}

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "test"},
		JWT:     config.JWTConfig{SecretKey: "router-test-secret-key-0123456789", ExpireHours: 18},
		Rewards: config.DefaultRewardsConfig(),
	}
	container := provider.NewContainer(cfg)
	t.Cleanup(container.Close)
	return SetupRouter(cfg, container), container
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func issueAdminToken(t *testing.T, c *provider.Container, username string, roles ...string) string {
	t.Helper()
	admin, err := c.AuthService.CreateAdmin(username, "Station2024pass")
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if len(roles) > 0 {
		if err := c.AuthzService.SetAdminRoles(admin.ID, roles); err != nil {
			t.Fatalf("set admin roles failed: %v", err)
		}
	}
	token, _, err := c.AuthService.GenerateJWT(admin)
	if err != nil {
		t.Fatalf("generate jwt failed: %v", err)
	}
	return token
}

func TestSubmitReviewCooldownReturnsConflict(t *testing.T) {
	r, _ := setupRouterTest(t)
	payload := map[string]interface{}{
		"stationId": "ST-1",
		"rating":    5,
		"name":      "Ada",
		"contact":   "+1 555 0100",
		"comment":   "quick service",
	}

	w := doJSON(t, r, http.MethodPost, "/api/reviews", "", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("first review status want 200 got %d body=%s", w.Code, w.Body.String())
	}
	var first struct {
		ReviewID   uint `json:"reviewId"`
		Visits     int  `json:"visits"`
		VisitsLeft int  `json:"visitsLeft"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("unmarshal first review failed: %v", err)
	}
	if first.ReviewID == 0 || first.Visits != 1 || first.VisitsLeft != 4 {
		t.Fatalf("unexpected first review result: %+v", first)
	}

	payload["contact"] = "+15550100"
	w = doJSON(t, r, http.MethodPost, "/api/reviews", "", payload)
	if w.Code != http.StatusConflict {
		t.Fatalf("second review status want 409 got %d body=%s", w.Code, w.Body.String())
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal cooldown response failed: %v", err)
	}
	if resp.StatusCode != 409 {
		t.Fatalf("status_code want 409 got %d", resp.StatusCode)
	}
	retry, ok := resp.Data["retryAfterSeconds"].(float64)
	if !ok || retry <= 0 || retry > 18*3600 {
		t.Fatalf("retryAfterSeconds out of range: %v", resp.Data["retryAfterSeconds"])
	}
	if _, ok := resp.Data["request_id"]; !ok {
		t.Fatalf("error response should carry request_id")
	}
}

func TestSubmitReviewUnknownStation(t *testing.T) {
	r, _ := setupRouterTest(t)
	w := doJSON(t, r, http.MethodPost, "/api/reviews", "", map[string]interface{}{
		"stationId": "ST-404",
		"rating":    4,
		"name":      "Ada",
		"contact":   "ada@example.com",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status want 404 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, _ := setupRouterTest(t)
	w := doJSON(t, r, http.MethodGet, "/api/admin/coupons", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/admin/coupons", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token status want 401 got %d", w.Code)
	}
}

func TestAdminRBACByBuiltinRole(t *testing.T) {
	r, c := setupRouterTest(t)
	w := doJSON(t, r, http.MethodPost, "/api/reviews", "", map[string]interface{}{
		"stationId": "ST-1",
		"rating":    4,
		"name":      "Ada",
		"contact":   "ada@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("seed review failed: %d %s", w.Code, w.Body.String())
	}
	customer, err := c.CustomerRepo.GetByContact("ada@example.com")
	if err != nil || customer == nil {
		t.Fatalf("customer lookup failed: %v", err)
	}

	operator := issueAdminToken(t, c, "operator", "coupon_operator")

	w = doJSON(t, r, http.MethodGet, "/api/admin/stats", operator, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("inherited read access want 200 got %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/admin/coupons", operator, map[string]interface{}{
		"userId":    customer.ID,
		"stationId": "ST-1",
		"count":     2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("issue coupons want 200 got %d body=%s", w.Code, w.Body.String())
	}
	var issued struct {
		Coupons []models.Coupon `json:"coupons"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &issued); err != nil {
		t.Fatalf("unmarshal issue response failed: %v", err)
	}
	if len(issued.Coupons) != 2 {
		t.Fatalf("issued coupons want 2 got %d", len(issued.Coupons))
	}

	w = doJSON(t, r, http.MethodPost, "/api/admin/stations", operator, map[string]interface{}{
		"stationId": "ST-2",
		"name":      "South Gate",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("station create without role want 403 got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/admin/coupons", operator, map[string]interface{}{
		"userId":    customer.ID,
		"stationId": "ST-1",
		"count":     101,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversized count want 400 got %d", w.Code)
	}
}

func TestAdminSelfServiceSkipsRBAC(t *testing.T) {
	r, c := setupRouterTest(t)
	token := issueAdminToken(t, c, "norole")

	w := doJSON(t, r, http.MethodGet, "/api/admin/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile want 200 got %d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, "/api/admin/coupons", token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("coupons without role want 403 got %d", w.Code)
	}
}

func TestClaimCouponTwiceReturnsConflict(t *testing.T) {
	r, c := setupRouterTest(t)
	doJSON(t, r, http.MethodPost, "/api/reviews", "", map[string]interface{}{
		"stationId": "ST-1",
		"rating":    5,
		"name":      "Grace",
		"contact":   "grace@example.com",
	})
	customer, err := c.CustomerRepo.GetByContact("grace@example.com")
	if err != nil || customer == nil {
		t.Fatalf("customer lookup failed: %v", err)
	}
	operator := issueAdminToken(t, c, "issuer", "coupon_operator")
	w := doJSON(t, r, http.MethodPost, "/api/admin/coupons", operator, map[string]interface{}{
		"userId":    customer.ID,
		"stationId": "ST-1",
		"count":     1,
	})
	var issued struct {
		Coupons []models.Coupon `json:"coupons"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &issued); err != nil || len(issued.Coupons) != 1 {
		t.Fatalf("issue coupon failed: %v %s", err, w.Body.String())
	}
	code := issued.Coupons[0].Code

	w = doJSON(t, r, http.MethodPost, "/api/rewards/claim", "", map[string]string{"code": code})
	if w.Code != http.StatusOK {
		t.Fatalf("first claim want 200 got %d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/api/rewards/claim", "", map[string]string{"code": code})
	if w.Code != http.StatusConflict {
		t.Fatalf("second claim want 409 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestPermissionCatalogListsAdminRoutes(t *testing.T) {
	r, _ := setupRouterTest(t)
	items := buildAdminPermissionCatalog(r)
	if len(items) == 0 {
		t.Fatalf("catalog should not be empty")
	}
	seen := map[string]string{}
	for _, item := range items {
		seen[item.Permission] = item.Module
	}
	if module, ok := seen["POST:/admin/coupons-by-phone"]; !ok || module != "coupons" {
		t.Fatalf("coupons-by-phone should be in coupons module, got %q ok=%v", module, ok)
	}
	if _, ok := seen["GET:/admin/me"]; ok {
		t.Fatalf("self-service routes should be excluded from catalog")
	}
	if module := seen["PATCH:/admin/reviews/:id/flag"]; module != "reviews" {
		t.Fatalf("flag route module want reviews got %q", module)
	}
}

func TestHealth(t *testing.T) {
	r, _ := setupRouterTest(t)
	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("health unexpected: %d %s", w.Code, w.Body.String())
	}
}

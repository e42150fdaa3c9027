package service

import (
	"errors"
	"testing"
	"time"

	"github.com/station-rewards/internal/config"
	"github.com/station-rewards/internal/models"
	"github.com/station-rewards/internal/repository"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *models.Admin) {
	t.Helper()
	env := setupRewardsTest(t)
	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret-key-for-admin-tokens", ExpireHours: 18},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireLower: true, RequireNumber: true},
		},
	}
	svc := NewAuthService(cfg, repository.NewAdminRepository(env.db))
	hash, err := svc.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{Username: "ops", PasswordHash: hash}
	if err := env.db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return svc, admin
}

func TestLoginIssuesEighteenHourToken(t *testing.T) {
	svc, admin := setupAuthServiceTest(t)

	if _, _, _, err := svc.Login("ops", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, _, err := svc.Login("nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}

	logged, token, expiresAt, err := svc.Login("ops", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != admin.ID || logged.LastLoginAt == nil {
		t.Fatalf("unexpected admin: %+v", logged)
	}
	ttl := time.Until(expiresAt)
	if ttl < 17*time.Hour+59*time.Minute || ttl > 18*time.Hour {
		t.Fatalf("unexpected token ttl: %s", ttl)
	}
	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.TokenVersion != 0 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := svc.ParseJWT(token + "x"); err == nil {
		t.Fatalf("tampered token should fail")
	}
}

func TestChangePasswordBumpsTokenVersion(t *testing.T) {
	svc, admin := setupAuthServiceTest(t)

	if err := svc.ChangePassword(admin.ID, "bad", "newpass123"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected invalid password, got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "secret123", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "secret123", "newpass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	updated, err := svc.GetAdmin(admin.ID)
	if err != nil {
		t.Fatalf("get admin failed: %v", err)
	}
	if updated.TokenVersion != 1 || updated.TokenInvalidBefore == nil {
		t.Fatalf("expected token version bump, got %+v", updated)
	}
}

func TestCreateAdminRejectsDuplicates(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)
	if _, err := svc.CreateAdmin("ops", "another123"); !errors.Is(err, ErrAdminExists) {
		t.Fatalf("expected admin exists, got %v", err)
	}
	created, err := svc.CreateAdmin("auditor", "audit1234")
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if created.IsSuper {
		t.Fatalf("created admins must not be super")
	}
}

package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("night_shift", "/admin/reviews/:id/flag", "PATCH"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"night_shift"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(1, "/api/admin/reviews/42/flag", "patch")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceAdmin(1, "/api/admin/reviews/42/flag", "DELETE")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("issuer", "/admin/coupons", "POST"); err != nil {
		t.Fatalf("grant issuer policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("editor", "/admin/stations", "POST"); err != nil {
		t.Fatalf("grant editor policy failed: %v", err)
	}

	if err := svc.SetAdminRoles(2, []string{"issuer"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:issuer" {
		t.Fatalf("roles want [role:issuer], got=%v", roles)
	}

	if err := svc.SetAdminRoles(2, []string{"editor"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err = svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:editor" {
		t.Fatalf("roles want [role:editor], got=%v", roles)
	}

	allow, err := svc.EnforceAdmin(2, "/admin/coupons", "POST")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}

	allow, err = svc.EnforceAdmin(2, "/admin/stations", "POST")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/admin/stations/:id", want: "/admin/stations/:id"},
		{in: "/admin/stations/:id", want: "/admin/stations/:id"},
		{in: "admin/coupons", want: "/admin/coupons"},
		{in: "/api", want: "/"},
		{in: "/apis/admin", want: "/apis/admin"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	// 重复执行保持幂等
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:readonly_auditor": true,
		"role:coupon_operator":  true,
		"role:moderator":        true,
		"role:station_manager":  true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetAdminRoles(3, []string{"coupon_operator"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	cases := []struct {
		obj   string
		act   string
		allow bool
	}{
		{obj: "/api/admin/stats", act: "GET", allow: true},
		{obj: "/api/admin/coupons", act: "POST", allow: true},
		{obj: "/api/admin/coupons-by-phone", act: "POST", allow: true},
		{obj: "/api/admin/stations", act: "POST", allow: false},
		{obj: "/api/admin/reviews/9/flag", act: "PATCH", allow: false},
	}
	for _, item := range cases {
		allow, err := svc.EnforceAdmin(3, item.obj, item.act)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", item.act, item.obj, err)
		}
		if allow != item.allow {
			t.Fatalf("enforce %s %s want=%v got=%v", item.act, item.obj, item.allow, allow)
		}
	}
}

func TestBuiltinRolesAreImmutable(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if !IsBuiltinRole("moderator") || !IsBuiltinRole("role:station_manager") {
		t.Fatalf("expected builtin roles to be detected")
	}
	if IsBuiltinRole("night_shift") {
		t.Fatalf("custom role reported as builtin")
	}
	err := svc.GrantRolePolicy("moderator", "/admin/stations", "POST")
	if !errors.Is(err, ErrBuiltinRole) {
		t.Fatalf("expected ErrBuiltinRole on grant, got %v", err)
	}
	err = svc.RevokeRolePolicy("moderator", "/admin/reviews/:id/flag", "PATCH")
	if !errors.Is(err, ErrBuiltinRole) {
		t.Fatalf("expected ErrBuiltinRole on revoke, got %v", err)
	}
}

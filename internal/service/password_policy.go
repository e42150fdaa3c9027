package service

import (
	"fmt"
	"unicode"

	"github.com/station-rewards/internal/config"
)

// validatePassword 按密码策略校验，失败时返回包装了 ErrWeakPassword 的错误
func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return fmt.Errorf("%w: at least %d characters", ErrWeakPassword, policy.MinLength)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}

	if policy.RequireUpper && !hasUpper {
		return fmt.Errorf("%w: uppercase letter required", ErrWeakPassword)
	}
	if policy.RequireLower && !hasLower {
		return fmt.Errorf("%w: lowercase letter required", ErrWeakPassword)
	}
	if policy.RequireNumber && !hasNumber {
		return fmt.Errorf("%w: digit required", ErrWeakPassword)
	}
	return nil
}

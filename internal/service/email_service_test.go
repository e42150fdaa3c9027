package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/station-rewards/internal/config"
	"github.com/station-rewards/internal/i18n"
)

func TestBuildCouponIssuedContent(t *testing.T) {
	tests := []struct {
		name                string
		locale              string
		wantSubjectContains []string
		wantBodyContains    []string
	}{
		{
			name:                "default_locale",
			locale:              "",
			wantSubjectContains: []string{"Your reward coupon", "North Gate"},
			wantBodyContains:    []string{"Hi Ada", "RW7K2M9QXP", "reviewed us 5 times"},
		},
		{
			name:                "zh",
			locale:              i18n.LocaleZH,
			wantSubjectContains: []string{"奖励券", "North Gate"},
			wantBodyContains:    []string{"Ada 您好", "RW7K2M9QXP", "累计评价 5 次"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := buildCouponIssuedContent(CouponEmailInput{
				CustomerName: "Ada",
				StationName:  "North Gate",
				Code:         "RW7K2M9QXP",
				Visits:       5,
			}, tt.locale)
			for _, expected := range tt.wantSubjectContains {
				if !strings.Contains(subject, expected) {
					t.Fatalf("subject missing %q: %s", expected, subject)
				}
			}
			for _, expected := range tt.wantBodyContains {
				if !strings.Contains(body, expected) {
					t.Fatalf("body missing %q: %s", expected, body)
				}
			}
		})
	}
}

func TestSendTextEmailGuards(t *testing.T) {
	var nilSvc *EmailService
	if nilSvc.Enabled() {
		t.Fatalf("nil email service should be disabled")
	}
	if err := NewEmailService(&config.EmailConfig{}).sendTextEmail("a@example.com", "s", "b"); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("want ErrEmailServiceDisabled got %v", err)
	}
	svc := NewEmailService(&config.EmailConfig{Enabled: true, Port: 25})
	if svc.Enabled() {
		t.Fatalf("missing host should not count as enabled")
	}
	if err := svc.sendTextEmail("a@example.com", "s", "b"); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("want ErrEmailServiceNotConfigured got %v", err)
	}
	svc = NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 25, From: "noreply@example.com"})
	if err := svc.sendTextEmail("not-an-email", "s", "b"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("want ErrInvalidEmail got %v", err)
	}
}

func TestSendCodeSpaceAlertWithoutRecipients(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 25, From: "noreply@example.com"})
	if err := svc.SendCodeSpaceAlert(1, 2, 8, time.Now()); err != nil {
		t.Fatalf("alert without recipients should be a no-op, got %v", err)
	}
}

func TestBuildEmailMessageHeaders(t *testing.T) {
	msg := buildEmailMessage(buildFromAddress("noreply@example.com", "Station Rewards"), "ada@example.com", "奖励券", "body")
	if !strings.Contains(msg, "To: ada@example.com\r\n") {
		t.Fatalf("missing To header: %q", msg)
	}
	if !strings.Contains(msg, "Subject: =?UTF-8?q?") {
		t.Fatalf("subject should be q-encoded: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nbody") {
		t.Fatalf("body should follow blank line: %q", msg)
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "smtp_550_no_such_recipient",
			err:  errors.New("550 No such recipient here"),
			want: true,
		},
		{
			name: "smtp_user_unknown",
			err:  errors.New("SMTP 5.1.1 user unknown"),
			want: true,
		},
		{
			name: "smtp_550_mailbox_unavailable",
			err:  errors.New("550 mailbox unavailable"),
			want: true,
		},
		{
			name: "network_timeout",
			err:  errors.New("dial tcp timeout"),
			want: false,
		},
		{
			name: "nil_error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isEmailRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	rejected := errors.New("550 No such recipient here")
	if got := normalizeEmailSendError(rejected); !errors.Is(got, ErrEmailRecipientRejected) {
		t.Fatalf("normalizeEmailSendError() expected ErrEmailRecipientRejected, got %v", got)
	}

	networkErr := errors.New("dial tcp timeout")
	if got := normalizeEmailSendError(networkErr); !errors.Is(got, networkErr) {
		t.Fatalf("normalizeEmailSendError() should keep original error, got %v", got)
	}

	if got := normalizeEmailSendError(nil); got != nil {
		t.Fatalf("normalizeEmailSendError(nil) should be nil, got %v", got)
	}
}

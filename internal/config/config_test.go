package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.JWT.ExpireHours != 18 {
		t.Fatalf("jwt expire hours want 18 got %d", cfg.JWT.ExpireHours)
	}
	if cfg.Rewards.VisitThreshold != 5 {
		t.Fatalf("visit threshold want 5 got %d", cfg.Rewards.VisitThreshold)
	}
	if cfg.Rewards.Cooldown() != 18*time.Hour {
		t.Fatalf("cooldown want 18h got %s", cfg.Rewards.Cooldown())
	}
	if cfg.Rewards.ManualMaxCount != 100 {
		t.Fatalf("manual max count want 100 got %d", cfg.Rewards.ManualMaxCount)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("database driver want sqlite got %s", cfg.Database.Driver)
	}
}

func TestRewardsConfigNormalize(t *testing.T) {
	got := RewardsConfig{VisitThreshold: -1, CodeLength: 4, StatsCacheSeconds: 0}.Normalize()
	def := DefaultRewardsConfig()
	if got.VisitThreshold != def.VisitThreshold {
		t.Fatalf("threshold want %d got %d", def.VisitThreshold, got.VisitThreshold)
	}
	if got.CodeLength != def.CodeLength {
		t.Fatalf("short code length should fall back, got %d", got.CodeLength)
	}
	if got.StatsCacheSeconds != 0 {
		t.Fatalf("zero cache seconds disables caching and must be kept, got %d", got.StatsCacheSeconds)
	}
	if got.CodeMaxAttempts != def.CodeMaxAttempts {
		t.Fatalf("max attempts want %d got %d", def.CodeMaxAttempts, got.CodeMaxAttempts)
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("QUEUE_BACKEND", "")
	t.Setenv("FACE_SKIP", "")
	t.Setenv("AUTH_REQUIRED", "")

	cfg := Load()
	if cfg.Env != "dev" || cfg.Production() {
		t.Errorf("unexpected env %q", cfg.Env)
	}
	if cfg.QueueBackend != "memory" || !cfg.FaceSkip || cfg.AuthRequired {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ACCESS_TTL", "5m")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")
	t.Setenv("FACE_SKIP", "false")
	t.Setenv("DB_AUTO_MIGRATE", "not-a-bool")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")

	cfg := Load()
	if !cfg.Production() {
		t.Errorf("expected production")
	}
	if cfg.AccessTTL != 5*time.Minute || cfg.RateLimitPerMin != 30 || cfg.FaceSkip {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.DBAutoMigrate {
		t.Errorf("invalid bool should fall back to the default")
	}
	if !cfg.CloudinaryConfigured() {
		t.Errorf("expected cloudinary configured")
	}
}

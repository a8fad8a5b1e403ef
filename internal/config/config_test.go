package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "DUPLICATE_WINDOW", "RATE_LIMIT_MAX",
		"RATE_LIMIT_WINDOW", "PROCESSING_TIMEOUT", "SQS_QUEUE_URL", "USE_MEMORY_QUEUE", "CLINIC_ID"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.DuplicateWindow != 5*time.Second {
		t.Fatalf("expected 5s duplicate window, got %s", cfg.DuplicateWindow)
	}
	if cfg.RateLimitMax != 10 || cfg.RateLimitWindow != 30*time.Second {
		t.Fatalf("expected 10 per 30s, got %d per %s", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if cfg.ProcessingTimeout != 10*time.Second {
		t.Fatalf("expected 10s processing timeout, got %s", cfg.ProcessingTimeout)
	}
	if cfg.ClinicID != "default" {
		t.Fatalf("expected default clinic id, got %s", cfg.ClinicID)
	}
	if !cfg.InlineWorker() {
		t.Fatalf("expected inline worker without a queue url")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("RATE_LIMIT_MAX", "3")
	t.Setenv("DUPLICATE_WINDOW", "2s")
	t.Setenv("SQS_QUEUE_URL", "https://sqs.us-east-1.amazonaws.com/123/inbound.fifo")
	t.Setenv("USE_MEMORY_QUEUE", "false")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("WHATSAPP_API_BASE_URL", "http://localhost:9999/")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.RateLimitMax != 3 {
		t.Fatalf("expected rate limit override, got %d", cfg.RateLimitMax)
	}
	if cfg.DuplicateWindow != 2*time.Second {
		t.Fatalf("expected duplicate window override, got %s", cfg.DuplicateWindow)
	}
	if cfg.SessionBackend != "redis" {
		t.Fatalf("expected lowercased session backend, got %s", cfg.SessionBackend)
	}
	if cfg.WhatsAppAPIBaseURL != "http://localhost:9999" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.WhatsAppAPIBaseURL)
	}
	if cfg.InlineWorker() {
		t.Fatalf("expected queue worker when SQS url is set")
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")
	t.Setenv("SESSION_TTL", "forever")
	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Fatalf("expected default worker count, got %d", cfg.WorkerCount)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected default session ttl, got %s", cfg.SessionTTL)
	}
}

func TestAdminOriginsList(t *testing.T) {
	t.Setenv("ADMIN_ALLOWED_ORIGINS", " https://dash.example.com, ,https://ops.example.com ")
	cfg := Load()
	if len(cfg.AdminAllowOrigins) != 2 || cfg.AdminAllowOrigins[1] != "https://ops.example.com" {
		t.Fatalf("unexpected origins %v", cfg.AdminAllowOrigins)
	}

	t.Setenv("ADMIN_ALLOWED_ORIGINS", " , ")
	if got := Load().AdminAllowOrigins; got != nil {
		t.Fatalf("expected nil origins, got %v", got)
	}
}

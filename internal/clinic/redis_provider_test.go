package clinic

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisProviderRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	p := NewRedisProvider(client)
	ctx := context.Background()

	if _, err := p.Load(ctx, "c1"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	cfg := DefaultConfig("c1")
	cfg.Name = "Redis Clinic"
	if err := p.Set(ctx, cfg); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("clinic:config:c1") {
		t.Fatalf("expected key clinic:config:c1")
	}
	got, err := p.Load(ctx, "c1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Name != "Redis Clinic" || len(got.TimeSlots) != 3 {
		t.Fatalf("unexpected config: %+v", got)
	}
}

func TestRedisProviderSetRejectsInvalid(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	if err := NewRedisProvider(client).Set(context.Background(), &Config{ClinicID: "c1"}); err == nil {
		t.Fatalf("expected validation error")
	}
}

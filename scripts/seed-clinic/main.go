// Command seed-clinic validates a clinic YAML file and stores it in redis,
// where the running services pick it up on their next start.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-assistant/internal/clinic"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/seed-clinic <clinic.yaml>")
		fmt.Println("Example: go run ./scripts/seed-clinic scripts/seed-clinic/clinic.example.yaml")
		os.Exit(1)
	}

	redisAddr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	clinicID := strings.TrimSpace(os.Getenv("CLINIC_ID"))
	if clinicID == "" {
		clinicID = "default"
	}

	fmt.Printf("🌱 Seeding clinic settings\n")
	fmt.Printf("============================\n")
	fmt.Printf("Redis: %s\n", redisAddr)
	fmt.Printf("File: %s\n\n", os.Args[1])

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("❌ Error reading file: %v\n", err)
		os.Exit(1)
	}
	cfg, err := clinic.ParseYAML(data, clinicID)
	if err != nil {
		fmt.Printf("❌ Error parsing YAML: %v\n", err)
		os.Exit(1)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := clinic.NewRedisProvider(client).Set(ctx, cfg); err != nil {
		fmt.Printf("❌ Error saving settings: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Saved %s (%s): %d time slots, %d services, %d doctors\n",
		cfg.Name, cfg.ClinicID, len(cfg.TimeSlots), len(cfg.Services()), len(cfg.Doctors))
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// WhatsApp Cloud API
	WhatsAppToken         string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	WhatsAppAppSecret     string
	WhatsAppAPIVersion    string
	WhatsAppAPIBaseURL    string

	// Storage
	DatabaseURL          string
	RedisAddr            string
	RedisPassword        string
	RedisTLS             bool
	SessionBackend       string
	SessionTTL           time.Duration
	BookingStore         string
	DynamoBookingsTable  string
	ProcessedEventsStore bool

	// Inbound pipeline
	UseMemoryQueue      bool
	SQSQueueURL         string
	WorkerCount         int
	ProcessingTimeout   time.Duration
	ExternalCallTimeout time.Duration

	// Spam and rate guard
	DuplicateWindow      time.Duration
	RateLimitMax         int
	RateLimitWindow      time.Duration
	GuardCleanupInterval time.Duration

	// AI and voice
	LLMProvider         string
	LLMFallbackProvider string
	GeminiAPIKey        string
	GeminiModel         string
	BedrockModelID      string
	GroqAPIKey          string
	GroqModel           string
	GroqBaseURL         string
	VoiceArchiveBucket  string

	// Clinic
	ClinicID         string
	ClinicConfigFile string

	// Staff notifications
	NotifyEmailProvider string
	SendGridAPIKey      string
	NotifyFromEmail     string
	NotifyFromName      string
	NotifyToEmail       string

	AdminJWTSecret    string
	AdminAllowOrigins []string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		WhatsAppToken:         getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAppSecret:     getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppAPIVersion:    getEnv("WHATSAPP_API_VERSION", "v21.0"),
		WhatsAppAPIBaseURL:    strings.TrimRight(getEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com"), "/"),

		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisTLS:             getEnvAsBool("REDIS_TLS", false),
		SessionBackend:       strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		SessionTTL:           getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		BookingStore:         strings.ToLower(getEnv("BOOKING_STORE", "memory")),
		DynamoBookingsTable:  getEnv("DYNAMODB_BOOKINGS_TABLE", "clinic_bookings"),
		ProcessedEventsStore: getEnvAsBool("PROCESSED_EVENTS_STORE", true),

		UseMemoryQueue:      getEnvAsBool("USE_MEMORY_QUEUE", false),
		SQSQueueURL:         getEnv("SQS_QUEUE_URL", ""),
		WorkerCount:         getEnvAsInt("WORKER_COUNT", 4),
		ProcessingTimeout:   getEnvAsDuration("PROCESSING_TIMEOUT", 10*time.Second),
		ExternalCallTimeout: getEnvAsDuration("EXTERNAL_CALL_TIMEOUT", 8*time.Second),

		DuplicateWindow:      getEnvAsDuration("DUPLICATE_WINDOW", 5*time.Second),
		RateLimitMax:         getEnvAsInt("RATE_LIMIT_MAX", 10),
		RateLimitWindow:      getEnvAsDuration("RATE_LIMIT_WINDOW", 30*time.Second),
		GuardCleanupInterval: getEnvAsDuration("GUARD_CLEANUP_INTERVAL", 2*time.Minute),

		LLMProvider:         strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		LLMFallbackProvider: strings.ToLower(getEnv("LLM_FALLBACK_PROVIDER", "")),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),
		GroqAPIKey:          getEnv("GROQ_API_KEY", ""),
		GroqModel:           getEnv("GROQ_MODEL", "whisper-large-v3"),
		GroqBaseURL:         strings.TrimRight(getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"), "/"),
		VoiceArchiveBucket:  getEnv("VOICE_ARCHIVE_BUCKET", ""),

		ClinicID:         getEnv("CLINIC_ID", "default"),
		ClinicConfigFile: getEnv("CLINIC_CONFIG_FILE", ""),

		NotifyEmailProvider: strings.ToLower(getEnv("NOTIFY_EMAIL_PROVIDER", "")),
		SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		NotifyFromEmail:     getEnv("NOTIFY_FROM_EMAIL", ""),
		NotifyFromName:      getEnv("NOTIFY_FROM_NAME", "Clinic Assistant"),
		NotifyToEmail:       getEnv("NOTIFY_TO_EMAIL", ""),

		AdminJWTSecret:    getEnv("ADMIN_JWT_SECRET", ""),
		AdminAllowOrigins: getEnvAsList("ADMIN_ALLOWED_ORIGINS", nil),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// InlineWorker reports whether inbound messages are processed in the API process.
func (c *Config) InlineWorker() bool {
	return c.UseMemoryQueue || strings.TrimSpace(c.SQSQueueURL) == ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

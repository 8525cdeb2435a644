package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr              string
	DatabaseURL       string
	JWTSecret         string
	Environment       string
	SeedTenantName    string
	SeedAdminEmail    string
	SeedAdminPassword string

	LLMProvider            string
	LLMBaseURL             string
	LLMAPIKey              string
	LLMModel               string
	LLMTimeout             time.Duration
	LLMMaxTokens           int
	LeaveTemp              float64
	ComplianceTemp         float64
	OnboardingTemp         float64
	DemoMode               bool
	FastTrackDays          int
	OnboardingDays         int
	ComplianceScanInterval time.Duration

	RunMigrations      bool
	RunSeed            bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	MetricsEnabled     bool
}

func Load() Config {
	return Config{
		Addr:              getEnv("APP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		Environment:       getEnv("APP_ENV", "development"),
		SeedTenantName:    getEnv("SEED_TENANT_NAME", "Default Tenant"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),

		LLMProvider:            getEnv("LLM_PROVIDER", "openai"),
		LLMBaseURL:             getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:              getEnv("LLM_API_KEY", ""),
		LLMModel:               getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:             getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		LLMMaxTokens:           getEnvInt("LLM_MAX_TOKENS", 1024),
		LeaveTemp:              getEnvFloat("LLM_LEAVE_TEMPERATURE", 0.1),
		ComplianceTemp:         getEnvFloat("LLM_COMPLIANCE_TEMPERATURE", 0.0),
		OnboardingTemp:         getEnvFloat("LLM_ONBOARDING_TEMPERATURE", 0.3),
		DemoMode:               getEnvBool("DEMO_MODE", false),
		FastTrackDays:          getEnvInt("FAST_TRACK_BUSINESS_DAYS", 3),
		OnboardingDays:         getEnvInt("ONBOARDING_DEFAULT_DAYS", 30),
		ComplianceScanInterval: getEnvDuration("COMPLIANCE_SCAN_INTERVAL", 0),

		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:            getEnvBool("RUN_SEED", true),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.DemoMode {
			return fmt.Errorf("DEMO_MODE must not be enabled in production")
		}
		if c.LLMProvider != "fake" && strings.TrimSpace(c.LLMAPIKey) == "" {
			return fmt.Errorf("LLM_API_KEY must be set in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if c.LeaveTemp < 0 || c.LeaveTemp > 0.3 {
		return fmt.Errorf("LLM_LEAVE_TEMPERATURE must be between 0 and 0.3")
	}
	if c.ComplianceTemp < 0 || c.ComplianceTemp > 0.3 {
		return fmt.Errorf("LLM_COMPLIANCE_TEMPERATURE must be between 0 and 0.3")
	}
	if c.OnboardingTemp < 0 || c.OnboardingTemp > 0.3 {
		return fmt.Errorf("LLM_ONBOARDING_TEMPERATURE must be between 0 and 0.3")
	}
	if c.FastTrackDays <= 0 {
		return fmt.Errorf("FAST_TRACK_BUSINESS_DAYS must be positive")
	}
	if c.OnboardingDays <= 0 {
		return fmt.Errorf("ONBOARDING_DEFAULT_DAYS must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DatabaseURL         string
	Env                 string
	CORSAllowedOrigins  []string
	APIMaxBodyBytes     int64
	ImportMaxFileBytes  int64
	ImportMaxBindParams int
	ImportRateLimit     int
	OverrideTTL         time.Duration
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	IdleTimeout         time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        getEnv("API_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Env:         getEnv("APP_ENV", "dev"),
		CORSAllowedOrigins: getEnvCSV("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}),
		APIMaxBodyBytes:     int64(getEnvInt("API_MAX_BODY_MB", 2)) * 1024 * 1024,
		ImportMaxFileBytes:  int64(getEnvInt("IMPORT_MAX_FILE_MB", 20)) * 1024 * 1024,
		ImportMaxBindParams: getEnvInt("IMPORT_MAX_BIND_PARAMS", 2100),
		ImportRateLimit:     getEnvInt("IMPORT_RATE_LIMIT_PER_MIN", 10),
		OverrideTTL:         time.Duration(getEnvInt("OVERRIDE_TTL_DAYS", 7)) * 24 * time.Hour,
		ReadHeaderTimeout:   time.Duration(getEnvInt("API_READ_HEADER_TIMEOUT_SEC", 5)) * time.Second,
		ReadTimeout:         time.Duration(getEnvInt("API_READ_TIMEOUT_SEC", 60)) * time.Second,
		WriteTimeout:        time.Duration(getEnvInt("API_WRITE_TIMEOUT_SEC", 120)) * time.Second,
		IdleTimeout:         time.Duration(getEnvInt("API_IDLE_TIMEOUT_SEC", 60)) * time.Second,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ImportMaxBindParams < 1 {
		return Config{}, fmt.Errorf("IMPORT_MAX_BIND_PARAMS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvCSV(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

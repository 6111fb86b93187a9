package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port    string
	GinMode string

	MailcowAPIURL    string
	MailcowAPIKey    string
	MailcowVerifySSL bool
	DemoMode         bool
	RequestTimeout   time.Duration

	PollInterval     time.Duration
	HistoryRetention int

	AllowedOrigins string

	FirebaseProjectID   string
	FirebaseCredsBase64 string
	FirebaseCredsFile   string
}

// Load reads environment variables into a Config with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "release"),
		MailcowAPIURL:       strings.TrimSpace(os.Getenv("MAILCOW_API_URL")),
		MailcowAPIKey:       strings.TrimSpace(os.Getenv("MAILCOW_API_KEY")),
		AllowedOrigins:      strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")),
		FirebaseProjectID:   strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID")),
		FirebaseCredsBase64: strings.TrimSpace(os.Getenv("FIREBASE_CREDS_BASE64")),
		FirebaseCredsFile:   strings.TrimSpace(os.Getenv("FIREBASE_CREDS_FILE")),
	}

	verifySSL, err := parseBoolEnv("MAILCOW_VERIFY_SSL", true)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAILCOW_VERIFY_SSL: %w", err)
	}
	cfg.MailcowVerifySSL = verifySSL

	demo, err := parseBoolEnv("MAILCOW_DEMO_MODE", false)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAILCOW_DEMO_MODE: %w", err)
	}
	cfg.DemoMode = demo

	pollSeconds, err := parseIntEnv("POLL_INTERVAL_SECONDS", 30)
	if err != nil {
		return Config{}, fmt.Errorf("parse POLL_INTERVAL_SECONDS: %w", err)
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	timeoutSeconds, err := parseIntEnv("REQUEST_TIMEOUT_SECONDS", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse REQUEST_TIMEOUT_SECONDS: %w", err)
	}
	cfg.RequestTimeout = time.Duration(timeoutSeconds) * time.Second

	retention, err := parseIntEnv("HISTORY_RETENTION_POINTS", 2880)
	if err != nil {
		return Config{}, fmt.Errorf("parse HISTORY_RETENTION_POINTS: %w", err)
	}
	cfg.HistoryRetention = retention

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if !c.DemoMode {
		if c.MailcowAPIURL == "" {
			return errors.New("MAILCOW_API_URL is required (or set MAILCOW_DEMO_MODE=true)")
		}
		if c.MailcowAPIKey == "" {
			return errors.New("MAILCOW_API_KEY is required (or set MAILCOW_DEMO_MODE=true)")
		}
	}
	if c.PollInterval <= 0 {
		return errors.New("POLL_INTERVAL_SECONDS must be positive")
	}
	if c.HistoryRetention <= 0 {
		return errors.New("HISTORY_RETENTION_POINTS must be positive")
	}
	return nil
}

// PersistenceEnabled reports whether the optional Firestore history store is
// configured.
func (c Config) PersistenceEnabled() bool {
	return c.FirebaseProjectID != "" && (c.FirebaseCredsBase64 != "" || c.FirebaseCredsFile != "")
}

// FirebaseCredentialsJSON returns the service account JSON bytes and the source used.
func (c Config) FirebaseCredentialsJSON() ([]byte, string, error) {
	if c.FirebaseCredsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.FirebaseCredsBase64)
		if err != nil {
			return nil, "base64", fmt.Errorf("decode FIREBASE_CREDS_BASE64: %w", err)
		}
		return decoded, "base64", nil
	}
	if c.FirebaseCredsFile != "" {
		data, err := os.ReadFile(c.FirebaseCredsFile)
		if err != nil {
			return nil, "file", fmt.Errorf("read FIREBASE_CREDS_FILE: %w", err)
		}
		return data, "file", nil
	}
	return nil, "", errors.New("no firebase credentials found")
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func parseBoolEnv(key string, defaultVal bool) (bool, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func parseIntEnv(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

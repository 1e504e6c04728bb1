package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all process-wide configuration. It is built once in main and
// passed by reference into handlers and services; nothing reads the
// environment at call time.
type Config struct {
	Port        string
	Environment string

	DatabaseURL string
	RedisURL    string

	FirebaseCredentialsPath string

	// Base URL of this application, used for provider callback and
	// notification URLs
	AppURL string

	MercadoPagoAccessToken string
	MercadoPagoBaseURL     string
	ProviderTimeout        time.Duration

	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	EmailFrom string
}

// Load builds a Config from environment variables
func Load() *Config {
	timeoutSec, err := strconv.Atoi(getEnv("PROVIDER_TIMEOUT_SECONDS", "5"))
	if err != nil || timeoutSec <= 0 {
		timeoutSec = 5
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase-service-account.json"),

		AppURL: getEnv("APP_URL", "http://localhost:8080"),

		MercadoPagoAccessToken: os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),
		MercadoPagoBaseURL:     getEnv("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com"),
		ProviderTimeout:        time.Duration(timeoutSec) * time.Second,

		SMTPHost:  os.Getenv("SMTP_HOST"),
		SMTPPort:  os.Getenv("SMTP_PORT"),
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		EmailFrom: os.Getenv("EMAIL_FROM"),
	}
}

// ProviderConfigured reports whether the payment provider credentials and the
// application base URL are both present
func (c *Config) ProviderConfigured() bool {
	return c.MercadoPagoAccessToken != "" && c.AppURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port         string
	Environment  string
	APIBaseURL   string
	SiteBaseURL  string
	DatabaseURL  string
	CatalogPath  string
	JWTSecret    string
	JWTIssuer    string
	JWTTTL       time.Duration
	CookieSecure bool
	CORSOrigins  []string
	APITimeout   time.Duration
	CheckoutWait time.Duration
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:         fallback(os.Getenv("PORT"), "8080"),
		Environment:  strings.ToLower(fallback(os.Getenv("APP_ENV"), "development")),
		APIBaseURL:   strings.TrimRight(strings.TrimSpace(os.Getenv("API_BASE_URL")), "/"),
		SiteBaseURL:  strings.TrimRight(strings.TrimSpace(os.Getenv("SITE_BASE_URL")), "/"),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CatalogPath:  fallback(os.Getenv("CATALOG_PATH"), "public/products.json"),
		JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:    fallback(os.Getenv("JWT_ISSUER"), "refer-web"),
		CookieSecure: parseBool(os.Getenv("COOKIE_SECURE"), true),
		CORSOrigins:  parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	cfg.JWTTTL = parseDuration(os.Getenv("JWT_TTL_MINUTES"), time.Minute, 7*24*time.Hour)
	cfg.APITimeout = parseDuration(os.Getenv("API_TIMEOUT_SECONDS"), time.Second, 15*time.Second)
	// 0 turns the simulated checkout delay off.
	cfg.CheckoutWait = parseDelay(os.Getenv("CHECKOUT_DELAY_MS"), time.Millisecond, 2*time.Second)

	if cfg.APIBaseURL == "" {
		return Config{}, errors.New("API_BASE_URL is required")
	}
	if cfg.SiteBaseURL == "" {
		return Config{}, errors.New("SITE_BASE_URL is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Production reports whether the service runs with production defaults.
func (c Config) Production() bool {
	return c.Environment == "production"
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseBool(input string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(input))
	if err != nil {
		return def
	}
	return v
}

// parseDuration reads a positive integer count of unit, falling back to def.
func parseDuration(input string, unit, def time.Duration) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * unit
}

// parseDelay is parseDuration that also accepts zero.
func parseDelay(input string, unit, def time.Duration) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 0 {
		return def
	}
	return time.Duration(n) * unit
}

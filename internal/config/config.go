package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io/fs"
	"log/slog"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port              string
	APIBaseURL        string
	SiteURL           string
	CSRFKey           []byte
	SessionKey        []byte
	CookieDomain      string
	CookieSecure      bool
	AllowSlugOverride bool
	APITimeout        time.Duration
	OrderTimeout      time.Duration
	ScreenshotWidth   uint
	RedisAddr         string
	CatalogCacheTTL   time.Duration
	TemplatesDir      string
	StaticDir         string
	TelegramContact   string
	UPIID             string
	LogLevel          slog.Level
}

// env mirrors the raw settings as they appear in the environment or app.env.
type env struct {
	Port              string        `mapstructure:"PORT"`
	APIBaseURL        string        `mapstructure:"API_BASE_URL"`
	SiteURL           string        `mapstructure:"SITE_URL"`
	CSRFKey           string        `mapstructure:"CSRF_KEY"`
	SessionKey        string        `mapstructure:"SESSION_KEY"`
	CookieDomain      string        `mapstructure:"COOKIE_DOMAIN"`
	CookieSecure      bool          `mapstructure:"COOKIE_SECURE"`
	AllowSlugOverride bool          `mapstructure:"ALLOW_SLUG_OVERRIDE"`
	APITimeout        time.Duration `mapstructure:"API_TIMEOUT"`
	OrderTimeout      time.Duration `mapstructure:"ORDER_TIMEOUT"`
	ScreenshotWidth   uint          `mapstructure:"SCREENSHOT_MAX_WIDTH"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	CatalogCacheTTL   time.Duration `mapstructure:"CATALOG_CACHE_TTL"`
	TemplatesDir      string        `mapstructure:"TEMPLATES_DIR"`
	StaticDir         string        `mapstructure:"STATIC_DIR"`
	TelegramContact   string        `mapstructure:"TELEGRAM_CONTACT"`
	UPIID             string        `mapstructure:"UPI_ID"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"PORT":                 "8585",
	"API_BASE_URL":         "http://localhost:5000",
	"SITE_URL":             "http://localhost:8585",
	"CSRF_KEY":             "",
	"SESSION_KEY":          "",
	"COOKIE_DOMAIN":        "",
	"COOKIE_SECURE":        false,
	"ALLOW_SLUG_OVERRIDE":  false,
	"API_TIMEOUT":          "10s",
	"ORDER_TIMEOUT":        "15s",
	"SCREENSHOT_MAX_WIDTH": 1600,
	"REDIS_ADDR":           "",
	"CATALOG_CACHE_TTL":    "1m",
	"TEMPLATES_DIR":        "templates",
	"STATIC_DIR":           "static",
	"TELEGRAM_CONTACT":     "https://t.me/magicworld_support",
	"UPI_ID":               "",
	"LOG_LEVEL":            "debug",
}

// LoadConfig reads settings from the environment, falling back to a .env
// file and then an app.env file in dir. Real environment variables win.
func LoadConfig(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Could not read .env file", "error", err)
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("app")
	v.SetConfigType("env")
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var raw env
	if err := v.Unmarshal(&raw); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:              raw.Port,
		APIBaseURL:        strings.TrimRight(raw.APIBaseURL, "/"),
		SiteURL:           strings.TrimRight(raw.SiteURL, "/"),
		CookieDomain:      raw.CookieDomain,
		CookieSecure:      raw.CookieSecure,
		AllowSlugOverride: raw.AllowSlugOverride,
		APITimeout:        raw.APITimeout,
		OrderTimeout:      raw.OrderTimeout,
		ScreenshotWidth:   raw.ScreenshotWidth,
		RedisAddr:         raw.RedisAddr,
		CatalogCacheTTL:   raw.CatalogCacheTTL,
		TemplatesDir:      raw.TemplatesDir,
		StaticDir:         raw.StaticDir,
		TelegramContact:   raw.TelegramContact,
		UPIID:             raw.UPIID,
	}

	cfg.CSRFKey = secretKey("CSRF_KEY", raw.CSRFKey)
	cfg.SessionKey = secretKey("SESSION_KEY", raw.SessionKey)

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", raw.Port)
		cfg.Port = "8585"
	}

	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("config: API_BASE_URL must be an absolute URL")
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = 10 * time.Second
	}
	if cfg.OrderTimeout <= 0 {
		cfg.OrderTimeout = 15 * time.Second
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(raw.LogLevel)); err != nil {
		slog.Warn("Unknown LOG_LEVEL, using debug", "LOG_LEVEL", raw.LogLevel)
		cfg.LogLevel = slog.LevelDebug
	}

	return cfg, nil
}

// secretKey decodes a base64 key of at least 32 bytes, or generates a
// throwaway one with a warning.
func secretKey(name, encoded string) []byte {
	if encoded == "" {
		slog.Warn(name + " not set. Generating a random key for development. This key will change on each restart. PLEASE SET " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(decoded) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes). Generating a random key for development. PLEASE SET A SECURE " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	return decoded
}

// generateRandomBytes generates a random byte slice of specified length
// Uses crypto/rand for secure random numbers.
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to read random bytes", "error", err)
		fallbackKey := "fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		if len(fallbackKey) < n {
			paddedKey := make([]byte, n)
			copy(paddedKey, fallbackKey)
			return paddedKey
		}
		return []byte(fallbackKey)[:n]
	}
	return b
}

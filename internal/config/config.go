package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Environment
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	// Database（未設定の場合はフォールバックストアのみで動作する）
	DatabaseURL string `env:"DATABASE_URL"`

	// Admin
	AdminUsername     string `env:"ADMIN_USERNAME"`
	AdminPassword     string `env:"ADMIN_PASSWORD"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"` // bcrypt

	// Session
	AuthSecret    string `env:"AUTH_SECRET"`
	SessionMaxAge int    `env:"SESSION_MAX_AGE" envDefault:"86400"`

	// Routing
	ProtectedPathPrefix string `env:"PROTECTED_PATH_PREFIX" envDefault:"/admin"`
	LoginPath           string `env:"LOGIN_PATH" envDefault:"/login"`

	// Rate Limit（req/min/IP）
	RateLimitLogin   int `env:"RATE_LIMIT_LOGIN" envDefault:"10"`
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"300"`

	// Fallback
	FallbackSeedFile string `env:"FALLBACK_SEED_FILE"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Server
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`

	// Cookie（APP_ENV=productionのときのみSecure属性を付与する）
	CookieSecure bool
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	var missing []string
	if cfg.AuthSecret == "" {
		missing = append(missing, "AUTH_SECRET")
	}
	if cfg.AdminUsername == "" {
		missing = append(missing, "ADMIN_USERNAME")
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		missing = append(missing, "ADMIN_PASSWORD or ADMIN_PASSWORD_HASH")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if cfg.SessionMaxAge <= 0 {
		return nil, fmt.Errorf("SESSION_MAX_AGE must be positive, got %d", cfg.SessionMaxAge)
	}

	cfg.CookieSecure = cfg.IsProduction()

	return cfg, nil
}

// IsProduction は本番環境で動作しているかを返す。
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// HasPrimaryStore はプライマリストア（PostgreSQL）が設定されているかを返す。
func (c *Config) HasPrimaryStore() bool {
	return c.DatabaseURL != ""
}

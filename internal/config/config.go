package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// minJWTSecretLength はHS256署名鍵として受け付ける最小バイト長。
const minJWTSecretLength = 32

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// OAuth
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET,required,notEmpty"`
	GoogleRedirectURL  string        `env:"GOOGLE_REDIRECT_URL,required,notEmpty"`
	GoogleHostedDomain string        `env:"GOOGLE_HOSTED_DOMAIN"` // 未設定時はAllowedEmailSuffixから導出
	OAuthHTTPTimeout   time.Duration `env:"OAUTH_HTTP_TIMEOUT" envDefault:"10s"`

	// Domain policy
	AllowedEmailSuffix string `env:"ALLOWED_EMAIL_SUFFIX" envDefault:"@vitstudent.ac.in"`

	// Token
	JWTSecret               string        `env:"JWT_SECRET,required,notEmpty"`
	LoginTokenTTL           time.Duration `env:"LOGIN_TOKEN_TTL" envDefault:"1h"`
	PreRegistrationTokenTTL time.Duration `env:"PRE_REGISTRATION_TOKEN_TTL" envDefault:"1h"`
	RegistrationTokenTTL    time.Duration `env:"REGISTRATION_TOKEN_TTL" envDefault:"24h"`

	// Rate Limit（req/min）
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"120"`
	RateLimitReview  int `env:"RATE_LIMIT_REVIEW" envDefault:"10"`

	// Reviews
	ReviewPageSize int `env:"REVIEW_PAGE_SIZE" envDefault:"20"`

	// Server
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	FrontendURL string `env:"FRONTEND_URL,required,notEmpty"`

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:5173"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数の未設定や値の形式誤りはまとめてエラーとして返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if len(cfg.JWTSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLength)
	}
	if cfg.RateLimitGeneral <= 0 || cfg.RateLimitReview <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_GENERAL and RATE_LIMIT_REVIEW must be positive")
	}

	if cfg.GoogleHostedDomain == "" {
		cfg.GoogleHostedDomain = strings.TrimPrefix(cfg.AllowedEmailSuffix, "@")
	}

	return cfg, nil
}

// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/hitoshi/jobboard/internal/model"
)

// minSessionSecretLength はCookie署名鍵として許容する最小バイト数。
const minSessionSecretLength = 16

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL       string        `env:"DATABASE_URL,required,notEmpty"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// OAuth
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET,required,notEmpty"`
	GoogleRedirectURL  string        `env:"GOOGLE_REDIRECT_URL,required,notEmpty"`
	OAuthTimeout       time.Duration `env:"OAUTH_TIMEOUT" envDefault:"10s"`

	// DefaultExternalRole が設定されている場合、外部IdPの初回ログインでロール選択を省略する。
	DefaultExternalRole string `env:"DEFAULT_EXTERNAL_ROLE"`

	// Session
	SessionSecret          string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionMaxAge          int           `env:"SESSION_MAX_AGE" envDefault:"86400"`
	PendingSignupMaxAge    int           `env:"PENDING_SIGNUP_MAX_AGE" envDefault:"900"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`

	// Password
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// Rate Limit (req/min)
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"120"`
	RateLimitAuth    int `env:"RATE_LIMIT_AUTH" envDefault:"10"`

	// Server
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	BaseURL     string `env:"BASE_URL,required,notEmpty"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// Cookie
	CookieSecure bool
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// CORS（カンマ区切り。未設定の場合はFRONTEND_URLのみ）
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// リバースプロキシのX-Forwarded-For/X-Real-IPを信頼するか
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	// CSRF
	CSRFEnabled bool `env:"CSRF_ENABLED" envDefault:"true"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定、または値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFromMap は指定されたキーと値からConfigを読み込む。プロセスの環境変数は参照しない。
func LoadFromMap(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

// LoadDotEnv は指定されたファイル（省略時は.env）を環境変数として読み込む。
// ファイルが存在しない場合は何もしない。既に設定されている環境変数は上書きしない。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{cfg.FrontendURL}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate は値の組み合わせや範囲を検証する。
func (c *Config) validate() error {
	var errs []error

	if len(c.SessionSecret) < minSessionSecretLength {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLength))
	}
	if c.SessionMaxAge <= 0 {
		errs = append(errs, errors.New("SESSION_MAX_AGE must be positive"))
	}
	if c.PendingSignupMaxAge <= 0 {
		errs = append(errs, errors.New("PENDING_SIGNUP_MAX_AGE must be positive"))
	}
	if c.DefaultExternalRole != "" && !model.Role(c.DefaultExternalRole).Valid() {
		errs = append(errs, fmt.Errorf("DEFAULT_EXTERNAL_ROLE must be %q or %q, got %q",
			model.RoleApplicant, model.RoleCompany, c.DefaultExternalRole))
	}
	if c.RateLimitGeneral <= 0 || c.RateLimitAuth <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_GENERAL and RATE_LIMIT_AUTH must be positive"))
	}
	if c.SessionCleanupInterval <= 0 {
		errs = append(errs, errors.New("SESSION_CLEANUP_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}

// SessionTTL はセッションの有効期間を返す。
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionMaxAge) * time.Second
}

// PendingSignupTTL はロール選択待ち登録情報の有効期間を返す。
func (c *Config) PendingSignupTTL() time.Duration {
	return time.Duration(c.PendingSignupMaxAge) * time.Second
}

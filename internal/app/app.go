package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/jobboard/internal/announcement"
	"github.com/hitoshi/jobboard/internal/application"
	"github.com/hitoshi/jobboard/internal/auth"
	"github.com/hitoshi/jobboard/internal/config"
	"github.com/hitoshi/jobboard/internal/database"
	"github.com/hitoshi/jobboard/internal/handler"
	"github.com/hitoshi/jobboard/internal/logger"
	"github.com/hitoshi/jobboard/internal/metrics"
	"github.com/hitoshi/jobboard/internal/middleware"
	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/ownership"
	"github.com/hitoshi/jobboard/internal/repository"
	"github.com/hitoshi/jobboard/internal/security"
	"github.com/hitoshi/jobboard/internal/session"
	"github.com/hitoshi/jobboard/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// .envと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. .envがあれば環境変数に取り込む（既存の環境変数は上書きしない）
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !logger.SetLevel(cfg.LogLevel) {
		slog.Warn("unknown log level, falling back to info", slog.String("log_level", cfg.LogLevel))
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		var rest []string
		if len(args) > 1 {
			rest = args[1:]
		}
		return runMigrate(cfg, rest)
	default:
		return runServe(cfg)
	}
}

// openDatabase はDB接続を開き、10秒以内に疎通を確認する。
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	return database.Connect(context.Background(), cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: database.DefaultPoolConfig.ConnMaxIdleTime,
	}, 10*time.Second)
}

// server はAPIサーバーのルーターと停止処理をまとめたもの。
type server struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
}

// newServer は全依存関係をワイヤリングしてAPIサーバーを構築する。
// regにはアプリケーションメトリクスを登録し、/metricsで公開する。
func newServer(cfg *config.Config, db *sql.DB, reg *prometheus.Registry) *server {
	// 1. メトリクス
	mc := metrics.NewCollector(reg)

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	identRepo := repository.NewPostgresIdentityRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	pendingRepo := repository.NewPostgresPendingSignupRepo(db)
	announcementRepo := repository.NewPostgresAnnouncementRepo(db)
	applicationRepo := repository.NewPostgresApplicationRepo(db)

	// 3. セキュリティサービスの初期化
	sanitizer := security.NewContentSanitizer()
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	logSecuritySettings(slog.Default(), cfg, hasher)

	// 4. ドメインサービスの初期化
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		HTTPClient:   security.NewOutboundClient(cfg.OAuthTimeout),
	})
	authService := auth.NewService(
		oauthProvider, userRepo, identRepo, sessionRepo, pendingRepo, hasher, mc,
		auth.ServiceConfig{
			SessionMaxAge:       cfg.SessionTTL(),
			PendingSignupMaxAge: cfg.PendingSignupTTL(),
			DefaultExternalRole: model.Role(cfg.DefaultExternalRole),
		},
	)

	checker := ownership.NewChecker(announcementRepo)
	announcementService := announcement.NewService(announcementRepo, checker, sanitizer, mc)
	applicationService := application.NewService(applicationRepo, checker, sanitizer, mc)

	// 5. Cookie・レート制限
	cookies := session.NewCookies(session.NewSigner(cfg.SessionSecret), session.CookieConfig{
		Domain:              cfg.CookieDomain,
		Secure:              cfg.CookieSecure,
		SessionMaxAge:       cfg.SessionMaxAge,
		PendingSignupMaxAge: cfg.PendingSignupMaxAge,
	})
	rateLimiter := middleware.NewRateLimiter(
		middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth),
	)

	// 6. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:             slog.Default(),
		SessionResolver:    authService,
		Cookies:            cookies,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SecurityHeaders:    middleware.DefaultSecurityHeadersConfig(cfg.CookieSecure),
		CSRF: middleware.CSRFConfig{
			Enabled:      cfg.CSRFEnabled,
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
			CookieMaxAge: cfg.SessionMaxAge,
		},
		RateLimiter:       rateLimiter,
		TrustProxyHeaders: cfg.TrustProxy,

		HealthChecker:  db,
		Metrics:        mc,
		MetricsHandler: metrics.Handler(reg),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			FrontendURL:  cfg.FrontendURL,
			CookieSecure: cfg.CookieSecure,
		},

		AnnouncementService: announcementService,
		FeedSource:          announcementService,
		ApplicationService:  applicationService,
		Sanitizer:           sanitizer,
	}

	return &server{
		handler:     handler.NewRouter(deps),
		rateLimiter: rateLimiter,
	}
}

// newRegistry はプロセス・Goランタイムのメトリクスを含むレジストリを生成する。
// logSecuritySettings は起動時に認証まわりの実効設定を記録する。
// BASE_URLがhttpsでない場合、Cookieは平文で送信されるため警告を出す。
func logSecuritySettings(logger *slog.Logger, cfg *config.Config, hasher *security.BcryptHasher) {
	logger.Info("auth settings",
		slog.Int("bcrypt_cost", hasher.Cost()),
		slog.Bool("cookie_secure", cfg.CookieSecure),
		slog.Bool("csrf_enabled", cfg.CSRFEnabled),
	)
	if !cfg.CookieSecure {
		logger.Warn("session cookies are sent without the Secure attribute; use an https BASE_URL outside local development",
			slog.String("base_url", cfg.BaseURL),
		)
	}
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	srv := newServer(cfg, db, newRegistry())
	defer srv.rateLimiter.Stop()

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", httpServer.Addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-listenErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 期限切れのセッションと登録待ち情報を定期的に削除する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	job := cleanup.NewCleanupJob(db, slog.Default())
	job.Interval = cfg.SessionCleanupInterval

	job.RunLoop(ctx)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// 引数なしまたは "up" で未適用分をすべて適用し、"down [N]" で直近N件（既定1件）を取り消す。
// "version" は現在のスキーマバージョンを表示するだけで変更しない。
func runMigrate(cfg *config.Config, args []string) error {
	action := "up"
	if len(args) > 0 {
		action = args[0]
	}

	slog.Info("running database migrations",
		slog.String("action", action),
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	switch action {
	case "up":
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid rollback steps %q: %w", args[1], err)
			}
			steps = n
		}
		if err := database.RollbackMigrations(cfg.DatabaseURL, steps); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
	case "version":
		v, err := database.CurrentVersion(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		slog.Info("current schema version",
			slog.Uint64("version", uint64(v.Version)),
			slog.Bool("dirty", v.Dirty),
		)
		return nil
	default:
		return fmt.Errorf("unknown migrate action %q (want up, down or version)", action)
	}

	slog.Info("database migrations completed successfully", slog.String("action", action))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
// 解析できないURLは全体をマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}

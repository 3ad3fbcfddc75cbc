package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/jobboard/internal/metrics"
	"github.com/hitoshi/jobboard/internal/middleware"
	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/security"
	"github.com/hitoshi/jobboard/internal/session"
)

// HealthChecker はヘルスチェックで依存先の疎通を確認する。*sql.DB が満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// healthCheckTimeout はヘルスチェック1回あたりのタイムアウト。
const healthCheckTimeout = 2 * time.Second

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger             *slog.Logger
	SessionResolver    middleware.SessionResolver
	Cookies            *session.Cookies
	CORSAllowedOrigins []string
	SecurityHeaders    middleware.SecurityHeadersConfig
	CSRF               middleware.CSRFConfig
	RateLimiter        *middleware.RateLimiter
	// TrustProxyHeaders がtrueならX-Forwarded-For等からクライアントIPを決める（リバースプロキシ配下用）。
	TrustProxyHeaders bool

	// 運用
	HealthChecker  HealthChecker
	Metrics        metrics.MetricsCollector
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 求人・応募
	AnnouncementService AnnouncementServiceInterface
	FeedSource          LatestAnnouncementsLister
	ApplicationService  ApplicationServiceInterface
	Sanitizer           security.ContentSanitizerService
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// グローバルミドルウェアの実行順序:
//
//	RequestID → RealIP(任意) → Recovery → SecurityHeaders → CORS → Logging → Metrics → CSRF
//
// 認証が必要なルートは Session → RateLimit(General) → RequireRole の順に適用する。
// Loggingはセッションミドルウェアより外側にあり、解決されたユーザーIDを後から受け取って記録する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mc := deps.Metrics
	if mc == nil {
		mc = metrics.Nop{}
	}

	r.Use(chimw.RequestID)
	if deps.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.SecurityHeaders))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins...))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(metrics.Middleware(mc))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

	authHandler := NewAuthHandler(deps.AuthService, deps.Cookies, deps.AuthConfig)
	announcementHandler := NewAnnouncementHandler(deps.AnnouncementService)
	applicationHandler := NewApplicationHandler(deps.ApplicationService)
	rssHandler := NewRSSHandler(deps.FeedSource, deps.AuthConfig.FrontendURL, deps.Sanitizer)

	requireSession := middleware.NewSessionMiddleware(deps.SessionResolver, deps.Cookies)
	generalLimit := deps.RateLimiter.GeneralMiddleware()
	companyOnly := middleware.RequireRole(model.RoleCompany)
	applicantOnly := middleware.RequireRole(model.RoleApplicant)

	// --- 運用エンドポイント ---
	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF))

	// --- 認証 ---
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.AuthMiddleware())
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// OAuthフロー
		r.Get("/google", authHandler.GoogleLogin)
		r.Get("/google/callback", authHandler.GoogleCallback)
		r.Post("/google/complete", authHandler.CompleteSignup)

		// セッションが無効でもCookieをクリアできるようにセッション必須にはしない
		r.Post("/logout", authHandler.Logout)

		r.With(requireSession, generalLimit).Get("/me", authHandler.Me)
	})

	// --- 求人 ---
	r.Route("/postAnnunci", func(r chi.Router) {
		r.Get("/", announcementHandler.List)
		r.Get("/feed.xml", rssHandler.Feed)
		r.Get("/{id}", announcementHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireSession, generalLimit, companyOnly)
			r.Post("/", announcementHandler.Create)
			r.Get("/miei-annunci", announcementHandler.ListMine)
			r.Delete("/{id}", announcementHandler.Delete)
		})
	})

	// --- 応募 ---
	r.Route("/candidature", func(r chi.Router) {
		r.Use(requireSession, generalLimit)

		r.With(applicantOnly).Post("/", applicationHandler.Submit)
		r.With(applicantOnly).Get("/mie-candidature", applicationHandler.ListMine)
		r.With(companyOnly).Get("/annuncio/{id}", applicationHandler.ListForAnnouncement)
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

// healthHandler は依存先への疎通を確認し、200または503を返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

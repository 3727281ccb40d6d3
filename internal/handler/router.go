package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/nooronx/cms/internal/middleware"
	"github.com/nooronx/cms/internal/model"
)

// SessionChecker はAPI用の完全なセッション検証を提供する。auth.SessionManagerが実装する。
type SessionChecker interface {
	middleware.SessionValidator
	AuthChecker
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger              *slog.Logger
	HTTPRecorder        middleware.HTTPRecorder // nilの場合はメトリクスを記録しない
	RateLimiter         *middleware.RateLimiter // nilの場合はレート制限なし
	CORSAllowedOrigin   string
	ProtectedPathPrefix string
	LoginPath           string
	HSTS                bool

	// 認証
	Sessions    SessionChecker
	AuthService AuthServiceInterface

	// 記事
	ContentService ContentServiceInterface
	ViewCounter    ViewCounterInterface

	// 運用
	Pinger         Pinger       // nilの場合はプライマリストア未設定として扱う
	MetricsHandler http.Handler // nilの場合は/metricsを公開しない
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RealIP → SecurityHeaders → Logging → CORS → PageGate
//
// /api 配下にはさらに RateLimit(General) → OriginCheck を適用し、
// 書き込み系の記事APIには RequireAuth を適用する。
// PageGateはCookieの存在のみ、RequireAuthはトークンを完全に検証する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefix := deps.ProtectedPathPrefix
	if prefix == "" {
		prefix = "/admin"
	}
	prefix = strings.TrimRight(prefix, "/")
	loginPath := deps.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(chimw.RealIP)
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.HSTS))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.HTTPRecorder))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewPageGate(prefix, loginPath))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// --- 運用エンドポイント ---
	r.Get("/health", HealthHandler(deps.Pinger))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- ページ（描画はフロントエンド側） ---
	r.Get(loginPath, LoginPage)
	r.Get(prefix, AdminPage)
	r.Get(prefix+"/*", AdminPage)

	authHandler := NewAuthHandler(deps.AuthService)
	requireAuth := middleware.NewRequireAuthMiddleware(deps.Sessions)

	r.Route("/api", func(r chi.Router) {
		r.Use(optional(deps.RateLimiter, (*middleware.RateLimiter).GeneralMiddleware))
		r.Use(middleware.NewOriginCheckMiddleware(deps.CORSAllowedOrigin))

		// 認証
		r.Route("/auth", func(r chi.Router) {
			r.With(optional(deps.RateLimiter, (*middleware.RateLimiter).LoginMiddleware)).Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/session", authHandler.Session)
		})

		// 記事（コレクションごと）
		for _, collection := range model.Collections() {
			h := NewContentHandler(collection, deps.ContentService, deps.ViewCounter, deps.Sessions)

			r.Route("/"+string(collection), func(r chi.Router) {
				r.Get("/", h.List)
				r.Get("/{id}", h.Get)
				r.Patch("/{id}/views", h.IncrementViews)

				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Post("/", h.Create)
					r.Put("/{id}", h.Update)
				})
			})
		}
	})

	return r
}

// optional はRateLimiterが設定されている場合のみミドルウェアを返し、
// 未設定の場合は何もしないミドルウェアを返す。
func optional(rl *middleware.RateLimiter, mw func(*middleware.RateLimiter) func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw(rl)
}

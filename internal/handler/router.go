package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/roomfinder/internal/auth"
	"github.com/hitoshi/roomfinder/internal/metrics"
	"github.com/hitoshi/roomfinder/internal/middleware"
)

// HealthChecker はデータストアの疎通確認インターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     auth.TokenVerifier
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	MetricsHandler    http.Handler // nilの場合は/metricsを公開しない
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HealthChecker     HealthChecker

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 寮・部屋・レビュー
	HostelService  HostelServiceInterface
	ReviewService  ReviewServiceInterface
	ProfileService ProfileServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Metrics → Logging → SecurityHeaders → CORS → RateLimit(General)
//
// アクセスガードはルートグループごとに要求レベルを変えて適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	// --- 運用エンドポイント（レート制限の対象外） ---
	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	hostelHandler := NewHostelHandler(deps.HostelService)
	reviewHandler := NewReviewHandler(deps.ReviewService)
	profileHandler := NewProfileHandler(deps.ProfileService)

	guard := func(level auth.Level) func(http.Handler) http.Handler {
		return middleware.NewAccessGuard(deps.TokenVerifier, level, collector)
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 認証ルート（OAuthフロー）
		r.Route("/auth/google", func(r chi.Router) {
			r.Get("/login", authHandler.Login)
			r.Get("/callback", authHandler.Callback)
		})

		// --- 認証不要のルート ---
		r.Get("/api/hostels", hostelHandler.ListHostels)
		r.Get("/api/hostel", hostelHandler.FindHostelByName)
		r.Get("/api/hostels/{id}/rooms", hostelHandler.ListHostelRooms)
		r.Get("/api/rooms", hostelHandler.ListRooms)
		r.Get("/api/rooms/{id}/reviews", reviewHandler.ListReviews)

		// --- 登録前トークンで到達できるルート ---
		r.With(guard(auth.LevelPreRegistration)).Post("/api/register", authHandler.Register)

		// --- 登録済みユーザー ---
		r.Group(func(r chi.Router) {
			r.Use(guard(auth.LevelMember))

			r.Get("/api/hostels/{id}", hostelHandler.GetHostel)
			r.Get("/api/profile", profileHandler.GetProfile)
			// レビュー投稿は専用のレート制限を追加
			r.With(deps.RateLimiter.ReviewMiddleware()).Post("/api/rooms/{id}/reviews", reviewHandler.CreateReview)
		})

		// --- 管理者 ---
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(guard(auth.LevelAdmin))

			r.Post("/hostels", hostelHandler.CreateHostel)
			r.Put("/hostels/{id}", hostelHandler.UpdateHostel)
			r.Post("/hostels/{id}/rooms", hostelHandler.CreateRoom)
		})
	})

	return r
}

// healthHandler はデータストアに疎通できれば200、できなければ503を返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

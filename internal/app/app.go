package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nooronx/cms/internal/auth"
	"github.com/nooronx/cms/internal/config"
	"github.com/nooronx/cms/internal/content"
	"github.com/nooronx/cms/internal/database"
	"github.com/nooronx/cms/internal/handler"
	"github.com/nooronx/cms/internal/logger"
	"github.com/nooronx/cms/internal/metrics"
	"github.com/nooronx/cms/internal/middleware"
	"github.com/nooronx/cms/internal/model"
	"github.com/nooronx/cms/internal/repository"
	"github.com/nooronx/cms/internal/security"
)

// startupPingTimeout は起動時にプライマリストアの疎通を確認する際のタイムアウト。
const startupPingTimeout = 5 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. LOG_LEVELを反映する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

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
		slog.String("env", cfg.AppEnv),
		slog.Bool("primary_store", cfg.HasPrimaryStore()),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandSeed:
		return runSeed(cfg)
	default:
		return runServe(cfg)
	}
}

// server はHTTPハンドラーと終了処理をまとめたもの。
type server struct {
	handler http.Handler
	close   func()
}

// newServer は設定から全依存関係をワイヤリングする。
// dbがnilの場合はフォールバックストアのみで動作する。
func newServer(cfg *config.Config, db *sql.DB) (*server, error) {
	// 1. ストア
	var primary repository.PrimaryContentRepository
	var pinger handler.Pinger
	if db != nil {
		primary = repository.NewPostgresContentRepo(db)
		pinger = db
	}

	fallback := repository.NewMemoryContentRepo()
	if cfg.FallbackSeedFile != "" {
		seed, err := repository.LoadSeedFile(cfg.FallbackSeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load fallback seed: %w", err)
		}
		if err := fallback.Seed(seed); err != nil {
			return nil, fmt.Errorf("failed to seed fallback store: %w", err)
		}
		slog.Info("fallback store seeded",
			slog.Int("news", fallback.Len(model.CollectionNews)),
			slog.Int("education", fallback.Len(model.CollectionEducation)),
		)
	}

	// 2. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 3. 記事サービス
	sanitizer := security.NewContentSanitizer()
	contentService := content.NewService(primary, fallback, sanitizer, collector)
	viewCounter := content.NewViewCounter(primary, fallback, collector)

	// 4. 認証
	sessions, err := auth.NewSessionManager(auth.SessionConfig{
		Secret:       cfg.AuthSecret,
		MaxAge:       time.Duration(cfg.SessionMaxAge) * time.Second,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}
	verifier := auth.NewCredentialVerifier(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash)
	authService := auth.NewService(verifier, sessions, collector)

	// 5. ルーター
	rateLimiter := middleware.NewRateLimiter(
		middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitLogin),
	)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:              slog.Default(),
		HTTPRecorder:        collector,
		RateLimiter:         rateLimiter,
		CORSAllowedOrigin:   cfg.CORSAllowedOrigin,
		ProtectedPathPrefix: cfg.ProtectedPathPrefix,
		LoginPath:           cfg.LoginPath,
		HSTS:                cfg.IsProduction(),

		Sessions:    sessions,
		AuthService: authService,

		ContentService: contentService,
		ViewCounter:    viewCounter,

		Pinger:         pinger,
		MetricsHandler: metrics.Handler(registry),
	})

	return &server{handler: router, close: rateLimiter.Stop}, nil
}

// openPrimary はプライマリストアへの接続を開く。
// 起動時に到達できなくてもエラーにはせず、リクエストごとにフォールバックする。
func openPrimary(cfg *config.Config) (*sql.DB, error) {
	if !cfg.HasPrimaryStore() {
		slog.Warn("DATABASE_URL is not set, serving from the fallback store only")
		return nil, nil
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := database.Ping(context.Background(), db, startupPingTimeout); err != nil {
		slog.Warn("primary store is unreachable at startup",
			slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
			slog.String("error", err.Error()),
		)
	} else {
		slog.Info("database connection established")
	}
	return db, nil
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	db, err := openPrimary(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	srv, err := newServer(cfg, db)
	if err != nil {
		return err
	}
	defer srv.close()

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

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
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

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if !cfg.HasPrimaryStore() {
		return errors.New("migrate requires DATABASE_URL")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runSeed はシードファイルの記事をプライマリストアへ投入する。
func runSeed(cfg *config.Config) error {
	if !cfg.HasPrimaryStore() {
		return errors.New("seed requires DATABASE_URL")
	}
	if cfg.FallbackSeedFile == "" {
		return errors.New("seed requires FALLBACK_SEED_FILE")
	}

	items, err := repository.LoadSeedFile(cfg.FallbackSeedFile)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Ping(ctx, db, startupPingTimeout); err != nil {
		return err
	}

	created, skipped, err := seedPrimary(ctx, repository.NewPostgresContentRepo(db), items)
	if err != nil {
		return err
	}

	slog.Info("seed completed", slog.Int("created", created), slog.Int("skipped", skipped))
	return nil
}

// seedPrimary は既存IDをスキップしながら記事を作成し、作成数とスキップ数を返す。
func seedPrimary(ctx context.Context, repo repository.PrimaryContentRepository, items []*model.Content) (created, skipped int, err error) {
	for _, item := range items {
		existing, err := repo.FindByID(ctx, item.Collection, item.ID)
		if err != nil {
			return created, skipped, err
		}
		if existing != nil {
			skipped++
			continue
		}
		if err := repo.Create(ctx, item); err != nil {
			return created, skipped, err
		}
		created++
	}
	return created, skipped, nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	endpoint := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(endpoint)
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
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}

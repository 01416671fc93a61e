package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodloss/internal/adapter/cache"
	adapthttp "foodloss/internal/adapter/http"
	"foodloss/internal/adapter/memory"
	"foodloss/internal/adapter/postgres"
	"foodloss/internal/app"
	"foodloss/internal/config"
	"foodloss/internal/domain"
	"foodloss/internal/logging"
	"foodloss/internal/metrics"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

const sessionCleanupInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logOpts := logging.Options{
		Service:    "foodloss",
		Env:        cfg.App.Env,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}
	w := logging.Writer(logOpts)
	logging.Setup(w, logOpts)

	err = run(cfg)
	if c, ok := w.(io.Closer); ok {
		_ = c.Close()
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

type storage struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	waste    domain.WasteRepository
	points   domain.PointsRepository
	ping     adapthttp.ReadinessCheck
	closeFn  func() error
}

func openStorage(cfg config.DBConfig) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		slog.Warn("using in-memory storage; data is lost on restart")
		db := memory.New()
		return &storage{
			users:    db,
			sessions: db.NewSessionRepo(),
			waste:    db,
			points:   db,
			closeFn:  func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	slog.Info("database migrations applied")
	return &storage{
		users:    db,
		sessions: postgres.NewSessionRepo(db),
		waste:    db,
		points:   db,
		ping:     db.Ping,
		closeFn:  db.Close,
	}, nil
}

func openCache(cfg config.RedisConfig) (*cache.StatsCache, *redis.Client) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable; stats cache disabled", "addr", cfg.Addr, "error", err)
		_ = rdb.Close()
		return nil, nil
	}
	slog.Info("stats cache enabled", "addr", cfg.Addr, "ttl", cfg.TTL)
	return cache.NewStatsCache(rdb, cfg.TTL), rdb
}

func openOIDC(ctx context.Context, cfg config.OIDCConfig) (adapthttp.OIDCConfig, error) {
	if !cfg.Enabled() {
		return adapthttp.OIDCConfig{}, nil
	}
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, fmt.Errorf("oidc provider: %w", err)
	}
	slog.Info("sso enabled", "issuer", cfg.Issuer)
	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(cfg.DB)
	if err != nil {
		return err
	}
	defer func() { _ = store.closeFn() }()

	statsCache, rdb := openCache(cfg.Redis)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	oidcCfg, err := openOIDC(ctx, cfg.OIDC)
	if err != nil {
		return err
	}

	m := metrics.New()

	// A nil *cache.StatsCache must not become a non-nil interface.
	var weeklyCache domain.StatsCache
	if statsCache != nil {
		weeklyCache = statsCache
	}

	authSvc := app.NewAuthService(store.users, store.sessions, cfg.Auth.SessionTTL, cfg.Auth.BcryptCost)
	wasteSvc := app.NewWasteService(store.waste, weeklyCache, m)
	statsSvc := app.NewStatsService(store.waste, weeklyCache)
	pointsSvc := app.NewPointsService(store.waste, store.points,
		app.WithOncePerWeek(cfg.Points.OncePerWeek),
		app.WithRecorder(m),
	)

	opts := []adapthttp.Option{
		adapthttp.WithOIDC(oidcCfg),
		adapthttp.WithMetrics(m),
		adapthttp.WithLoginRate(cfg.Auth.LoginRatePerMin),
		adapthttp.WithForwardAuth(cfg.Auth.TrustForwardAuth),
	}
	if store.ping != nil {
		opts = append(opts, adapthttp.WithReadinessCheck("database", store.ping))
	}
	if statsCache != nil {
		opts = append(opts, adapthttp.WithReadinessCheck("cache", statsCache.Ping))
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           adapthttp.New(authSvc, wasteSvc, statsSvc, pointsSvc, cfg.HTTP.WebDir, opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr, "storage", cfg.DB.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := authSvc.CleanupExpired(gctx); err != nil {
					slog.Warn("session cleanup failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

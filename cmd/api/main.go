package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemunganga/frente-caixa/internal/config"
	"github.com/georgemunganga/frente-caixa/internal/erp"
	appmw "github.com/georgemunganga/frente-caixa/internal/middleware"
	"github.com/georgemunganga/frente-caixa/internal/modules/draft"
	"github.com/georgemunganga/frente-caixa/internal/modules/input"
	"github.com/georgemunganga/frente-caixa/internal/modules/terminal"
	"github.com/georgemunganga/frente-caixa/internal/modules/titulos"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	logger := newLogger(cfg.Development())
	defer logger.Sync()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Backend ─────────────────────────────────────────────
	client := erp.NewClient(erp.Config{BaseURL: cfg.ERPBaseURL, Timeout: cfg.ERPTimeout}, nil, logger)

	// ── Draft store ─────────────────────────────────────────
	drafts, closeDrafts, err := openDrafts(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("draft store unavailable", zap.String("store", cfg.DraftStore), zap.Error(err))
	}
	defer closeDrafts()

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(appmw.RequestLogger(logger))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	scanner := input.ClassifierConfig{
		MaxInterval: cfg.ScannerMaxInterval,
		MinLength:   cfg.ScannerMinLength,
		MaxLength:   cfg.ScannerMaxLength,
	}
	registry := terminal.NewRegistry(client, drafts, scanner, logger)

	router.Group(func(r chi.Router) {
		r.Use(appmw.Auth([]byte(cfg.JWTSecret), logger))
		terminal.NewHandler(registry, logger).RegisterRoutes(r)
		titulos.NewHandler(titulos.NewService(client, logger), logger).RegisterRoutes(r)
	})

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("frente de caixa API starting", zap.String("addr", srv.Addr), zap.String("erp", cfg.ERPBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped", zap.Int("terminals", registry.Len()))
}

func newLogger(development bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openDrafts builds the configured draft store and its cleanup func.
func openDrafts(ctx context.Context, cfg config.Config, logger *zap.Logger) (draft.Store, func(), error) {
	switch cfg.DraftStore {
	case config.DraftRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, err
		}
		logger.Info("draft store ready", zap.String("store", "redis"), zap.String("addr", cfg.RedisAddr))
		return draft.NewRedisStore(rdb, cfg.DraftTTL), func() { rdb.Close() }, nil
	case config.DraftPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := draft.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("draft store ready", zap.String("store", "postgres"))
		return draft.NewPostgresStore(db), func() { db.Close() }, nil
	default:
		return draft.NewNoopStore(), func() {}, nil
	}
}

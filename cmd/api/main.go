package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/drafte-app/drafte-backend/config"
	"github.com/drafte-app/drafte-backend/internal/auth"
	authmw "github.com/drafte-app/drafte-backend/internal/auth/middleware"
	"github.com/drafte-app/drafte-backend/internal/bootstrap"
	"github.com/drafte-app/drafte-backend/internal/jobs"
	"github.com/drafte-app/drafte-backend/internal/llm"
	"github.com/drafte-app/drafte-backend/internal/logger"
	"github.com/drafte-app/drafte-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	bootstrap.SetGinMode(cfg.App.Environment)
	log.Info("starting drafte backend",
		zap.String("env", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
		zap.String("auth_mode", cfg.Firebase.AuthMode))

	ctx := context.Background()

	var (
		db       *pgxpool.Pool
		rdb      *redis.Client
		client   llm.Client
		verifier authmw.TokenVerifier
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		db, err = bootstrap.OpenDB(gctx, &cfg.Database, log)
		return err
	})
	g.Go(func() (err error) {
		rdb, err = bootstrap.OpenRedis(gctx, &cfg.Redis, log)
		return err
	})
	g.Go(func() (err error) {
		client, err = bootstrap.NewLLM(gctx, &cfg.LLM, log)
		return err
	})
	if cfg.Firebase.AuthMode == "firebase" {
		g.Go(func() error {
			fb, err := auth.InitializeFirebase(gctx, &cfg.Firebase)
			if err != nil {
				return err
			}
			verifier = fb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	defer db.Close()
	if rdb != nil {
		defer rdb.Close()
	}

	if _, err := postgres.Migrate(ctx, db, postgres.Migrations, log); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	app := bootstrap.Build(bootstrap.Deps{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		LLM:      client,
		Verifier: verifier,
		Log:      log,
	})

	scheduler := jobs.NewScheduler(log)
	if err := scheduler.AddSweeper(cfg.Workflow.StaleSweepSpec, app.Sweeper, time.Minute); err != nil {
		log.Fatal("schedule sweeper", zap.Error(err))
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// no WriteTimeout: chat responses stream for the length of a turn
		IdleTimeout: 90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
	log.Info("server stopped")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/config"
	"github.com/drafte-app/drafte-backend/internal/bootstrap"
	"github.com/drafte-app/drafte-backend/internal/jobs"
	"github.com/drafte-app/drafte-backend/internal/logger"
	"github.com/drafte-app/drafte-backend/internal/storage/postgres"
)

const usage = "usage: worker migrate | sweep | cron"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.OpenDB(ctx, &cfg.Database, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	switch os.Args[1] {
	case "migrate":
		n, err := postgres.Migrate(ctx, db, postgres.Migrations, log)
		if err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migrations completed", zap.Int("applied", n))

	case "sweep", "cron":
		rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis, log)
		if err != nil {
			log.Fatal("failed to open redis", zap.Error(err))
		}
		if rdb != nil {
			defer rdb.Close()
		}
		sweeper := bootstrap.NewSweeper(cfg, db, rdb, log)

		if os.Args[1] == "sweep" {
			stats, err := sweeper.Sweep(ctx)
			if err != nil {
				log.Fatal("sweep failed", zap.Error(err))
			}
			log.Info("sweep completed",
				zap.Int("scanned", stats.Scanned),
				zap.Int("resolved", stats.Resolved),
				zap.Int("failed", stats.Failed),
				zap.Int("skipped", stats.Skipped))
			return
		}

		scheduler := jobs.NewScheduler(log)
		if err := scheduler.AddSweeper(cfg.Workflow.StaleSweepSpec, sweeper, time.Minute); err != nil {
			log.Fatal("schedule sweeper", zap.Error(err))
		}
		scheduler.Start()
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		scheduler.Stop(stopCtx)

	default:
		log.Fatal("unknown command", zap.String("command", os.Args[1]), zap.String("usage", usage))
	}
}

package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/config"
	"github.com/drafte-app/drafte-backend/internal/jobs"
	"github.com/drafte-app/drafte-backend/internal/projects/events"
	"github.com/drafte-app/drafte-backend/internal/projects/lock"
	"github.com/drafte-app/drafte-backend/internal/projects/repository"
	"github.com/drafte-app/drafte-backend/internal/projects/service"
)

// coordination picks Redis-backed locks and events when a client is
// configured, in-process ones otherwise.
func coordination(rdb *redis.Client, log *zap.Logger) (events.Publisher, lock.Locker) {
	if rdb == nil {
		return events.Nop{}, lock.NewMemoryLocker()
	}
	return events.NewRedisPublisher(rdb, log), lock.NewRedisLocker(rdb)
}

// NewSweeper wires a sweeper for processes that run without the HTTP stack.
func NewSweeper(cfg *config.Config, db *pgxpool.Pool, rdb *redis.Client, log *zap.Logger) *jobs.Sweeper {
	pub, locker := coordination(rdb, log)
	projectRepo := repository.NewProjectRepository(db)
	resolver := service.NewResolutionService(projectRepo, pub, log)
	return jobs.NewSweeper(projectRepo, resolver, locker, pub, cfg.Workflow.StaleAfter, log)
}

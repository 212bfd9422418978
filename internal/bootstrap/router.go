package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/drafte-app/drafte-backend/config"
	httpapi "github.com/drafte-app/drafte-backend/internal/api/http"
	apimw "github.com/drafte-app/drafte-backend/internal/api/http/middleware"
	"github.com/drafte-app/drafte-backend/internal/auth"
	authhttp "github.com/drafte-app/drafte-backend/internal/auth/http"
	authmw "github.com/drafte-app/drafte-backend/internal/auth/middleware"
	"github.com/drafte-app/drafte-backend/internal/jobs"
	"github.com/drafte-app/drafte-backend/internal/llm"
	projecthttp "github.com/drafte-app/drafte-backend/internal/projects/http"
	"github.com/drafte-app/drafte-backend/internal/projects/repository"
	"github.com/drafte-app/drafte-backend/internal/projects/service"
	"github.com/drafte-app/drafte-backend/internal/skills/chat"
	"github.com/drafte-app/drafte-backend/internal/skills/content"
	"github.com/drafte-app/drafte-backend/internal/skills/discovery"
	"github.com/drafte-app/drafte-backend/internal/skills/router"
	"github.com/drafte-app/drafte-backend/internal/users"
	"github.com/drafte-app/drafte-backend/internal/workflow"
)

const ServiceName = "drafte-backend"

type Deps struct {
	Config *config.Config
	DB     *pgxpool.Pool
	// Redis is optional; without it locks are per-process and no status
	// events are published.
	Redis *redis.Client
	LLM   llm.Client
	// Verifier is required when AUTH_MODE=firebase.
	Verifier authmw.TokenVerifier
	Log      *zap.Logger
}

// App holds the wired HTTP engine and the background jobs that share its
// stores.
type App struct {
	Router  *gin.Engine
	Sweeper *jobs.Sweeper
}

func Build(dep Deps) *App {
	cfg, log := dep.Config, dep.Log

	projectRepo := repository.NewProjectRepository(dep.DB)
	messageRepo := repository.NewMessageRepository(dep.DB)
	userRepo := users.NewRepo(dep.DB)

	pub, locker := coordination(dep.Redis, log)

	resolver := service.NewResolutionService(projectRepo, pub, log)
	projects := service.NewProjectService(projectRepo, messageRepo)
	wf := workflow.New(workflow.Deps{
		Projects:  projectRepo,
		Messages:  messageRepo,
		Resolver:  resolver,
		Locker:    locker,
		Router:    router.New(dep.LLM, log),
		Chat:      chat.New(dep.LLM),
		Discovery: discovery.New(dep.LLM, log),
		Content:   content.New(dep.LLM, projectRepo, log),
		Log:       log,
		Timeout:   cfg.Workflow.Timeout,
	})

	r := gin.New()
	r.Use(gin.Recovery(), apimw.RequestID(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", apimw.HeaderRequestID, "X-User-Id", "X-User-Email", "X-User-Name", "X-User-Photo"},
		ExposeHeaders:    []string{apimw.HeaderRequestID, projecthttp.HeaderRunID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var rdb redis.UniversalClient
	if dep.Redis != nil {
		rdb = dep.Redis
	}
	var db httpapi.Pinger
	if dep.DB != nil {
		db = dep.DB
	}
	httpapi.NewHealthHandler(ServiceName, cfg.App.Version, db, rdb).RegisterRoutes(r)

	api := r.Group("/api/v1")
	if cfg.Firebase.AuthMode == "firebase" {
		api.Use(authmw.FirebaseAuthMiddleware(dep.Verifier))
	} else {
		log.Warn("header auth enabled, X-User-Id is trusted as is")
		api.Use(authmw.HeaderAuthMiddleware())
	}
	api.Use(auth.WithUser(userRepo))

	projecthttp.New(projects, resolver, wf, log).Register(api)
	authhttp.New(userRepo).Register(api)

	return &App{
		Router:  r,
		Sweeper: jobs.NewSweeper(projectRepo, resolver, locker, pub, cfg.Workflow.StaleAfter, log),
	}
}

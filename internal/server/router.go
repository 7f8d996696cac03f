// Package server assembles the gin engine: middleware, sessions, rate
// limiting and the /api route table.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/projectplanning/planning-cloud-api/internal/config"
	"github.com/projectplanning/planning-cloud-api/internal/constants"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/handlers"
	"github.com/projectplanning/planning-cloud-api/internal/middleware"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/repository"
	"github.com/projectplanning/planning-cloud-api/internal/services"
	"gorm.io/gorm"
)

// Deps carries everything the router needs from the composition root.
type Deps struct {
	Config *config.Config
	Log    *slog.Logger
	DB     *gorm.DB
	Store  repository.Store
	AI     *services.AIService
	Auth   *services.AuthService
}

// NewRouter builds the HTTP engine. It fails only when the session store
// cannot be created.
func NewRouter(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config

	r := gin.New()
	r.Use(middleware.RequestLogger(deps.Log), gin.Recovery())

	store, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	strict := func(c *gin.Context) { c.Next() }
	if cfg.RateLimitEnabled {
		general := middleware.NewRateLimiter(cfg.RateLimitGeneral, cfg.RateLimitWindow)
		r.Use(general.Middleware("Too many requests, please try again later"))
		strict = middleware.NewRateLimiter(cfg.RateLimitStrict, cfg.RateLimitWindow).
			Middleware("Too many write requests, please try again later")
	}

	taskTypeService := services.NewTaskTypeService(deps.Store)
	taskService := services.NewTaskService(deps.Store, deps.AI)
	commitmentService := services.NewCommitmentService(deps.Store)
	observationService := services.NewObservationService(deps.Store)
	kpiService := services.NewKPIService(deps.Store, deps.Log)

	healthHandler := handlers.NewHealthHandler(deps.DB)
	authHandler := handlers.NewAuthHandler(deps.Auth)
	taskTypeHandler := handlers.NewTaskTypeHandler(taskTypeService)
	taskHandler := handlers.NewTaskHandler(taskService)
	commitmentHandler := handlers.NewCommitmentHandler(commitmentService)
	observationHandler := handlers.NewObservationHandler(observationService)
	kpiHandler := handlers.NewKPIHandler(kpiService)

	requireAuth := middleware.RequireAuth(deps.Auth)
	optionalAuth := middleware.OptionalAuth(deps.Auth)

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.Health)

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", strict, authHandler.Login)
			auth.POST("/validate", authHandler.Validate)
			auth.POST("/logout", authHandler.Logout)
		}

		taskTypes := api.Group("/task-types")
		{
			taskTypes.GET("", optionalAuth, taskTypeHandler.ListTaskTypes)
			taskTypes.GET("/:id", optionalAuth, taskTypeHandler.GetTaskType)
			taskTypes.POST("", requireAuth, strict, taskTypeHandler.CreateTaskType)
			taskTypes.PUT("/:id", requireAuth, strict, taskTypeHandler.UpdateTaskType)
			taskTypes.DELETE("/:id", requireAuth, strict, taskTypeHandler.DeleteTaskType)
		}

		migration := api.Group("/migration")
		migration.Use(requireAuth)
		{
			migration.POST("/migrate-task-types", strict, taskTypeHandler.MigrateTaskTypes)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/project/:projectId", taskHandler.ListProjectTasks)
			tasks.GET("/project/:projectId/unassigned", taskHandler.ListUnassignedProjectTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.POST("", strict, taskHandler.CreateTask)
			tasks.POST("/bulk", strict, taskHandler.CreateTasksBulk)
			tasks.POST("/draft", strict, taskHandler.DraftTasks)
			tasks.PUT("/:id", strict, taskHandler.UpdateTask)
			tasks.PATCH("/:id", strict, taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", strict, taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", strict, taskHandler.DeleteTask)
		}

		commitments := api.Group("/commitments")
		commitments.Use(requireAuth)
		{
			commitments.GET("", commitmentHandler.ListCommitments)
			commitments.GET("/task/:taskId", commitmentHandler.ListTaskCommitments)
			commitments.GET("/project/:projectId", commitmentHandler.ListProjectCommitments)
			commitments.POST("", strict, commitmentHandler.CreateCommitment)
			commitments.POST("/assign", strict, commitmentHandler.AssignCommitment)
			commitments.POST("/done", strict, commitmentHandler.MarkCommitmentDone)
			commitments.POST("/reject", strict, commitmentHandler.RejectCommitment)
		}

		observations := api.Group("/task-observations")
		observations.Use(requireAuth)
		{
			observations.GET("/task/:taskId", observationHandler.ListTaskObservations)
			observations.POST("/task/:taskId", strict, observationHandler.CreateObservation)
			observations.PUT("/:observationId/resolve", strict, observationHandler.ResolveObservation)
			observations.POST("/:observationId/resolve", strict, observationHandler.ResolveObservation)
		}

		todo := models.TaskStatusTodo
		inProgress := models.TaskStatusInProgress
		done := models.TaskStatusDone

		kpis := api.Group("/kpis")
		kpis.Use(requireAuth)
		{
			kpis.GET("/total-tasks", kpiHandler.TotalTasks(nil))
			kpis.GET("/total-tasks-todo", kpiHandler.TotalTasks(&todo))
			kpis.GET("/total-tasks-in-progress", kpiHandler.TotalTasks(&inProgress))
			kpis.GET("/total-tasks-done", kpiHandler.TotalTasks(&done))
		}
	}

	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFoundResponse(c, "Route not found")
	})

	return r, nil
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "redis":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			redisAddr,
			cfg.RedisPassword,
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		store = rs
	default:
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsRelease(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

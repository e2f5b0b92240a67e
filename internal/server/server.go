// Package server wires repositories, services and handlers into a gin engine.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/calendar"
	"github.com/riverkeep/river-ops/internal/config"
	"github.com/riverkeep/river-ops/internal/constants"
	"github.com/riverkeep/river-ops/internal/handlers"
	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/middleware"
	"github.com/riverkeep/river-ops/internal/observability"
	"github.com/riverkeep/river-ops/internal/repository"
	"github.com/riverkeep/river-ops/internal/services"
	"github.com/riverkeep/river-ops/internal/storage"
)

const mediaPrefix = "/media"

// Deps are the process-level resources the server is built from.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      logger.Logger
	Metrics  *observability.Metrics
	Store    storage.BlobStore
	Sessions sessions.Store
	// AI is optional; drafting answers 503 without it.
	AI *services.AIService
	// Now overrides the wall clock, for tests.
	Now services.Clock
}

// Server holds the engine and the services behind it.
type Server struct {
	Engine *gin.Engine

	Auth      *services.AuthService
	Sections  *services.SectionService
	Templates *services.TemplateService
	Tasks     *services.TaskService
	Visits    *services.VisitService
	Planner   *services.PlannerService
	Dashboard *services.DashboardService
	Photos    *services.PhotoService
}

// New builds the full application.
func New(deps Deps) *Server {
	cfg := deps.Config
	cal := services.NewCalendar(cfg.Location(), calendar.ParseWeekStart(cfg.WeekStart))
	if deps.Now != nil {
		cal.Now = deps.Now
	}

	sectionRepo := repository.NewSectionRepository(deps.DB)
	templateRepo := repository.NewTemplateRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)
	visitRepo := repository.NewVisitRepository(deps.DB)
	metricRepo := repository.NewMetricRepository(deps.DB)
	photoRepo := repository.NewPhotoRepository(deps.DB)
	userRepo := repository.NewUserRepository(deps.DB)

	var field *observability.FieldMetrics
	var httpMetrics *observability.HTTPMetrics
	if deps.Metrics != nil {
		field = deps.Metrics.Field
		httpMetrics = deps.Metrics.HTTP
	}

	s := &Server{}
	s.Dashboard = services.NewDashboardService(sectionRepo, visitRepo, metricRepo, cfg.DashboardCacheTTL, field)
	hooks := services.Hooks{Metrics: field, Cache: s.Dashboard}

	s.Auth = services.NewAuthService(userRepo)
	s.Sections = services.NewSectionService(sectionRepo, taskRepo, visitRepo, metricRepo, photoRepo, deps.Store, cal, hooks, deps.Log)
	s.Templates = services.NewTemplateService(templateRepo, deps.Log)
	s.Tasks = services.NewTaskService(taskRepo, sectionRepo, templateRepo, visitRepo, deps.AI, cal, hooks, deps.Log)
	s.Visits = services.NewVisitService(visitRepo, taskRepo, sectionRepo, deps.Store, cal, hooks, deps.Log)
	s.Planner = services.NewPlannerService(taskRepo, sectionRepo, templateRepo, cal)
	s.Photos = services.NewPhotoService(photoRepo, deps.Store, deps.Log)

	urlFor := deps.Store.URL

	authHandler := handlers.NewAuthHandler(s.Auth, deps.Log)
	dashboardHandler := handlers.NewDashboardHandler(s.Dashboard, urlFor, deps.Log)
	sectionHandler := handlers.NewSectionHandler(s.Sections, urlFor, deps.Log)
	plannerHandler := handlers.NewPlannerHandler(s.Planner, deps.Log)
	taskHandler := handlers.NewTaskHandler(s.Tasks, urlFor, deps.Log)
	templateHandler := handlers.NewTemplateHandler(s.Templates, deps.Log)
	visitHandler := handlers.NewVisitHandler(s.Visits, s.Tasks, urlFor, deps.Log)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(deps.Log),
		middleware.Metrics(httpMetrics),
		sessions.Sessions(constants.SessionCookieName, deps.Sessions),
	)

	r.GET("/health", handlers.Health(deps.DB))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	media := http.StripPrefix(mediaPrefix, deps.Store.Handler())
	r.GET(mediaPrefix+"/*filepath", gin.WrapH(media))

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth())

		protected.GET("/dashboard", dashboardHandler.GetDashboard)

		sections := protected.Group("/sections")
		{
			sections.GET("", sectionHandler.ListSections)
			sections.POST("", sectionHandler.CreateSection)
			sections.POST("/reorder", sectionHandler.ReorderSections)
			sections.GET("/:id", sectionHandler.GetSection)
			sections.PUT("/:id", sectionHandler.UpdateSection)
			sections.DELETE("/:id", sectionHandler.DeleteSection)
		}

		planner := protected.Group("/planner")
		{
			planner.GET("/monthly", plannerHandler.Monthly)
			planner.GET("/weekly", plannerHandler.Weekly)
			planner.GET("/daily", plannerHandler.Daily)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/draft", taskHandler.DraftTasks)
			tasks.GET("/:id", middleware.LoadTask(s.Tasks), taskHandler.GetTask)
			tasks.PUT("/:id", middleware.LoadTask(s.Tasks), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.LoadTask(s.Tasks), taskHandler.DeleteTask)
			tasks.POST("/:id/complete", middleware.LoadTask(s.Tasks), taskHandler.CompleteTask)
		}

		templates := protected.Group("/templates")
		{
			templates.GET("", templateHandler.ListTemplates)
			templates.POST("", templateHandler.CreateTemplate)
			templates.PUT("/:id", templateHandler.UpdateTemplate)
			templates.DELETE("/:id", templateHandler.RetireTemplate)
		}

		visits := protected.Group("/visits")
		{
			visits.GET("", visitHandler.ListVisits)
			visits.POST("", visitHandler.CreateVisit)
			visits.GET("/new", visitHandler.NewVisit)
			visits.GET("/:id", visitHandler.GetVisit)
		}
	}

	s.Engine = r
	return s
}

// NewSessionStore returns the cookie store, or a redis store when
// session_store is "redis".
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	secret := []byte(cfg.SessionSecret)

	var store sessions.Store
	switch cfg.SessionStore {
	case "redis":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStoreWithDB(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			cfg.RedisDB,
			secret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	default:
		store = cookie.NewStore(secret)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

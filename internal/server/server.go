// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	entryRepo      repository.EntryRepository
	userService    *service.UserService
	entryService   *service.EntryService
}

// NewServer creates a new server instance with all dependencies. The database
// connection applies the migration chain before returning, so by the time any
// route is registered the entries table is guaranteed to be current-shaped.
func NewServer(cfg *config.Config) (*Server, error) {
	middleware.InitMiddleware(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	userRepo := repository.NewUserRepository(db)
	entryRepo := repository.NewEntryRepository(db)

	prom := middleware.InitMetrics("inkwell-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		entryRepo:      entryRepo,
	}
	server.userService = service.NewUserService(userRepo)
	server.entryService = service.NewEntryService(entryRepo)

	return server, nil
}

// NewServerWithDB wires a server around an existing database handle. Tests
// use this with an in-memory SQLite database.
func NewServerWithDB(cfg *config.Config, db *gorm.DB) *Server {
	middleware.InitMiddleware(cfg)

	userRepo := repository.NewUserRepository(db)
	entryRepo := repository.NewEntryRepository(db)

	return &Server{
		config:       cfg,
		db:           db,
		userRepo:     userRepo,
		entryRepo:    entryRepo,
		userService:  service.NewUserService(userRepo),
		entryService: service.NewEntryService(entryRepo),
	}
}

// SetupMiddleware attaches the shared middleware chain to the app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.StructuredLogger())

	app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: strings.Join([]string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodPut,
			fiber.MethodDelete,
		}, ","),
	}))

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
		app.Use(s.promMiddleware.Middleware)
	}
}

// SetupRoutes registers all API routes on the app.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Credential endpoints are rate limited to slow down brute forcing.
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
	})

	auth := api.Group("/auth")
	auth.Post("/register", authLimiter, s.Register)
	auth.Post("/login", authLimiter, s.Login)
	auth.Get("/status", middleware.AuthOptional, s.AuthStatus)

	api.Get("/entries", middleware.AuthRequired, s.GetTimeline)
	api.Get("/entries/:date", middleware.AuthRequired, s.GetEntriesByDate)
	api.Post("/entry", middleware.AuthRequired, s.CreateEntry)
	api.Get("/entry/:id", middleware.AuthRequired, s.GetEntry)
	api.Put("/entry/:id", middleware.AuthRequired, s.UpdateEntry)
	api.Delete("/entry/:id", middleware.AuthRequired, s.DeleteEntry)

	if s.config.StaticDir != "" {
		app.Static("/", s.config.StaticDir)
	}
}

// Shutdown releases server-held resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

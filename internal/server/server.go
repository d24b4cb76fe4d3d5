// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/service"
	"quill/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	client         *mongo.Client
	db             *mongo.Database
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	uploader       storage.Uploader
	userService    *service.UserService
	postService    *service.PostService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("index creation failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	server := NewServerWithDeps(cfg, client, db, cache.GetClient())
	return server, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes Mongo/Redis itself.
func NewServerWithDeps(cfg *config.Config, client *mongo.Client, db *mongo.Database, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	uploader := storage.NewClient(cfg)

	middleware.InitMiddleware(cfg)

	server := &Server{
		config:         cfg,
		client:         client,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("quill-api"),
		userRepo:       userRepo,
		postRepo:       postRepo,
		uploader:       uploader,
		userService:    service.NewUserService(userRepo, uploader, cfg.ImageUploadFolder, cfg.ImageMaxUploadSizeMB),
		postService:    service.NewPostService(postRepo, userRepo),
	}
	return server
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate the request ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Quill Backend Metrics Dashboard",
	}))

	// Auth chain for protected routes: token validation, then account load.
	verifyToken := middleware.AuthRequired
	loadUser := s.LoadCurrentUser()

	// User routes
	users := api.Group("/users")
	users.Post("/", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	users.Post("/change-photo", verifyToken, loadUser, middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "change_photo"), s.ChangePhoto)
	// Specific /me route BEFORE the generic public /:id read
	users.Get("/me", verifyToken, loadUser, s.GetMe)
	users.Get("/:id", s.GetUserByID)

	// Post routes
	posts := api.Group("/posts")
	posts.Post("/", verifyToken, loadUser, middleware.RateLimit(
		s.redis, 5, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/", s.GetPosts)
	posts.Get("/mine", verifyToken, loadUser, s.GetMyPosts)
	// Specific /:id/:resource routes BEFORE generic /:id routes
	posts.Post("/:id/like", verifyToken, loadUser, s.ToggleLike)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", verifyToken, loadUser, s.UpdatePost)
	posts.Delete("/:id", verifyToken, loadUser, s.DeletePost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.client == nil {
		dbStatus = "unavailable"
	} else if err := database.Ping(ctx, s.client); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is optional; readiness only degrades, it does not fail.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// LoadCurrentUser returns middleware that resolves the authenticated email
// set by middleware.AuthRequired into the full account document. Handlers
// past this point can rely on Locals("currentUser") holding a *models.User.
func (s *Server) LoadCurrentUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, _ := c.Locals(middleware.UserEmailKey).(string)
		if email == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}
		user, lookupErr := s.userRepo.GetByEmail(c.Context(), email)
		if lookupErr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, lookupErr)
		}
		if user == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account no longer exists"))
		}

		c.Locals("currentUser", user)
		return c.Next()
	}
}

// Shutdown closes the server's external connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.client != nil {
		return database.Disconnect(ctx, s.client)
	}
	return nil
}

package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/bougzy/cojf/config"
	"github.com/bougzy/cojf/internal/auth"
	"github.com/bougzy/cojf/internal/cache"
	"github.com/bougzy/cojf/internal/database"
	"github.com/bougzy/cojf/internal/handlers"
	"github.com/bougzy/cojf/internal/livestream"
	"github.com/bougzy/cojf/internal/middleware"
	"github.com/bougzy/cojf/internal/models"
	"github.com/bougzy/cojf/internal/repository"
	"github.com/bougzy/cojf/internal/session"
	"github.com/bougzy/cojf/internal/storage"
	"github.com/bougzy/cojf/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.RunMigrations(db.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Connect to Redis
	redis, err := cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Running without Redis - sessions are in-memory and live status push is disabled")
		redis = nil
	} else {
		defer redis.Close()
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	blobs, err := storage.NewDiskStore(cfg.Storage.Root, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}

	// Session persistence: redis when available, in-process otherwise
	var sessions session.Store
	if redis != nil {
		sessions = redis
	} else {
		sessions = session.NewMemoryStore()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	streamRepo := repository.NewLivestreamRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Livestream controller; status push needs redis
	var bus livestream.StatusBus
	if redis != nil {
		bus = redis
	}
	controller := livestream.NewController(streamRepo, mediaRepo, settingsRepo, bus)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, jwtService, sessions)
	mediaHandler := handlers.NewMediaHandler(mediaRepo, blobs, redis, cfg.API.UploadRatePerMin, cfg.API.UploadBurst)
	streamHandler := handlers.NewLivestreamHandler(controller)

	// Initialize WebSocket hub (only if Redis is available)
	var wsHandler *websocket.Handler
	if redis != nil {
		hub := websocket.NewHub(redis)
		go hub.Run()
		wsHandler = websocket.NewHandler(hub, controller, cfg.CORS.AllowedOrigins)
	}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimitRequestsPerSec)
	rateLimiter.Cleanup()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Uploaded media is served straight from the blob root
	router.Static("/media", cfg.Storage.Root)

	// Public routes
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}
	router.GET("/api/auth/validate", middleware.AuthMiddleware(jwtService), authHandler.Validate)

	// WebSocket status feed (only if Redis is available)
	if wsHandler != nil {
		router.GET("/ws/livestream", wsHandler.HandleWebSocket)
	}

	// Public content routes
	public := router.Group("/api/v1")
	{
		public.GET("/sermons", mediaHandler.ListSermons)
		public.GET("/sermons/:id", mediaHandler.GetSermon)
		public.POST("/sermons/:id/views", mediaHandler.IncrementViews)
		public.POST("/sermons/:id/downloads", mediaHandler.IncrementDownloads)
		public.GET("/media", mediaHandler.ListMedia)
		public.GET("/livestream/current", streamHandler.Current)
		public.GET("/livestream/history", streamHandler.History)

		if wsHandler != nil {
			public.GET("/livestream/viewers", wsHandler.GetViewerCount)
		}
	}

	// Protected routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	{
		api.GET("/me", authHandler.GetMe)
		api.POST("/logout", authHandler.Logout)
	}

	// Content administration
	admin := api.Group("")
	admin.Use(middleware.RequireRole(sessions, models.RoleContentAdmin, models.RoleSuperAdmin))
	{
		admin.POST("/sermons", middleware.RateLimitMiddleware(rateLimiter), mediaHandler.CreateSermon)
		admin.POST("/sermons/upload", middleware.RateLimitMiddleware(rateLimiter), mediaHandler.Upload)
		admin.DELETE("/sermons/:id", mediaHandler.DeleteSermon)

		admin.POST("/livestream/golive", streamHandler.GoLive)
		admin.POST("/livestream/stop", streamHandler.Stop)
		admin.POST("/livestream/recording", streamHandler.SaveRecording)
		admin.GET("/livestream/settings", streamHandler.GetSettings)
		admin.PUT("/livestream/settings", streamHandler.UpdateSettings)
	}

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Starting COJF server on %s (env: %s)", addr, cfg.Server.Env)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

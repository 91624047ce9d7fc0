package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"pricing-compliance-portal/internal/config"
	"pricing-compliance-portal/internal/database"
	"pricing-compliance-portal/internal/handlers"
	"pricing-compliance-portal/internal/ingest"
	"pricing-compliance-portal/internal/ratelimit"
	"pricing-compliance-portal/internal/scheduler"
	"pricing-compliance-portal/internal/search"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	store        database.Store
	gormDB       *database.GormDB
	searchClient *search.SearchClient
	appConfig    *config.Config
	rateLimiter  *ratelimit.RateLimiter
	appScheduler *scheduler.Scheduler
)

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "/app/config/portal_config.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Initialize database based on configuration
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "mysql")
	}

	if dbType == "mysql" {
		log.Println("Using MySQL with GORM")
		mysqlCfg := appConfig.Database.MySQL

		// Get port as string, handle 0 as empty
		portStr := ""
		if mysqlCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", mysqlCfg.Port)
		}

		gormDB, err = database.NewGormDB(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portStr, "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "portal_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "portal_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "portal_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		defer gormDB.Close()

		// Initialize schema with GORM AutoMigrate
		if err := gormDB.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		store = gormDB
	} else {
		log.Println("Using PostgreSQL")
		pgCfg := appConfig.Database.Postgres

		portStr := ""
		if pgCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", pgCfg.Port)
		}

		pgDB, err := database.NewDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portStr, "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "portal_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "portal_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "portal_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pgDB.Close()

		if err := pgDB.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		store = pgDB
	}

	// Initialize Meilisearch using config
	meilisearchHost := appConfig.Search.Meilisearch.Host
	if meilisearchHost == "" {
		meilisearchHost = getEnv("MEILISEARCH_HOST", "http://meilisearch:7700")
	}
	meilisearchKey := appConfig.Search.Meilisearch.APIKey
	if meilisearchKey == "" {
		meilisearchKey = getEnv("MEILISEARCH_KEY", "masterKey123")
	}

	searchClient = search.NewSearchClient(meilisearchHost, meilisearchKey)

	// Wait for Meilisearch to be ready
	time.Sleep(2 * time.Second)

	if err := searchClient.InitIndex(); err != nil {
		log.Printf("Warning: Failed to initialize search index: %v", err)
	}

	// Initialize rate limiter
	rateLimiter = ratelimit.NewRateLimiter(
		appConfig.RateLimit.UploadsPerMinute,
		appConfig.RateLimit.UploadsPerHour,
		appConfig.RateLimit.UploadsPerDay,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Rate limiter initialized: %d uploads/min, %d uploads/hour, %d uploads/day (enabled: %v)",
		appConfig.RateLimit.UploadsPerMinute,
		appConfig.RateLimit.UploadsPerHour,
		appConfig.RateLimit.UploadsPerDay,
		appConfig.RateLimit.Enabled,
	)

	// Initialize ingestion orchestrator
	orchestrator := ingest.NewOrchestrator(store, searchClient, ingest.Options{
		MapWorkers:  appConfig.Ingest.MapWorkers,
		PreviewSize: appConfig.Ingest.PreviewSize,
	})

	// Initialize and start scheduler (MySQL only)
	if gormDB != nil {
		appScheduler = scheduler.NewScheduler(gormDB.DB(), searchClient, appConfig)
		if err := appScheduler.Start(); err != nil {
			log.Printf("Warning: Failed to start scheduler: %v", err)
		}
		defer appScheduler.Stop()
	}

	// Setup Gin router
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5176"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Account-ID"},
		AllowCredentials: true,
	}))

	r.GET("/health", healthCheck)

	uploadHandler := handlers.NewUploadHandler(store, orchestrator, rateLimiter, searchClient, appConfig.Ingest.MaxUploadBytes)

	// Account-scoped routes; the gateway authenticates and sets X-Account-ID
	api := r.Group("/api", handlers.AccountID())
	{
		api.POST("/uploads", handlers.RateLimit(rateLimiter), uploadHandler.Upload)
		api.GET("/uploads/recent", uploadHandler.RecentUploads)
		api.GET("/projects", uploadHandler.ListProjects)
		api.GET("/projects/:id/units", uploadHandler.GetProjectUnits)
		api.GET("/ratelimit/stats", uploadHandler.RateLimitStats)
		api.GET("/search", uploadHandler.SearchUnits)
	}

	// Admin API routes (requires authentication in production)
	if gormDB != nil {
		adminHandler := handlers.NewAdminHandler(gormDB.DB(), appScheduler)

		admin := r.Group("/api/admin")
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.POST("/maintenance/run", adminHandler.RunMaintenance)
			admin.POST("/cleanup/run", adminHandler.RunCleanup)
			admin.POST("/search/reindex", uploadHandler.Reindex)
		}

		log.Println("Admin API routes registered at /api/admin/*")
	}

	port := getEnv("PORT", "8084")
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvOrConfig returns config value if set, otherwise env var, otherwise fallback
func getEnvOrConfig(configValue, envKey, fallback string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, fallback)
}

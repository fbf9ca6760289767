package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"realestate-trade-map/internal/config"
	"realestate-trade-map/internal/database"
	"realestate-trade-map/internal/dataset"
	"realestate-trade-map/internal/debounce"
	"realestate-trade-map/internal/handlers"
	"realestate-trade-map/internal/metrics"
	"realestate-trade-map/internal/ratelimit"
	"realestate-trade-map/internal/scheduler"
	"realestate-trade-map/internal/search"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Load configuration
	configPath := getEnv("CONFIG_PATH", "./config/config.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Dataset loader: local directory or HTTP base URL
	dataCfg := appConfig.Data
	loader := dataset.NewLoader(
		getEnvOrConfig("DATA_DIR", dataCfg.BaseDir, "./data"),
		getEnvOrConfig("DATA_URL", dataCfg.BaseURL, ""),
		dataCfg.Manifest,
		dataCfg.GetTimeout(),
	)
	manifest := dataset.NewCompositeManifest(loader)

	// Optional SQL trade readers
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "")
		appConfig.Database.Type = dbType
	}

	if appConfig.Database.UsesMySQL() {
		log.Println("Using MySQL trades with GORM")
		mysqlCfg := appConfig.Database.MySQL
		gormDB, err := database.NewGormDB(
			getEnvOrConfig("DB_HOST", mysqlCfg.Host, "mysql"),
			getEnvOrConfig("DB_PORT", portString(mysqlCfg.Port), "3306"),
			getEnvOrConfig("DB_USER", mysqlCfg.User, "trademap"),
			getEnvOrConfig("DB_PASSWORD", mysqlCfg.Password, ""),
			getEnvOrConfig("DB_NAME", mysqlCfg.Database, "trademap"),
			appConfig.Database.Table,
		)
		if err != nil {
			log.Printf("Warning: Failed to connect to MySQL: %v", err)
		} else {
			defer gormDB.Close()
			loader.RegisterSource("mysql", gormDB)
			manifest.Add("mysql", gormDB)
		}
	}

	if appConfig.Database.UsesPostgres() {
		log.Println("Using PostgreSQL trades")
		pgCfg := appConfig.Database.Postgres
		db, err := database.NewDB(
			getEnvOrConfig("PG_HOST", pgCfg.Host, "db"),
			getEnvOrConfig("PG_PORT", portString(pgCfg.Port), "5432"),
			getEnvOrConfig("PG_USER", pgCfg.User, "trademap"),
			getEnvOrConfig("PG_PASSWORD", pgCfg.Password, ""),
			getEnvOrConfig("PG_NAME", pgCfg.Database, "trademap"),
			pgCfg.SSLMode,
			appConfig.Database.Table,
		)
		if err != nil {
			log.Printf("Warning: Failed to connect to PostgreSQL: %v", err)
		} else {
			defer db.Close()
			loader.RegisterSource("postgres", db)
			manifest.Add("postgres", db)
		}
	}

	// Dataset cache and active selection
	cache := dataset.NewCache(loader)
	datasets := dataset.NewService(manifest, cache)
	if err := datasets.Refresh(context.Background()); err != nil {
		log.Printf("Warning: Failed to load dataset manifest: %v", err)
	} else if dataCfg.WarmOnStart {
		if err := datasets.Warm(context.Background()); err != nil {
			log.Printf("Warning: Failed to warm dataset cache: %v", err)
		}
	}

	// Optional Meilisearch mirror
	var searchClient *search.SearchClient
	meiliCfg := appConfig.Search.Meilisearch
	if host := getEnvOrConfig("MEILISEARCH_HOST", meiliCfg.Host, ""); host != "" {
		searchClient = search.NewSearchClient(host, getEnvOrConfig("MEILISEARCH_KEY", meiliCfg.APIKey, ""), meiliCfg.Index)
		if err := searchClient.InitIndex(); err != nil {
			log.Printf("Warning: Failed to initialize search index: %v", err)
		}
	} else {
		log.Println("Meilisearch host not configured, search index disabled")
	}

	// Scheduler: daily manifest refresh
	var reindex scheduler.ReindexFunc
	if searchClient != nil {
		reindex = func(ctx context.Context) (int, error) {
			return searchClient.IndexActive(ctx, datasets)
		}
	}
	appScheduler := scheduler.NewScheduler(datasets, reindex, appConfig.Scheduler)
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	// Initialize rate limiter
	rlCfg := appConfig.RateLimit
	rateLimiter := ratelimit.NewRateLimiter(ratelimit.Limits{
		PerMinute: rlCfg.RequestsPerMinute,
		PerHour:   rlCfg.RequestsPerHour,
		PerDay:    rlCfg.RequestsPerDay,
	}, rlCfg.Enabled)
	log.Printf("Rate limiter initialized: %d req/min, %d req/hour, %d req/day per client (enabled: %v)",
		rlCfg.RequestsPerMinute, rlCfg.RequestsPerHour, rlCfg.RequestsPerDay, rlCfg.Enabled)

	// Setup Gin router
	if appConfig.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if appConfig.Logging.LogRequests {
		r.Use(gin.Logger())
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	// Routes
	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/api/ratelimit/stats", ratelimit.StatsHandler(rateLimiter))

	mapHandler := handlers.NewMapHandler(datasets, debounce.New(appConfig.GetSearchDebounce()), searchClient)
	mapHandler.Register(r.Group("/api", ratelimit.Middleware(rateLimiter)))

	// Admin API routes (requires authentication in production)
	adminHandler := handlers.NewAdminHandler(datasets, cache, appScheduler, searchClient)
	adminHandler.Register(r.Group("/api/admin"))
	log.Println("Admin API routes registered at /api/admin/*")

	port := getEnvOrConfig("PORT", appConfig.Server.Port, "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Server starting on port %s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns the environment variable if set, otherwise the config value, then default
func getEnvOrConfig(envKey, configValue, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	if configValue != "" {
		return configValue
	}
	return defaultValue
}

// portString handles 0 as unset
func portString(port int) string {
	if port > 0 {
		return fmt.Sprintf("%d", port)
	}
	return ""
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/navmenu-api/api/swagger"
	"github.com/noah-isme/navmenu-api/internal/handler"
	"github.com/noah-isme/navmenu-api/internal/middleware"
	"github.com/noah-isme/navmenu-api/internal/models"
	"github.com/noah-isme/navmenu-api/internal/repository"
	"github.com/noah-isme/navmenu-api/internal/service"
	"github.com/noah-isme/navmenu-api/pkg/cache"
	"github.com/noah-isme/navmenu-api/pkg/config"
	"github.com/noah-isme/navmenu-api/pkg/database"
	"github.com/noah-isme/navmenu-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/navmenu-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/navmenu-api/pkg/middleware/requestid"
	"github.com/noah-isme/navmenu-api/pkg/storage"
)

// @title Navigation Menu API
// @version 0.1.0
// @description Smart menu configuration and per-viewer navigation rendering
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, render caching disabled", "error", err)
		redisClient = nil
	}

	validate := service.NewValidator()
	metricsService := service.NewMetricsService()

	menuRepo := repository.NewMenuRepository(db)
	itemRepo := repository.NewMenuItemRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	viewerRepo := repository.NewViewerRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Navigation.CacheTTL, logr,
		cfg.Navigation.CacheEnabled && redisClient != nil)
	navigationService := service.NewNavigationService(menuRepo, itemRepo, courseRepo, cacheService, metricsService, cfg.Navigation, logr)
	menuService := service.NewMenuService(menuRepo, navigationService, validate, logr)
	itemService := service.NewMenuItemService(itemRepo, menuRepo, navigationService, validate, logr)
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	exportService := service.NewExportService(menuRepo, itemRepo, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	exportSigner := storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Export.URLTTL)
	exportJobs := service.NewExportJobService(exportService, exportStore, exportSigner, cfg.Export, logr)
	exportJobs.Start(context.Background())
	defer exportJobs.Stop()

	menuHandler := handler.NewMenuHandler(menuService)
	itemHandler := handler.NewMenuItemHandler(itemService)
	navigationHandler := handler.NewNavigationHandler(navigationService, viewerRepo, cfg.Navigation.DefaultLanguage)
	authHandler := handler.NewAuthHandler(authService)
	exportHandler := handler.NewExportHandler(exportService, exportJobs)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/navigation", middleware.OptionalJWT(authService), navigationHandler.Render)
	api.GET("/menus/export/download", exportHandler.Download)

	admin := api.Group("", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin, models.RoleManager))
	admin.GET("/menus", menuHandler.List)
	admin.POST("/menus", menuHandler.Create)
	admin.GET("/menus/export", exportHandler.Export)
	admin.POST("/menus/export/jobs", exportHandler.CreateJob)
	admin.GET("/menus/export/jobs/:id", exportHandler.GetJob)
	admin.GET("/menus/:id", menuHandler.Get)
	admin.PUT("/menus/:id", menuHandler.Update)
	admin.DELETE("/menus/:id", menuHandler.Delete)
	admin.GET("/menus/:id/items", itemHandler.ListByMenu)
	admin.POST("/menus/:id/items", itemHandler.Create)
	admin.GET("/items/:id", itemHandler.Get)
	admin.PUT("/items/:id", itemHandler.Update)
	admin.DELETE("/items/:id", itemHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

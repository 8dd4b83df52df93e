package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"bcm-backend/core-service/handlers"
	"bcm-backend/core-service/jobs"
	"bcm-backend/core-service/middleware"
	"bcm-backend/core-service/routes"
	"bcm-backend/core-service/services"
	"bcm-backend/docs"
	"bcm-backend/shared/config"
	"bcm-backend/shared/database"
	"bcm-backend/shared/logger"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/cache"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.InitDatabase(cfg, log); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer database.CloseDatabase()
	db := database.GetDB()

	catalog, err := database.LoadCatalog()
	if err != nil {
		log.WithError(err).Fatal("failed to load permission catalog")
	}
	seeder := database.NewSeeder(db, catalog, log)
	if err := seeder.SeedDatabase(cfg); err != nil {
		log.WithError(err).Fatal("failed to seed database")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	blacklist := cache.NewTokenBlacklist(redisClient)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpireDuration())
	identity := services.NewIdentityService(db, tokens, blacklist, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)
	limiter := middleware.NewRateLimiter()
	audit := middleware.NewAuditRecorder(db, log, 512)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		metrics.Handler(),
		cors.New(corsConfig(cfg)),
	)

	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to get database handle")
	}
	health := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"database": sqlDB,
		"redis":    handlers.PingFunc(blacklist.Ping),
	})
	router.GET("/health", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	routes.Register(router, routes.Services{
		Auth:          services.NewAuthService(db, tokens, blacklist, log),
		Identity:      identity,
		Organizations: services.NewOrganizationService(db, seeder, log),
		Users:         services.NewUserService(db, identity, log),
		Roles:         services.NewRoleService(db, log),
		Permissions:   services.NewPermissionService(db),
		Departments:   services.NewDepartmentService(db, log),
		Locations:     services.NewLocationService(db, log),
		Vendors:       services.NewVendorService(db, log),
		Applications:  services.NewApplicationService(db, log),
		Processes:     services.NewProcessService(db, log),
		Categories:    services.NewBIACategoryService(db, log),
		Criteria:      services.NewBIAImpactCriterionService(db, log),
		Frameworks:    services.NewBIAFrameworkService(db, log),
		Timeframes:    services.NewBIATimeframeService(db, log),
	}, routes.Middlewares{
		Gate:           middleware.NewGate(metrics, log),
		Limiter:        limiter,
		RateLimit:      middleware.NewRateLimitConfig(cfg),
		LoginRateLimit: middleware.NewLoginRateLimitConfig(cfg),
		Audit:          audit,
	})

	if cfg.GinMode != gin.ReleaseMode {
		docs.SwaggerInfo.Host = "localhost:" + cfg.ServerPort
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	scheduler := jobs.NewScheduler(log)
	retention := jobs.NewAuditRetention(db, cfg.AuditRetention(), log)
	if err := scheduler.Add("audit-retention", cfg.AuditRetentionSchedule, func(ctx context.Context) error {
		_, err := retention.Purge(ctx)
		return err
	}); err != nil {
		log.WithError(err).Fatal("failed to schedule audit retention")
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", cfg.ServerPort).Info("core service starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error { return audit.Run(gctx) })
	g.Go(func() error { return limiter.Run(gctx, 10*time.Minute) })

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("core service stopped with error")
		return
	}
	log.Info("core service stopped")
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return c
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/fyp-manager-api/api/swagger"
	"github.com/noah-isme/fyp-manager-api/internal/handler"
	"github.com/noah-isme/fyp-manager-api/internal/middleware"
	"github.com/noah-isme/fyp-manager-api/internal/repository"
	"github.com/noah-isme/fyp-manager-api/internal/service"
	"github.com/noah-isme/fyp-manager-api/pkg/cache"
	"github.com/noah-isme/fyp-manager-api/pkg/config"
	"github.com/noah-isme/fyp-manager-api/pkg/database"
	"github.com/noah-isme/fyp-manager-api/pkg/export"
	"github.com/noah-isme/fyp-manager-api/pkg/jobs"
	"github.com/noah-isme/fyp-manager-api/pkg/llm"
	"github.com/noah-isme/fyp-manager-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/fyp-manager-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/fyp-manager-api/pkg/middleware/requestid"
	"github.com/noah-isme/fyp-manager-api/pkg/storage"
)

// @title FYP Manager API
// @version 1.0.0
// @description Final year project management: groups, guides, tasks and notifications
// @BasePath /api
// @schemes http https

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to apply migrations", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var (
		redisCache *repository.CacheRepository
		cacheRepo  service.CacheRepository
	)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			redisCache = repository.NewCacheRepository(redisClient, "fyp", logr)
			cacheRepo = redisCache
			defer func() {
				if err := redisCache.Close(); err != nil {
					logr.Warn("failed to close redis", zap.Error(err))
				}
			}()
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cacheRepo != nil)

	auditSvc := service.NewAuditService(nil, logr)
	if cfg.Mongo.URI != "" {
		mongoClient, auditDB, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			logr.Warn("mongo unavailable, audit trail disabled", zap.Error(err))
		} else {
			defer mongoClient.Disconnect(context.Background()) //nolint:errcheck
			auditRepo := repository.NewAuditRepository(auditDB)
			if err := auditRepo.EnsureIndexes(ctx); err != nil {
				logr.Warn("failed to ensure audit indexes", zap.Error(err))
			}
			auditSvc = service.NewAuditService(auditRepo, logr)
		}
	}

	store, err := storage.New(ctx, cfg.Uploads)
	if err != nil {
		logr.Fatal("failed to init upload storage", zap.Error(err), zap.String("driver", cfg.Uploads.Driver))
	}

	notifyQueue := jobs.NewQueue("notifications", jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})

	principalRepo := repository.NewPrincipalRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	authSvc := service.NewAuthService(principalRepo, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
	})
	departmentSvc := service.NewDepartmentService(departmentRepo, cacheSvc, validate, logr)
	studentSvc := service.NewStudentService(principalRepo, validate, logr)
	guideSvc := service.NewGuideService(principalRepo, validate, logr)
	groupSvc := service.NewGroupService(groupRepo, principalRepo, metrics, logr)
	taskSvc := service.NewTaskService(taskRepo, groupRepo, store, validate, metrics, logr, service.TaskConfig{
		MaxFileSize: cfg.Uploads.MaxFileSizeBytes,
	})
	notificationSvc := service.NewNotificationService(notificationRepo, notifyQueue, validate, metrics, logr)
	exportSvc := service.NewExportService(groupRepo, taskRepo, principalRepo, export.NewPDFExporter(), logr)

	var chatSvc *service.ChatService
	if cfg.LLM.APIKey != "" {
		chatSvc = service.NewChatService(llm.NewClient(cfg.LLM, nil), cfg.LLM.Timeout, metrics, logr)
	} else {
		logr.Warn("LLM_API_KEY not set, chat replies will fail")
		chatSvc = service.NewChatService(nil, cfg.LLM.Timeout, metrics, logr)
	}

	notifyQueue.Start(ctx)
	defer notifyQueue.Stop()

	chatLimiter := middleware.NewRateLimiter(cfg.Chat.RateLimit, cfg.Chat.RateWindow)
	go chatLimiter.Run(ctx.Done())

	session := middleware.NewSession(authSvc, cfg.JWT.CookieName)

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	if redisCache != nil {
		metricsHandler.WithCache(redisCache)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.RegisterRoutes(r, handler.Handlers{
		Auth: handler.NewAuthHandler(authSvc, handler.CookieConfig{
			Name:   session.Cookie(),
			MaxAge: authSvc.TokenTTL(),
			Secure: cfg.Env == config.EnvProduction,
		}),
		Department:   handler.NewDepartmentHandler(departmentSvc),
		Student:      handler.NewStudentHandler(studentSvc),
		Guide:        handler.NewGuideHandler(guideSvc),
		Group:        handler.NewGroupHandler(groupSvc),
		Task:         handler.NewTaskHandler(taskSvc, cfg.Uploads.MaxFileSizeBytes),
		Notification: handler.NewNotificationHandler(notificationSvc),
		Chat:         handler.NewChatHandler(chatSvc),
		Export:       handler.NewExportHandler(exportSvc),
		Upload:       handler.NewUploadHandler(store),
		Audit:        handler.NewAuditHandler(auditSvc),
		Metrics:      metricsHandler,
	}, handler.RouterConfig{
		APIPrefix:   cfg.APIPrefix,
		Session:     session,
		Audit:       auditSvc,
		ChatLimiter: chatLimiter,
		Metrics:     metrics,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

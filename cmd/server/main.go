package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/tasklight/backend/api/handler"
	"github.com/tasklight/backend/internal/config"
	"github.com/tasklight/backend/internal/infrastructure/auditlog"
	"github.com/tasklight/backend/internal/infrastructure/monitor"
	pgInfra "github.com/tasklight/backend/internal/infrastructure/postgres"
	redisInfra "github.com/tasklight/backend/internal/infrastructure/redis"
	"github.com/tasklight/backend/internal/middleware"
	"github.com/tasklight/backend/internal/router"
	"github.com/tasklight/backend/internal/services"
	"github.com/tasklight/backend/internal/services/lifecycle"
	"github.com/tasklight/backend/pkg/httpcontext"
	"github.com/tasklight/backend/pkg/logger"
	"github.com/tasklight/backend/pkg/token"
	"github.com/tasklight/backend/repository"
	"github.com/tasklight/backend/repository/postgres"
	redisRepo "github.com/tasklight/backend/repository/redis"
	accountUC "github.com/tasklight/backend/usecase/account"
	authUC "github.com/tasklight/backend/usecase/auth"
	taskUC "github.com/tasklight/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	// The throttle is optional: without Redis, logins simply go unthrottled.
	var throttle repository.LoginThrottle
	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Warn("redis unavailable, login throttling disabled", zap.Error(err))
	} else {
		throttle = redisRepo.NewLoginThrottle(redisClient)
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	spool, err := auditlog.Open(cfg.Audit.SpoolPath, "audit")
	if err != nil {
		zapLogger.Fatal("failed to open audit spool", zap.Error(err))
	}
	manager.Register("audit_spool", func(ctx context.Context) error {
		return spool.Close()
	})

	mon := monitor.New(pool, redisClient, spool, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)

	auditProcessor := services.NewAuditProcessor(
		spool,
		mon,
		eventRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:  cfg.Audit.SyncInterval,
			BatchSize: cfg.Audit.BatchSize,
		},
	)
	auditProcessor.Start()
	manager.Register("audit_processor", func(ctx context.Context) error {
		auditProcessor.Stop(ctx)
		return nil
	})

	retention := services.NewRetentionJob(eventRepo, cfg.Audit.RetentionDays, zapLogger)
	retention.Start()
	manager.Register("audit_retention", func(ctx context.Context) error {
		retention.Stop(ctx)
		return nil
	})

	auditSink := services.NewAuditRecorder(spool)

	tokens := token.New(token.Config{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	})

	authUseCase := authUC.New(userRepo, tokens, throttle, authUC.ThrottleConfig{
		MaxFailures: cfg.Login.MaxFailures,
		Window:      cfg.Login.FailureWindow,
	}, auditSink, zapLogger)
	accountUseCase := accountUC.New(userRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, auditSink, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Account: apiHandler.NewAccountHandler(accountUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.Auth(tokens, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

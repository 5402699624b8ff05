package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	apiHttp "github.com/firetrack/backend/internal/api/http"
	"github.com/firetrack/backend/internal/cache"
	"github.com/firetrack/backend/internal/config"
	"github.com/firetrack/backend/internal/db"
	"github.com/firetrack/backend/internal/queue/asynqserver"
	"github.com/firetrack/backend/internal/queue/client"
	"github.com/firetrack/backend/internal/repository"
	"github.com/firetrack/backend/internal/server"
	"github.com/firetrack/backend/internal/service"
	"github.com/firetrack/backend/internal/worker"
	"github.com/firetrack/backend/pkg/email/smtp"
	"github.com/firetrack/backend/pkg/hash"
	"github.com/firetrack/backend/pkg/logger"
	"github.com/firetrack/backend/pkg/otp"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	logger.SetupLogger(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting firetrack backend", zap.String("env", cfg.Env))
	logger.Debug("debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Init database
	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		logger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			logger.Error("error when closing", zap.Error(err))
		}
	}()
	logger.Info("mysql connection done")

	if err := db.Migrate(ctx, dbMySQL); err != nil {
		logger.Error("mysql migration failed", zap.Error(err))
		return
	}

	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		logger.Error("redis connect problem", zap.Error(err))
		return
	}
	defer redisClient.Close()

	emailSender, err := smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
	if err != nil {
		logger.Error("smtp sender creation failed", zap.Error(err))
		return
	}

	asynqClient := asynq.NewClient(asynqserver.RedisOptions(cfg.Cache))
	defer asynqClient.Close()

	// Services, Repos & API Handlers
	repos := repository.NewRepositories(dbMySQL)
	services := service.NewServices(service.Deps{
		Config:       cfg,
		Hasher:       hash.NewBcryptHasher(cfg.Auth.PasswordCost),
		OtpGenerator: otp.NewCryptoGenerator(),
		Notifier:     client.NewActivationNotifier(asynqClient),
		Repos:        repos,
	})
	handlers := apiHttp.NewHandlers(services, cfg)

	// Queue workers & scheduler
	workers := worker.NewWorkers(worker.Deps{
		Redis:         redisClient,
		Services:      services,
		EmailProvider: emailSender,
		Config:        cfg,
	})
	asynqSrv, mux := asynqserver.New(cfg.Cache, cfg.Queue.Concurrency, workers)
	if err := asynqSrv.Start(mux); err != nil {
		logger.Error("asynq server start failed", zap.Error(err))
		return
	}
	defer asynqSrv.Shutdown()

	scheduler, err := asynqserver.NewScheduler(cfg.Cache, cfg.Activation)
	if err != nil {
		logger.Error("asynq scheduler creation failed", zap.Error(err))
		return
	}
	if err := scheduler.Start(); err != nil {
		logger.Error("asynq scheduler start failed", zap.Error(err))
		return
	}
	defer scheduler.Shutdown()

	// HTTP Server
	srv := server.NewServer(cfg, handlers.Init())
	logger.Info("server started", zap.String("port", cfg.HttpServer.Port))

	if err := srv.Run(ctx); err != nil {
		logger.Error("error occurred while running http server", zap.Error(err))
	}

	logger.Info("app stopped")
}

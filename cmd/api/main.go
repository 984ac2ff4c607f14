package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"jobboard/internal/cache"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/handlers"
	"jobboard/internal/jobs"
	"jobboard/internal/log"
	"jobboard/internal/mail"
	"jobboard/internal/queue"
	"jobboard/internal/realtime"
	"jobboard/internal/repository"
	"jobboard/internal/server"
	"jobboard/internal/service"
	"jobboard/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBuckets(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure buckets failed")
	}

	userRepo := repository.NewUserRepository(dbPool)
	otpRepo := repository.NewOTPRepository(dbPool)
	companyRepo := repository.NewCompanyRepository(dbPool)
	jobRepo := repository.NewJobRepository(dbPool)
	appRepo := repository.NewApplicationRepository(dbPool)
	chatRepo := repository.NewChatRepository(dbPool)
	cascadeRepo := repository.NewCascadeRepository(dbPool)

	mailQueue := mail.NewQueue(redisClient, cfg.Mail)
	mailSender := mail.NewSender(cfg.Mail)
	mailConsumer := queue.NewConsumer(
		redisClient, cfg.Mail.Stream, cfg.Mail.Group, "api",
		time.Minute, logger, mail.NewHandler(mailSender),
	)

	directory := realtime.NewDirectory()
	router := realtime.NewRouter(directory, logger)

	cascadeEngine := service.NewCascadeEngine(cascadeRepo, logger)
	authenticator := service.NewAuthenticator(userRepo, cfg.Security)
	authService := service.NewAuthService(userRepo, otpRepo, mailQueue, cfg, logger)
	userService := service.NewUserService(userRepo, companyRepo, cascadeEngine, objectStore, cfg, logger)
	companyService := service.NewCompanyService(companyRepo, userRepo, jobRepo, appRepo, cascadeEngine, objectStore, cfg, logger)
	jobService := service.NewJobService(jobRepo, companyRepo, userRepo, appRepo, cascadeEngine, objectStore, mailQueue, router, cfg, logger)
	chatService := service.NewChatService(chatRepo, logger)

	hub := realtime.NewHub(authenticator, chatService, companyService, directory, router, cfg, logger)

	handlerSet := handlers.NewHandlerSet(handlers.Deps{
		Log:            logger,
		Cfg:            cfg,
		DB:             dbPool,
		Cache:          redisClient,
		Authenticator:  authenticator,
		AuthService:    authService,
		UserService:    userService,
		CompanyService: companyService,
		JobService:     jobService,
		ChatService:    chatService,
		Hub:            hub,
		UserRepo:       userRepo,
		CompanyRepo:    companyRepo,
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(otpRepo, directory, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	if err := mailConsumer.EnsureGroup(ctx); err != nil {
		logger.Error().Err(err).Msg("mail consumer group setup failed")
	}
	go func() {
		if err := mailConsumer.Start(consumerCtx); err != nil && consumerCtx.Err() == nil {
			logger.Error().Err(err).Msg("mail consumer stopped")
		}
	}()

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, stopConsumer, dbPool, redisClient)
}

func waitForShutdown(
	logger zerolog.Logger,
	srv *server.HTTPServer,
	scheduler *jobs.Scheduler,
	stopConsumer context.CancelFunc,
	db *pgxpool.Pool,
	redisClient *redis.Client,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	scheduler.Stop()
	stopConsumer()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wostup/pitchit-api/services/auth-service/internal/config"
	"github.com/wostup/pitchit-api/services/auth-service/internal/handler"
	"github.com/wostup/pitchit-api/services/auth-service/internal/repository"
	"github.com/wostup/pitchit-api/services/auth-service/internal/usecase"
	"github.com/wostup/pitchit-api/services/auth-service/internal/worker"
	"github.com/wostup/pitchit-api/shared/auth"
	"github.com/wostup/pitchit-api/shared/database"
	"github.com/wostup/pitchit-api/shared/httpx"
	"github.com/wostup/pitchit-api/shared/logger"
	"github.com/wostup/pitchit-api/shared/mailer"
	"github.com/wostup/pitchit-api/shared/provider"
	"github.com/wostup/pitchit-api/shared/queue"
	"github.com/wostup/pitchit-api/shared/ratelimit"
	"github.com/wostup/pitchit-api/shared/server"
)

const (
	serviceName       = "auth-service"
	emailSendTimeout  = 30 * time.Second
	workerConcurrency = 4
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Str("service", serviceName).Logger()
		bootLogger.Fatal().Err(err).Msg("failed to load auth service config")
	}

	cfg.Log.Service = serviceName
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient := database.NewMongoClient(ctx, log, cfg.Mongo)
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()
	db := mongoClient.Database(cfg.Mongo.Database)

	studentRepo := repository.NewAccountMongoRepository(ctx, log, db, auth.RoleStudent)
	startupRepo := repository.NewAccountMongoRepository(ctx, log, db, auth.RoleStartup)
	identityRepo := repository.NewIdentityMongoRepository(ctx, log, db)
	sessionRepo := repository.NewSessionMongoRepository(ctx, log, db)
	resetTokenRepo := repository.NewPasswordResetTokenMongoRepository(ctx, log, db)

	smtp := mailer.NewSMTPSenderFromEnv(log)

	var (
		redisClient *redis.Client
		dispatcher  queue.EmailDispatcher
	)
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()

		asynqOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL for task queue")
		}

		mailWorker := queue.NewWorker(asynqOpt, smtp, log, workerConcurrency)
		if err := mailWorker.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start email worker")
		}
		defer mailWorker.Shutdown()

		dispatcher = queue.NewAsynqDispatcher(asynqOpt, log)
	} else {
		log.Warn().Msg("REDIS_URL not set, rate limits are per process and email is sent in-process")
		dispatcher = queue.NewDirectDispatcher(smtp, log, emailSendTimeout)
	}
	defer func() {
		if err := dispatcher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close email dispatcher")
		}
	}()

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)
	accounts := usecase.NewAccountDirectory(studentRepo, startupRepo)
	google := provider.NewGoogleOAuthProvider(cfg.GoogleClientID, &http.Client{Timeout: 10 * time.Second})

	verificationUsecase := usecase.NewVerificationUsecase(accounts, dispatcher, cfg.VerificationTokenTTL, log)
	authUsecase := usecase.NewAuthUsecase(
		accounts,
		identityRepo,
		sessionRepo,
		database.NewMongoTransactor(mongoClient),
		google,
		dispatcher,
		jwtAuth,
		cfg,
		log,
	)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(accounts, resetTokenRepo, jwtAuth, dispatcher, cfg, log)

	newLimit := func(rate, prefix string) func(http.Handler) http.Handler {
		l, err := ratelimit.New(log, ratelimit.Options{Rate: rate, Prefix: prefix, Redis: redisClient})
		if err != nil {
			log.Fatal().Err(err).Str("rate", rate).Msg("invalid rate limit")
		}
		return l.Middleware
	}

	trustedProxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}

	router := handler.NewRouter(handler.RouterConfig{
		Handler:        handler.NewAuthHTTPHandler(authUsecase, verificationUsecase, passwordResetUsecase, log),
		Health:         httpx.Health(func(ctx context.Context) error { return database.Ping(ctx, mongoClient) }),
		TrustedProxies: trustedProxies,
		ResendLimit:    newLimit(cfg.Limit.Resend, "limit:resend"),
		VerifyLimit:    newLimit(cfg.Limit.Verify, "limit:verify"),
		LoginLimit:     newLimit(cfg.Limit.Login, "limit:login"),
		Logger:         log,
		IsDevelopment:  cfg.IsDevelopment(),
	})

	go worker.RunTokenCleanup(ctx, cfg.TokenSweepInterval, verificationUsecase, log)

	if err := server.Run(ctx, log, server.Config{
		Name:           serviceName,
		Host:           cfg.ServiceHost,
		Port:           cfg.Port,
		GRPCHealthPort: cfg.GRPCHealthPort,
		ConsulAddr:     cfg.ConsulAddr,
		Handler:        router,
	}); err != nil {
		log.Error().Err(err).Msg("auth service stopped with error")
	}
}

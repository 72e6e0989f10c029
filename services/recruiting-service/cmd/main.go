package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/config"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/handler"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/repository"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/usecase"
	"github.com/wostup/pitchit-api/shared/auth"
	"github.com/wostup/pitchit-api/shared/database"
	"github.com/wostup/pitchit-api/shared/httpx"
	"github.com/wostup/pitchit-api/shared/logger"
	"github.com/wostup/pitchit-api/shared/ratelimit"
	"github.com/wostup/pitchit-api/shared/server"
)

const serviceName = "recruiting-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Str("service", serviceName).Logger()
		bootLogger.Fatal().Err(err).Msg("failed to load recruiting service config")
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
	tx := database.NewMongoTransactor(mongoClient)

	jobRepo := repository.NewJobMongoRepository(ctx, log, db)
	applicationRepo := repository.NewApplicationMongoRepository(ctx, log, db)
	interviewRepo := repository.NewInterviewMongoRepository(ctx, log, db)
	notificationRepo := repository.NewNotificationMongoRepository(ctx, log, db)
	subscriptionRepo := repository.NewSubscriptionMongoRepository(db)
	analyticsRepo := repository.NewAnalyticsMongoRepository(db)
	interviewerSlots := repository.NewSlotMongoRepository(db, repository.InterviewerSlotCollection)
	quotaSlots := repository.NewSlotMongoRepository(db, repository.JobQuotaCollection)

	subscriptionUsecase := usecase.NewSubscriptionUsecase(subscriptionRepo, log)
	usecases := handler.Usecases{
		Jobs:         usecase.NewJobUsecase(jobRepo, quotaSlots, subscriptionUsecase, tx),
		Applications: usecase.NewApplicationUsecase(jobRepo, applicationRepo, notificationRepo, tx, log),
		Interviews: usecase.NewInterviewUsecase(
			applicationRepo,
			interviewRepo,
			notificationRepo,
			interviewerSlots,
			subscriptionUsecase,
			tx,
			log,
		),
		Subscriptions: subscriptionUsecase,
		Analytics:     usecase.NewAnalyticsUsecase(analyticsRepo, jobRepo, subscriptionUsecase),
		Notifications: usecase.NewNotificationUsecase(notificationRepo),
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()
	}

	mutationLimit, err := ratelimit.New(log, ratelimit.Options{
		Rate:   cfg.MutationRateLimit,
		Prefix: "limit:mutation",
		Redis:  redisClient,
	})
	if err != nil {
		log.Fatal().Err(err).Str("rate", cfg.MutationRateLimit).Msg("invalid rate limit")
	}

	if cfg.AdminSecret == "" {
		log.Warn().Msg("ADMIN_SECRET not set, subscription admin endpoint is disabled")
	}

	trustedProxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}

	router := handler.NewRouter(handler.RouterConfig{
		Handler:        handler.NewRecruitingHTTPHandler(usecases, log),
		Health:         httpx.Health(func(ctx context.Context) error { return database.Ping(ctx, mongoClient) }),
		TrustedProxies: trustedProxies,
		JWT:            auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer),
		AccessSecret:   cfg.Token.AccessTokenSecret,
		AdminSecret:    cfg.AdminSecret,
		MutationLimit:  mutationLimit.Middleware,
		Logger:         log,
		IsDevelopment:  cfg.IsDevelopment(),
	})

	if err := server.Run(ctx, log, server.Config{
		Name:           serviceName,
		Host:           cfg.ServiceHost,
		Port:           cfg.Port,
		GRPCHealthPort: cfg.GRPCHealthPort,
		ConsulAddr:     cfg.ConsulAddr,
		Handler:        router,
	}); err != nil {
		log.Error().Err(err).Msg("recruiting service stopped with error")
	}
}

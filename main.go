// File: main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dietic/aliado-bot/config"
	"github.com/dietic/aliado-bot/cron"
	"github.com/dietic/aliado-bot/database"
	providerRepo "github.com/dietic/aliado-bot/database/repository/provider"
	referenceRepo "github.com/dietic/aliado-bot/database/repository/reference"
	sessionRepo "github.com/dietic/aliado-bot/database/repository/session"
	"github.com/dietic/aliado-bot/handlers"
	"github.com/dietic/aliado-bot/middleware"
	"github.com/dietic/aliado-bot/routes"
	"github.com/dietic/aliado-bot/services/intelligence"
	"github.com/dietic/aliado-bot/services/messaging"
	"github.com/dietic/aliado-bot/services/onboarding"
	"github.com/dietic/aliado-bot/services/routing"
	"github.com/dietic/aliado-bot/services/tasks"
	"github.com/dietic/aliado-bot/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	reference, err := referenceRepo.NewMongoReferenceRepo(context.Background())
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load reference data: %v", err)
	}
	sessions := sessionRepo.NewMongoSessionRepo()
	providers := providerRepo.NewMongoProviderRepo()
	if mongoProviders, ok := providers.(*providerRepo.MongoProviderRepo); ok {
		if err := mongoProviders.EnsureIndexes(); err != nil {
			logger.Sugar().Warnf("main: failed to ensure provider indexes: %v", err)
		}
	}

	// external collaborators.
	oracle, err := intelligence.NewGeminiOracle(config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel, reference)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize classification oracle: %v", err)
	}
	gateway := messaging.NewTwilioGateway(
		config.AppConfig.TwilioAccountSID,
		config.AppConfig.TwilioAuthToken,
		config.AppConfig.TwilioWhatsAppFrom,
	)

	// stalled-session nudges.
	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueClient.Close()
	scheduler := tasks.NewAsynqScheduler(queueClient, time.Duration(config.AppConfig.ReminderDelayMin)*time.Minute)
	cron.InitNudgeWorker(sessions, gateway)

	// services.
	matchingService := &routing.DefaultMatchingService{
		ProviderRepo: providers,
		Ref:          reference,
	}
	routingService := &routing.DefaultRoutingService{
		Oracle:       oracle,
		Matcher:      matchingService,
		ProviderRepo: providers,
		Gateway:      gateway,
	}
	onboardingService := onboarding.NewOnboardingService(
		sessions,
		providers,
		&onboarding.Normalizer{Oracle: oracle},
		gateway,
		utils.NewPhoneLock(utils.GetLockClient(), 30*time.Second),
		scheduler,
		config.AppConfig.TwilioWelcomeSID,
	)

	routingHandler := handlers.NewRoutingHandler(routingService)
	onboardingHandler := handlers.NewOnboardingHandler(onboardingService)

	handlerBundle := &handlers.HandlerBundle{
		RoutingInbound:    routingHandler.HandleInbound,
		OnboardingInbound: onboardingHandler.HandleInbound,
	}

	routes.RegisterRoutes(router, handlerBundle)
	utils.StartHealthMonitor(utils.GetLockClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// File: tripbot/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripbot/config"
	"tripbot/cron"
	"tripbot/database"
	ticketRepoPkg "tripbot/database/repository/ticket"
	"tripbot/handlers"
	"tripbot/middleware"
	"tripbot/routes"
	"tripbot/services/booking"
	"tripbot/services/intent"
	"tripbot/services/notification"
	"tripbot/services/offers"
	"tripbot/services/payment"
	"tripbot/services/session"
	"tripbot/services/storage"
	"tripbot/services/ticket"
	"tripbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.InitPaymentCache()

	artifactStore, err := storage.NewCloudinaryStore(config.AppConfig.CloudinaryURL, "tickets")
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	ticketRepo := ticketRepoPkg.NewMongoTicketRepo()

	// services.
	sessionStore := session.NewRedisStore(utils.GetSessionCacheClient(), config.SessionTTL())

	var resolver intent.Resolver = intent.NewKeywordResolver()
	if config.AppConfig.GeminiAPIKey != "" {
		resolver = intent.NewGeminiResolver(config.AppConfig.GeminiAPIKey, resolver)
	}

	offerRouter := &offers.Router{
		Bus: offers.NewBusGateway(config.AppConfig.MaxOffersShown),
		Flight: offers.NewAmadeusGateway(
			config.AppConfig.AmadeusBaseURL,
			config.AppConfig.AmadeusAPIKey,
			config.AppConfig.AmadeusAPISecret,
			config.AppConfig.MaxOffersShown,
			logger,
		),
	}

	coordinator := payment.NewStripeCoordinator(
		utils.GetPaymentCacheClient(),
		config.AppConfig.PaymentLinkBase,
		logger,
	)

	sender := notification.NewTwilioSender(
		config.AppConfig.TwilioAccountSID,
		config.AppConfig.TwilioAuthToken,
		config.AppConfig.TwilioFromNumber,
		logger,
	)

	deliveryQueue := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDeliveryDB,
	})
	defer deliveryQueue.Close()

	deliverer := &ticket.Deliverer{
		Repo:   ticketRepo,
		Store:  artifactStore,
		Sender: sender,
		Queue:  deliveryQueue,
		Logger: logger,
	}

	bookingService := &booking.DefaultBookingService{
		Store:      sessionStore,
		Locks:      session.NewUserLocks(),
		Resolver:   resolver,
		Offers:     offerRouter,
		Payments:   coordinator,
		Issuer:     ticket.NewIssuer(),
		Deliverer:  deliverer,
		Sender:     sender,
		TicketRepo: ticketRepo,
		Machine: booking.NewMachine(booking.Rules{
			BookingWindowDays: config.AppConfig.BookingWindowDays,
			MaxPassengers:     config.AppConfig.MaxPassengers,
			MaxOffersShown:    config.AppConfig.MaxOffersShown,
		}),
		UpstreamTimeout: config.UpstreamTimeout(),
		Logger:          logger,
	}

	// Background redelivery worker.
	cron.InitDeliveryWorker(deliverer)

	throttle := middleware.NewSenderThrottle(
		time.Duration(config.AppConfig.ThrottleSeconds) * time.Second)

	chatHandler := handlers.NewChatHandler(bookingService, throttle, logger)
	paymentHandler := handlers.NewPaymentHandler(bookingService, config.AppConfig.StripeWebhookSecret, logger)
	historyHandler := handlers.NewHistoryHandler(bookingService, logger)
	sendHandler := handlers.NewSendHandler(sender, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		ChatWebhookHandler:    chatHandler.WebhookHandler,
		PaymentWebhookHandler: paymentHandler.WebhookHandler,
		GetHistoryHandler:     historyHandler.GetHistoryHandler,
		SendMessageHandler:    sendHandler.SendMessageHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

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

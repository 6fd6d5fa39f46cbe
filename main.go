package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"serbisyo/config"
	"serbisyo/cron"
	"serbisyo/database"
	bookingRepo "serbisyo/database/repository/booking"
	metricsRepo "serbisyo/database/repository/metrics"
	paysessionRepo "serbisyo/database/repository/paysession"
	transactionRepo "serbisyo/database/repository/transaction"
	userRepoPkg "serbisyo/database/repository/user"
	"serbisyo/handlers"
	"serbisyo/middleware"
	"serbisyo/routes"
	"serbisyo/services/monitor"
	"serbisyo/services/notification"
	"serbisyo/services/payment"
	"serbisyo/services/storage"
	"serbisyo/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	utils.InitializeLogger(cfg.Env)
	logger := utils.GetLogger()

	mongoClient, err := database.Connect(cfg)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to MongoDB: %v", err)
	}
	db := mongoClient.Database(cfg.DatabaseName)

	ctx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure indexes: %v", err)
	}
	cancelIndexes()

	utils.InitCache(cfg)
	utils.FirebaseInit(cfg)
	stripe.Key = cfg.Card.StripeKey

	// Repositories.
	bookings := bookingRepo.NewMongoBookingRepo(db)
	transactions := transactionRepo.NewMongoTransactionRepo(db)
	sessions := paysessionRepo.NewMongoSessionRepo(db)
	metrics := metricsRepo.NewMongoMetricsRepo(db)
	users := userRepoPkg.NewMongoUserRepo(db)

	// Monitoring and notifications.
	monitorEngine := &monitor.Engine{
		Repo:     metrics,
		Bookings: bookings,
		Logger:   logger,
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	})
	defer asynqClient.Close()
	notifier := notification.NewAsynqNotifier(asynqClient, logger)
	cron.InitNotificationWorker(cfg, users, logger)

	// Payment core.
	finalizer := &payment.Finalizer{
		Txn:          database.NewTxnRunner(mongoClient),
		Bookings:     bookings,
		Transactions: transactions,
		Sessions:     sessions,
		Monitor:      monitorEngine,
		Notifier:     notifier,
		Logger:       logger,
	}
	detector := &payment.DuplicateDetector{Transactions: transactions}
	validator := &payment.Validator{
		Cfg:      cfg,
		Bookings: bookings,
		Detector: detector,
		Logger:   logger,
	}
	guard := &payment.SessionGuard{Sessions: sessions, Logger: logger}

	gcashGateway := payment.NewGCashGateway(cfg.GCash, finalizer, logger)
	cardGateway := payment.NewCardGateway(finalizer, logger)
	checkoutGateway := payment.NewCheckoutGateway(cfg.Checkout, bookings, finalizer, utils.GetCacheClient(), logger)

	paymentService := &payment.DefaultPaymentService{
		Cfg:       cfg,
		Validator: validator,
		Guard:     guard,
		Bookings:  bookings,
		Sessions:  sessions,
		Adapters: map[string]payment.GatewayAdapter{
			gcashGateway.Method():    gcashGateway,
			cardGateway.Method():     cardGateway,
			checkoutGateway.Method(): checkoutGateway,
		},
		Checkout:  checkoutGateway,
		Finalizer: finalizer,
		Retry: payment.RetryPolicy{
			MaxRetries: config.DefaultMaxRetries,
			BaseDelay:  config.RetryBaseDelay,
			Logger:     logger,
		},
		Monitor: monitorEngine,
		Logger:  logger,
	}

	var storageService storage.StorageService
	if cloudinaryStorage, err := storage.NewCloudinaryStorage(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	); err != nil {
		logger.Sugar().Warnf("main: cloudinary storage unavailable, proof uploads disabled: %v", err)
	} else {
		storageService = cloudinaryStorage
	}

	// HTTP surface.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	bundle := &routes.HandlerBundle{
		Payment: handlers.NewPaymentHandler(paymentService, logger),
		Webhook: handlers.NewWebhookHandler(paymentService, logger),
		Monitor: handlers.NewMonitorHandler(monitorEngine, logger),
		Storage: handlers.NewStorageHandler(storageService, bookings, logger),
	}
	routes.Register(router, cfg, bundle)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("main: listening on :%s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: forced shutdown: %v", err)
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: mongo disconnect: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stem-for-society/enquiry-api/config"
	"github.com/stem-for-society/enquiry-api/internal/cache"
	"github.com/stem-for-society/enquiry-api/internal/enquiry"
	"github.com/stem-for-society/enquiry-api/internal/events"
	"github.com/stem-for-society/enquiry-api/internal/handlers"
	"github.com/stem-for-society/enquiry-api/internal/mailer"
	"github.com/stem-for-society/enquiry-api/internal/middleware"
	"github.com/stem-for-society/enquiry-api/internal/payment"
	"github.com/stem-for-society/enquiry-api/internal/repository"
	"github.com/stem-for-society/enquiry-api/internal/services"
	"github.com/stem-for-society/enquiry-api/pkg/db"
	"github.com/stem-for-society/enquiry-api/pkg/logger"
	"github.com/stem-for-society/enquiry-api/pkg/metrics"
	"github.com/stem-for-society/enquiry-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerPublicRoutes registers the public site-facing API
func registerPublicRoutes(
	group *gin.RouterGroup,
	generalRateLimiter, enquiryRateLimiter *middleware.RateLimiter,
	trainingHandler *handlers.TrainingHandler,
	enquiryHandler *handlers.EnquiryHandler,
	navHandler *handlers.NavHandler,
	webhookHandler *handlers.WebhookHandler,
) {
	group.GET("/trainings", generalRateLimiter.Middleware(), trainingHandler.ListTrainings)
	group.GET("/trainings/upcoming", generalRateLimiter.Middleware(), trainingHandler.UpcomingSessions)
	group.GET("/trainings/:id", generalRateLimiter.Middleware(), trainingHandler.GetTraining)

	group.GET("/nav/mode", generalRateLimiter.Middleware(), navHandler.ResolveMode)
	group.POST("/nav/active-section", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(64*1024), navHandler.ActiveSection)

	// Enquiry popup lifecycle. Form bodies are small; 100 KB is generous.
	bodyLimit := middleware.BodySizeLimitMiddleware(100 * 1024)
	group.POST("/enquiries", enquiryRateLimiter.Middleware(), bodyLimit, enquiryHandler.Open)
	group.GET("/enquiries/:id", generalRateLimiter.Middleware(), enquiryHandler.Get)
	group.PATCH("/enquiries/:id", generalRateLimiter.Middleware(), bodyLimit, enquiryHandler.Update)
	group.POST("/enquiries/:id/mode", generalRateLimiter.Middleware(), bodyLimit, enquiryHandler.SwitchMode)
	group.POST("/enquiries/:id/submit", enquiryRateLimiter.Middleware(), bodyLimit, enquiryHandler.Submit)
	group.POST("/enquiries/:id/verify", generalRateLimiter.Middleware(), bodyLimit, enquiryHandler.VerifyPayment)
	group.POST("/enquiries/:id/payment-failed", generalRateLimiter.Middleware(), bodyLimit, enquiryHandler.PaymentFailed)
	group.DELETE("/enquiries/:id", generalRateLimiter.Middleware(), enquiryHandler.Close)

	// Gateway server-to-server notifications
	group.POST("/payments/webhook", generalRateLimiter.Middleware(), bodyLimit, webhookHandler.HandlePaymentWebhook)
}

// registerAdminRoutes registers back-office authentication and the
// transactions screen
func registerAdminRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authRateLimiter *middleware.RateLimiter,
	adminAuthHandler *handlers.AdminAuthHandler,
	transactionsHandler *handlers.TransactionsHandler,
	trainingHandler *handlers.TrainingHandler,
	adminAuthService services.AdminAuthServiceInterface,
) {
	tokenManager := adminAuthService.GetTokenManager()
	if tokenManager == nil {
		logger.Warn("Admin routes disabled: ADMIN_JWT_SECRET not configured")
		return
	}

	auth := router.Group("/api/v1/auth/admin")
	auth.POST("/login", authRateLimiter.Middleware(), adminAuthHandler.Login)
	auth.POST("/logout", adminAuthHandler.Logout)
	auth.GET("/session", middleware.AdminSessionMiddleware(tokenManager, cfg.AdminSession.CookieDomain, cfg.AdminSession.CookieSecure), adminAuthHandler.GetSession)

	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.AdminSessionMiddleware(tokenManager, cfg.AdminSession.CookieDomain, cfg.AdminSession.CookieSecure))
	admin.GET("/transactions", transactionsHandler.List)
	admin.POST("/trainings/refresh", trainingHandler.RefreshCatalog)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting STEM for Society enquiry API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.OTLPEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	metrics.Init(cfg.Observability.ServiceName)
	metrics.RecordInfrastructureMetrics()

	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	// NOTE: Database migrations run separately via the migrate command

	// Repositories
	trainingRepo := repository.NewTrainingRepository(pool)
	enquiryRepo := repository.NewEnquiryRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)

	// Training catalog cache, populated synchronously before the container
	// is marked healthy
	trainingCache := cache.NewTrainingCache(trainingRepo, cfg.Cache.TrainingTTLSeconds)
	if err := trainingCache.Initialize(context.Background()); err != nil {
		logger.Fatal("Failed to initialize training catalog", zap.Error(err))
	}

	// Payment gateway, event publisher and mail
	gateway := payment.NewGateway(
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.WebhookSecret,
		cfg.Razorpay.Currency,
	)
	publisher := events.NewPublisher(cfg.Events.Enabled, cfg.Events.Brokers, cfg.Events.Topic)
	defer publisher.Close()
	confirmationMailer := mailer.New(cfg.Mail)

	// Services
	trainingService := services.NewTrainingService(trainingCache)
	enquiryService := services.NewEnquiryService(enquiryRepo, gateway, publisher)
	paymentService := services.NewPaymentService(enquiryRepo, gateway, publisher, confirmationMailer)
	adminAuthService := services.NewAdminAuthService(adminRepo, cfg)

	// Handlers
	draftStore := enquiry.NewStore(cfg.Cache.DraftTTLMinutes)
	trainingHandler := handlers.NewTrainingHandler(trainingService)
	enquiryHandler := handlers.NewEnquiryHandler(draftStore, enquiryService, paymentService)
	navHandler := handlers.NewNavHandler()
	webhookHandler := handlers.NewWebhookHandler(paymentService)
	adminAuthHandler := handlers.NewAdminAuthHandler(adminAuthService)
	transactionsHandler := handlers.NewTransactionsHandler(paymentService)
	healthHandler := handlers.NewHealthHandler(trainingCache.IsReady)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Razorpay-Signature", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for admin session cookies
		MaxAge:           12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	enquiryRateLimiter := middleware.NewRateLimiter(5, 10)    // 5 req/sec, burst of 10 (prevent spam)
	adminAuthRateLimiter := middleware.NewRateLimiter(0.0334, 5)
	defer generalRateLimiter.Stop()
	defer enquiryRateLimiter.Stop()
	defer adminAuthRateLimiter.Stop()

	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	registerPublicRoutes(v1, generalRateLimiter, enquiryRateLimiter,
		trainingHandler, enquiryHandler, navHandler, webhookHandler)

	registerAdminRoutes(router, cfg, adminAuthRateLimiter, adminAuthHandler, transactionsHandler, trainingHandler, adminAuthService)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

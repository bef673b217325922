package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	handlers "github.com/lumenhq/paysvc/internal/adapter/handler/http"
	"github.com/lumenhq/paysvc/internal/config"
	"github.com/lumenhq/paysvc/internal/infrastructure/database"
	stripegw "github.com/lumenhq/paysvc/internal/infrastructure/gateway/stripe"
	"github.com/lumenhq/paysvc/internal/infrastructure/logger"
	"github.com/lumenhq/paysvc/internal/middleware/auth"
	"github.com/lumenhq/paysvc/internal/usecase"
)

// CustomValidator adapts go-playground/validator to echo
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	repos    *database.Repositories
	webhooks *usecase.WebhookService
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories) *Server {
	e := echo.New()
	e.HideBanner = true

	// Initialize Stripe
	stripe.Key = cfg.Service.StripeSecretKey

	e.Validator = &CustomValidator{validator: validator.New()}

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config: cfg,
		logger: logger,
		echo:   e,
		repos:  repos,
	}
}

// Webhooks exposes the webhook pipeline so callers can register
// custom event handlers before the server starts.
func (s *Server) Webhooks() *usecase.WebhookService {
	if s.webhooks == nil {
		s.setupRoutes()
	}
	return s.webhooks
}

func (s *Server) Start() error {
	if s.webhooks == nil {
		s.setupRoutes()
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.Use(logger.NewEchoRequestLogger(s.logger))
	logger.WithEchoErrorHandler(s.echo, s.logger)

	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Wire services
	gw := stripegw.NewGateway(s.logger)
	subscriptionService := usecase.NewSubscriptionService(
		s.repos.Customer,
		s.repos.Subscription,
		s.repos.Plan,
		gw,
		s.logger,
	)
	s.webhooks = usecase.NewWebhookService(
		s.config.Service.StripeWebhookSecret,
		s.repos.Webhook,
		s.repos.Customer,
		s.repos.Payment,
		subscriptionService,
		gw,
		s.logger,
	)

	// Keep the plan catalog current from price events
	planSync := usecase.NewPlanSyncService(s.repos.Plan, s.logger)
	planSync.RegisterPriceHandlers(s.webhooks)

	// Initialize handlers
	plansHandler := handlers.NewPlansHandler(s.logger, s.repos.Plan)
	checkoutHandler := handlers.NewCheckoutHandler(
		s.logger,
		s.config.Service.ClientURL,
		s.config.Service.DefaultTrialDays,
		s.repos.User,
		s.repos.Plan,
		subscriptionService,
		gw,
	)
	subscriptionHandler := handlers.NewSubscriptionHandler(s.logger, subscriptionService)
	webhookHandler := handlers.NewWebhookHandler(s.logger, s.webhooks, s.repos.Webhook)
	paymentHandler := handlers.NewPaymentHandler(s.logger, s.repos.Payment)

	// JWT middleware configuration
	jwtConfig := auth.JWTConfig{
		Secret: s.config.Service.JWTSecret,
		Logger: s.logger,
		SkipPaths: []string{
			"/health",
			"/webhook",
			"/api/v1/plans",
		},
	}

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Public routes (no authentication required)
	v1.GET("/plans", plansHandler.GetPlans)

	// Protected routes (require JWT authentication)
	protected := v1.Group("", auth.JWTMiddleware(jwtConfig))

	protected.GET("/subscription", subscriptionHandler.GetSubscription)
	protected.POST("/subscription/cancel", subscriptionHandler.CancelSubscription)
	protected.POST("/subscription/upgrade", subscriptionHandler.UpgradePlan)
	protected.POST("/checkout", checkoutHandler.CreateCheckout)
	protected.POST("/portal", checkoutHandler.CreatePortalSession)
	protected.GET("/payments", paymentHandler.GetUserPayments)

	// Internal/Debug routes
	if !s.config.Service.IsProduction() {
		internal := v1.Group("/internal")
		internal.GET("/webhook-events/unprocessed", webhookHandler.ListUnprocessed)
	}

	// Webhook route (outside API versioning)
	s.echo.POST("/webhook", webhookHandler.HandleWebhook)
}

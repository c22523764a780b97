package app

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/altopay/gateway/internal/module/auth"
	"github.com/altopay/gateway/internal/module/payment"
	"github.com/altopay/gateway/internal/module/payment/provider"
	"github.com/altopay/gateway/internal/module/paymentlink"
	"github.com/altopay/gateway/internal/shared/cache"
	"github.com/altopay/gateway/internal/shared/config"
	"github.com/altopay/gateway/internal/shared/database"
	"github.com/altopay/gateway/internal/shared/logger"
	"github.com/altopay/gateway/internal/utils/metrics"
	"github.com/altopay/gateway/internal/utils/middleware"
)

// Application wires the gateway's components together and owns their
// lifecycle.
type Application struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	redis  goredis.UniversalClient
	router *gin.Engine
}

// LoadConfig loads the application configuration.
func LoadConfig() (*config.Config, error) {
	return config.Load()
}

// New builds a fully wired application from configuration.
func New(cfg *config.Config) (*Application, error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, err
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&auth.Merchant{},
		&payment.Transaction{},
		&payment.WebhookEvent{},
		&payment.ActivityLog{},
		&paymentlink.PaymentLink{},
	); err != nil {
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	m := metrics.New("altopay")

	app := &Application{
		cfg:    cfg,
		logger: log,
		db:     db,
		redis:  redisClient,
	}
	app.router = app.buildRouter(m)
	return app, nil
}

func (a *Application) buildRouter(m *metrics.Metrics) *gin.Engine {
	cfg := a.cfg

	// Auth
	jwtManager := auth.NewJWTManager(&auth.JWTConfig{
		Secret:            cfg.Auth.JWTSecret,
		AccessTokenExpiry: cfg.Auth.AccessTokenExpiry,
		Issuer:            cfg.Auth.Issuer,
	})
	authRepo := auth.NewRepository(a.db)
	authService := auth.NewService(authRepo, jwtManager, a.logger)
	authHandler := auth.NewHandler(authService)

	// Providers
	httpClient := newHTTPClient(&cfg.HTTPClient)
	registry := payment.NewProviderRegistry(payment.Provider(cfg.Payments.DefaultCardProvider))
	registry.Register(payment.ProviderStripe, provider.NewStripeProvider(&provider.StripeConfig{
		APIKey:        cfg.Stripe.APIKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	}))
	registry.Register(payment.ProviderPagarme, provider.NewPagarmeProvider(&provider.PagarmeConfig{
		APIKey:        cfg.Pagarme.APIKey,
		BaseURL:       cfg.Pagarme.BaseURL,
		WebhookSecret: cfg.Pagarme.WebhookSecret,
		PixExpiresIn:  cfg.Pagarme.PixExpiresIn,
		BoletoDueDays: cfg.Pagarme.BoletoDueDays,
	}, httpClient))

	// Payments
	paymentRepo := payment.NewRepository(a.db)
	paymentService := payment.NewService(paymentRepo, registry, m, a.logger)
	paymentHandler := payment.NewHandler(paymentService, a.logger)
	webhookHandler := payment.NewWebhookHandler(paymentService, registry, a.logger)

	// Payment links
	linkRepo := paymentlink.NewRepository(a.db)
	linkService := paymentlink.NewService(linkRepo, paymentService, a.logger)
	linkHandler := paymentlink.NewHandler(linkService, a.logger)

	rateLimiter := cache.NewRateLimiter(a.redis)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		middleware.Recovery(a.logger),
		middleware.RequestID(),
		middleware.Logging(a.logger),
		middleware.CORS(middleware.DefaultCORSConfig()),
		middleware.Metrics(m),
	)

	router.GET("/healthz", a.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	// Unauthenticated surface: token exchange (rate limited per IP) and
	// provider webhooks (signature trust).
	public := v1.Group("")
	public.Use(middleware.RateLimitByIP(rateLimiter, 30, time.Minute))
	authHandler.RegisterRoutes(public)
	linkHandler.RegisterPublicRoutes(public)
	webhookHandler.RegisterRoutes(v1)

	// Bearer-authenticated surface.
	protected := v1.Group("")
	protected.Use(
		middleware.RequireAuth(&tokenValidator{service: authService}),
		middleware.Idempotency(a.redis, middleware.DefaultIdempotencyConfig()),
	)
	paymentHandler.RegisterRoutes(protected)
	linkHandler.RegisterRoutes(protected)

	return router
}

// Router returns the application's HTTP handler.
func (a *Application) Router() http.Handler {
	return a.router
}

// Stop releases the application's resources.
func (a *Application) Stop() {
	if err := cache.Close(a.redis); err != nil {
		a.logger.Warn("failed to close redis", zap.Error(err))
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// healthz reports liveness of the service and its backing stores.
func (a *Application) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
		return
	}
	if err := a.redis.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "redis": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// tokenValidator adapts the auth service to the middleware's validator
// interface.
type tokenValidator struct {
	service *auth.Service
}

func (v *tokenValidator) ValidateToken(token string) (*middleware.TokenClaims, error) {
	claims, err := v.service.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{MerchantID: claims.MerchantID, Email: claims.Email}, nil
}

// newHTTPClient builds the shared outbound HTTP client used by provider
// adapters.
func newHTTPClient(cfg *config.HTTPClientConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.ResponseTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   cfg.DialTimeout,
				KeepAlive: cfg.KeepAlive,
			}).DialContext,
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.IdleConnTimeout,
			TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		},
	}
}

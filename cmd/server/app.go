package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	customerapp "github.com/storefront/backend/internal/application/customer"
	eventapp "github.com/storefront/backend/internal/application/event"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/application/notification"
	orderapp "github.com/storefront/backend/internal/application/order"
	reportapp "github.com/storefront/backend/internal/application/report"
	tagapp "github.com/storefront/backend/internal/application/tagging"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/email"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/printing"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/slug"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// app owns everything built on top of the database connection
type app struct {
	cfg *config.Config
	log *zap.Logger
	tel *telemetry.Telemetry

	redis        *redis.Client
	jwtService   *auth.JWTService
	blacklist    auth.TokenBlacklist
	productStore cache.Store
	idempotency  shared.IdempotencyStore

	bus       *event.InMemoryEventBus
	processor *event.OutboxProcessor
	trigger   *scheduler.CronTrigger
	pdf       *printing.ChromedpRenderer

	rateLimiter     *middleware.RateLimiter
	authRateLimiter *middleware.RateLimiter

	handlers router.Handlers
}

func newApp(ctx context.Context, cfg *config.Config, db *persistence.Database, tel *telemetry.Telemetry, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, tel: tel}

	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			// the cache, blacklist and idempotency store fall back to memory
			log.Warn("Redis unavailable, continuing without it", zap.Error(err))
		} else {
			a.redis = client
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	a.jwtService = auth.NewJWTService(cfg.JWT)
	if a.redis != nil {
		a.blacklist = auth.NewRedisTokenBlacklist(a.redis)
	} else {
		a.blacklist = auth.NewInMemoryTokenBlacklist()
	}

	var productCache catalogapp.ProductCache
	if cfg.Cache.Enabled {
		a.productStore = cache.NewProductStore(cfg.Cache, a.redis, log)
		productCache = a.productStore
	}
	a.idempotency = cache.NewIdempotencyStore(a.redis, log)

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	collectionRepo := persistence.NewGormCollectionRepository(db.DB)
	promotionRepo := persistence.NewGormPromotionRepository(db.DB)
	imageRepo := persistence.NewGormProductImageRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	tagRepo := persistence.NewGormTagRepository(db.DB)
	taggedItemRepo := persistence.NewGormTaggedItemRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Events: the outbox carries order events, the bus delivers them in process
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	outboxPublisher := event.NewOutboxPublisher(serializer, event.WithMaxRetries(cfg.Event.MaxRetries))
	txScope := persistence.NewGormTransactionScope(db.DB, outboxPublisher)

	a.bus = event.NewInMemoryEventBus(log)
	processorCfg := event.DefaultOutboxProcessorConfig()
	if cfg.Event.BatchSize > 0 {
		processorCfg.BatchSize = cfg.Event.BatchSize
	}
	if cfg.Event.PollInterval > 0 {
		processorCfg.PollInterval = cfg.Event.PollInterval
	}
	processorCfg.CleanupEnabled = cfg.Event.CleanupEnabled
	if cfg.Event.CleanupRetention > 0 {
		processorCfg.CleanupRetention = cfg.Event.CleanupRetention
	}
	a.processor = event.NewOutboxProcessor(outboxRepo, a.bus, serializer, processorCfg, log)

	// Services
	productService := catalogapp.NewProductService(productRepo, collectionRepo, promotionRepo,
		slug.Generator{}, a.bus, productCache, log)
	importService := catalogapp.NewProductImportService(productService, productRepo, collectionRepo, log)
	collectionService := catalogapp.NewCollectionService(collectionRepo, productRepo, a.bus)
	promotionService := catalogapp.NewPromotionService(promotionRepo)
	reviewService := catalogapp.NewReviewService(reviewRepo, productRepo)

	objects, err := a.objectStorage(ctx)
	if err != nil {
		return nil, err
	}
	imageCfg := catalogapp.DefaultImageServiceConfig()
	if cfg.Storage.PresignExpiry > 0 {
		imageCfg.UploadURLExpiry = cfg.Storage.PresignExpiry
	}
	imageService := catalogapp.NewImageService(imageRepo, productRepo, objects, imageCfg, log)

	cartService := cartapp.NewCartService(cartRepo, productRepo, cfg.Cart.TTL, log)
	customerService := customerapp.NewCustomerService(customerRepo, addressRepo, userRepo, log)
	authService := identityapp.NewAuthService(userRepo, a.jwtService, a.blacklist, a.bus, log)
	tagService := tagapp.NewTagService(tagRepo, taggedItemRepo, productRepo, collectionRepo)

	mailer := email.New(cfg.Email, log)
	notifications := notification.NewNotificationService(mailer, cfg.Email.Admins, log)

	invoices, err := a.invoiceRenderer()
	if err != nil {
		return nil, err
	}
	orderService := orderapp.NewOrderService(txScope, orderRepo, customerRepo, customerService,
		a.bus, invoices, log,
		orderapp.WithOutboxTrigger(a.processor.Trigger),
		orderapp.WithStockChangeHook(productService.InvalidateCache),
	)

	loc, err := loadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, err
	}
	reportService := reportapp.NewReportService(reportRepo, notifications, loc, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, a.processor.Trigger, log)

	// Event handlers
	a.bus.Subscribe(event.NewIdempotentHandler(
		notification.NewOrderConfirmationHandler(notifications), a.idempotency, log,
		event.WithIdempotencyConfig(shared.IdempotencyConfig{TTL: cfg.Event.IdempotencyTTL, Enabled: true}),
		event.WithKeyPrefix("order-confirmation"),
	))
	if cfg.Telemetry.MetricsEnabled {
		orderMetrics, err := telemetry.NewOrderMetrics(a.tel.Meter("storefront/orders"))
		if err != nil {
			return nil, err
		}
		a.bus.Subscribe(orderMetrics)
	}

	var jobs handler.JobTrigger
	if cfg.Scheduler.Enabled {
		a.trigger, err = scheduler.NewStorefrontTrigger(cfg.Scheduler, reportService, cartService, log)
		if err != nil {
			return nil, fmt.Errorf("scheduler: %w", err)
		}
		jobs = a.trigger
	}

	if cfg.Admin.Username != "" && cfg.Admin.Password != "" {
		created, err := authService.EnsureStaffUser(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			log.Info("Created staff user", zap.String("username", cfg.Admin.Username))
		}
	}

	checks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}

	a.handlers = router.Handlers{
		System:        handler.NewSystemHandler(version, checks),
		Auth:          handler.NewAuthHandler(authService),
		Product:       handler.NewProductHandler(productService, cfg.App.BaseURL),
		ProductImport: handler.NewProductImportHandler(importService),
		Image:         handler.NewImageHandler(imageService),
		Review:        handler.NewReviewHandler(reviewService),
		Collection:    handler.NewCollectionHandler(collectionService),
		Promotion:     handler.NewPromotionHandler(promotionService),
		Cart:          handler.NewCartHandler(cartService),
		Order:         handler.NewOrderHandler(orderService),
		Customer:      handler.NewCustomerHandler(customerService),
		Tag:           handler.NewTagHandler(tagService),
		Report:        handler.NewReportHandler(reportService, jobs),
		Outbox:        handler.NewOutboxHandler(outboxService),
	}
	return a, nil
}

func (a *app) objectStorage(ctx context.Context) (catalogapp.ObjectStorage, error) {
	if !a.cfg.Storage.Enabled {
		a.log.Info("Object storage disabled, image URLs are placeholders")
		return storage.NewStubObjectStorage(), nil
	}
	s3, err := storage.NewS3ObjectStorage(&a.cfg.Storage,
		storage.WithLogger(a.log),
		storage.WithPresignExpiration(a.cfg.Storage.PresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	if a.cfg.Storage.CreateBucket {
		ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := s3.EnsureBucket(ensureCtx); err != nil {
			return nil, fmt.Errorf("object storage: %w", err)
		}
	}
	a.log.Info("Object storage ready", zap.String("bucket", s3.Bucket()))
	return s3, nil
}

// invoiceRenderer renders HTML invoices, adding PDF output when Chrome is enabled
func (a *app) invoiceRenderer() (*printing.InvoiceRenderer, error) {
	var pdf printing.PDFRenderer
	if a.cfg.Printing.PDFEnabled {
		r, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: a.cfg.Printing.PDFTimeout,
			ExecPath:       a.cfg.Printing.ChromePath,
			NoSandbox:      true,
			Logger:         a.log,
		})
		if err != nil {
			return nil, fmt.Errorf("pdf renderer: %w", err)
		}
		a.pdf = r
		pdf = r
	}
	return printing.NewInvoiceRenderer(a.cfg.Printing.CompanyName, pdf, a.log), nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// start launches the event bus, outbox processor, scheduler and cache listener
func (a *app) start(ctx context.Context) error {
	if err := a.bus.Start(ctx); err != nil {
		return err
	}
	if a.cfg.Event.ProcessorEnabled {
		if err := a.processor.Start(ctx); err != nil {
			return fmt.Errorf("outbox processor: %w", err)
		}
	}
	if a.trigger != nil {
		if err := a.trigger.Start(ctx); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
	}
	if tiered, ok := a.productStore.(*cache.TieredCache); ok {
		go func() {
			if err := tiered.Listen(ctx); err != nil && ctx.Err() == nil {
				a.log.Warn("Cache invalidation listener stopped", zap.Error(err))
			}
		}()
	}
	return nil
}

// shutdown stops background work in reverse dependency order
func (a *app) shutdown(ctx context.Context) {
	if a.trigger != nil {
		if err := a.trigger.Stop(ctx); err != nil {
			a.log.Warn("Scheduler shutdown incomplete", zap.Error(err))
		}
	}
	if a.cfg.Event.ProcessorEnabled {
		if err := a.processor.Stop(ctx); err != nil {
			a.log.Warn("Outbox processor shutdown incomplete", zap.Error(err))
		}
	}
	_ = a.bus.Stop(ctx)

	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if a.authRateLimiter != nil {
		a.authRateLimiter.Stop()
	}
	if a.pdf != nil {
		_ = a.pdf.Close()
	}
	if a.productStore != nil {
		_ = a.productStore.Close()
	}
	_ = a.idempotency.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Error closing redis", zap.Error(err))
		}
	}
}

// globalMiddleware is the engine-wide chain, outermost first
func (a *app) globalMiddleware(cfg *config.Config, log *zap.Logger) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled),
		logger.GinMiddleware(log, "/health"),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "ETag", "Server-Timing"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	}

	if cfg.HTTP.RateLimitEnabled {
		a.rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		chain = append(chain, middleware.RateLimit(a.rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	if cfg.HTTP.ServerTimingEnabled {
		chain = append(chain, middleware.ServerTiming())
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled {
		chain = append(chain, middleware.HTTPMetrics(a.tel.Meter("storefront/http")))
	}
	if cfg.Telemetry.Enabled {
		chain = append(chain, middleware.SpanEnricher())
	}
	if cfg.Telemetry.ProfilingEnabled {
		profiling := middleware.DefaultProfilingConfig()
		profiling.Enabled = true
		chain = append(chain, middleware.Profiling(profiling))
	}
	return chain
}

func (a *app) jwtConfig() middleware.JWTMiddlewareConfig {
	return middleware.JWTMiddlewareConfig{
		JWTService:     a.jwtService,
		TokenBlacklist: a.blacklist,
		Logger:         a.log,
	}
}

func (a *app) swaggerProtection(cfg *config.Config) gin.HandlerFunc {
	return middleware.SwaggerProtection(cfg.Swagger, middleware.JWTAuthMiddlewareWithConfig(a.jwtConfig()))
}

// routes registers the API. Every request is authenticated when it carries
// a valid token; the guards decide per route whether that is required.
func (a *app) routes(engine *gin.Engine) *router.Router {
	guards := router.Guards{
		User:  middleware.RequireAuth(),
		Admin: middleware.RequireAdmin(),
	}
	if a.cfg.HTTP.AuthRateLimitEnabled {
		a.authRateLimiter = middleware.NewRateLimiter(a.cfg.HTTP.AuthRateLimitRequests, a.cfg.HTTP.AuthRateLimitWindow)
		guards.AuthLimit = middleware.AuthRateLimit(a.authRateLimiter)
	}

	r := router.NewRouter(engine).
		Use(middleware.OptionalJWTAuthMiddlewareWithConfig(a.jwtConfig()))
	return router.RegisterStorefront(r, a.handlers, guards)
}

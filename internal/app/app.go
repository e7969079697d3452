package app

import (
	"net/http"

	"veloce-backend/internal/auth"
	"veloce-backend/internal/catalog"
	"veloce-backend/internal/config"
	"veloce-backend/internal/constants"
	"veloce-backend/internal/database"
	"veloce-backend/internal/health"
	"veloce-backend/internal/middleware"
	"veloce-backend/internal/payments"
	"veloce-backend/internal/pricing"
	"veloce-backend/internal/search"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormPinger struct{ db *gorm.DB }

func (g gormPinger) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route registration.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Stripe webhook — mounted before session so the raw body survives for
	// signature verification. DB is wired in after database init below.
	stripeWebhook := &payments.WebhookHandler{WebhookSecret: cfg.StripeWebhookSecret}
	app.Post("/api/v1/stripe/webhook", func(c *fiber.Ctx) error {
		return stripeWebhook.HandleWebhook(c)
	})

	// Session (Redis); need the Redis client for the health marker too
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	// Health request marker (after session)
	app.Use(middleware.HealthMarker(rdb))

	// Tracing + route logger
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	// Anonymous search session cookie (browsing is public)
	app.Use(middleware.SearchCookie())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
		stripeWebhook.DB = db
	}

	// --- Health (no auth) ---
	var pinger health.DBPinger
	if db != nil {
		pinger = gormPinger{db: db}
	}
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		DB:             pinger,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/reset", healthHandlers.Reset)

	// --- Auth (no auth middleware): POST login, GET me, DELETE logout ---
	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// --- Pricing tools (public; the listing form calls these pre-auth) ---
	tiers := pricing.DefaultTierTable()
	if cfg.FeeTierJSON != "" {
		parsed, errTiers := pricing.ParseTierTable(cfg.FeeTierJSON)
		if errTiers != nil {
			return nil, nil, nil, errTiers
		}
		tiers = parsed
	}
	calculator := pricing.NewCalculator(tiers)
	pricingHandlers := &pricing.Handlers{
		Calculator:      calculator,
		DefaultVatRate:  cfg.DefaultVatRate,
		DefaultCurrency: cfg.DefaultCurrency,
	}
	pricingGroup := app.Group("/api/v1/pricing")
	pricingGroup.Post("/normalize-price", pricingHandlers.NormalizePrice)
	pricingGroup.Post("/calculate-fee", pricingHandlers.CalculateFee)
	pricingGroup.Get("/get-fee-models", pricingHandlers.GetFeeModels)

	// --- Modules that need the database ---
	if db != nil {
		catalogService := &catalog.Service{DB: db}

		// Search module (public; per-visitor session keyed by cookie)
		searchStore := search.NewStore(catalogService, search.NewCatalogCache(cfg.CatalogCacheTTL))
		searchHandlers := &search.Handlers{Store: searchStore}
		searchGroup := app.Group("/api/v1/search")
		searchGroup.Get("/get-results", searchHandlers.GetResults)
		searchGroup.Get("/get-facets", searchHandlers.GetFacets)
		searchGroup.Post("/set-filters", searchHandlers.SetFilters)
		searchGroup.Post("/set-query", searchHandlers.SetQuery)
		searchGroup.Post("/set-page", searchHandlers.SetPage)
		searchGroup.Post("/set-page-size", searchHandlers.SetPageSize)
		searchGroup.Post("/clear-filters", searchHandlers.ClearFilters)

		// Catalog module (auth required)
		catalogHandlers := &catalog.Handlers{Service: catalogService}
		carGroup := app.Group("/api/v1/cars", middleware.RequireAuth())
		carGroup.Post("/create-car", middleware.AuthorizePermission(constants.CreateCar), catalogHandlers.CreateCar)
		carGroup.Get("/get-my-cars", catalogHandlers.GetMyCars)
		carGroup.Get("/get-car/:car_id", catalogHandlers.GetCarByID)
		carGroup.Put("/edit-car", middleware.AuthorizePermission(constants.EditCar), catalogHandlers.EditCar)
		carGroup.Post("/publish-car", middleware.AuthorizePermission(constants.PublishCar), catalogHandlers.PublishCar)
		carGroup.Post("/mark-sold", middleware.AuthorizePermission(constants.MarkSold), catalogHandlers.MarkSold)
		carGroup.Post("/waive-fee", middleware.AuthorizePermission(constants.WaiveFee), catalogHandlers.WaiveFee)
		carGroup.Get("/get-car-events/:car_id", catalogHandlers.GetCarEvents)

		// Payments module (auth required)
		paymentHandlers := &payments.Handlers{
			Catalog:       catalogService,
			Calculator:    calculator,
			StripeCreator: &payments.RealStripeCreator{SecretKey: cfg.StripeSecretKey},
			DefaultVat:    cfg.DefaultVatRate,
		}
		paymentGroup := app.Group("/api/v1/payments", middleware.RequireAuth())
		paymentGroup.Post("/create-fee-intent", paymentHandlers.CreateFeeIntent)
	}

	return app, db, rdb, nil
}

// Handler returns the Fiber app as a net/http handler.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}

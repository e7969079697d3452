package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	StripeSecretKey     string
	StripeWebhookSecret string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string

	// Pricing defaults for the storefront region.
	DefaultVatRate  float64
	DefaultCurrency string
	// FeeTierJSON overrides the shipped fee tier table (JSON array).
	FeeTierJSON string
	// CatalogCacheTTL bounds how long a fetched catalog stays fresh.
	CatalogCacheTTL time.Duration
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	vatRate := viper.GetFloat64("DEFAULT_VAT_RATE")
	if vatRate == 0 && !viper.IsSet("DEFAULT_VAT_RATE") {
		vatRate = 19 // storefront's home-market VAT
	}
	currency := viper.GetString("DEFAULT_CURRENCY")
	if currency == "" {
		currency = "EUR"
	}
	cacheTTL := time.Duration(viper.GetInt("CATALOG_CACHE_TTL_SECONDS")) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		StripeSecretKey:     viper.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: viper.GetString("STRIPE_WEBHOOK_SECRET"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		DefaultVatRate:      vatRate,
		DefaultCurrency:     currency,
		FeeTierJSON:         viper.GetString("FEE_TIER_JSON"),
		CatalogCacheTTL:     cacheTTL,
	}, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Policy constants governing the payment core.
const (
	// AmountTolerance is the absolute difference (in PHP) under which a paid
	// amount is considered to match the expected amount. Absolute rather than
	// relative, to avoid floating rounding false negatives on small amounts.
	AmountTolerance = 0.01

	// SessionTimeout bounds the lifetime of a payment session.
	SessionTimeout = 15 * time.Minute

	// BookingPaymentWindow is how long after creation a booking stays payable.
	BookingPaymentWindow = 24 * time.Hour

	// DuplicateWindow is the interval within which an identical payment
	// attempt is treated as a resubmission.
	DuplicateWindow = 5 * time.Minute

	// MaxProofFileSize is the ceiling for proof-of-payment uploads.
	MaxProofFileSize = 5 << 20 // 5 MB

	// MinLegibleProofSize is the size below which a proof upload draws a
	// legibility warning.
	MinLegibleProofSize = 1 << 10 // 1 KB

	// DefaultMaxRetries and RetryBaseDelay seed the gateway retry policy.
	DefaultMaxRetries = 3
	RetryBaseDelay    = 500 * time.Millisecond
)

// Config holds all configuration values. It is constructed once by Load and
// injected wherever needed; nothing in this package mutates it afterwards.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	JWTSecret  string `mapstructure:"JWT_SECRET"`
	AdminToken string `mapstructure:"ADMIN_TOKEN"`

	// PublicBaseURL is where gateway redirects and webhooks land.
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`

	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	GCash    GCashConfig    `mapstructure:",squash"`
	Card     CardConfig     `mapstructure:",squash"`
	Checkout CheckoutConfig `mapstructure:",squash"`
}

// GCashConfig holds credentials for the redirect-wallet gateway.
type GCashConfig struct {
	BaseURL         string `mapstructure:"GCASH_BASE_URL"`
	SecretKey       string `mapstructure:"GCASH_SECRET_KEY"`
	MerchantAccount string `mapstructure:"GCASH_MERCHANT_ACCOUNT"`
}

// Valid reports whether every required GCash credential field is present.
func (c GCashConfig) Valid() bool {
	return c.BaseURL != "" && c.SecretKey != "" && c.MerchantAccount != ""
}

// CardConfig holds credentials for the card order-capture gateway.
type CardConfig struct {
	StripeKey string `mapstructure:"STRIPE_SECRET_KEY"`
}

// Valid reports whether the Stripe secret key is present.
func (c CardConfig) Valid() bool {
	return c.StripeKey != ""
}

// CheckoutConfig holds credentials for the webhook-driven hosted checkout
// gateway.
type CheckoutConfig struct {
	BaseURL       string `mapstructure:"CHECKOUT_BASE_URL"`
	APIKey        string `mapstructure:"CHECKOUT_API_KEY"`
	WebhookSecret string `mapstructure:"CHECKOUT_WEBHOOK_SECRET"`
}

// Valid reports whether every required checkout credential field is present.
func (c CheckoutConfig) Valid() bool {
	return c.BaseURL != "" && c.APIKey != "" && c.WebhookSecret != ""
}

// MethodConfigValid reports whether the named payment method is fully
// configured. Unknown methods are never valid.
func (c *Config) MethodConfigValid(method string) bool {
	switch method {
	case "gcash":
		return c.GCash.Valid()
	case "card":
		return c.Card.Valid()
	case "checkout":
		return c.Checkout.Valid()
	default:
		return false
	}
}

// Load reads config.yaml (current or ./config directory) with environment
// variable overrides and returns the resulting Config.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	// Set default values.
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "serbisyo")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("GCASH_BASE_URL", "")
	v.SetDefault("GCASH_SECRET_KEY", "")
	v.SetDefault("GCASH_MERCHANT_ACCOUNT", "")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("CHECKOUT_BASE_URL", "")
	v.SetDefault("CHECKOUT_API_KEY", "")
	v.SetDefault("CHECKOUT_WEBHOOK_SECRET", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_TOKEN", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file found; environment variables and defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

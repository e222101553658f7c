package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB (booking history).
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis configuration.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB  int    `mapstructure:"REDIS_SESSION_DB"`
	RedisPaymentDB  int    `mapstructure:"REDIS_PAYMENT_DB"`
	RedisDeliveryDB int    `mapstructure:"REDIS_DELIVERY_DB"`

	// Conversation behavior.
	SessionTTLMinutes  int `mapstructure:"SESSION_TTL_MINUTES"`
	BookingWindowDays  int `mapstructure:"BOOKING_WINDOW_DAYS"`
	MaxPassengers      int `mapstructure:"MAX_PASSENGERS"`
	MaxOffersShown     int `mapstructure:"MAX_OFFERS_SHOWN"`
	UpstreamTimeoutSec int `mapstructure:"UPSTREAM_TIMEOUT_SEC"`
	ThrottleSeconds    int `mapstructure:"THROTTLE_SECONDS"`

	// Stripe payment integration. PaymentLinkBase is the hosted checkout
	// page that collects the card against the created intent.
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	PaymentLinkBase     string `mapstructure:"PAYMENT_LINK_BASE"`

	// Gemini intent classification (optional; keyword resolver used when empty).
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Amadeus flight search.
	AmadeusBaseURL   string `mapstructure:"AMADEUS_BASE_URL"`
	AmadeusAPIKey    string `mapstructure:"AMADEUS_API_KEY"`
	AmadeusAPISecret string `mapstructure:"AMADEUS_API_SECRET"`

	// Twilio WhatsApp delivery.
	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `mapstructure:"TWILIO_FROM_NUMBER"`

	// Cloudinary ticket artifact hosting.
	CloudinaryURL string `mapstructure:"CLOUDINARY_URL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_PAYMENT_DB", 1)
	viper.SetDefault("REDIS_DELIVERY_DB", 2)
	viper.SetDefault("SESSION_TTL_MINUTES", 60)
	viper.SetDefault("BOOKING_WINDOW_DAYS", 10)
	viper.SetDefault("MAX_PASSENGERS", 6)
	viper.SetDefault("MAX_OFFERS_SHOWN", 5)
	viper.SetDefault("UPSTREAM_TIMEOUT_SEC", 8)
	viper.SetDefault("THROTTLE_SECONDS", 2)
	viper.SetDefault("AMADEUS_BASE_URL", "https://test.api.amadeus.com")
	viper.SetDefault("PAYMENT_LINK_BASE", "https://checkout.tripbot.in/pay")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// SessionTTL returns the dormant-session expiry threshold.
func SessionTTL() time.Duration {
	return time.Duration(AppConfig.SessionTTLMinutes) * time.Minute
}

// UpstreamTimeout bounds offer and payment gateway calls.
func UpstreamTimeout() time.Duration {
	return time.Duration(AppConfig.UpstreamTimeoutSec) * time.Second
}

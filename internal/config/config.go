package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret   string   `mapstructure:"JWT_SECRET"`
	JWTTTLMin   int      `mapstructure:"JWT_TTL_MINUTES"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	// M-Pesa Daraja gateway settings.
	MpesaBaseURL        string `mapstructure:"MPESA_BASE_URL"`
	MpesaConsumerKey    string `mapstructure:"MPESA_CONSUMER_KEY"`
	MpesaConsumerSecret string `mapstructure:"MPESA_CONSUMER_SECRET"`
	MpesaShortcode      string `mapstructure:"MPESA_SHORTCODE"`
	MpesaPasskey        string `mapstructure:"MPESA_PASSKEY"`
	MpesaCallbackURL    string `mapstructure:"MPESA_CALLBACK_URL"`
	MpesaTimeoutSec     int    `mapstructure:"MPESA_TIMEOUT_SECONDS"`
	MpesaRetryAttempts  int    `mapstructure:"MPESA_RETRY_ATTEMPTS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("JWT_TTL_MINUTES", 60)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("MPESA_BASE_URL", "https://sandbox.safaricom.co.ke")
	v.SetDefault("MPESA_TIMEOUT_SECONDS", 10)
	v.SetDefault("MPESA_RETRY_ATTEMPTS", 0)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("JWT_TTL_MINUTES")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("MPESA_BASE_URL")
	v.BindEnv("MPESA_CONSUMER_KEY")
	v.BindEnv("MPESA_CONSUMER_SECRET")
	v.BindEnv("MPESA_SHORTCODE")
	v.BindEnv("MPESA_PASSKEY")
	v.BindEnv("MPESA_CALLBACK_URL")
	v.BindEnv("MPESA_TIMEOUT_SECONDS")
	v.BindEnv("MPESA_RETRY_ATTEMPTS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure JWT_SECRET for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MpesaTimeout returns the bounded timeout applied to outbound gateway calls.
func (c *Config) MpesaTimeout() time.Duration {
	if c.MpesaTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.MpesaTimeoutSec) * time.Second
}

// JWTTTL returns the access token lifetime.
func (c *Config) JWTTTL() time.Duration {
	if c.JWTTTLMin <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWTTTLMin) * time.Minute
}

// Validate checks that the configuration is safe to run. Outside development
// mode a JWT secret is required so real authentication is enforced. In
// production the full set of M-Pesa credentials must be present since payment
// collection cannot work without them.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q. Refusing to start without authentication configuration", c.Env)
	}
	if c.IsProduction() {
		if c.MpesaConsumerKey == "" || c.MpesaConsumerSecret == "" {
			return fmt.Errorf("MPESA_CONSUMER_KEY and MPESA_CONSUMER_SECRET are required in production")
		}
		if c.MpesaShortcode == "" || c.MpesaPasskey == "" {
			return fmt.Errorf("MPESA_SHORTCODE and MPESA_PASSKEY are required in production")
		}
		if c.MpesaCallbackURL == "" {
			return fmt.Errorf("MPESA_CALLBACK_URL is required in production")
		}
	}
	if c.MpesaRetryAttempts < 0 {
		return fmt.Errorf("MPESA_RETRY_ATTEMPTS must be >= 0, got %d", c.MpesaRetryAttempts)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"rentshare-backend/internal/pricing"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Email     EmailConfig     `yaml:"email"`
	Log       LogConfig       `yaml:"log"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Booking   BookingConfig   `yaml:"booking"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains the quote cache and rate limiter store settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// EmailConfig contains email delivery settings
type EmailConfig struct {
	Provider       string `yaml:"provider"` // "sendgrid" or "smtp"
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
	SMTPUser       string `yaml:"smtp_user"`
	SMTPPassword   string `yaml:"smtp_password"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// PricingConfig contains the platform rates. Keys missing from the file keep
// the values of DefaultPricing; an explicit 0 disables that fee.
type PricingConfig struct {
	ServiceFeeRate   float64 `yaml:"service_fee_rate"`
	CommissionRate   float64 `yaml:"commission_rate"`
	InsuranceRate    float64 `yaml:"insurance_rate"`
	PointValue       float64 `yaml:"point_value"`
	CreditCapPercent float64 `yaml:"credit_cap_percent"`
	// Loyalty points earned per currency unit of base price on a completed rental
	EarnPointsPerUnit float64 `yaml:"earn_points_per_unit"`
}

// BookingConfig contains booking lifecycle settings
type BookingConfig struct {
	TimeZone        string `yaml:"time_zone"` // IANA name used to interpret booking dates
	QuoteTTLMinutes int    `yaml:"quote_ttl_minutes"`
}

// RateLimitConfig contains request rate limits, in ulule/limiter format ("20-M")
type RateLimitConfig struct {
	Quotes string `yaml:"quotes"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SendPickupReminders  string `yaml:"send_pickup_reminders"`
	SendReturnReminders  string `yaml:"send_return_reminders"`
	ExpireUnpaidBookings string `yaml:"expire_unpaid_bookings"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a configuration from YAML content, applying environment
// overrides and defaults
func Parse(data []byte) (*Config, error) {
	cfg := Config{Pricing: DefaultPricing()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Email
	if val := os.Getenv("EMAIL_PROVIDER"); val != "" {
		c.Email.Provider = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.Email.SMTPHost = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Email.SMTPPort)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.Email.SMTPUser = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.Email.SMTPPassword = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Redis validation
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Email validation
	switch c.Email.Provider {
	case "", "sendgrid":
		c.Email.Provider = "sendgrid"
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid API key is required")
		}
	case "smtp":
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Email.SMTPPort)
		}
	default:
		return fmt.Errorf("unsupported email provider: %s", c.Email.Provider)
	}
	if c.Email.FromEmail == "" {
		return fmt.Errorf("email from address is required")
	}

	// Pricing validation
	if err := c.Pricing.validate(); err != nil {
		return err
	}

	// Booking defaults
	if c.Booking.TimeZone == "" {
		c.Booking.TimeZone = "UTC"
	}
	if _, err := time.LoadLocation(c.Booking.TimeZone); err != nil {
		return fmt.Errorf("invalid booking time zone %q: %w", c.Booking.TimeZone, err)
	}
	if c.Booking.QuoteTTLMinutes <= 0 {
		c.Booking.QuoteTTLMinutes = 15
	}

	// Rate limit defaults
	if c.RateLimit.Quotes == "" {
		c.RateLimit.Quotes = "30-M"
	}

	// Scheduler defaults
	if c.Scheduler.SendPickupReminders == "" {
		c.Scheduler.SendPickupReminders = "0 0 8 * * *" // 8 AM UTC
	}
	if c.Scheduler.SendReturnReminders == "" {
		c.Scheduler.SendReturnReminders = "0 0 9 * * *" // 9 AM UTC
	}
	if c.Scheduler.ExpireUnpaidBookings == "" {
		c.Scheduler.ExpireUnpaidBookings = "0 15 0 * * *" // 00:15 UTC
	}

	return nil
}

// DefaultPricing returns the standard marketplace rates with one loyalty
// point earned per currency unit.
func DefaultPricing() PricingConfig {
	r := pricing.DefaultRates()
	return PricingConfig{
		ServiceFeeRate:    r.ServiceFeeRate,
		CommissionRate:    r.CommissionRate,
		InsuranceRate:     r.InsuranceRate,
		PointValue:        r.PointValue,
		CreditCapPercent:  r.CreditCapPercent,
		EarnPointsPerUnit: 1,
	}
}

func (p *PricingConfig) validate() error {
	rates := []struct {
		name  string
		value float64
	}{
		{"service fee rate", p.ServiceFeeRate},
		{"commission rate", p.CommissionRate},
		{"insurance rate", p.InsuranceRate},
		{"point value", p.PointValue},
		{"credit cap percent", p.CreditCapPercent},
		{"earn points per unit", p.EarnPointsPerUnit},
	}
	for _, r := range rates {
		if r.value < 0 {
			return fmt.Errorf("%s must not be negative: %v", r.name, r.value)
		}
	}
	if p.PointValue == 0 {
		return fmt.Errorf("point value must be positive")
	}
	if p.CommissionRate > 1 {
		return fmt.Errorf("commission rate must be at most 1: %v", p.CommissionRate)
	}
	if p.CreditCapPercent > 1 {
		return fmt.Errorf("credit cap percent must be at most 1: %v", p.CreditCapPercent)
	}
	return nil
}

// Rates converts the pricing section into engine rates
func (p PricingConfig) Rates() pricing.Rates {
	return pricing.Rates{
		ServiceFeeRate:   p.ServiceFeeRate,
		CommissionRate:   p.CommissionRate,
		InsuranceRate:    p.InsuranceRate,
		PointValue:       p.PointValue,
		CreditCapPercent: p.CreditCapPercent,
	}
}

// Location returns the time zone booking dates are interpreted in
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Booking.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// QuoteTTL returns how long a quote stays bookable
func (c *Config) QuoteTTL() time.Duration {
	return time.Duration(c.Booking.QuoteTTLMinutes) * time.Minute
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

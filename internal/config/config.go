package config

import (
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Store     StoreConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	POS       POSConfig
	Business  BusinessConfig
	License   LicenseConfig
	Printer   PrinterConfig
	Email     EmailConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

// StoreConfig selects the backing store: "postgres" or "memory"
type StoreConfig struct {
	Driver string
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// POSConfig holds the fiscal rates and terminal identity
type POSConfig struct {
	VATRate          decimal.Decimal
	OtherDiscountCap decimal.Decimal
	Timezone         string
	TerminalID       string
	IdempotencyTTL   time.Duration
}

// BusinessConfig is printed on every receipt and reading
type BusinessConfig struct {
	Name     string
	Address  string
	TIN      string
	MIN      string
	SerialNo string
	PermitNo string
	Operator string
}

type LicenseConfig struct {
	ExpiresAt string // YYYY-MM-DD, empty for no expiry
	WarnDays  int
}

type PrinterConfig struct {
	Type    string
	USBPath string
	Address string
	Width   int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	ZReportTo    []string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "fiscal-pos")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "fiscal_pos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Manila")
	viper.SetDefault("STORE_DRIVER", "postgres")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 72)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("POS_VAT_RATE", "0.12")
	viper.SetDefault("POS_OTHER_DISCOUNT_CAP", "500")
	viper.SetDefault("POS_TIMEZONE", "Asia/Manila")
	viper.SetDefault("POS_TERMINAL_ID", "POS-01")
	viper.SetDefault("POS_IDEMPOTENCY_TTL_HOURS", 24)
	viper.SetDefault("LICENSE_WARN_DAYS", 15)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_WIDTH", 42)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_FROM_NAME", "Fiscal POS")

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Store: StoreConfig{
			Driver: viper.GetString("STORE_DRIVER"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
		POS: POSConfig{
			VATRate:          decimalOr("POS_VAT_RATE", "0.12"),
			OtherDiscountCap: decimalOr("POS_OTHER_DISCOUNT_CAP", "500"),
			Timezone:         viper.GetString("POS_TIMEZONE"),
			TerminalID:       viper.GetString("POS_TERMINAL_ID"),
			IdempotencyTTL:   time.Duration(viper.GetInt("POS_IDEMPOTENCY_TTL_HOURS")) * time.Hour,
		},
		Business: BusinessConfig{
			Name:     viper.GetString("BUSINESS_NAME"),
			Address:  viper.GetString("BUSINESS_ADDRESS"),
			TIN:      viper.GetString("BUSINESS_TIN"),
			MIN:      viper.GetString("BUSINESS_MIN"),
			SerialNo: viper.GetString("BUSINESS_SERIAL_NO"),
			PermitNo: viper.GetString("BUSINESS_PERMIT_NO"),
			Operator: viper.GetString("BUSINESS_OPERATOR"),
		},
		License: LicenseConfig{
			ExpiresAt: viper.GetString("LICENSE_EXPIRES_AT"),
			WarnDays:  viper.GetInt("LICENSE_WARN_DAYS"),
		},
		Printer: PrinterConfig{
			Type:    viper.GetString("PRINTER_TYPE"),
			USBPath: viper.GetString("PRINTER_USB_PATH"),
			Address: viper.GetString("PRINTER_ADDRESS"),
			Width:   viper.GetInt("PRINTER_WIDTH"),
		},
		Email: EmailConfig{
			SMTPHost:     viper.GetString("SMTP_HOST"),
			SMTPPort:     viper.GetInt("SMTP_PORT"),
			SMTPUsername: viper.GetString("SMTP_USERNAME"),
			SMTPPassword: viper.GetString("SMTP_PASSWORD"),
			FromName:     viper.GetString("SMTP_FROM_NAME"),
			FromEmail:    viper.GetString("SMTP_FROM_EMAIL"),
			ZReportTo:    viper.GetStringSlice("Z_REPORT_RECIPIENTS"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// Location returns the business-day timezone, falling back to local time
func (c *POSConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: invalid POS_TIMEZONE %q, using local time: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

// Expiry parses the license expiry date in loc. Nil means no expiry.
func (c *LicenseConfig) Expiry(loc *time.Location) (*time.Time, error) {
	if c.ExpiresAt == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", c.ExpiresAt, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Enabled reports whether Z report mail can be sent
func (c *EmailConfig) Enabled() bool {
	return c.SMTPHost != "" && c.FromEmail != "" && len(c.ZReportTo) > 0
}

func decimalOr(key, fallback string) decimal.Decimal {
	d, err := decimal.NewFromString(viper.GetString(key))
	if err != nil {
		log.Printf("Warning: invalid %s, using %s: %v", key, fallback, err)
		return decimal.RequireFromString(fallback)
	}
	return d
}

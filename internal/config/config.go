package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	ListenAddr  string
	SiteURL     string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	Stripe StripeConfig
	Email  EmailConfig

	// Tax rates applied per line item at order creation, as percentages
	// of the line subtotal.
	TaxPercent float64
	VatPercent float64

	// ReceiptDir is where generated receipt PDFs are written. The stored
	// receipt reference is ReceiptBasePath + "/" + file name.
	ReceiptDir      string
	ReceiptBasePath string

	// OperatorEmail receives a copy of every order notification.
	OperatorEmail string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "storefront"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		ListenAddr:  getenv("LISTEN_ADDR", ":8080"),
		SiteURL:     strings.TrimRight(getenv("SITE_URL", "http://localhost:8080"), "/"),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "storefront"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),

		Stripe: StripeConfig{
			SecretKey:     strings.TrimSpace(getenv("STRIPE_SECRET_KEY", "")),
			WebhookSecret: strings.TrimSpace(getenv("STRIPE_WEBHOOK_SECRET", "")),
		},
		Email: EmailConfig{
			SMTPHost:     getenv("EMAIL_SMTP_SERVER", "localhost"),
			SMTPPort:     getenvInt("EMAIL_SMTP_PORT", 587),
			SMTPUsername: getenv("EMAIL_SMTP_USERNAME", ""),
			SMTPPassword: getenv("EMAIL_SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("EMAIL_FROM_ADDRESS", "orders@brisbanesurgical.com.au"),
		},

		TaxPercent: getenvFloat("ORDER_TAX_PERCENT", 0),
		VatPercent: getenvFloat("ORDER_VAT_PERCENT", 0),

		ReceiptDir:      getenv("RECEIPT_DIR", "public/receipts"),
		ReceiptBasePath: getenv("RECEIPT_BASE_PATH", "/receipts"),

		OperatorEmail: strings.TrimSpace(getenv("OPERATOR_EMAIL", "")),
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process level configuration. One struct keeps main lean.
type Server struct {
	Addr string

	// Collaborator endpoints.
	RateSourceURL  string
	RateProvider   string
	VATRegistryURL string
	GatewayURL     string

	// Persistence.
	PostgresDSN string
	Redis       RedisConfig

	// Audit publishing.
	KafkaBrokers []string
	AuditTopic   string

	// Report API auth.
	JWTSigningKey      string
	ReportClientID     string
	ReportClientSecret string

	// SettlementCurrency is the currency every payment settles in.
	SettlementCurrency string
}

// RedisConfig controls the optional shared cache backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Cache TTLs. Exchange rates move intraday; validation and screening
// results are stable for a day.
var (
	RateCacheTTL       = 5 * time.Minute
	VATValidationTTL   = 24 * time.Hour
	KYCResultTTL       = 24 * time.Hour
	SanctionsResultTTL = 24 * time.Hour
)

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:               envOr("CROSSPAY_ADDR", ":8080"),
		RateSourceURL:      envOr("RATE_SOURCE_URL", "http://localhost:9101"),
		RateProvider:       envOr("RATE_PROVIDER", "ecb"),
		VATRegistryURL:     envOr("VAT_REGISTRY_URL", "http://localhost:9102"),
		GatewayURL:         envOr("PAYMENT_GATEWAY_URL", "http://localhost:9103"),
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		AuditTopic:         envOr("AUDIT_TOPIC", "compliance.audit.v1"),
		SettlementCurrency: envOr("SETTLEMENT_CURRENCY", "EUR"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	cfg.JWTSigningKey = os.Getenv("JWT_SIGNING_KEY")
	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	cfg.ReportClientID = envOr("REPORT_CLIENT_ID", "reporting-client")
	cfg.ReportClientSecret = os.Getenv("REPORT_CLIENT_SECRET")

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

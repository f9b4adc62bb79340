package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	pricingdomain "github.com/Apurer/freshcart-api/internal/domains/pricing/domain"
)

// Cart snapshot backends selectable through CART_SNAPSHOT_BACKEND.
const (
	SnapshotBackendMemory   = "memory"
	SnapshotBackendRedis    = "redis"
	SnapshotBackendPostgres = "postgres"
	SnapshotBackendMongo    = "mongo"
)

const (
	defaultMailerBaseURL = "https://api.resend.com"
	defaultStoreURL      = "https://freshcart.com"
	defaultMongoDatabase = "freshcart"
	defaultRedisAddr     = "localhost:6379"
)

// Config carries environment-driven settings for the API and worker processes.
type Config struct {
	Port                       string
	PostgresDSN                string
	TemporalAddress            string
	TemporalNamespace          string
	TemporalDisabled           bool
	SessionPurgeIntervalMinute int
	SessionTTL                 time.Duration

	CartSnapshotBackend string
	CartSnapshotTTL     time.Duration
	CartCacheSize       int
	CartIdleTTL         time.Duration
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	MongoURI            string
	MongoDatabase       string

	OrdersAtomicWrites bool

	PricingCurrency string
	PricingLocale   string

	MailerBaseURL string
	MailerAPIKey  string
	MailerFrom    string
	StoreURL      string

	CORSAllowedOrigins []string

	AdminEmail    string
	AdminPassword string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                envDefault("PORT", "8080"),
		PostgresDSN:         strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:     envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:   envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:    isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		CartSnapshotBackend: strings.ToLower(envDefault("CART_SNAPSHOT_BACKEND", SnapshotBackendMemory)),
		RedisAddr:           envDefault("REDIS_ADDR", defaultRedisAddr),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		MongoURI:            strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDatabase:       envDefault("MONGO_DATABASE", defaultMongoDatabase),
		OrdersAtomicWrites:  true,
		PricingCurrency:     strings.ToUpper(envDefault("PRICING_CURRENCY", pricingdomain.DefaultCurrency)),
		PricingLocale:       envDefault("PRICING_LOCALE", pricingdomain.DefaultLocale),
		MailerBaseURL:       envDefault("MAILER_BASE_URL", defaultMailerBaseURL),
		MailerAPIKey:        strings.TrimSpace(os.Getenv("MAILER_API_KEY")),
		MailerFrom:          strings.TrimSpace(os.Getenv("MAILER_FROM")),
		StoreURL:            envDefault("STORE_URL", defaultStoreURL),
		CORSAllowedOrigins:  splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		AdminEmail:          strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	if cfg.SessionPurgeIntervalMinute, err = positiveInt("SESSION_PURGE_INTERVAL_MINUTES"); err != nil {
		return Config{}, err
	}
	hours, err := positiveInt("SESSION_TTL_HOURS")
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = time.Duration(hours) * time.Hour
	if hours, err = positiveInt("CART_SNAPSHOT_TTL_HOURS"); err != nil {
		return Config{}, err
	}
	cfg.CartSnapshotTTL = time.Duration(hours) * time.Hour
	if cfg.CartCacheSize, err = positiveInt("CART_CACHE_SIZE"); err != nil {
		return Config{}, err
	}
	minutes, err := positiveInt("CART_IDLE_MINUTES")
	if err != nil {
		return Config{}, err
	}
	cfg.CartIdleTTL = time.Duration(minutes) * time.Minute

	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return Config{}, fmt.Errorf("REDIS_DB must be a non-negative integer")
		}
		cfg.RedisDB = db
	}
	if raw := strings.TrimSpace(os.Getenv("ORDERS_ATOMIC_WRITES")); raw != "" {
		cfg.OrdersAtomicWrites = isTruthy(raw)
	}

	switch cfg.CartSnapshotBackend {
	case SnapshotBackendMemory, SnapshotBackendRedis, SnapshotBackendPostgres:
	case SnapshotBackendMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when CART_SNAPSHOT_BACKEND=mongo")
		}
	default:
		return Config{}, fmt.Errorf("CART_SNAPSHOT_BACKEND must be one of memory, redis, postgres, mongo; got %q", cfg.CartSnapshotBackend)
	}
	if _, err := pricingdomain.NewFormatter(cfg.PricingCurrency, cfg.PricingLocale); err != nil {
		return Config{}, fmt.Errorf("invalid PRICING_CURRENCY/PRICING_LOCALE: %w", err)
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return cfg, nil
}

// SeedAdmin reports whether an admin account should be ensured at startup.
func (c Config) SeedAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// MailerEnabled reports whether confirmation emails go to the mail API rather than the log.
func (c Config) MailerEnabled() bool {
	return c.MailerAPIKey != ""
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

// positiveInt returns 0 when key is unset.
func positiveInt(key string) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

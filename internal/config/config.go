package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	HTTP struct {
		Addr       string
		CORSOrigin string
		AdminToken string
	}

	NATS struct {
		URL           string
		SubjectPrefix string
	}

	Geocode struct {
		URL       string
		UserAgent string
		Timeout   time.Duration
	}

	Payment struct {
		Price       int64
		Currency    string
		TokenSecret string
	}

	Match struct {
		ReferralsPerUnlock int64
		ReferralLinkBase   string
		AgeMin             int
		AgeMax             int
		BrowseTTL          time.Duration
	}
}

// New builds the config from the environment. A .env file in the working
// directory, if present, is loaded first without overriding real env vars.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "trio_connect")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	switch cfg.DB.Driver {
	case "sqlite":
		cfg.DB.DSN = getEnvDefault("SQLITE_PATH", "trio_connect.db")
	case "postgres":
		cfg.DB.DSN = os.Getenv("DATABASE_URL")
		if cfg.DB.DSN == "" {
			cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
			cfg.DB.Port = getEnvDefault("DB_PORT", "5432")
			cfg.DB.User = getEnvDefault("DB_USER", "postgres")
			cfg.DB.Password = getEnvDefault("DB_PASSWORD", "postgres")
			cfg.DB.Name = getEnvDefault("DB_NAME", "trio")

			cfg.DB.DSN = fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
			)
		}
	default:
		cfg.DB.DSN = os.Getenv("MYSQL_DSN")
		if cfg.DB.DSN == "" {
			cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
			cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
			cfg.DB.User = getEnvDefault("DB_USER", "root")
			cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
			cfg.DB.Name = getEnvDefault("DB_NAME", "trio")

			cfg.DB.DSN = fmt.Sprintf(
				"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
				cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
			)
		}
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// HTTP (payment webhook + admin)
	cfg.HTTP.Addr = getEnvDefault("HTTP_ADDR", ":8080")
	cfg.HTTP.CORSOrigin = getEnvDefault("CORS_ORIGIN", "http://localhost:4200")
	cfg.HTTP.AdminToken = os.Getenv("ADMIN_TOKEN")

	// NATS
	cfg.NATS.URL = getEnvDefault("NATS_URL", "nats://127.0.0.1:4222")
	cfg.NATS.SubjectPrefix = getEnvDefault("NATS_SUBJECT_PREFIX", "trio")

	// Geocoding
	cfg.Geocode.URL = getEnvDefault("GEOCODE_URL", "https://nominatim.openstreetmap.org/reverse")
	cfg.Geocode.UserAgent = getEnvDefault("GEOCODE_USER_AGENT", "trio-connect")
	cfg.Geocode.Timeout = getDurationDefault("GEOCODE_TIMEOUT", 10*time.Second)

	// Payments
	cfg.Payment.Price = getInt64Default("UNLOCK_PRICE", 7)
	cfg.Payment.Currency = getEnvDefault("UNLOCK_CURRENCY", "XTR")
	cfg.Payment.TokenSecret = getEnvDefault("PAYMENT_TOKEN_SECRET", "change-me")

	// Matching rules
	cfg.Match.ReferralsPerUnlock = getInt64Default("REFERRALS_PER_UNLOCK", 3)
	cfg.Match.ReferralLinkBase = getEnvDefault("REFERRAL_LINK_BASE", "https://t.me/TrioConnectBot?start=")
	cfg.Match.AgeMin = int(getInt64Default("AGE_MIN", 18))
	cfg.Match.AgeMax = int(getInt64Default("AGE_MAX", 99))
	cfg.Match.BrowseTTL = getDurationDefault("BROWSE_TTL", 6*time.Hour)

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt64Default(k string, def int64) int64 {
	if v, err := strconv.ParseInt(getEnvDefault(k, ""), 10, 64); err == nil {
		return v
	}
	return def
}

func getDurationDefault(k string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnvDefault(k, "")); err == nil {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

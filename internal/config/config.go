package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SSLMode    string
	MaxRetries int
}

type Config struct {
	Env                string
	Port               string
	Database           DatabaseConfig
	MigrationsPath     string
	RedisAddr          string
	KafkaBroker        string
	KafkaGroupID       string
	JWTSecret          string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	OutboxPollInterval time.Duration
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, so tests can supply their own environment.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	maxRetries, err := strconv.Atoi(get("DB_MAX_RETRIES", "5"))
	if err != nil || maxRetries < 1 {
		return Config{}, fmt.Errorf("invalid DB_MAX_RETRIES: %q", get("DB_MAX_RETRIES", ""))
	}
	rps, err := strconv.ParseFloat(get("RATE_LIMIT_RPS", "10"), 64)
	if err != nil || rps <= 0 {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS: %q", get("RATE_LIMIT_RPS", ""))
	}
	burst, err := strconv.Atoi(get("RATE_LIMIT_BURST", "20"))
	if err != nil || burst < 1 {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_BURST: %q", get("RATE_LIMIT_BURST", ""))
	}
	pollInterval, err := time.ParseDuration(get("OUTBOX_POLL_INTERVAL", "3s"))
	if err != nil || pollInterval <= 0 {
		return Config{}, fmt.Errorf("invalid OUTBOX_POLL_INTERVAL: %q", get("OUTBOX_POLL_INTERVAL", ""))
	}

	var origins []string
	for _, o := range strings.Split(get("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return Config{
		Env:  get("APP_ENV", "development"),
		Port: get("PORT", "3000"),
		Database: DatabaseConfig{
			Host:       get("DB_HOST", "localhost"),
			User:       get("DB_USER", "postgres"),
			Password:   get("DB_PASSWORD", ""),
			Name:       get("DB_NAME", "faculty_leave"),
			Port:       get("DB_PORT", "5432"),
			SSLMode:    get("DB_SSLMODE", "disable"),
			MaxRetries: maxRetries,
		},
		MigrationsPath:     get("MIGRATIONS_PATH", "migrations"),
		RedisAddr:          get("REDIS_ADDR", ""),
		KafkaBroker:        get("KAFKA_BROKER", ""),
		KafkaGroupID:       get("KAFKA_GROUP_ID", "faculty-leave-notifications"),
		JWTSecret:          get("JWT_SECRET", ""),
		CORSAllowedOrigins: origins,
		RateLimitRPS:       rps,
		RateLimitBurst:     burst,
		OutboxPollInterval: pollInterval,
	}, nil
}

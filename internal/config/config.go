package config

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// local addresses used when USE_EMULATOR is set
const (
	emulatorPostgresHost = "127.0.0.1"
	emulatorPostgresPort = "5432"
	emulatorRedisURL     = "redis://127.0.0.1:6379/0"
)

type Config struct {
	Env         string
	Port        int
	ServiceName string

	StoreDriver string
	UseEmulator bool
	DBURL       string
	RedisURL    string

	StrictValidation    bool
	MinPlayerAge        int
	NotifyRegistrations bool

	CORSAllowedOrigins []string
	TrustedProxies     []string
	MaxBodyBytes       int64
	RegisterRateLimit  int
	RegisterRateWindow time.Duration

	JWTSecret          string
	PlayersRequireAuth bool
	PlayersRoles       []string

	OTelEndpoint    string
	OTelSampleRatio float64

	RetentionInterval time.Duration
	WorkerHealthPort  int
}

// Load reads an optional .env file, then the process environment.
func Load() Config {
	// a missing .env is normal outside local dev
	_ = godotenv.Load()

	useEmulator := getEnvBool("USE_EMULATOR", false)

	return Config{
		Env:         getEnv("APP_ENV", "dev"),
		Port:        getEnvInt("PORT", 8080),
		ServiceName: getEnv("OTEL_SERVICE_NAME", "scouthub-api"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		UseEmulator: useEmulator,
		DBURL:       buildDBURL(useEmulator),
		RedisURL:    buildRedisURL(useEmulator),

		StrictValidation:    getEnvBool("STRICT_VALIDATION", false),
		MinPlayerAge:        getEnvInt("MIN_PLAYER_AGE", 0),
		NotifyRegistrations: getEnvBool("NOTIFY_REGISTRATIONS", true),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES", nil),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		RegisterRateLimit:  getEnvInt("REGISTER_RATE_LIMIT", 0),
		RegisterRateWindow: getEnvDuration("REGISTER_RATE_WINDOW", time.Minute),

		JWTSecret:          getEnv("JWT_SECRET", ""),
		PlayersRequireAuth: getEnvBool("PLAYERS_REQUIRE_AUTH", false),
		PlayersRoles:       getEnvList("PLAYERS_ROLE", []string{"scout"}),

		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelSampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1),

		RetentionInterval: getEnvDuration("RETENTION_INTERVAL", time.Hour),
		WorkerHealthPort:  getEnvInt("WORKER_HEALTH_PORT", 8081),
	}
}

// Validate reports configuration that cannot be served.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StorePostgres, StoreRedis:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.PlayersRequireAuth && c.JWTSecret == "" {
		return fmt.Errorf("PLAYERS_REQUIRE_AUTH needs JWT_SECRET")
	}

	if c.RegisterRateLimit < 0 {
		return fmt.Errorf("REGISTER_RATE_LIMIT must not be negative")
	}

	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", p)
			}
		}
	}

	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be within [0, 1], got %v", c.OTelSampleRatio)
	}

	return nil
}

func buildDBURL(useEmulator bool) string {
	if v := os.Getenv("DATABASE_URL"); v != "" && !useEmulator {
		return v
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "scouthub")
	pass := getEnv("DB_PASSWORD", "scouthub")
	name := getEnv("DB_NAME", "scouthub")
	ssl := getEnv("DB_SSLMODE", "disable")

	if useEmulator {
		host, port, ssl = emulatorPostgresHost, emulatorPostgresPort, "disable"
	}

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func buildRedisURL(useEmulator bool) string {
	if useEmulator {
		return emulatorRedisURL
	}

	return getEnv("REDIS_URL", "redis://127.0.0.1:6379/0")
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)

		if err != nil {
			return fallback
		}

		return f
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			return fallback
		}

		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil || d <= 0 {
			return fallback
		}

		return d
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return fallback
	}

	return out
}

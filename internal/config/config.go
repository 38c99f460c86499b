package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	HTTPAddr      string
	APIBaseURL    string
	APITimeout    time.Duration
	CacheTTL      time.Duration
	CacheSize     int
	OrdersDBPath  string
	RabbitURL     string
	EventExchange string
	CORSOrigins   []string
	SessionCookie string
	SessionTTL    time.Duration
	LogLevel      string
	ServiceEnv    string
}

const (
	ShutdownGrace = 10 * time.Second
)

// Load reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", f).Msg("config: .env not loaded")
		}
	}

	return Config{
		HTTPAddr:      getenv("STOREFRONT_HTTP_ADDR", ":8080"),
		APIBaseURL:    strings.TrimRight(getenv("BOOKSTORE_API_URL", "http://localhost:8081/api"), "/"),
		APITimeout:    getDuration("BOOKSTORE_API_TIMEOUT", 5*time.Second),
		CacheTTL:      getDuration("CATALOG_CACHE_TTL", 15*time.Second),
		CacheSize:     getInt("CATALOG_CACHE_SIZE", 256),
		OrdersDBPath:  getenv("ORDERS_DB_PATH", "./data/orders.db"),
		RabbitURL:     getenv("RABBITMQ_URL", ""),
		EventExchange: getenv("EVENTS_EXCHANGE", "storefront.events"),
		CORSOrigins:   splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		SessionCookie: getenv("SESSION_COOKIE", "sid"),
		SessionTTL:    getDuration("SESSION_TTL", 12*time.Hour),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		ServiceEnv:    getenv("SERVICE_ENV", "dev"),
	}
}

func (c Config) Production() bool { return c.ServiceEnv == "production" }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(getenv(key, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

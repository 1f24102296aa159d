package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// ContentFile is a YAML lesson catalogue imported at startup.
	ContentFile string

	AuthHMACSecret string
	CORSOrigins    []string

	RedisAddr     string // empty disables the progress cache
	RedisPassword string
	RedisDB       int
	RedisCacheTTL time.Duration

	AMQPURL      string // empty disables event publishing
	AMQPExchange string

	SiteID            string
	StoreTimeout      time.Duration
	HabitAutoRollover bool

	LogMode string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	defOrigins := "http://localhost:3000,http://localhost:5173"
	if mode == ModeOnline {
		defOrigins = ""
	}
	defLog := "development"
	if mode == ModeOnline {
		defLog = "production"
	}
	return Config{
		Mode:              mode,
		HTTPAddr:          envOr("HTTP_ADDR", ":8080"),
		DBDriver:          envOr("DB_DRIVER", "sqlite"),
		DBDSN:             envOr("DB_DSN", ""),
		ContentFile:       envOr("CONTENT_FILE", ""),
		AuthHMACSecret:    envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		CORSOrigins:       csvOr("CORS_ORIGINS", defOrigins),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           envInt("REDIS_DB", 0),
		RedisCacheTTL:     envDuration("REDIS_CACHE_TTL", 10*time.Minute),
		AMQPURL:           os.Getenv("AMQP_URL"),
		AMQPExchange:      envOr("AMQP_EXCHANGE", "progress.events"),
		SiteID:            envOr("SITE_ID", "local"),
		StoreTimeout:      envDuration("STORE_TIMEOUT", 5*time.Second),
		HabitAutoRollover: envBool("HABIT_AUTO_ROLLOVER", false),
		LogMode:           envOr("LOG_MODE", defLog),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "REDIS_ADDR", "AMQP_URL", "HABIT_AUTO_ROLLOVER", "STORE_TIMEOUT", "LOG_MODE", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Mode != ModeOffline || c.HTTPAddr != ":8080" || c.DBDriver != "sqlite" {
		t.Fatalf("defaults: %+v", c)
	}
	if c.HabitAutoRollover || c.StoreTimeout != 5*time.Second || c.AMQPExchange != "progress.events" {
		t.Fatalf("defaults: %+v", c)
	}
	if len(c.CORSOrigins) != 2 || c.LogMode != "development" {
		t.Fatalf("offline defaults: %+v", c)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, ,https://admin.example.com")
	t.Setenv("HABIT_AUTO_ROLLOVER", "true")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_CACHE_TTL", "-1s")
	t.Setenv("LOG_MODE", "")
	c := FromEnv()
	if c.Mode != ModeOnline || c.LogMode != "production" {
		t.Fatalf("mode: %+v", c)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://admin.example.com" {
		t.Fatalf("origins: %v", c.CORSOrigins)
	}
	if !c.HabitAutoRollover || c.StoreTimeout != 750*time.Millisecond || c.RedisDB != 3 {
		t.Fatalf("overrides: %+v", c)
	}
	if c.RedisCacheTTL != 10*time.Minute {
		t.Fatalf("invalid ttl should fall back: %v", c.RedisCacheTTL)
	}
}

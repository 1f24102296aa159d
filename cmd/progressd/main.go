package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	api "github.com/mind-engage/numerology-progress/internal/api/http"
	auth "github.com/mind-engage/numerology-progress/internal/auth/middleware"
	"github.com/mind-engage/numerology-progress/internal/config"
	"github.com/mind-engage/numerology-progress/internal/content"
	"github.com/mind-engage/numerology-progress/internal/db"
	"github.com/mind-engage/numerology-progress/internal/event"
	"github.com/mind-engage/numerology-progress/internal/logger"
	"github.com/mind-engage/numerology-progress/internal/progress"
	syncx "github.com/mind-engage/numerology-progress/internal/sync"
)

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()
	cfg := config.FromEnv()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", "driver", cfg.DBDriver, "error", err)
	}
	defer dbh.Close()

	// --- Content ---
	catalog := content.NewSQLCatalog(dbh)
	if cfg.ContentFile != "" {
		lessons, err := content.LoadFile(cfg.ContentFile)
		if err != nil {
			log.Fatal("content load failed", "file", cfg.ContentFile, "error", err)
		}
		for _, l := range lessons {
			if err := catalog.PutLesson(ctx, l); err != nil {
				log.Fatal("content import failed", "lesson_id", l.ID, "error", err)
			}
		}
		log.Info("content imported", "file", cfg.ContentFile, "lessons", len(lessons))
	}

	// --- Progress store (optionally cached) ---
	var store progress.Store = progress.NewSQLStore(dbh)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, serving without cache", "addr", cfg.RedisAddr, "error", err)
		} else {
			store = progress.NewCachedStore(store, rdb, cfg.RedisCacheTTL)
			log.Info("progress cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.RedisCacheTTL)
		}
	}

	// --- Events ---
	eventLog := syncx.NewEventRepo(dbh, cfg.SiteID)
	sinks := syncx.Fanout{eventLog}
	if cfg.AMQPURL != "" {
		pub, err := event.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn("amqp unavailable, events go to event_log only", "error", err)
		} else {
			defer pub.Close()
			sinks = append(sinks, pub)
		}
	}

	svc := progress.NewService(store, catalog, progress.Options{
		StoreTimeout:      cfg.StoreTimeout,
		HabitAutoRollover: cfg.HabitAutoRollover,
		Events:            sinks,
		Log:               log.With("component", "progress"),
	})

	// --- Router ---
	r := api.NewRouter(api.Deps{
		Progress: svc,
		Lessons:  catalog,
		Auth:     auth.NewAuthService(cfg.AuthHMACSecret),
		Events:   eventLog,
		Ready:    func(r *http.Request) error { return ping(r.Context(), dbh) },
	}, cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver, "habit_auto_rollover", cfg.HabitAutoRollover)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

func ping(ctx context.Context, dbh *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return dbh.PingContext(ctx)
}

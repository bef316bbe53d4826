package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarharytaFilipovych/store-application/internal/auth"
	"github.com/MarharytaFilipovych/store-application/internal/bootstrap"
	"github.com/MarharytaFilipovych/store-application/internal/cache"
	"github.com/MarharytaFilipovych/store-application/internal/cart"
	"github.com/MarharytaFilipovych/store-application/internal/catalog"
	"github.com/MarharytaFilipovych/store-application/internal/config"
	"github.com/MarharytaFilipovych/store-application/internal/events"
	storehttp "github.com/MarharytaFilipovych/store-application/internal/http"
	"github.com/MarharytaFilipovych/store-application/internal/order"
	"github.com/MarharytaFilipovych/store-application/internal/ratelimit"
	"github.com/MarharytaFilipovych/store-application/internal/session"
	"github.com/MarharytaFilipovych/store-application/internal/store"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	items, orders, users, codes, dbClose := buildStores(cfg)
	if dbClose != nil {
		defer dbClose()
	}

	var itemCache cache.ItemCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer client.Close()
		itemCache = cache.NewRedisCache(client)
		log.WithField("addr", cfg.RedisAddr).Info("item cache enabled")
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		log.WithField("topic", cfg.KafkaTopic).Info("order event publishing enabled")
	}
	defer publisher.Close()

	if cfg.SeedDemoData {
		if err := bootstrap.SeedItems(context.Background(), items); err != nil {
			log.WithError(err).Fatal("failed to seed catalog")
		}
	}

	engine := cart.NewEngine(items, itemCache, cart.Config{
		LegacyOverwriteOnAdd: cfg.CartLegacyOverwrite,
	})

	sessions := session.NewManager(engine, cfg.SessionTTL)
	defer sessions.Close()

	limiter := ratelimit.NewLimiter(ratelimit.Settings{
		MaxRequests:     cfg.RateLimit.MaxRequests,
		RefillPeriod:    cfg.RateLimit.RefillPeriod,
		CleanupInterval: cfg.RateLimit.CleanupInterval,
		Enabled:         cfg.RateLimit.Enabled,
		AuthPathPrefix:  cfg.RateLimit.AuthPathPrefix,
		ExcludedPaths:   cfg.RateLimit.ExcludedPaths,
	})
	defer limiter.Close()

	authService := auth.NewService(users, codes, sessions, cfg.ResetCodeTTL)
	catalogService := catalog.NewService(items, itemCache)
	orderService := order.NewService(orders, users, engine, publisher)

	router := storehttp.NewRouter(
		storehttp.NewAuthHandler(authService),
		storehttp.NewItemHandler(catalogService),
		storehttp.NewCartHandler(engine),
		storehttp.NewOrderHandler(orderService, engine),
		sessions,
		limiter,
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("store server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	log.Info("server exited")
}

// buildStores picks postgres when a host is configured, in-memory otherwise.
func buildStores(cfg *config.Config) (store.ItemStore, store.OrderStore, store.UserStore, store.ResetCodeStore, func()) {
	if cfg.PostgresHost == "" {
		log.Info("no postgres host configured, using in-memory stores")
		return store.NewMemoryItemStore(),
			store.NewMemoryOrderStore(),
			store.NewMemoryUserStore(),
			store.NewMemoryResetCodeStore(),
			nil
	}

	db, err := store.OpenPostgres(&store.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsDir,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	log.WithField("host", cfg.PostgresHost).Info("connected to postgres")

	// Reset codes are short-lived; they stay in memory even with postgres.
	return store.NewPostgresItemStore(db),
		store.NewPostgresOrderStore(db),
		store.NewPostgresUserStore(db),
		store.NewMemoryResetCodeStore(),
		func() { _ = db.Close() }
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	middleware "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/repo/gormrepo"
	"github.com/Skotchmaster/storefront/internal/repo/mongorepo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel, cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("store_init_failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var cartCache cache.CartCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		rc := cache.NewRedisCache(rdb, cfg.CartCacheTTL)
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		}
		cartCache = rc
	}

	var events service.EventPublisher = mykafka.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod := mykafka.NewProducer(cfg.KafkaBrokers)
		defer func() {
			if err := prod.Close(); err != nil {
				logger.Warn("kafka_close_failed", "error", err)
			}
		}()
		events = prod
	}

	products := &service.ProductService{Store: store, Events: events}
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(ctx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unavailable", "error", err)
		} else {
			products.Index = search.NewProductIndex(esClient, cfg.ESIndex)
		}
	}

	secret := []byte(cfg.JWTSecret)
	auth := &service.AuthService{Store: store, JWTSecret: secret, TokenTTL: cfg.JWTTTL}
	if err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Error("admin_seed_failed", "error", err)
		os.Exit(1)
	}

	e := httpserver.NewEcho(httpserver.Options{
		Logger:      logger,
		CSRFEnabled: cfg.CSRFEnabled,
		CSRF:        csrf.DefaultConfig(),
	})
	httpserver.Register(e, &httpserver.Deps{
		Store:    store,
		Auth:     middleware.NewAuthMiddleware(secret),
		Users:    &httpserver.AuthHTTP{Svc: auth},
		Category: &httpserver.CategoryHTTP{Svc: &service.CategoryService{Store: store}},
		Product:  &httpserver.ProductHTTP{Svc: products},
		Cart:     &httpserver.CartHTTP{Svc: service.NewCartService(store, cartCache)},
		Coupon:   &httpserver.CouponHTTP{Svc: &service.CouponService{Store: store}},
		Order:    &httpserver.OrderHTTP{Svc: &service.OrderService{Store: store, Cache: cartCache, Events: events}},
		Wishlist: &httpserver.WishlistHTTP{Svc: &service.WishlistService{Store: store}},
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server_started", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	logger.Info("shutdown_complete")
}

func openStore(ctx context.Context, cfg *config.Config) (repo.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		mdb, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mdb.Client().Disconnect(c)
		}
		store := mongorepo.New(mdb)
		if err := store.CreateIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return store, closeFn, nil
	default:
		gdb, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		if err := gormrepo.Migrate(gdb); err != nil {
			closeFn()
			return nil, nil, err
		}
		return &gormrepo.GormRepo{DB: gdb}, closeFn, nil
	}
}

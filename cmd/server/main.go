package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"pricelens/internal/cache"
	"pricelens/internal/config"
	"pricelens/internal/logger"
	"pricelens/internal/scoring"
	"pricelens/internal/service"
	"pricelens/internal/transport/rest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("error").Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("starting pricelens",
		"port", cfg.HTTPPort,
		"cache_ttl", cfg.CacheTTL,
		"ai_enabled", cfg.AI.IsEnabled(),
	)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	// An unreachable redis degrades the cache to pass-through, it is never
	// fatal.
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, caching disabled", "addr", cfg.RedisAddr, "error", err)
	}
	cancel()

	productCache := cache.NewProductCache(rdb, log)

	httpClient := &http.Client{Timeout: cfg.SourceTimeout}
	sources := []service.SourceClient{
		service.NewAmazonClient(cfg.RapidAPIKey, cfg.AmazonHost, httpClient, log),
		service.NewEbayClient(cfg.RapidAPIKey, cfg.EbayHost, httpClient, log),
		service.NewWalmartClient(cfg.RapidAPIKey, cfg.WalmartHost, httpClient, log),
	}

	sentimentSvc := service.NewSentimentService(cfg.AI, log)
	scorer := scoring.NewEngine(cfg.Weights.Price, cfg.Weights.Review, cfg.Weights.Quality)
	compareSvc := service.NewCompareService(sources, sentimentSvc, productCache, scorer, cfg.CacheTTL, log)

	router := rest.NewRouter(&rest.Container{
		CompareService: compareSvc,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * cfg.SourceTimeout,
	}

	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

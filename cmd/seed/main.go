// Command seed pre-warms the comparison cache for a list of queries so the
// first user request after a deploy is served hot.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"pricelens/internal/cache"
	"pricelens/internal/config"
	"pricelens/internal/logger"
	"pricelens/internal/model"
	"pricelens/internal/scoring"
	"pricelens/internal/service"
)

func main() {
	queries := flag.String("queries", "wireless headphones,laptop stand", "comma-separated queries to warm")
	limit := flag.Int("limit", 5, "products per comparison")
	flush := flag.Bool("flush", false, "clear cached results before warming")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New("error").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *flush {
		for _, ns := range []string{"search", "compare"} {
			n := productCache.ClearPrefix(ctx, ns)
			log.Info("cleared cache namespace", "namespace", ns, "keys", n)
		}
	}

	for _, query := range strings.Split(*queries, ",") {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}

		resp, err := compareSvc.Compare(ctx, query, model.AllSources, *limit)
		if err != nil {
			log.Error("warm failed", "query", query, "error", err)
			continue
		}
		log.Info("warmed", "query", query, "products", len(resp.Products), "cached", resp.Cached)
	}
}

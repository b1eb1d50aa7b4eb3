package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pricelens/internal/cache"
	"pricelens/internal/logger"
	"pricelens/internal/model"
	"pricelens/internal/scoring"
)

// Cache namespaces.
const (
	nsSearch  = "search"
	nsCompare = "compare"
)

// Review fetch depth per product during enrichment.
const reviewLimit = 10

// ErrNoProducts is the terminal not-found condition: no source and no
// synthetic fallback produced a single candidate.
var ErrNoProducts = errors.New("no products found for the given query")

// CompareService orchestrates the aggregation pipeline: cache lookup,
// concurrent multi-source search, per-product enrichment, scoring,
// recommendation synthesis and cache store.
type CompareService struct {
	sources   []SourceClient
	sentiment SentimentProvider
	cache     cache.ProductCache
	scorer    *scoring.Engine
	cacheTTL  time.Duration
	log       *logger.Logger
}

// NewCompareService creates the pipeline over explicitly injected
// collaborators.
func NewCompareService(
	sources []SourceClient,
	sentiment SentimentProvider,
	productCache cache.ProductCache,
	scorer *scoring.Engine,
	cacheTTL time.Duration,
	log *logger.Logger,
) *CompareService {
	return &CompareService{
		sources:   sources,
		sentiment: sentiment,
		cache:     productCache,
		scorer:    scorer,
		cacheTTL:  cacheTTL,
		log:       log,
	}
}

// SearchParams are the normalized request parameters for a search.
type SearchParams struct {
	Query    string
	Sources  []model.Source
	MinPrice *float64
	MaxPrice *float64
	Limit    int
}

// cacheKey derives a deterministic key from the normalized parameters. The
// source set is sorted so the same request always hashes identically.
func (p SearchParams) cacheKey() string {
	names := make([]string, 0, len(p.Sources))
	for _, s := range p.Sources {
		names = append(names, string(s))
	}
	sort.Strings(names)

	raw := fmt.Sprintf("%s:%s:%s:%s:%d",
		p.Query, strings.Join(names, ","), formatBound(p.MinPrice), formatBound(p.MaxPrice), p.Limit)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

// Search fans out to the requested sources, filters by price bounds and
// sorts by a relevance heuristic. Results are cached for the configured TTL.
func (s *CompareService) Search(ctx context.Context, params SearchParams) (*model.SearchResponse, error) {
	key := params.cacheKey()

	var cached model.SearchResponse
	if s.cache.Get(ctx, nsSearch, key, &cached) {
		cached.Cached = true
		return &cached, nil
	}

	products := s.searchAll(ctx, params.Query, params.Sources, params.Limit)

	filtered := products[:0]
	for _, p := range products {
		if params.MinPrice != nil && p.Price < *params.MinPrice {
			continue
		}
		if params.MaxPrice != nil && p.Price > *params.MaxPrice {
			continue
		}
		filtered = append(filtered, p)
	}

	// Relevance: rating weighted by review volume.
	sort.SliceStable(filtered, func(i, j int) bool {
		return relevance(filtered[i]) > relevance(filtered[j])
	})

	resp := &model.SearchResponse{
		Query:        params.Query,
		TotalResults: len(filtered),
		Products:     filtered,
	}

	s.cache.Set(ctx, nsSearch, key, resp, s.cacheTTL)
	return resp, nil
}

func relevance(p model.Product) float64 {
	rating := 0.0
	if p.Rating != nil {
		rating = *p.Rating
	}
	reviews := 0.0
	if p.ReviewCount != nil {
		reviews = float64(*p.ReviewCount)
	}
	return rating * (1 + reviews/1000)
}

// Compare runs the full pipeline: search, enrich, score, recommend. A cache
// hit short-circuits with the stored result untouched. When every source
// fails or returns nothing, the pipeline degrades to the synthetic catalog
// rather than surfacing infrastructure errors.
func (s *CompareService) Compare(ctx context.Context, query string, sources []model.Source, limit int) (*model.CompareResponse, error) {
	params := SearchParams{Query: query, Sources: sources, Limit: limit}
	key := params.cacheKey()

	var cached model.CompareResponse
	if s.cache.Get(ctx, nsCompare, key, &cached) {
		cached.Cached = true
		return &cached, nil
	}

	products := s.searchAll(ctx, query, sources, limit)

	synthetic := false
	if len(products) == 0 {
		s.log.Warn("all sources empty, using synthetic catalog", "query", query)
		products = SyntheticProducts(query, sources, limit)
		synthetic = true
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}

	if len(products) > limit {
		products = products[:limit]
	}

	reviewsByID, sentimentByID, qualityByID := s.enrich(ctx, products, synthetic)

	scored := s.scorer.ScoreProducts(products, reviewsByID, sentimentByID, qualityByID)
	bestValue, bestPrice, bestQuality := s.scorer.BestProducts(scored)

	top := scored
	if len(top) > 5 {
		top = top[:5]
	}
	recommendation, err := s.sentiment.GenerateRecommendation(ctx, top)
	if err != nil {
		if bestValue != nil {
			recommendation = fmt.Sprintf("Based on our analysis, '%s' offers the best overall value.", bestValue.Title)
		} else {
			recommendation = "Unable to generate recommendation."
		}
	}

	resp := &model.CompareResponse{
		Products:       scored,
		BestValue:      bestValue,
		BestPrice:      bestPrice,
		BestQuality:    bestQuality,
		Recommendation: recommendation,
	}

	s.cache.Set(ctx, nsCompare, key, resp, s.cacheTTL)
	return resp, nil
}

// sourceResult carries one source's outcome across the fan-in barrier.
// Failures travel as values so a failing source never cancels its siblings.
type sourceResult struct {
	source   model.Source
	products []model.Product
	err      error
}

// searchAll issues one concurrent search per requested source and waits for
// every one to settle before merging. A failing source contributes zero
// products and is logged, not propagated.
func (s *CompareService) searchAll(ctx context.Context, query string, sources []model.Source, limit int) []model.Product {
	wanted := make(map[model.Source]bool, len(sources))
	for _, src := range sources {
		wanted[src] = true
	}

	results := make(chan sourceResult)
	inFlight := 0
	for _, client := range s.sources {
		if !wanted[client.Source()] {
			continue
		}
		inFlight++
		go func(client SourceClient) {
			products, err := client.Search(ctx, query, limit)
			results <- sourceResult{source: client.Source(), products: products, err: err}
		}(client)
	}

	var merged []model.Product
	for i := 0; i < inFlight; i++ {
		res := <-results
		if res.err != nil {
			s.log.Warn("source search failed", "source", res.source, "error", res.err)
			continue
		}
		s.log.Debug("source search complete", "source", res.source, "results", len(res.products))
		merged = append(merged, res.products...)
	}
	return merged
}

// enrich fetches reviews and runs sentiment and quality analysis for each
// product. Enrichment runs sequentially to stay inside upstream rate limits;
// any per-product failure degrades that product to synthetic data without
// failing the request.
func (s *CompareService) enrich(ctx context.Context, products []model.Product, synthetic bool) (
	map[string][]model.Review,
	map[string]*model.SentimentAnalysis,
	map[string]map[string]float64,
) {
	reviewsByID := make(map[string][]model.Review, len(products))
	sentimentByID := make(map[string]*model.SentimentAnalysis, len(products))
	qualityByID := make(map[string]map[string]float64, len(products))

	for _, p := range products {
		reviewsByID[p.ID] = s.fetchReviews(ctx, p, synthetic)

		sentiment, err := s.sentiment.AnalyzeSentiment(ctx, reviewsByID[p.ID], p.Title)
		if err != nil || sentiment == nil {
			sentiment = SyntheticSentiment(p.ID)
		}
		sentimentByID[p.ID] = sentiment

		if indicators, err := s.sentiment.ExtractQualityIndicators(ctx, reviewsByID[p.ID], p.Title); err == nil {
			qualityByID[p.ID] = indicators
		}
	}
	return reviewsByID, sentimentByID, qualityByID
}

// fetchReviews retrieves real reviews where the product's source supports it
// and falls back to the synthetic sample otherwise. Only Amazon currently
// implements review fetch; the other sources return ErrReviewsUnsupported.
func (s *CompareService) fetchReviews(ctx context.Context, p model.Product, synthetic bool) []model.Review {
	if synthetic || p.LocalID == "" {
		return SyntheticReviews(p.ID, reviewLimit)
	}

	for _, client := range s.sources {
		if client.Source() != p.Source {
			continue
		}
		reviews, err := client.FetchReviews(ctx, p.LocalID, reviewLimit)
		if err != nil {
			if !errors.Is(err, ErrReviewsUnsupported) {
				s.log.Warn("review fetch failed", "source", p.Source, "product", p.ID, "error", err)
			}
			break
		}
		if len(reviews) > 0 {
			return reviews
		}
		break
	}
	return SyntheticReviews(p.ID, reviewLimit)
}

// CacheStats exposes cache health for the health endpoint.
func (s *CompareService) CacheStats(ctx context.Context) cache.Stats {
	return s.cache.Stats(ctx)
}

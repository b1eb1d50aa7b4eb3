package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pricelens/internal/cache"
	"pricelens/internal/logger"
	"pricelens/internal/model"
	"pricelens/internal/scoring"
)

type fakeSource struct {
	source     model.Source
	products   []model.Product
	searchErr  error
	reviews    []model.Review
	reviewsErr error

	searchCalls int
}

func (f *fakeSource) Source() model.Source { return f.source }

func (f *fakeSource) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	f.searchCalls++
	return f.products, f.searchErr
}

func (f *fakeSource) FetchReviews(ctx context.Context, localID string, limit int) ([]model.Review, error) {
	if f.reviewsErr != nil {
		return nil, f.reviewsErr
	}
	return f.reviews, nil
}

type fakeSentiment struct {
	sentiment    *model.SentimentAnalysis
	sentimentErr error
	indicators   map[string]float64
	recErr       error
}

func (f *fakeSentiment) AnalyzeSentiment(ctx context.Context, reviews []model.Review, productTitle string) (*model.SentimentAnalysis, error) {
	return f.sentiment, f.sentimentErr
}

func (f *fakeSentiment) ExtractQualityIndicators(ctx context.Context, reviews []model.Review, productTitle string) (map[string]float64, error) {
	if f.indicators == nil {
		return nil, errors.New("no indicators")
	}
	return f.indicators, nil
}

func (f *fakeSentiment) GenerateRecommendation(ctx context.Context, products []model.ProductAnalysis) (string, error) {
	if f.recErr != nil {
		return "", f.recErr
	}
	return "Pick the first one.", nil
}

// memCache is an in-memory stand-in for the redis cache with the same
// degrade-to-miss behavior.
type memCache struct {
	entries map[string][]byte
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (m *memCache) Get(ctx context.Context, namespace, key string, dest any) bool {
	data, ok := m.entries[namespace+":"+key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (m *memCache) Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) bool {
	data, err := json.Marshal(value)
	if err != nil {
		return false
	}
	m.entries[namespace+":"+key] = data
	m.sets++
	return true
}

func (m *memCache) Delete(ctx context.Context, namespace, key string) bool {
	_, ok := m.entries[namespace+":"+key]
	delete(m.entries, namespace+":"+key)
	return ok
}

func (m *memCache) ClearPrefix(ctx context.Context, namespace string) int {
	n := 0
	for k := range m.entries {
		if len(k) > len(namespace) && k[:len(namespace)+1] == namespace+":" {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

func (m *memCache) Stats(ctx context.Context) cache.Stats {
	return cache.Stats{Connected: true}
}

func testProduct(id string, source model.Source, price float64) model.Product {
	rating := 4.2
	count := 150
	return model.Product{
		ID:          id,
		LocalID:     "local-" + id,
		Title:       "Product " + id,
		Price:       price,
		Currency:    "USD",
		Source:      source,
		Rating:      &rating,
		ReviewCount: &count,
	}
}

func newTestService(sources []SourceClient, sentiment SentimentProvider, c cache.ProductCache) *CompareService {
	return NewCompareService(
		sources,
		sentiment,
		c,
		scoring.NewEngine(0.35, 0.35, 0.30),
		time.Hour,
		logger.New("error"),
	)
}

func TestCompare_SourceFailureIsIsolated(t *testing.T) {
	amazon := &fakeSource{
		source:   model.SourceAmazon,
		products: []model.Product{testProduct("a1", model.SourceAmazon, 29.99)},
	}
	ebay := &fakeSource{source: model.SourceEbay, searchErr: errors.New("upstream 500")}

	svc := newTestService([]SourceClient{amazon, ebay}, &fakeSentiment{}, newMemCache())

	resp, err := svc.Compare(context.Background(), "widget", model.AllSources, 5)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if len(resp.Products) != 1 {
		t.Fatalf("got %d products, want 1 from the healthy source", len(resp.Products))
	}
	if resp.Products[0].ID != "a1" {
		t.Errorf("got product %s, want a1", resp.Products[0].ID)
	}
}

func TestCompare_AllSourcesFailUsesSyntheticCatalog(t *testing.T) {
	amazon := &fakeSource{source: model.SourceAmazon, searchErr: errors.New("down")}
	ebay := &fakeSource{source: model.SourceEbay, searchErr: errors.New("down")}

	svc := newTestService([]SourceClient{amazon, ebay}, &fakeSentiment{}, newMemCache())

	resp, err := svc.Compare(context.Background(), "wireless headphones", model.AllSources, 5)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if len(resp.Products) == 0 {
		t.Fatal("expected synthetic products when every source fails")
	}
	if resp.Recommendation == "" {
		t.Error("expected a recommendation on the synthetic path")
	}
	if resp.BestValue == nil || resp.BestPrice == nil || resp.BestQuality == nil {
		t.Error("expected best picks on the synthetic path")
	}
}

func TestCompare_NoSourcesNoSynthetic(t *testing.T) {
	svc := newTestService(nil, &fakeSentiment{}, newMemCache())

	_, err := svc.Compare(context.Background(), "widget", nil, 5)
	if !errors.Is(err, ErrNoProducts) {
		t.Fatalf("got error %v, want ErrNoProducts", err)
	}
}

func TestCompare_CacheHitShortCircuits(t *testing.T) {
	amazon := &fakeSource{
		source:   model.SourceAmazon,
		products: []model.Product{testProduct("a1", model.SourceAmazon, 29.99)},
	}
	mc := newMemCache()
	svc := newTestService([]SourceClient{amazon}, &fakeSentiment{}, mc)

	stored := model.CompareResponse{Recommendation: "cached pick"}
	key := SearchParams{Query: "widget", Sources: model.AllSources, Limit: 5}.cacheKey()
	mc.Set(context.Background(), nsCompare, key, &stored, time.Hour)

	resp, err := svc.Compare(context.Background(), "widget", model.AllSources, 5)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if !resp.Cached {
		t.Error("cache hit should be flagged cached")
	}
	if resp.Recommendation != "cached pick" {
		t.Errorf("got recommendation %q, want stored value", resp.Recommendation)
	}
	if amazon.searchCalls != 0 {
		t.Errorf("cache hit still called the source %d times", amazon.searchCalls)
	}
}

func TestCompare_StoresFreshResult(t *testing.T) {
	amazon := &fakeSource{
		source:   model.SourceAmazon,
		products: []model.Product{testProduct("a1", model.SourceAmazon, 29.99)},
	}
	mc := newMemCache()
	svc := newTestService([]SourceClient{amazon}, &fakeSentiment{}, mc)

	first, err := svc.Compare(context.Background(), "widget", model.AllSources, 5)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if first.Cached {
		t.Error("fresh result flagged as cached")
	}
	if mc.sets == 0 {
		t.Fatal("fresh result was not stored")
	}

	second, err := svc.Compare(context.Background(), "widget", model.AllSources, 5)
	if err != nil {
		t.Fatalf("second Compare returned error: %v", err)
	}
	if !second.Cached {
		t.Error("second identical request should be served from cache")
	}
	if amazon.searchCalls != 1 {
		t.Errorf("source searched %d times, want 1", amazon.searchCalls)
	}
}

func TestCompare_TruncatesToLimitAndSorts(t *testing.T) {
	amazon := &fakeSource{
		source: model.SourceAmazon,
		products: []model.Product{
			testProduct("a1", model.SourceAmazon, 89.99),
			testProduct("a2", model.SourceAmazon, 29.99),
			testProduct("a3", model.SourceAmazon, 349.99),
		},
	}
	svc := newTestService([]SourceClient{amazon}, &fakeSentiment{}, newMemCache())

	resp, err := svc.Compare(context.Background(), "widget", model.AllSources, 2)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if len(resp.Products) != 2 {
		t.Fatalf("got %d products, want limit of 2", len(resp.Products))
	}
	for i := 1; i < len(resp.Products); i++ {
		if resp.Products[i].ValueScore > resp.Products[i-1].ValueScore {
			t.Errorf("products not sorted by value score at index %d", i)
		}
	}
}

func TestCompare_RecommendationFallback(t *testing.T) {
	amazon := &fakeSource{
		source:   model.SourceAmazon,
		products: []model.Product{testProduct("a1", model.SourceAmazon, 29.99)},
	}
	sentiment := &fakeSentiment{recErr: errors.New("model unavailable")}
	svc := newTestService([]SourceClient{amazon}, sentiment, newMemCache())

	resp, err := svc.Compare(context.Background(), "widget", model.AllSources, 5)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if resp.Recommendation == "" {
		t.Error("expected a fallback recommendation when generation fails")
	}
}

func TestCompare_SentimentFailureFallsBackToSynthetic(t *testing.T) {
	amazon := &fakeSource{
		source:   model.SourceAmazon,
		products: []model.Product{testProduct("a1", model.SourceAmazon, 29.99)},
	}
	sentiment := &fakeSentiment{sentimentErr: errors.New("model unavailable")}
	svc := newTestService([]SourceClient{amazon}, sentiment, newMemCache())

	resp, err := svc.Compare(context.Background(), "widget", model.AllSources, 5)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if resp.Products[0].Sentiment == nil {
		t.Error("expected synthetic sentiment when analysis fails")
	}
}

func TestFetchReviews(t *testing.T) {
	realReviews := []model.Review{
		{Text: "Genuine feedback", Rating: 4.0, Author: "Buyer"},
	}
	amazon := &fakeSource{source: model.SourceAmazon, reviews: realReviews}
	ebay := &fakeSource{source: model.SourceEbay, reviewsErr: ErrReviewsUnsupported}
	svc := newTestService([]SourceClient{amazon, ebay}, &fakeSentiment{}, newMemCache())
	ctx := context.Background()

	t.Run("supported source returns real reviews", func(t *testing.T) {
		reviews := svc.fetchReviews(ctx, testProduct("a1", model.SourceAmazon, 29.99), false)
		if len(reviews) != 1 || reviews[0].Text != "Genuine feedback" {
			t.Errorf("got %d reviews, want the real one", len(reviews))
		}
	})

	t.Run("unsupported source degrades to synthetic", func(t *testing.T) {
		reviews := svc.fetchReviews(ctx, testProduct("e1", model.SourceEbay, 29.99), false)
		if len(reviews) != reviewLimit {
			t.Errorf("got %d synthetic reviews, want %d", len(reviews), reviewLimit)
		}
	})

	t.Run("synthetic products never hit a source", func(t *testing.T) {
		reviews := svc.fetchReviews(ctx, testProduct("a1", model.SourceAmazon, 29.99), true)
		if len(reviews) != reviewLimit {
			t.Errorf("got %d reviews, want %d synthetic", len(reviews), reviewLimit)
		}
	})

	t.Run("missing local id degrades to synthetic", func(t *testing.T) {
		p := testProduct("a2", model.SourceAmazon, 29.99)
		p.LocalID = ""
		reviews := svc.fetchReviews(ctx, p, false)
		if len(reviews) != reviewLimit {
			t.Errorf("got %d reviews, want %d synthetic", len(reviews), reviewLimit)
		}
	})
}

func TestSearch_FiltersAndSorts(t *testing.T) {
	r1, r2, r3 := 4.8, 4.0, 3.5
	c1, c2, c3 := 8500, 300, 9000
	amazon := &fakeSource{
		source: model.SourceAmazon,
		products: []model.Product{
			{ID: "cheap", Price: 9.99, Source: model.SourceAmazon, Rating: &r2, ReviewCount: &c2},
			{ID: "popular", Price: 49.99, Source: model.SourceAmazon, Rating: &r1, ReviewCount: &c1},
			{ID: "mediocre", Price: 39.99, Source: model.SourceAmazon, Rating: &r3, ReviewCount: &c3},
			{ID: "expensive", Price: 999.99, Source: model.SourceAmazon, Rating: &r1, ReviewCount: &c1},
		},
	}
	svc := newTestService([]SourceClient{amazon}, &fakeSentiment{}, newMemCache())

	minPrice, maxPrice := 20.0, 100.0
	resp, err := svc.Search(context.Background(), SearchParams{
		Query:    "widget",
		Sources:  model.AllSources,
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if resp.TotalResults != 2 {
		t.Fatalf("got %d results, want 2 inside the price bounds", resp.TotalResults)
	}
	// popular: 4.8*(1+8.5) = 45.6, mediocre: 3.5*(1+9) = 35.0
	if resp.Products[0].ID != "popular" {
		t.Errorf("top result is %s, want popular", resp.Products[0].ID)
	}
}

func TestSearchParams_CacheKey(t *testing.T) {
	a := SearchParams{Query: "widget", Sources: []model.Source{model.SourceAmazon, model.SourceEbay}, Limit: 5}
	b := SearchParams{Query: "widget", Sources: []model.Source{model.SourceEbay, model.SourceAmazon}, Limit: 5}
	if a.cacheKey() != b.cacheKey() {
		t.Error("source order should not change the cache key")
	}

	c := SearchParams{Query: "widget", Sources: []model.Source{model.SourceAmazon, model.SourceEbay}, Limit: 10}
	if a.cacheKey() == c.cacheKey() {
		t.Error("different limits must produce different cache keys")
	}
}

func TestProductID(t *testing.T) {
	first := ProductID(model.SourceAmazon, "B0ABC123")
	second := ProductID(model.SourceAmazon, "B0ABC123")
	if first != second {
		t.Error("ProductID is not deterministic")
	}
	if len(first) != 16 {
		t.Errorf("ProductID length = %d, want 16", len(first))
	}
	if ProductID(model.SourceEbay, "B0ABC123") == first {
		t.Error("different sources must produce different ids")
	}
}

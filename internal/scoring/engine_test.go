package scoring

import (
	"testing"

	"pricelens/internal/model"
)

func defaultEngine() *Engine {
	return NewEngine(0.35, 0.35, 0.30)
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestPriceScore(t *testing.T) {
	e := defaultEngine()

	tests := []struct {
		name     string
		price    float64
		minPrice float64
		maxPrice float64
		want     float64
	}{
		{"no spread gives neutral-high", 50, 50, 50, 7.5},
		{"frame minimum", 10, 10, 110, 10.0},
		{"frame maximum", 110, 10, 110, 0.0},
		{"midpoint", 60, 10, 110, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.PriceScore(tt.price, tt.minPrice, tt.maxPrice); got != tt.want {
				t.Errorf("PriceScore(%v, %v, %v) = %v, want %v",
					tt.price, tt.minPrice, tt.maxPrice, got, tt.want)
			}
		})
	}
}

func TestReviewScore_VolumeThresholds(t *testing.T) {
	e := defaultEngine()
	rating := floatPtr(4.0)

	counts := []int{5, 50, 200, 700, 1500}
	want := []float64{7.2, 8.0, 8.4, 8.8, 9.2}

	prev := -1.0
	for i, count := range counts {
		got := e.ReviewScore(rating, intPtr(count), nil)
		if got != want[i] {
			t.Errorf("ReviewScore(4.0, %d, nil) = %v, want %v", count, got, want[i])
		}
		if got <= prev {
			t.Errorf("review score did not increase across volume threshold at count %d", count)
		}
		prev = got
	}
}

func TestReviewScore_Defaults(t *testing.T) {
	e := defaultEngine()

	if got := e.ReviewScore(nil, nil, nil); got != 5.0 {
		t.Errorf("ReviewScore with no signals = %v, want 5.0", got)
	}
}

func TestReviewScore_SentimentNudge(t *testing.T) {
	e := defaultEngine()
	rating := floatPtr(4.0)
	count := intPtr(200)

	base := e.ReviewScore(rating, count, nil)
	positive := e.ReviewScore(rating, count, &model.SentimentAnalysis{SentimentScore: 1.0})
	negative := e.ReviewScore(rating, count, &model.SentimentAnalysis{SentimentScore: -1.0})

	if positive != base+0.5 {
		t.Errorf("positive sentiment nudge = %v, want %v", positive, base+0.5)
	}
	if negative != base-0.5 {
		t.Errorf("negative sentiment nudge = %v, want %v", negative, base-0.5)
	}
}

func TestReviewScore_Clamped(t *testing.T) {
	e := defaultEngine()

	got := e.ReviewScore(floatPtr(5.0), intPtr(2000), &model.SentimentAnalysis{SentimentScore: 1.0})
	if got != 10.0 {
		t.Errorf("ReviewScore above range = %v, want clamped 10.0", got)
	}
}

func TestQualityScore(t *testing.T) {
	e := defaultEngine()

	t.Run("no signals is neutral", func(t *testing.T) {
		if got := e.QualityScore(nil, nil); got != 5.0 {
			t.Errorf("QualityScore(nil, nil) = %v, want 5.0", got)
		}
	})

	t.Run("sentiment only", func(t *testing.T) {
		s := &model.SentimentAnalysis{SentimentScore: 0.5}
		if got := e.QualityScore(s, nil); got != 7.5 {
			t.Errorf("QualityScore = %v, want 7.5", got)
		}
	})

	t.Run("sentiment with pros and cons", func(t *testing.T) {
		s := &model.SentimentAnalysis{
			SentimentScore: 0.5,
			Pros:           []string{"a", "b", "c"},
			Cons:           []string{"d"},
		}
		// (7.5 + 7.5) / 2
		if got := e.QualityScore(s, nil); got != 7.5 {
			t.Errorf("QualityScore = %v, want 7.5", got)
		}
	})

	t.Run("indicators only", func(t *testing.T) {
		indicators := map[string]float64{
			model.QualityDurability:    0.8,
			model.QualityPerformance:   0.8,
			model.QualityBuildQuality:  0.8,
			model.QualityValueForMoney: 0.8,
		}
		if got := e.QualityScore(nil, indicators); got != 8.0 {
			t.Errorf("QualityScore = %v, want 8.0", got)
		}
	})

	t.Run("single indicator averages alone", func(t *testing.T) {
		indicators := map[string]float64{model.QualityDurability: 1.0}
		if got := e.QualityScore(nil, indicators); got != 10.0 {
			t.Errorf("QualityScore = %v, want 10.0", got)
		}
	})
}

func TestValueScore(t *testing.T) {
	e := defaultEngine()

	tests := []struct {
		price, review, quality float64
		want                   float64
	}{
		{10, 10, 10, 10.0},
		{0, 0, 0, 0.0},
		{5, 5, 5, 5.0},
	}

	for _, tt := range tests {
		if got := e.ValueScore(tt.price, tt.review, tt.quality); got != tt.want {
			t.Errorf("ValueScore(%v, %v, %v) = %v, want %v",
				tt.price, tt.review, tt.quality, got, tt.want)
		}
	}
}

func TestValueScore_Monotonic(t *testing.T) {
	e := defaultEngine()
	base := e.ValueScore(5, 5, 5)

	if e.ValueScore(6, 5, 5) <= base {
		t.Error("value score not monotonic in price score")
	}
	if e.ValueScore(5, 6, 5) <= base {
		t.Error("value score not monotonic in review score")
	}
	if e.ValueScore(5, 5, 6) <= base {
		t.Error("value score not monotonic in quality score")
	}
}

func frameProduct(id string, price float64, rating float64, reviewCount int) model.Product {
	return model.Product{
		ID:          id,
		Title:       "Product " + id,
		Price:       price,
		Currency:    "USD",
		Source:      model.SourceAmazon,
		Rating:      floatPtr(rating),
		ReviewCount: intPtr(reviewCount),
	}
}

func TestScoreProducts_SortedDescending(t *testing.T) {
	e := defaultEngine()

	products := []model.Product{
		frameProduct("a", 89.99, 3.5, 450),
		frameProduct("b", 29.99, 4.5, 2500),
		frameProduct("c", 349.99, 4.8, 8500),
	}

	scored := e.ScoreProducts(products, nil, nil, nil)
	if len(scored) != len(products) {
		t.Fatalf("got %d scored products, want %d", len(scored), len(products))
	}
	for i := 1; i < len(scored); i++ {
		if scored[i].ValueScore > scored[i-1].ValueScore {
			t.Errorf("scored products not sorted descending at index %d", i)
		}
	}
}

func TestScoreProducts_Empty(t *testing.T) {
	e := defaultEngine()
	if scored := e.ScoreProducts(nil, nil, nil, nil); len(scored) != 0 {
		t.Errorf("scoring an empty frame returned %d products", len(scored))
	}
}

func TestScoreProducts_IdenticalPrices(t *testing.T) {
	e := defaultEngine()

	products := []model.Product{
		frameProduct("a", 50, 4.0, 100),
		frameProduct("b", 50, 3.0, 100),
	}

	for _, p := range e.ScoreProducts(products, nil, nil, nil) {
		if p.PriceScore != 7.5 {
			t.Errorf("product %s price score = %v, want 7.5 for identical prices", p.ID, p.PriceScore)
		}
	}
}

func TestBestProducts(t *testing.T) {
	e := defaultEngine()

	t.Run("empty input", func(t *testing.T) {
		bestValue, bestPrice, bestQuality := e.BestProducts(nil)
		if bestValue != nil || bestPrice != nil || bestQuality != nil {
			t.Error("BestProducts on empty input should return all nil")
		}
	})

	t.Run("members of the input set", func(t *testing.T) {
		products := []model.Product{
			frameProduct("a", 89.99, 3.5, 450),
			frameProduct("b", 29.99, 4.5, 2500),
			frameProduct("c", 349.99, 4.8, 8500),
		}
		scored := e.ScoreProducts(products, nil, nil, nil)

		ids := make(map[string]bool)
		for _, p := range scored {
			ids[p.ID] = true
		}

		bestValue, bestPrice, bestQuality := e.BestProducts(scored)
		for _, best := range []*model.ProductAnalysis{bestValue, bestPrice, bestQuality} {
			if best == nil {
				t.Fatal("best product is nil for non-empty input")
			}
			if !ids[best.ID] {
				t.Errorf("best product %s is not a member of the input set", best.ID)
			}
		}
	})

	t.Run("ties keep first seen", func(t *testing.T) {
		products := []model.Product{
			frameProduct("first", 50, 4.0, 100),
			frameProduct("second", 50, 4.0, 100),
		}
		scored := e.ScoreProducts(products, nil, nil, nil)

		_, bestPrice, _ := e.BestProducts(scored)
		if bestPrice.ID != scored[0].ID {
			t.Errorf("tie should keep first-seen product, got %s", bestPrice.ID)
		}
	})
}

// A cheap product with strong sentiment must outrank an expensive one with
// middling sentiment: price alone cannot dominate the quality signals.
func TestScoreProducts_CheapStrongBeatsExpensiveMiddling(t *testing.T) {
	e := defaultEngine()

	products := []model.Product{
		frameProduct("cheap-strong", 7.99, 4.6, 1200),
		frameProduct("mid-1", 49.99, 4.0, 300),
		frameProduct("mid-2", 119.99, 3.8, 90),
		frameProduct("mid-3", 200.00, 4.2, 40),
		frameProduct("expensive-middling", 349.99, 4.4, 800),
	}

	sentiments := map[string]*model.SentimentAnalysis{
		"cheap-strong": {
			OverallSentiment: model.SentimentPositive,
			SentimentScore:   0.8,
			Pros:             []string{"great value", "reliable", "easy to use", "solid build"},
			Cons:             []string{"basic packaging"},
		},
		"expensive-middling": {
			OverallSentiment: model.SentimentNeutral,
			SentimentScore:   0.1,
			Pros:             []string{"premium look", "good battery"},
			Cons:             []string{"overpriced", "heavy"},
		},
	}

	scored := e.ScoreProducts(products, nil, sentiments, nil)

	rank := make(map[string]int)
	for i, p := range scored {
		rank[p.ID] = i
	}
	if rank["cheap-strong"] >= rank["expensive-middling"] {
		t.Errorf("cheap product with strong sentiment ranked %d, expensive with middling sentiment ranked %d",
			rank["cheap-strong"], rank["expensive-middling"])
	}
}

// Package scoring computes comparative value scores over a set of products.
// All scores are relative to the comparison frame: the same product can score
// differently across two different search runs.
package scoring

import (
	"math"
	"sort"

	"pricelens/internal/model"
)

// Engine calculates product value scores. Weights must sum to 1.0; callers
// validate that at config load.
type Engine struct {
	priceWeight   float64
	reviewWeight  float64
	qualityWeight float64
}

// NewEngine creates a scoring engine with the given component weights.
func NewEngine(priceWeight, reviewWeight, qualityWeight float64) *Engine {
	return &Engine{
		priceWeight:   priceWeight,
		reviewWeight:  reviewWeight,
		qualityWeight: qualityWeight,
	}
}

// PriceScore inversely normalizes a price within the frame's [min, max]
// bounds: the cheapest product scores 10, the most expensive 0. A frame with
// no price spread scores a neutral-high 7.5 for every product.
func (e *Engine) PriceScore(price, minPrice, maxPrice float64) float64 {
	if maxPrice == minPrice {
		return 7.5
	}
	normalized := (maxPrice - price) / (maxPrice - minPrice)
	return round2(clamp10(normalized * 10))
}

// ReviewScore combines the average rating, a volume-confidence multiplier and
// an additive sentiment nudge. A missing rating scores a neutral 5.0 base.
func (e *Engine) ReviewScore(rating *float64, reviewCount *int, sentiment *model.SentimentAnalysis) float64 {
	base := 5.0
	if rating != nil {
		base = *rating / 5 * 10
	}

	// A 5.0 rating backed by 3 reviews is less trustworthy than one backed
	// by 3000.
	volume := 1.0
	if reviewCount != nil {
		switch {
		case *reviewCount >= 1000:
			volume = 1.15
		case *reviewCount >= 500:
			volume = 1.10
		case *reviewCount >= 100:
			volume = 1.05
		case *reviewCount >= 10:
			volume = 1.0
		default:
			volume = 0.90
		}
	}

	// Sentiment [-1,1] maps to an additive ±0.5, so it cannot dominate the
	// rating-based base.
	adjustment := 0.0
	if sentiment != nil {
		adjustment = sentiment.SentimentScore * 0.5
	}

	return round2(clamp10(base*volume + adjustment))
}

// QualityScore averages whichever quality signals are present: the sentiment
// score mapped to [0,10], the pros/cons ratio, and the mean of external
// quality indicators. Absent signals shrink the averaging set rather than
// penalizing. With no signal at all the score is a neutral 5.0.
func (e *Engine) QualityScore(sentiment *model.SentimentAnalysis, indicators map[string]float64) float64 {
	var signals []float64

	if sentiment != nil {
		signals = append(signals, (sentiment.SentimentScore+1)*5)

		pros := len(sentiment.Pros)
		cons := len(sentiment.Cons)
		if pros+cons > 0 {
			ratio := float64(pros) / float64(pros+cons)
			signals = append(signals, ratio*10)
		}
	}

	if len(indicators) > 0 {
		var sum float64
		var n int
		for _, key := range model.QualityIndicatorKeys {
			if v, ok := indicators[key]; ok {
				sum += v * 10
				n++
			}
		}
		if n > 0 {
			signals = append(signals, sum/float64(n))
		}
	}

	if len(signals) == 0 {
		return 5.0
	}

	var total float64
	for _, s := range signals {
		total += s
	}
	return round2(clamp10(total / float64(len(signals))))
}

// ValueScore is the weighted combination of the three component scores and
// the primary ranking signal.
func (e *Engine) ValueScore(priceScore, reviewScore, qualityScore float64) float64 {
	weighted := priceScore*e.priceWeight + reviewScore*e.reviewWeight + qualityScore*e.qualityWeight
	return round2(weighted)
}

// ScoreProduct computes all four scores for one product against the frame's
// price bounds.
func (e *Engine) ScoreProduct(
	product model.Product,
	minPrice, maxPrice float64,
	reviews []model.Review,
	sentiment *model.SentimentAnalysis,
	indicators map[string]float64,
) model.ProductAnalysis {
	priceScore := e.PriceScore(product.Price, minPrice, maxPrice)
	reviewScore := e.ReviewScore(product.Rating, product.ReviewCount, sentiment)
	qualityScore := e.QualityScore(sentiment, indicators)

	return model.ProductAnalysis{
		Product:      product,
		Reviews:      reviews,
		Sentiment:    sentiment,
		PriceScore:   priceScore,
		ReviewScore:  reviewScore,
		QualityScore: qualityScore,
		ValueScore:   e.ValueScore(priceScore, reviewScore, qualityScore),
	}
}

// ScoreProducts scores every product relative to the whole set and returns
// them sorted descending by value score. An empty input yields an empty
// result.
func (e *Engine) ScoreProducts(
	products []model.Product,
	reviewsByID map[string][]model.Review,
	sentimentByID map[string]*model.SentimentAnalysis,
	qualityByID map[string]map[string]float64,
) []model.ProductAnalysis {
	if len(products) == 0 {
		return nil
	}

	minPrice := products[0].Price
	maxPrice := products[0].Price
	for _, p := range products[1:] {
		minPrice = math.Min(minPrice, p.Price)
		maxPrice = math.Max(maxPrice, p.Price)
	}

	scored := make([]model.ProductAnalysis, 0, len(products))
	for _, p := range products {
		scored = append(scored, e.ScoreProduct(
			p, minPrice, maxPrice,
			reviewsByID[p.ID],
			sentimentByID[p.ID],
			qualityByID[p.ID],
		))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].ValueScore > scored[j].ValueScore
	})
	return scored
}

// BestProducts picks the top product by value, price and quality score
// independently. Ties keep the first-seen product. All three are nil for an
// empty input.
func (e *Engine) BestProducts(products []model.ProductAnalysis) (bestValue, bestPrice, bestQuality *model.ProductAnalysis) {
	for i := range products {
		p := &products[i]
		if bestValue == nil || p.ValueScore > bestValue.ValueScore {
			bestValue = p
		}
		if bestPrice == nil || p.PriceScore > bestPrice.PriceScore {
			bestPrice = p
		}
		if bestQuality == nil || p.QualityScore > bestQuality.QualityScore {
			bestQuality = p
		}
	}
	return bestValue, bestPrice, bestQuality
}

func clamp10(v float64) float64 {
	return math.Min(10, math.Max(0, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

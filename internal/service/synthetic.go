package service

import (
	"fmt"
	"hash/fnv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pricelens/internal/model"
)

// Synthetic catalog used when every live source fails. Entries are grouped by
// query theme; unmatched queries fall back to the default set. All derived
// values are keyed on hashes of the inputs so the same query always produces
// the same catalog.

type syntheticTemplate struct {
	Title         string
	Price         float64
	OriginalPrice float64
	Rating        float64
	ReviewCount   int
	Source        model.Source
	ImageURL      string
}

var syntheticCatalog = map[string][]syntheticTemplate{
	"wireless headphones": {
		{"Sony WH-1000XM5 Wireless Noise Cancelling Headphones", 348.00, 399.99, 4.7, 12543, model.SourceAmazon, "https://m.media-amazon.com/images/I/61vJtKbassL._AC_SL1500_.jpg"},
		{"Apple AirPods Max - Space Gray", 449.00, 549.00, 4.6, 8234, model.SourceAmazon, "https://m.media-amazon.com/images/I/81jNKu5U3lL._AC_SL1500_.jpg"},
		{"Bose QuietComfort Ultra Headphones", 379.00, 429.00, 4.5, 5621, model.SourceEbay, "https://m.media-amazon.com/images/I/51QnOIvVm8L._AC_SL1500_.jpg"},
		{"Sennheiser Momentum 4 Wireless Headphones", 299.95, 379.95, 4.4, 3456, model.SourceWalmart, "https://m.media-amazon.com/images/I/61SUj2aKoEL._AC_SL1500_.jpg"},
		{"JBL Tune 760NC Wireless Headphones", 79.95, 129.95, 4.3, 7892, model.SourceWalmart, "https://m.media-amazon.com/images/I/61SUj2aKoEL._AC_SL1500_.jpg"},
	},
	"laptop stand": {
		{"Rain Design mStand Laptop Stand - Space Gray", 49.90, 59.90, 4.7, 15234, model.SourceAmazon, "https://m.media-amazon.com/images/I/71-oNMl84VL._AC_SL1500_.jpg"},
		{"Twelve South Curve SE Aluminum Laptop Stand", 59.99, 79.99, 4.6, 4521, model.SourceAmazon, "https://m.media-amazon.com/images/I/71-oNMl84VL._AC_SL1500_.jpg"},
		{"UGREEN Laptop Stand Adjustable Height", 29.99, 39.99, 4.5, 8765, model.SourceEbay, "https://m.media-amazon.com/images/I/71-oNMl84VL._AC_SL1500_.jpg"},
		{"Amazon Basics Laptop Stand - Black", 19.99, 24.99, 4.3, 23456, model.SourceWalmart, "https://m.media-amazon.com/images/I/71-oNMl84VL._AC_SL1500_.jpg"},
	},
	"default": {
		{"Premium Product A - Top Rated", 149.99, 199.99, 4.8, 5432, model.SourceAmazon, "https://via.placeholder.com/300x300?text=Product+A"},
		{"Best Value Product B", 79.99, 99.99, 4.5, 8765, model.SourceEbay, "https://via.placeholder.com/300x300?text=Product+B"},
		{"Budget-Friendly Product C", 39.99, 49.99, 4.2, 12345, model.SourceWalmart, "https://via.placeholder.com/300x300?text=Product+C"},
		{"Professional Product D", 249.99, 299.99, 4.6, 3456, model.SourceAmazon, "https://via.placeholder.com/300x300?text=Product+D"},
		{"Affordable Product E", 24.99, 0, 4.0, 6789, model.SourceEbay, "https://via.placeholder.com/300x300?text=Product+E"},
	},
}

var syntheticReviews = []model.Review{
	{Text: "Excellent product! Great value for money. Highly recommend.", Rating: 5.0, Author: "John D.", Verified: true},
	{Text: "Good quality, arrived quickly. Works as expected.", Rating: 4.0, Author: "Sarah M.", Verified: true},
	{Text: "Love it! Using it every day. Build quality is amazing.", Rating: 5.0, Author: "Mike R.", Verified: true},
	{Text: "Decent product but could be better. Some minor issues.", Rating: 3.0, Author: "Lisa K.", Verified: false},
	{Text: "Perfect for my needs. Would buy again.", Rating: 5.0, Author: "Tom H.", Verified: true},
	{Text: "Good but not great. Expected more for the price.", Rating: 3.5, Author: "Anna P.", Verified: true},
	{Text: "Outstanding! Exceeded my expectations completely.", Rating: 5.0, Author: "Chris B.", Verified: true},
	{Text: "Works well. Fast shipping. Happy with purchase.", Rating: 4.5, Author: "Emily W.", Verified: true},
	{Text: "Not bad for the price. Gets the job done.", Rating: 3.5, Author: "David L.", Verified: false},
	{Text: "Fantastic quality and performance. 5 stars!", Rating: 5.0, Author: "Jennifer S.", Verified: true},
}

var syntheticSentiments = []model.SentimentAnalysis{
	{
		OverallSentiment: model.SentimentPositive,
		SentimentScore:   0.85,
		Pros:             []string{"Excellent build quality", "Great value for money", "Fast shipping", "Easy to use"},
		Cons:             []string{"Could be cheaper", "Minor design issues"},
		Summary:          "Customers love this product for its quality and value. Most reviews highlight the excellent build quality and ease of use.",
	},
	{
		OverallSentiment: model.SentimentPositive,
		SentimentScore:   0.72,
		Pros:             []string{"Good performance", "Reliable", "Nice design"},
		Cons:             []string{"Price is a bit high", "Some features missing"},
		Summary:          "Generally positive reviews with customers appreciating the performance and reliability. Some concerns about pricing.",
	},
	{
		OverallSentiment: model.SentimentPositive,
		SentimentScore:   0.65,
		Pros:             []string{"Affordable", "Works as described", "Good customer service"},
		Cons:             []string{"Average quality", "Not the best in class"},
		Summary:          "A solid budget option. Customers find it works well for the price point.",
	},
	{
		OverallSentiment: model.SentimentNeutral,
		SentimentScore:   0.45,
		Pros:             []string{"Cheap price", "Fast delivery"},
		Cons:             []string{"Quality could be better", "Not very durable", "Missing features"},
		Summary:          "Mixed reviews. While the price is attractive, some customers report quality issues.",
	},
}

// SyntheticProducts builds a deterministic, query-flavored product set
// bounded by limit and the requested sources.
func SyntheticProducts(query string, sources []model.Source, limit int) []model.Product {
	queryLower := strings.ToLower(query)

	templates := syntheticCatalog["default"]
	for key, set := range syntheticCatalog {
		if key != "default" && strings.Contains(queryLower, key) {
			templates = set
			break
		}
	}

	wanted := make(map[model.Source]bool, len(sources))
	for _, s := range sources {
		wanted[s] = true
	}

	products := make([]model.Product, 0, limit)
	for i, tpl := range templates {
		if !wanted[tpl.Source] || len(products) >= limit {
			continue
		}

		title := tpl.Title
		if !strings.Contains(strings.ToLower(title), queryLower) {
			title = fmt.Sprintf("%s - %s", tpl.Title, titleCase(query))
		}

		// Deterministic jitter in [-5, 5) keeps the catalog query-flavored
		// without the prices drifting between identical requests.
		jitter := float64(hashString(fmt.Sprintf("%s:%d", queryLower, i))%1000)/100.0 - 5.0

		var originalPrice *float64
		if tpl.OriginalPrice > 0 {
			op := tpl.OriginalPrice
			originalPrice = &op
		}

		rating := tpl.Rating
		reviewCount := tpl.ReviewCount

		products = append(products, model.Product{
			ID:            fmt.Sprintf("synthetic_%s_%d_%04d", tpl.Source, i, hashString(queryLower)%10000),
			Title:         title,
			Price:         tpl.Price + jitter,
			OriginalPrice: originalPrice,
			Currency:      "USD",
			ImageURL:      tpl.ImageURL,
			ProductURL:    fmt.Sprintf("https://example.com/product/%d", i),
			Source:        tpl.Source,
			Rating:        &rating,
			ReviewCount:   &reviewCount,
			Availability:  "in_stock",
		})
	}
	return products
}

// SyntheticReviews returns a deterministic review sample for a product.
func SyntheticReviews(productID string, limit int) []model.Review {
	if limit > len(syntheticReviews) {
		limit = len(syntheticReviews)
	}

	start := int(hashString(productID) % uint32(len(syntheticReviews)))
	reviews := make([]model.Review, 0, limit)
	for i := 0; i < limit; i++ {
		reviews = append(reviews, syntheticReviews[(start+i)%len(syntheticReviews)])
	}
	return reviews
}

// SyntheticSentiment returns a deterministic canned sentiment for a product.
func SyntheticSentiment(productID string) *model.SentimentAnalysis {
	s := syntheticSentiments[hashString(productID)%uint32(len(syntheticSentiments))]
	return &s
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

var queryTitleCaser = cases.Title(language.English)

func titleCase(s string) string {
	return queryTitleCaser.String(s)
}

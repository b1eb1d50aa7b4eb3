package model

import "fmt"

// Source identifies an e-commerce platform a product was found on.
type Source string

const (
	SourceAmazon  Source = "amazon"
	SourceEbay    Source = "ebay"
	SourceWalmart Source = "walmart"
)

// AllSources lists every supported platform in canonical order.
var AllSources = []Source{SourceAmazon, SourceEbay, SourceWalmart}

// ParseSource validates a raw source string.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceAmazon, SourceEbay, SourceWalmart:
		return Source(s), nil
	}
	return "", fmt.Errorf("unknown source %q", s)
}

// Product is a single offer returned by one source.
type Product struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Currency      string   `json:"currency"`
	ImageURL      string   `json:"image_url,omitempty"`
	ProductURL    string   `json:"product_url"`
	Source        Source   `json:"source"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewCount   *int     `json:"review_count,omitempty"`
	Availability  string   `json:"availability"`

	// LocalID is the source-native identifier (e.g. an ASIN). It is only
	// meaningful during a single enrichment cycle and is never serialized.
	LocalID string `json:"-"`
}

// ProductAnalysis is a product extended with its reviews, sentiment and the
// four scores computed relative to one comparison frame.
type ProductAnalysis struct {
	Product
	Reviews      []Review           `json:"reviews"`
	Sentiment    *SentimentAnalysis `json:"sentiment,omitempty"`
	ValueScore   float64            `json:"value_score"`
	PriceScore   float64            `json:"price_score"`
	ReviewScore  float64            `json:"review_score"`
	QualityScore float64            `json:"quality_score"`
}

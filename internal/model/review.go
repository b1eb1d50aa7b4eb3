package model

// Review is a single customer review. Reviews are ephemeral: they live for one
// enrichment cycle and are never persisted beyond the cached response.
type Review struct {
	Text     string  `json:"text"`
	Rating   float64 `json:"rating"`
	Author   string  `json:"author,omitempty"`
	Date     string  `json:"date,omitempty"`
	Verified bool    `json:"verified"`
}

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// SentimentAnalysis is the structured result of analyzing a product's reviews.
type SentimentAnalysis struct {
	OverallSentiment string   `json:"overall_sentiment"`
	SentimentScore   float64  `json:"sentiment_score"`
	Pros             []string `json:"pros"`
	Cons             []string `json:"cons"`
	Summary          string   `json:"summary"`
}

// Quality indicator keys the AI provider rates in [0,1].
const (
	QualityDurability    = "durability"
	QualityPerformance   = "performance"
	QualityBuildQuality  = "build_quality"
	QualityValueForMoney = "value_for_money"
)

// QualityIndicatorKeys is the fixed set of indicators averaged into the
// quality score.
var QualityIndicatorKeys = []string{
	QualityDurability,
	QualityPerformance,
	QualityBuildQuality,
	QualityValueForMoney,
}

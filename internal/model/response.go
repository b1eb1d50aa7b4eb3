package model

// SearchResponse is the payload for GET /api/search.
type SearchResponse struct {
	Query        string    `json:"query"`
	TotalResults int       `json:"total_results"`
	Products     []Product `json:"products"`
	Cached       bool      `json:"cached"`
}

// CompareResponse is the payload for GET /api/compare. Products are sorted
// descending by value score.
type CompareResponse struct {
	Products       []ProductAnalysis `json:"products"`
	BestValue      *ProductAnalysis  `json:"best_value,omitempty"`
	BestPrice      *ProductAnalysis  `json:"best_price,omitempty"`
	BestQuality    *ProductAnalysis  `json:"best_quality,omitempty"`
	Recommendation string            `json:"recommendation"`
	Cached         bool              `json:"cached"`
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"pricelens/internal/config"
	"pricelens/internal/logger"
	"pricelens/internal/model"
)

// SentimentProvider analyzes reviews and writes recommendations. All methods
// recover from provider failure internally: a malformed or missing response
// degrades to a rating-based heuristic, never to an error the pipeline has
// to handle.
type SentimentProvider interface {
	AnalyzeSentiment(ctx context.Context, reviews []model.Review, productTitle string) (*model.SentimentAnalysis, error)
	ExtractQualityIndicators(ctx context.Context, reviews []model.Review, productTitle string) (map[string]float64, error)
	GenerateRecommendation(ctx context.Context, products []model.ProductAnalysis) (string, error)
}

// SentimentService implements SentimentProvider over the Gemini API.
type SentimentService struct {
	config *config.AIConfig
	client *http.Client
	log    *logger.Logger
}

// NewSentimentService creates a Gemini-backed sentiment service.
func NewSentimentService(cfg *config.AIConfig, log *logger.Logger) *SentimentService {
	return &SentimentService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		log: log,
	}
}

// AnalyzeSentiment runs review sentiment analysis. With no reviews, a
// disabled API key, a transport failure or a malformed response, it degrades
// to the rating heuristic.
func (s *SentimentService) AnalyzeSentiment(ctx context.Context, reviews []model.Review, productTitle string) (*model.SentimentAnalysis, error) {
	if len(reviews) == 0 {
		return &model.SentimentAnalysis{
			OverallSentiment: model.SentimentNeutral,
			SentimentScore:   0.0,
			Pros:             []string{},
			Cons:             []string{},
			Summary:          "No reviews available for analysis.",
		}, nil
	}

	if !s.config.IsEnabled() {
		return s.heuristicSentiment(reviews), nil
	}

	prompt := s.buildSentimentPrompt(reviews, productTitle)
	response, err := s.callGemini(ctx, s.config.Models.Sentiment, prompt, true)
	if err != nil {
		s.log.Warn("sentiment analysis fell back to rating heuristic", "error", err)
		return s.heuristicSentiment(reviews), nil
	}

	var result model.SentimentAnalysis
	if err := json.Unmarshal([]byte(stripCodeFences(response)), &result); err != nil {
		s.log.Warn("sentiment response was not valid JSON", "error", err)
		return s.heuristicSentiment(reviews), nil
	}

	if len(result.Pros) > 5 {
		result.Pros = result.Pros[:5]
	}
	if len(result.Cons) > 5 {
		result.Cons = result.Cons[:5]
	}
	result.SentimentScore = math.Min(1, math.Max(-1, result.SentimentScore))
	return &result, nil
}

// heuristicSentiment derives sentiment purely from the average rating:
// >=4.0 positive, >=2.5 neutral, else negative; score = (avg-2.5)/2.5.
func (s *SentimentService) heuristicSentiment(reviews []model.Review) *model.SentimentAnalysis {
	if len(reviews) == 0 {
		return &model.SentimentAnalysis{
			OverallSentiment: model.SentimentNeutral,
			SentimentScore:   0.0,
			Pros:             []string{},
			Cons:             []string{},
			Summary:          "Unable to analyze reviews.",
		}
	}

	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := sum / float64(len(reviews))

	sentiment := model.SentimentNegative
	switch {
	case avg >= 4.0:
		sentiment = model.SentimentPositive
	case avg >= 2.5:
		sentiment = model.SentimentNeutral
	}

	return &model.SentimentAnalysis{
		OverallSentiment: sentiment,
		SentimentScore:   math.Round((avg-2.5)/2.5*100) / 100,
		Pros:             []string{"Based on average rating only"},
		Cons:             []string{"Detailed analysis unavailable"},
		Summary:          fmt.Sprintf("Average rating: %.1f/5 based on %d reviews.", avg, len(reviews)),
	}
}

// ExtractQualityIndicators rates durability, performance, build quality and
// value for money in [0,1]. The fallback derives all four from the average
// rating.
func (s *SentimentService) ExtractQualityIndicators(ctx context.Context, reviews []model.Review, productTitle string) (map[string]float64, error) {
	if len(reviews) == 0 {
		return map[string]float64{
			model.QualityDurability:    0.5,
			model.QualityPerformance:   0.5,
			model.QualityBuildQuality:  0.5,
			model.QualityValueForMoney: 0.5,
		}, nil
	}

	if !s.config.IsEnabled() {
		return s.heuristicQuality(reviews), nil
	}

	prompt := s.buildQualityPrompt(reviews, productTitle)
	response, err := s.callGemini(ctx, s.config.Models.Quality, prompt, true)
	if err != nil {
		s.log.Warn("quality extraction fell back to rating heuristic", "error", err)
		return s.heuristicQuality(reviews), nil
	}

	var indicators map[string]float64
	if err := json.Unmarshal([]byte(stripCodeFences(response)), &indicators); err != nil {
		s.log.Warn("quality response was not valid JSON", "error", err)
		return s.heuristicQuality(reviews), nil
	}
	return indicators, nil
}

func (s *SentimentService) heuristicQuality(reviews []model.Review) map[string]float64 {
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	normalized := sum / float64(len(reviews)) / 5.0

	return map[string]float64{
		model.QualityDurability:    normalized,
		model.QualityPerformance:   normalized,
		model.QualityBuildQuality:  normalized,
		model.QualityValueForMoney: normalized,
	}
}

// GenerateRecommendation writes a short natural-language comparison summary.
// The fallback names the highest-scoring product.
func (s *SentimentService) GenerateRecommendation(ctx context.Context, products []model.ProductAnalysis) (string, error) {
	if len(products) == 0 {
		return "No products available for comparison.", nil
	}

	if !s.config.IsEnabled() {
		return fallbackRecommendation(products), nil
	}

	prompt, err := s.buildRecommendationPrompt(products)
	if err != nil {
		return fallbackRecommendation(products), nil
	}

	response, err := s.callGemini(ctx, s.config.Models.Recommendation, prompt, false)
	if err != nil {
		s.log.Warn("recommendation fell back to template", "error", err)
		return fallbackRecommendation(products), nil
	}
	return strings.TrimSpace(response), nil
}

func fallbackRecommendation(products []model.ProductAnalysis) string {
	best := products[0]
	for _, p := range products[1:] {
		if p.ValueScore > best.ValueScore {
			best = p
		}
	}
	return fmt.Sprintf("Based on our analysis, '%s' offers the best overall value with a score of %.1f/10.",
		best.Title, best.ValueScore)
}

// callGemini makes a request to the Gemini API and extracts the first
// candidate's text.
func (s *SentimentService) callGemini(ctx context.Context, modelName, prompt string, jsonResponse bool) (string, error) {
	generationConfig := map[string]any{}
	if jsonResponse {
		generationConfig["responseMimeType"] = "application/json"
	}

	reqBody := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": generationConfig,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.ModelEndpoint(modelName), s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

// stripCodeFences removes markdown fences some models wrap JSON in.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Prompt builders
func (s *SentimentService) buildSentimentPrompt(reviews []model.Review, productTitle string) string {
	var b strings.Builder
	for i, r := range reviews {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "Rating: %.1f/5 - %s\n", r.Rating, truncate(r.Text, 500))
	}

	return fmt.Sprintf(`Analyze the following customer reviews for the product "%s" and provide a structured sentiment analysis.

Reviews:
%s
Provide your analysis in the following JSON format:
{
    "overall_sentiment": "positive" | "negative" | "neutral",
    "sentiment_score": <float between -1 and 1, where -1 is very negative and 1 is very positive>,
    "pros": ["list of key positive points mentioned by customers, max 5"],
    "cons": ["list of key negative points or concerns, max 5"],
    "summary": "A brief 2-3 sentence summary of overall customer sentiment"
}

Only respond with valid JSON, no additional text.`, productTitle, b.String())
}

func (s *SentimentService) buildQualityPrompt(reviews []model.Review, productTitle string) string {
	var b strings.Builder
	for i, r := range reviews {
		if i >= 10 {
			break
		}
		b.WriteString(truncate(r.Text, 300))
		b.WriteString("\n")
	}

	return fmt.Sprintf(`Analyze these reviews for "%s" and rate the following quality aspects from 0.0 to 1.0.

Reviews:
%s
Respond in JSON format:
{
    "durability": <0.0-1.0>,
    "performance": <0.0-1.0>,
    "build_quality": <0.0-1.0>,
    "value_for_money": <0.0-1.0>
}

Only respond with valid JSON.`, productTitle, b.String())
}

func (s *SentimentService) buildRecommendationPrompt(products []model.ProductAnalysis) (string, error) {
	type productSummary struct {
		Title        string  `json:"title"`
		Price        float64 `json:"price"`
		ValueScore   float64 `json:"value_score"`
		PriceScore   float64 `json:"price_score"`
		QualityScore float64 `json:"quality_score"`
		Source       string  `json:"source"`
	}

	summaries := make([]productSummary, 0, len(products))
	for _, p := range products {
		summaries = append(summaries, productSummary{
			Title:        p.Title,
			Price:        p.Price,
			ValueScore:   p.ValueScore,
			PriceScore:   p.PriceScore,
			QualityScore: p.QualityScore,
			Source:       string(p.Source),
		})
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are a shopping advisor. Based on the following product comparison data, provide a clear recommendation for which product offers the best value.

Product Data:
%s

Consider:
1. Price and value for money
2. Customer reviews and sentiment
3. Quality indicators
4. Overall value score

Provide a concise 3-4 sentence recommendation explaining your choice and why. Focus on practical advice for the buyer.`, data), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

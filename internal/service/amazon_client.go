package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pricelens/internal/logger"
	"pricelens/internal/model"
	"pricelens/internal/pricing"
)

// AmazonClient searches Amazon listings and fetches product reviews via the
// RapidAPI real-time data endpoint. It is the only source with review
// support.
type AmazonClient struct {
	apiKey     string
	apiHost    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewAmazonClient creates an Amazon source client.
func NewAmazonClient(apiKey, apiHost string, httpClient *http.Client, log *logger.Logger) *AmazonClient {
	return &AmazonClient{
		apiKey:     apiKey,
		apiHost:    apiHost,
		httpClient: httpClient,
		log:        log.With("source", model.SourceAmazon),
	}
}

// Source returns the platform this client searches.
func (c *AmazonClient) Source() model.Source {
	return model.SourceAmazon
}

type amazonSearchResponse struct {
	Data struct {
		Products []struct {
			ASIN                 string `json:"asin"`
			ProductTitle         string `json:"product_title"`
			ProductPrice         string `json:"product_price"`
			ProductOriginalPrice string `json:"product_original_price"`
			ProductPhoto         string `json:"product_photo"`
			ProductURL           string `json:"product_url"`
			ProductStarRating    string `json:"product_star_rating"`
			ProductNumRatings    *int   `json:"product_num_ratings"`
			IsPrime              bool   `json:"is_prime"`
		} `json:"products"`
	} `json:"data"`
}

// Search queries Amazon and returns up to limit products with normalized
// prices. Items whose price string yields no value are skipped.
func (c *AmazonClient) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("country", "US")
	params.Set("sort_by", "RELEVANCE")

	var resp amazonSearchResponse
	if err := getJSON(ctx, c.httpClient, buildURL(c.apiHost, "/search", params), c.apiKey, c.apiHost, &resp); err != nil {
		return nil, err
	}

	items := resp.Data.Products
	c.log.Debug("search returned", "query", query, "items", len(items))
	if len(items) > limit {
		items = items[:limit]
	}

	products := make([]model.Product, 0, len(items))
	for _, item := range items {
		price, currency := pricing.Normalize(item.ProductPrice, "USD")
		if price == nil {
			continue
		}
		originalPrice, _ := pricing.Normalize(item.ProductOriginalPrice, "USD")

		availability := "unknown"
		if item.IsPrime {
			availability = "in_stock"
		}

		products = append(products, model.Product{
			ID:            ProductID(model.SourceAmazon, item.ASIN),
			LocalID:       item.ASIN,
			Title:         titleOrUnknown(item.ProductTitle),
			Price:         *price,
			OriginalPrice: originalPrice,
			Currency:      currency,
			ImageURL:      item.ProductPhoto,
			ProductURL:    item.ProductURL,
			Source:        model.SourceAmazon,
			Rating:        parseRating(item.ProductStarRating),
			ReviewCount:   item.ProductNumRatings,
			Availability:  availability,
		})
	}
	return products, nil
}

type amazonReviewsResponse struct {
	Data struct {
		Reviews []struct {
			ReviewComment      string `json:"review_comment"`
			ReviewStarRating   string `json:"review_star_rating"`
			ReviewAuthor       string `json:"review_author"`
			ReviewDate         string `json:"review_date"`
			IsVerifiedPurchase bool   `json:"is_verified_purchase"`
		} `json:"reviews"`
	} `json:"data"`
}

// FetchReviews retrieves up to limit reviews for an ASIN.
func (c *AmazonClient) FetchReviews(ctx context.Context, localID string, limit int) ([]model.Review, error) {
	params := url.Values{}
	params.Set("asin", localID)
	params.Set("country", "US")
	params.Set("verified_purchases_only", "false")
	params.Set("images_or_videos_only", "false")
	params.Set("page", "1")

	var resp amazonReviewsResponse
	if err := getJSON(ctx, c.httpClient, buildURL(c.apiHost, "/product-reviews", params), c.apiKey, c.apiHost, &resp); err != nil {
		return nil, err
	}

	items := resp.Data.Reviews
	if len(items) > limit {
		items = items[:limit]
	}

	reviews := make([]model.Review, 0, len(items))
	for _, item := range items {
		rating := 0.0
		if r := parseRating(item.ReviewStarRating); r != nil {
			rating = *r
		}

		author := item.ReviewAuthor
		if author == "" {
			author = "Anonymous"
		}

		reviews = append(reviews, model.Review{
			Text:     item.ReviewComment,
			Rating:   rating,
			Author:   author,
			Date:     item.ReviewDate,
			Verified: item.IsVerifiedPurchase,
		})
	}
	return reviews, nil
}

// parseRating handles star ratings delivered as strings like "4.5".
func parseRating(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &r
}

func titleOrUnknown(title string) string {
	if title == "" {
		return "Unknown"
	}
	return title
}

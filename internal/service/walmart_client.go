package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"pricelens/internal/logger"
	"pricelens/internal/model"
	"pricelens/internal/pricing"
)

// WalmartClient searches Walmart listings via RapidAPI. The endpoint exposes
// no review data, so FetchReviews always reports ErrReviewsUnsupported.
type WalmartClient struct {
	apiKey     string
	apiHost    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewWalmartClient creates a Walmart source client.
func NewWalmartClient(apiKey, apiHost string, httpClient *http.Client, log *logger.Logger) *WalmartClient {
	return &WalmartClient{
		apiKey:     apiKey,
		apiHost:    apiHost,
		httpClient: httpClient,
		log:        log.With("source", model.SourceWalmart),
	}
}

// Source returns the platform this client searches.
func (c *WalmartClient) Source() model.Source {
	return model.SourceWalmart
}

type walmartSearchResponse struct {
	Items []struct {
		USItemID  json.Number `json:"usItemId"`
		Name      string      `json:"name"`
		PriceInfo struct {
			CurrentPrice struct {
				Price       *float64 `json:"price"`
				PriceString string   `json:"priceString"`
			} `json:"currentPrice"`
			WasPrice struct {
				Price *float64 `json:"price"`
			} `json:"wasPrice"`
		} `json:"priceInfo"`
		ImageInfo struct {
			ThumbnailURL string `json:"thumbnailUrl"`
		} `json:"imageInfo"`
		AverageRating        *float64 `json:"averageRating"`
		NumberOfReviews      *int     `json:"numberOfReviews"`
		AvailabilityStatusV2 struct {
			Value string `json:"value"`
		} `json:"availabilityStatusV2"`
	} `json:"items"`
}

// Search queries Walmart and returns up to limit products. Prices arrive as
// numbers when available, falling back to the display string.
func (c *WalmartClient) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")

	var resp walmartSearchResponse
	if err := getJSON(ctx, c.httpClient, buildURL(c.apiHost, "/search", params), c.apiKey, c.apiHost, &resp); err != nil {
		return nil, err
	}

	items := resp.Items
	c.log.Debug("search returned", "query", query, "items", len(items))
	if len(items) > limit {
		items = items[:limit]
	}

	products := make([]model.Product, 0, len(items))
	for _, item := range items {
		price := item.PriceInfo.CurrentPrice.Price
		if price == nil {
			price, _ = pricing.Normalize(item.PriceInfo.CurrentPrice.PriceString, "USD")
		}
		if price == nil {
			continue
		}

		availability := "unknown"
		if item.AvailabilityStatusV2.Value == "IN_STOCK" {
			availability = "in_stock"
		}

		localID := item.USItemID.String()
		products = append(products, model.Product{
			ID:            ProductID(model.SourceWalmart, localID),
			LocalID:       localID,
			Title:         titleOrUnknown(item.Name),
			Price:         *price,
			OriginalPrice: item.PriceInfo.WasPrice.Price,
			Currency:      "USD",
			ImageURL:      item.ImageInfo.ThumbnailURL,
			ProductURL:    "https://www.walmart.com/ip/" + localID,
			Source:        model.SourceWalmart,
			Rating:        item.AverageRating,
			ReviewCount:   item.NumberOfReviews,
			Availability:  availability,
		})
	}
	return products, nil
}

// FetchReviews is unsupported for Walmart.
func (c *WalmartClient) FetchReviews(ctx context.Context, localID string, limit int) ([]model.Review, error) {
	return nil, ErrReviewsUnsupported
}

package service

import (
	"context"
	"net/http"
	"net/url"

	"pricelens/internal/logger"
	"pricelens/internal/model"
	"pricelens/internal/pricing"
)

// EbayClient searches eBay listings via RapidAPI. The endpoint exposes no
// review data, so FetchReviews always reports ErrReviewsUnsupported.
type EbayClient struct {
	apiKey     string
	apiHost    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewEbayClient creates an eBay source client.
func NewEbayClient(apiKey, apiHost string, httpClient *http.Client, log *logger.Logger) *EbayClient {
	return &EbayClient{
		apiKey:     apiKey,
		apiHost:    apiHost,
		httpClient: httpClient,
		log:        log.With("source", model.SourceEbay),
	}
}

// Source returns the platform this client searches.
func (c *EbayClient) Source() model.Source {
	return model.SourceEbay
}

type ebaySearchResponse struct {
	Results []struct {
		ItemID string `json:"itemId"`
		Title  string `json:"title"`
		Price  struct {
			Value string `json:"value"`
		} `json:"price"`
		Image struct {
			ImageURL string `json:"imageUrl"`
		} `json:"image"`
		ItemWebURL string `json:"itemWebUrl"`
	} `json:"results"`
}

// Search queries eBay and returns up to limit products. eBay items carry no
// rating or review count.
func (c *EbayClient) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	params := url.Values{}
	params.Set("keywords", query)
	params.Set("page", "1")

	var resp ebaySearchResponse
	if err := getJSON(ctx, c.httpClient, buildURL(c.apiHost, "/search", params), c.apiKey, c.apiHost, &resp); err != nil {
		return nil, err
	}

	items := resp.Results
	c.log.Debug("search returned", "query", query, "items", len(items))
	if len(items) > limit {
		items = items[:limit]
	}

	products := make([]model.Product, 0, len(items))
	for _, item := range items {
		price, currency := pricing.Normalize(item.Price.Value, "USD")
		if price == nil {
			continue
		}

		products = append(products, model.Product{
			ID:           ProductID(model.SourceEbay, item.ItemID),
			LocalID:      item.ItemID,
			Title:        titleOrUnknown(item.Title),
			Price:        *price,
			Currency:     currency,
			ImageURL:     item.Image.ImageURL,
			ProductURL:   item.ItemWebURL,
			Source:       model.SourceEbay,
			Availability: "in_stock",
		})
	}
	return products, nil
}

// FetchReviews is unsupported for eBay.
func (c *EbayClient) FetchReviews(ctx context.Context, localID string, limit int) ([]model.Review, error) {
	return nil, ErrReviewsUnsupported
}

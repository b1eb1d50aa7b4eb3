package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"pricelens/internal/model"
)

// ErrReviewsUnsupported is returned by sources that expose no review API.
// The pipeline substitutes synthetic reviews for those products.
var ErrReviewsUnsupported = errors.New("review fetch not supported for this source")

// SourceClient searches one e-commerce platform. Implementations must keep
// failures local: an error from one source never aborts sibling sources.
type SourceClient interface {
	Source() model.Source
	Search(ctx context.Context, query string, limit int) ([]model.Product, error)
	FetchReviews(ctx context.Context, localID string, limit int) ([]model.Review, error)
}

// ProductID derives a stable identifier from a source and its local item id.
// The same inputs always produce the same id.
func ProductID(source model.Source, localID string) string {
	sum := md5.Sum([]byte(string(source) + ":" + localID))
	return hex.EncodeToString(sum[:])[:16]
}

// getJSON issues a GET with RapidAPI headers and decodes the response body.
func getJSON(ctx context.Context, client *http.Client, rawURL, apiKey, apiHost string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-RapidAPI-Key", apiKey)
	req.Header.Set("X-RapidAPI-Host", apiHost)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", req.URL.Host, resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}

func buildURL(host, path string, params url.Values) string {
	return "https://" + host + path + "?" + params.Encode()
}

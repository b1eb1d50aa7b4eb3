package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pricelens/internal/model"
	"pricelens/internal/service"
)

// Request validation limits.
const (
	maxQueryLength  = 200
	maxSearchLimit  = 50
	maxCompareLimit = 10
)

// ProductHandler handles the search and compare endpoints.
type ProductHandler struct {
	compareSvc *service.CompareService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(compareSvc *service.CompareService) *ProductHandler {
	return &ProductHandler{compareSvc: compareSvc}
}

// Search handles GET /api/search
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, ok := parseQuery(w, r)
	if !ok {
		return
	}
	sources, ok := parseSources(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r, 10, maxSearchLimit)
	if !ok {
		return
	}

	minPrice, ok := parseBound(w, r, "min_price")
	if !ok {
		return
	}
	maxPrice, ok := parseBound(w, r, "max_price")
	if !ok {
		return
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		writeError(w, http.StatusBadRequest, "min_price cannot exceed max_price")
		return
	}

	resp, err := h.compareSvc.Search(r.Context(), service.SearchParams{
		Query:    query,
		Sources:  sources,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Limit:    limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Compare handles GET /api/compare
func (h *ProductHandler) Compare(w http.ResponseWriter, r *http.Request) {
	query, ok := parseQuery(w, r)
	if !ok {
		return
	}
	sources, ok := parseSources(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r, 5, maxCompareLimit)
	if !ok {
		return
	}

	resp, err := h.compareSvc.Compare(r.Context(), query, sources, limit)
	if err != nil {
		if errors.Is(err, service.ErrNoProducts) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health handles GET /health
func (h *ProductHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"cache":  h.compareSvc.CacheStats(r.Context()),
	})
}

func parseQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return "", false
	}
	if len(query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "query must be at most 200 characters")
		return "", false
	}
	return query, true
}

// parseSources accepts repeated sources params or a comma-separated list and
// defaults to every supported platform.
func parseSources(w http.ResponseWriter, r *http.Request) ([]model.Source, bool) {
	raw := r.URL.Query()["sources"]
	if len(raw) == 0 {
		return model.AllSources, true
	}

	var sources []model.Source
	seen := make(map[model.Source]bool)
	for _, item := range raw {
		for _, name := range strings.Split(item, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			source, err := model.ParseSource(name)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return nil, false
			}
			if !seen[source] {
				seen[source] = true
				sources = append(sources, source)
			}
		}
	}
	if len(sources) == 0 {
		return model.AllSources, true
	}
	return sources, true
}

func parseLimit(w http.ResponseWriter, r *http.Request, defaultLimit, maxLimit int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxLimit))
		return 0, false
	}
	return limit, true
}

func parseBound(w http.ResponseWriter, r *http.Request, name string) (*float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		writeError(w, http.StatusBadRequest, name+" must be a non-negative number")
		return nil, false
	}
	return &v, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

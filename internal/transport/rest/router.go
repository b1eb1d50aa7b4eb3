package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"pricelens/internal/logger"
	"pricelens/internal/service"
	"pricelens/internal/transport/rest/handler"
	"pricelens/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	CompareService *service.CompareService
	Logger         *logger.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	productHandler := handler.NewProductHandler(c.CompareService)

	// CORS first, request id after so preflights are not logged with bodies
	r.Use(corsMiddleware)
	r.Use(middleware.RequestID(c.Logger))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", productHandler.Search).Methods("GET", "OPTIONS")
	api.HandleFunc("/compare", productHandler.Compare).Methods("GET", "OPTIONS")

	r.HandleFunc("/health", productHandler.Health).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

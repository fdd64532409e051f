package search

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"

	"smeta-backend/internal/storage"
)

type ProductSearcher interface {
	SearchProducts(ctx context.Context, text string, limit int) ([]*storage.Product, error)
}

type Response struct {
	Products []*storage.Product `json:"products"`
}

// SearchProducts - поиск по каталогу: GET /api/products/search?q=&limit=.
// limit ограничен maxLimit.
func SearchProducts(log *slog.Logger, searcher ProductSearcher, maxLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.SearchProducts"

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			http.Error(w, "Missing required query parameter 'q'", http.StatusBadRequest)
			return
		}

		limit := maxLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				http.Error(w, "Invalid 'limit'", http.StatusBadRequest)
				return
			}
			if n < limit {
				limit = n
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		products, err := searcher.SearchProducts(ctx, query, limit)
		if err != nil {
			log.With(slog.String("op", op), slog.String("q", query), slog.String("error", err.Error())).Error("Failed to search products")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if products == nil {
			products = []*storage.Product{}
		}

		render.JSON(w, r, Response{Products: products})
	}
}

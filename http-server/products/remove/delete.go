package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"smeta-backend/internal/storage"
)

type ProductDeleter interface {
	DeleteProduct(ctx context.Context, id string) error
}

// DeleteProduct удаляет товар из каталога. Позиции смет, уже ссылающиеся
// на товар, не меняются; при следующей загрузке шаблона это ProductUnavailable.
func DeleteProduct(log *slog.Logger, deleter ProductDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.products.DeleteProduct"

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Missing product id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := deleter.DeleteProduct(ctx, id); err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				http.Error(w, "Product not found", http.StatusNotFound)
				return
			}

			log.Error("Failed to delete product", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

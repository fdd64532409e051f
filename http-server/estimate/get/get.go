package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"smeta-backend/internal/storage"
)

type EstimateProvider interface {
	GetEstimate(ctx context.Context, id int64) (*storage.Estimate, error)
}

type Response struct {
	Estimate *storage.Estimate      `json:"estimate"`
	Summary  storage.EstimateSummary `json:"summary"`
}

// GetEstimate отдаёт смету с позициями и итогами в AZN.
func GetEstimate(log *slog.Logger, provider EstimateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.estimate.GetEstimate"

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid estimate id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		est, err := provider.GetEstimate(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrEstimateNotFound) {
				http.Error(w, "Estimate not found", http.StatusNotFound)
				return
			}

			log.With(
				slog.String("op", op),
				slog.Int64("id", id),
				slog.String("error", err.Error()),
			).Error("Failed to fetch estimate")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if est.Items == nil {
			est.Items = []storage.LineItem{}
		}

		render.JSON(w, r, Response{
			Estimate: est,
			Summary:  est.Summary(),
		})
	}
}

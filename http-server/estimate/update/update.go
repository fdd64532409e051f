package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"smeta-backend/internal/storage"
)

type EstimateItemUpdater interface {
	UpdateEstimateItem(ctx context.Context, estimateID int64, itemID int, edit storage.ItemEdit) (*storage.LineItem, error)
}

// UpdateEstimateItem меняет количество или наценку позиции сметы:
// PATCH /api/estimates/{id}/items/{itemID}.
func UpdateEstimateItem(log *slog.Logger, updater EstimateItemUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.estimate.UpdateEstimateItem"

		estimateID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid estimate id", http.StatusBadRequest)
			return
		}
		itemID, err := strconv.Atoi(chi.URLParam(r, "itemID"))
		if err != nil {
			http.Error(w, "Invalid item id", http.StatusBadRequest)
			return
		}

		var edit storage.ItemEdit
		if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}
		if edit.Quantity == nil && edit.MarginPercent == nil {
			http.Error(w, "нужно указать quantity или margin_percent", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		item, err := updater.UpdateEstimateItem(ctx, estimateID, itemID, edit)
		if err != nil {
			if errors.Is(err, storage.ErrEstimateItemNotFound) {
				http.Error(w, "Estimate item not found", http.StatusNotFound)
				return
			}

			log.With(
				slog.String("op", op),
				slog.Int64("estimate_id", estimateID),
				slog.Int("item_id", itemID),
				slog.String("error", err.Error()),
			).Error("Failed to update estimate item")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, item)
	}
}

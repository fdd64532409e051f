package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
)

type EstimateCreator interface {
	CreateEstimate(ctx context.Context, name string, stringCount int) (int64, error)
}

type Request struct {
	Name        string `json:"name"`
	StringCount int    `json:"string_count"`
}

type Response struct {
	ID int64 `json:"id"`
}

// CreateEstimate создаёт пустую смету.
func CreateEstimate(log *slog.Logger, creator EstimateCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.estimate.CreateEstimate"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "не указано название сметы", http.StatusBadRequest)
			return
		}
		if req.StringCount < 0 {
			http.Error(w, "string_count не может быть отрицательным", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := creator.CreateEstimate(ctx, req.Name, req.StringCount)
		if err != nil {
			log.Error("Failed to create estimate", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{ID: id})
	}
}

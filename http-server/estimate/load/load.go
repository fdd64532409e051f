package load

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"smeta-backend/internal/service/templateload"
	"smeta-backend/internal/storage"
)

type TemplateLoader interface {
	LoadTemplate(ctx context.Context, req templateload.LoadRequest) (*templateload.Result, error)
}

type Request struct {
	TemplateID  string         `json:"template_id"`
	Mode        string         `json:"mode"`
	Binding     string         `json:"binding"`
	Selections  map[int]string `json:"selections"`
	SkipAllFrom *int           `json:"skip_all_from"`
}

// LoadTemplate загружает шаблон в смету: POST /api/estimates/{id}/load-template.
func LoadTemplate(log *slog.Logger, loader TemplateLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.estimate.LoadTemplate"

		estimateID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid estimate id", http.StatusBadRequest)
			return
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.TemplateID) == "" {
			http.Error(w, "Missing template_id", http.StatusBadRequest)
			return
		}

		// выбор товаров может идти через поиск по каталогу на каждую позицию
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		res, err := loader.LoadTemplate(ctx, templateload.LoadRequest{
			EstimateID:  estimateID,
			TemplateID:  strings.TrimSpace(req.TemplateID),
			Mode:        templateload.Mode(strings.ToLower(req.Mode)),
			Binding:     templateload.Binding(strings.ToLower(req.Binding)),
			Selections:  req.Selections,
			SkipAllFrom: req.SkipAllFrom,
		})
		if err != nil {
			switch {
			case errors.Is(err, templateload.ErrInvalidMode), errors.Is(err, templateload.ErrInvalidBinding):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, storage.ErrTemplateNotFound):
				http.Error(w, "Template not found", http.StatusNotFound)
			case errors.Is(err, storage.ErrEstimateNotFound):
				http.Error(w, "Estimate not found", http.StatusNotFound)
			case errors.Is(err, storage.ErrEstimateConflict):
				http.Error(w, "Estimate was changed concurrently, retry", http.StatusConflict)
			default:
				log.With(
					slog.String("op", op),
					slog.Int64("estimate_id", estimateID),
					slog.String("template_id", req.TemplateID),
					slog.String("error", err.Error()),
				).Error("Failed to load template")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		if res.Warnings == nil {
			res.Warnings = []templateload.Warning{}
		}

		render.JSON(w, r, res)
	}
}

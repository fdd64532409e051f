package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"smeta-backend/internal/storage"
)

type TemplateProvider interface {
	Get(ctx context.Context, id string) (*storage.Template, error)
	List(ctx context.Context) ([]storage.TemplateSummary, error)
}

type ResponseAllTemplates struct {
	Templates []storage.TemplateSummary `json:"templates"`
	Error     string                    `json:"error,omitempty"`
}

func GetTemplate(log *slog.Logger, provider TemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.GetTemplate"

		id := chi.URLParam(r, "id")
		if id == "" {
			log.With(slog.String("op", op)).Error("Missing 'id' in URL")
			http.Error(w, "Missing template id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		tpl, err := provider.Get(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrTemplateNotFound) {
				log.With(slog.String("op", op), slog.String("id", id)).Warn("Template not found")
				http.Error(w, "Template not found", http.StatusNotFound)
				return
			}

			log.With(
				slog.String("op", op),
				slog.String("id", id),
				slog.String("error", err.Error()),
			).Error("Failed to fetch template")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, tpl)
	}
}

func GetAllTemplates(log *slog.Logger, provider TemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.GetAllTemplates"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		templates, err := provider.List(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Failed to fetch templates")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, ResponseAllTemplates{Templates: templates})
	}
}

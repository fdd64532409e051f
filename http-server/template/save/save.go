package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"smeta-backend/internal/service/templates"
	"smeta-backend/internal/storage"
)

type TemplateSaver interface {
	Save(ctx context.Context, name string, items []storage.TemplateItem) (*storage.Template, error)
}

type Request struct {
	Name  string                 `json:"name"`
	Items []storage.TemplateItem `json:"items"`
}

// SaveTemplate создаёт шаблон или заменяет позиции шаблона с тем же названием.
func SaveTemplate(log *slog.Logger, saver TemplateSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.SaveTemplate"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		tpl, err := saver.Save(ctx, req.Name, req.Items)
		if err != nil {
			if templates.IsValidation(err) {
				log.With(slog.String("op", op), slog.String("name", req.Name)).Warn("Template rejected", slog.String("error", err.Error()))
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			log.Error("Failed to save template", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "ошибка сохранения шаблона", http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, tpl)
	}
}

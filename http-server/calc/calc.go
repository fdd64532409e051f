package calc

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"smeta-backend/internal/service/formula"
)

type Request struct {
	Text      string             `json:"text"`
	Variables map[string]float64 `json:"variables"`
}

type Response struct {
	Value float64 `json:"value"`
	OK    bool    `json:"ok"`
}

// Calc считает значение поля ввода: число или формулу вида "=2*string".
// Нераспознанный ввод возвращается с ok=false.
func Calc(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.calc.Calc"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.With(slog.String("op", op)).Warn("Invalid request body", slog.String("error", err.Error()))
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		value, ok := formula.ParseCalcText(req.Text, req.Variables)
		if !ok {
			log.With(slog.String("op", op), slog.String("text", req.Text)).Debug("Calc text rejected")
		}

		render.JSON(w, r, Response{Value: value, OK: ok})
	}
}

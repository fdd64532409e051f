package get

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/render"

	"smeta-backend/internal/service/currency"
	"smeta-backend/internal/storage"
)

type CurrencyRatesProvider interface {
	GetCurrencyRates(ctx context.Context) ([]storage.CurrencyRate, error)
}

type RateJSON struct {
	Code      string     `json:"code"`
	Rate      float64    `json:"rate"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type ResponseRates struct {
	Base  string     `json:"base"`
	Rates []RateJSON `json:"rates"`
}

// GetCurrencyRates отдаёт курсы к AZN; валюты без сохранённого курса
// возвращаются со значением по умолчанию.
func GetCurrencyRates(log *slog.Logger, provider CurrencyRatesProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.GetCurrencyRates"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rows, err := provider.GetCurrencyRates(ctx)
		if err != nil {
			log.Error("Ошибка получения курсов валют", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
			return
		}

		updated := make(map[string]time.Time, len(rows))
		for _, row := range rows {
			updated[row.Code] = row.UpdatedAt
		}

		rates := currency.FromRates(rows).Rates()
		resp := ResponseRates{Base: "AZN", Rates: make([]RateJSON, 0, len(rates))}
		for code, rate := range rates {
			item := RateJSON{Code: code, Rate: rate}
			if ts, ok := updated[code]; ok {
				item.UpdatedAt = &ts
			}
			resp.Rates = append(resp.Rates, item)
		}
		sort.Slice(resp.Rates, func(i, j int) bool { return resp.Rates[i].Code < resp.Rates[j].Code })

		render.JSON(w, r, resp)
	}
}

package update

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"smeta-backend/internal/constants"
)

type CurrencyRatesUpdater interface {
	UpdateCurrencyRates(ctx context.Context, rates map[string]float64) error
}

type Request struct {
	Rates map[string]float64 `json:"rates"`
}

// UpdateCurrencyRates сохраняет курсы, введённые вручную. Курс AZN не меняется.
func UpdateCurrencyRates(log *slog.Logger, updater CurrencyRatesUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.UpdateCurrencyRates"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Неверный JSON", http.StatusBadRequest)
			return
		}

		rates, err := normalizeRates(req.Rates)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := updater.UpdateCurrencyRates(ctx, rates); err != nil {
			log.Error("Ошибка обновления курсов валют", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func normalizeRates(in map[string]float64) (map[string]float64, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("не переданы курсы")
	}

	out := make(map[string]float64, len(in))
	for code, rate := range in {
		code = strings.ToUpper(strings.TrimSpace(code))
		if !constants.SupportedCurrencies[code] {
			return nil, fmt.Errorf("неподдерживаемая валюта %q", code)
		}
		if code == constants.BaseCurrency {
			return nil, fmt.Errorf("курс %s изменить нельзя", constants.BaseCurrency)
		}
		if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return nil, fmt.Errorf("некорректный курс %s: %v", code, rate)
		}
		out[code] = rate
	}
	return out, nil
}

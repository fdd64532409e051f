package currency

import (
	"strings"

	"smeta-backend/internal/constants"
	"smeta-backend/internal/storage"
)

// Converter пересчитывает суммы в базовую валюту (AZN) по таблице курсов.
type Converter struct {
	rates map[string]float64
}

// NewConverter копирует курсы; отсутствующие валюты берутся из DefaultRates.
func NewConverter(rates map[string]float64) *Converter {
	merged := make(map[string]float64, len(constants.DefaultRates)+len(rates))
	for code, rate := range constants.DefaultRates {
		merged[code] = rate
	}
	for code, rate := range rates {
		merged[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	merged[constants.BaseCurrency] = 1.0

	return &Converter{rates: merged}
}

// FromRates строит конвертер по строкам таблицы курсов.
func FromRates(rows []storage.CurrencyRate) *Converter {
	rates := make(map[string]float64, len(rows))
	for _, r := range rows {
		rates[r.Code] = r.Rate
	}
	return NewConverter(rates)
}

// ConvertToBase: для AZN сумма не меняется, для неизвестной валюты курс 1.0,
// для нулевого курса результат 0.
func (c *Converter) ConvertToBase(amount float64, currency string) float64 {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" || code == constants.BaseCurrency {
		return amount
	}

	rate, ok := c.rates[code]
	if !ok {
		rate = 1.0
	}
	if rate == 0 {
		return 0
	}
	return amount * rate
}

// Rates возвращает копию текущей таблицы.
func (c *Converter) Rates() map[string]float64 {
	out := make(map[string]float64, len(c.rates))
	for code, rate := range c.rates {
		out[code] = rate
	}
	return out
}

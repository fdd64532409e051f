package storage

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"smeta-backend/internal/constants"
)

var (
	ErrEstimateNotFound     = errors.New("смета не найдена")
	ErrEstimateItemNotFound = errors.New("позиция сметы не найдена")
	ErrEstimateConflict     = errors.New("смета изменена параллельно")
)

type Estimate struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	StringCount int        `json:"string_count"`
	NextID      int        `json:"next_id"`
	Items       []LineItem `json:"items"`
}

// LineItem - позиция сметы, полученная из шаблона или добавленная вручную.
type LineItem struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	UnitPrice     float64 `json:"unit_price"`
	Currency      string  `json:"currency"`
	UnitPriceAZN  float64 `json:"unit_price_azn"`
	Total         float64 `json:"total"`
	MarginPercent float64 `json:"margin_percent"`
	Category      string  `json:"category"`
	Source        string  `json:"source"`
	Note          string  `json:"note"`
	IsCustom      bool    `json:"is_custom"`
	ProductID     *string `json:"product_id"`
	QuantityRound bool    `json:"quantity_round"`
	PriceRound    bool    `json:"price_round"`
}

// Clear удаляет все позиции и сбрасывает нумерацию (режим замены).
func (e *Estimate) Clear() {
	e.Items = nil
	e.NextID = 1
}

// Append добавляет позицию под очередным номером.
func (e *Estimate) Append(item LineItem) LineItem {
	if e.NextID < 1 {
		e.NextID = len(e.Items) + 1
	}
	item.ID = e.NextID
	e.Items = append(e.Items, item)
	e.NextID++
	return item
}

// ItemEdit - правка позиции в таблице сметы; nil - поле не меняется.
type ItemEdit struct {
	Quantity      *float64 `json:"quantity"`
	MarginPercent *float64 `json:"margin_percent"`
}

// Apply меняет количество (не меньше 0.01, итог пересчитывается) и наценку
// (в пределах 0..100).
func (i *LineItem) Apply(edit ItemEdit) {
	if edit.Quantity != nil {
		i.Quantity = math.Max(*edit.Quantity, constants.MinAmount)
		i.Total = i.Quantity * i.UnitPriceAZN
	}
	if edit.MarginPercent != nil {
		i.MarginPercent = clampMargin(*edit.MarginPercent)
	}
}

type EstimateSummary struct {
	Cost   decimal.Decimal `json:"cost"`
	Margin decimal.Decimal `json:"margin"`
	Final  decimal.Decimal `json:"final"`
}

// Summary - себестоимость, наценка и итог сметы в AZN, округлённые до копеек.
func (e *Estimate) Summary() EstimateSummary {
	cost := decimal.Zero
	margin := decimal.Zero
	hundred := decimal.NewFromInt(100)

	for _, item := range e.Items {
		total := decimal.NewFromFloat(item.Total)
		cost = cost.Add(total)

		pct := decimal.NewFromFloat(clampMargin(item.MarginPercent))
		margin = margin.Add(total.Mul(pct).Div(hundred))
	}

	return EstimateSummary{
		Cost:   cost.Round(2),
		Margin: margin.Round(2),
		Final:  cost.Add(margin).Round(2),
	}
}

func clampMargin(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

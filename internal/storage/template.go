package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"smeta-backend/internal/constants"
)

var ErrTemplateNotFound = errors.New("шаблон не найден")

type Template struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Items     []TemplateItem `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TemplateSummary - строка списка шаблонов (без позиций).
type TemplateSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ItemCount int       `json:"item_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TemplateItem struct {
	GenericName     string   `json:"generic_name"`
	VarName         string   `json:"var_name"`
	AmountExpr      string   `json:"amount_expr"`
	PriceExpr       string   `json:"price_expr"`
	AmountRound     bool     `json:"amount_round"`
	PriceRound      bool     `json:"price_round"`
	Unit            string   `json:"unit"`
	DefaultPrice    float64  `json:"default_price"`
	Currency        string   `json:"currency"`
	DefaultPriceAZN *float64 `json:"default_price_azn"`
	Category        string   `json:"category"`
	ProductID       *string  `json:"product_id"`
}

// IsGeneric - позиция без привязки к товару каталога.
func (t TemplateItem) IsGeneric() bool {
	return t.ProductID == nil || strings.TrimSpace(*t.ProductID) == ""
}

// Label - подпись позиции для предупреждений.
func (t TemplateItem) Label(index int) string {
	if name := strings.TrimSpace(t.GenericName); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", index+1)
}

// DefinesVar - позиция публикует своё количество как переменную.
func (t TemplateItem) DefinesVar() bool {
	name := strings.TrimSpace(t.VarName)
	return name != "" && name != constants.StringVar
}

// UnmarshalJSON заполняет значения по умолчанию и поддерживает старые записи,
// где цена хранилась в unit_price, а имя - в name.
func (t *TemplateItem) UnmarshalJSON(data []byte) error {
	type plain TemplateItem
	var raw struct {
		plain
		Name      *string  `json:"name"`
		UnitPrice *float64 `json:"unit_price"`
		HasPrice  *float64 `json:"default_price"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*t = TemplateItem(raw.plain)
	if raw.HasPrice == nil && raw.UnitPrice != nil {
		t.DefaultPrice = *raw.UnitPrice
	}
	if raw.HasPrice != nil {
		t.DefaultPrice = *raw.HasPrice
	}
	if t.GenericName == "" && raw.Name != nil {
		t.GenericName = *raw.Name
	}
	if strings.TrimSpace(t.AmountExpr) == "" {
		t.AmountExpr = constants.DefaultAmountExpr
	}
	if t.Currency == "" {
		t.Currency = constants.BaseCurrency
	}
	if t.ProductID != nil && strings.TrimSpace(*t.ProductID) == "" {
		t.ProductID = nil
	}

	return nil
}

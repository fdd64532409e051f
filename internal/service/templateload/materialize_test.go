package templateload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smeta-backend/internal/service/currency"
	"smeta-backend/internal/storage"
)

func testConverter() *currency.Converter {
	return currency.NewConverter(map[string]float64{"USD": 1.7, "EUR": 2})
}

func TestMaterializeGeneric(t *testing.T) {
	conv := testConverter()
	item := storage.TemplateItem{
		GenericName:  "Кабель",
		DefaultPrice: 10,
		Currency:     "USD",
		Category:     "Электрика",
		AmountRound:  true,
	}

	// 1. без формулы цены и без цены в AZN - конвертация
	line := MaterializeGeneric(item, 2, nil, conv)
	assert.Equal(t, "Кабель", line.Name)
	assert.Equal(t, "ədəd", line.Unit)
	assert.Equal(t, 10.0, line.UnitPrice)
	assert.Equal(t, "USD", line.Currency)
	assert.InDelta(t, 17, line.UnitPriceAZN, 1e-9)
	assert.InDelta(t, 34, line.Total, 1e-9)
	assert.Equal(t, "From template: Кабель", line.Note)
	assert.Equal(t, "Электрика", line.Category)
	assert.True(t, line.IsCustom)
	assert.Nil(t, line.ProductID)
	assert.Equal(t, 0.0, line.MarginPercent)
	assert.True(t, line.QuantityRound)
	assert.False(t, line.PriceRound)

	// 2. сохранённая цена в AZN важнее конвертации
	item.DefaultPriceAZN = floatPtr(20)
	line = MaterializeGeneric(item, 2, nil, conv)
	assert.Equal(t, 20.0, line.UnitPriceAZN)
	assert.Equal(t, 40.0, line.Total)

	// 3. формула цены важнее всего и считается в валюте позиции
	line = MaterializeGeneric(item, 2, floatPtr(5), conv)
	assert.Equal(t, 5.0, line.UnitPrice)
	assert.InDelta(t, 8.5, line.UnitPriceAZN, 1e-9)
	assert.InDelta(t, 17, line.Total, 1e-9)
}

func TestMaterializeGeneric_BaseCurrencyDefault(t *testing.T) {
	item := storage.TemplateItem{GenericName: "Cable", Unit: "m", DefaultPrice: 1.5}

	line := MaterializeGeneric(item, 10, nil, testConverter())
	assert.Equal(t, "AZN", line.Currency)
	assert.Equal(t, "m", line.Unit)
	assert.Equal(t, 1.5, line.UnitPriceAZN)
	assert.Equal(t, 15.0, line.Total)
}

func TestMaterializeBound(t *testing.T) {
	item := storage.TemplateItem{GenericName: "Хомут", Unit: "шт", Category: "Крепёж", PriceRound: true}
	product := &storage.Product{
		ID:       "p-7",
		Name:     "Хомут 4.8x200",
		Unit:     "",
		Price:    3,
		Currency: "EUR",
		PriceAZN: floatPtr(5.5),
		Source:   "Leroy",
	}

	line := MaterializeBound(item, product, 4, nil, testConverter())
	assert.Equal(t, "Хомут 4.8x200", line.Name)
	assert.Equal(t, "шт", line.Unit)
	assert.Equal(t, 3.0, line.UnitPrice)
	assert.Equal(t, "EUR", line.Currency)
	assert.Equal(t, 5.5, line.UnitPriceAZN)
	assert.Equal(t, 22.0, line.Total)
	assert.Equal(t, "Крепёж", line.Category)
	assert.Equal(t, "Leroy", line.Source)
	assert.Equal(t, "From template: Хомут", line.Note)
	assert.False(t, line.IsCustom)
	require.NotNil(t, line.ProductID)
	assert.Equal(t, "p-7", *line.ProductID)
	assert.True(t, line.PriceRound)

	// без цены в AZN - конвертация цены товара
	product.PriceAZN = nil
	line = MaterializeBound(item, product, 4, nil, testConverter())
	assert.Equal(t, 6.0, line.UnitPriceAZN)

	// формула цены в валюте товара
	line = MaterializeBound(item, product, 1, floatPtr(10), testConverter())
	assert.Equal(t, 10.0, line.UnitPrice)
	assert.Equal(t, 20.0, line.UnitPriceAZN)
}

func TestMaterializeLinked(t *testing.T) {
	item := storage.TemplateItem{GenericName: "Лампа", ProductID: strPtr("p-1")}
	product := &storage.Product{ID: "p-1", Name: "Лампа LED 10W", Unit: "шт", Price: 4, Currency: "AZN", Category: "Свет"}

	line := MaterializeLinked(item, product, 3, nil, testConverter())
	assert.Equal(t, "Лампа LED 10W", line.Name)
	assert.Empty(t, line.Note)
	assert.Equal(t, 12.0, line.Total)
	assert.Equal(t, "Свет", line.Category)
	assert.False(t, line.IsCustom)
	require.NotNil(t, line.ProductID)
	assert.Equal(t, "p-1", *line.ProductID)
}

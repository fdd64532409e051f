package templateload

import (
	"strings"

	"smeta-backend/internal/constants"
	"smeta-backend/internal/storage"
)

type Converter interface {
	ConvertToBase(amount float64, currency string) float64
}

// MaterializeGeneric - позиция без товара: цена и единица из шаблона.
func MaterializeGeneric(item storage.TemplateItem, amount float64, override *float64, conv Converter) storage.LineItem {
	currency := normCurrency(item.Currency)

	unitPrice := item.DefaultPrice
	var priceAZN float64
	switch {
	case override != nil:
		unitPrice = *override
		priceAZN = conv.ConvertToBase(unitPrice, currency)
	case item.DefaultPriceAZN != nil:
		priceAZN = *item.DefaultPriceAZN
	default:
		priceAZN = conv.ConvertToBase(unitPrice, currency)
	}

	return storage.LineItem{
		Name:          item.GenericName,
		Quantity:      amount,
		Unit:          firstNonEmpty(item.Unit, constants.DefaultUnit),
		UnitPrice:     unitPrice,
		Currency:      currency,
		UnitPriceAZN:  priceAZN,
		Total:         amount * priceAZN,
		Category:      item.Category,
		Note:          constants.TemplateNotePrefix + item.GenericName,
		IsCustom:      true,
		QuantityRound: item.AmountRound,
		PriceRound:    item.PriceRound,
	}
}

// MaterializeBound - обобщённая позиция, для которой выбран товар каталога.
func MaterializeBound(item storage.TemplateItem, product *storage.Product, amount float64, override *float64, conv Converter) storage.LineItem {
	line := fromProduct(item, product, amount, override, conv)
	line.Note = constants.TemplateNotePrefix + item.GenericName
	return line
}

// MaterializeLinked - позиция шаблона, уже привязанная к товару.
// product - актуальные данные, перечитанные при загрузке.
func MaterializeLinked(item storage.TemplateItem, product *storage.Product, amount float64, override *float64, conv Converter) storage.LineItem {
	return fromProduct(item, product, amount, override, conv)
}

func fromProduct(item storage.TemplateItem, product *storage.Product, amount float64, override *float64, conv Converter) storage.LineItem {
	currency := normCurrency(product.Currency)

	unitPrice := product.Price
	var priceAZN float64
	switch {
	case override != nil:
		unitPrice = *override
		priceAZN = conv.ConvertToBase(unitPrice, currency)
	case product.PriceAZN != nil:
		priceAZN = *product.PriceAZN
	default:
		priceAZN = conv.ConvertToBase(unitPrice, currency)
	}

	productID := product.ID

	return storage.LineItem{
		Name:          firstNonEmpty(product.Name, item.GenericName),
		Quantity:      amount,
		Unit:          firstNonEmpty(product.Unit, item.Unit, constants.DefaultUnit),
		UnitPrice:     unitPrice,
		Currency:      currency,
		UnitPriceAZN:  priceAZN,
		Total:         amount * priceAZN,
		Category:      firstNonEmpty(product.Category, item.Category),
		Source:        product.Source,
		IsCustom:      false,
		ProductID:     &productID,
		QuantityRound: item.AmountRound,
		PriceRound:    item.PriceRound,
	}
}

func normCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return constants.BaseCurrency
	}
	return code
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

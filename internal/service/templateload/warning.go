package templateload

import (
	"errors"
	"fmt"
	"strings"

	"smeta-backend/internal/service/formula"
)

type WarningKind string

const (
	KindInvalidExpression      WarningKind = "InvalidExpression"
	KindUnresolvedVariables    WarningKind = "UnresolvedVariables"
	KindUnknownVariable        WarningKind = "UnknownVariable"
	KindDivisionByZero         WarningKind = "DivisionByZero"
	KindInvalidResult          WarningKind = "InvalidResult"
	KindUnknownVariableInPrice WarningKind = "UnknownVariableInPrice"
	KindInvalidPriceExpression WarningKind = "InvalidPriceExpression"
	KindProductUnavailable     WarningKind = "ProductUnavailable"
	KindBindingFailed          WarningKind = "BindingFailed"
)

// Warning - некритичная ошибка по одной позиции шаблона.
// Позиция всё равно попадает в смету со значениями по умолчанию.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Item    string      `json:"item"`
	Index   int         `json:"index"`
	Names   []string    `json:"names,omitempty"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
}

func newWarning(kind WarningKind, index int, label string, names []string, err error) Warning {
	w := Warning{
		Kind:  kind,
		Item:  label,
		Index: index,
		Names: names,
		Err:   err,
	}
	w.Message = w.describe()
	return w
}

func (w Warning) describe() string {
	switch w.Kind {
	case KindUnresolvedVariables:
		return fmt.Sprintf("%s: не удалось вычислить количество, нет переменных: %s", w.Item, strings.Join(w.Names, ", "))
	case KindUnknownVariableInPrice:
		return fmt.Sprintf("%s: в формуле цены неизвестные переменные: %s", w.Item, strings.Join(w.Names, ", "))
	case KindInvalidPriceExpression:
		return fmt.Sprintf("%s: ошибка в формуле цены", w.Item)
	case KindProductUnavailable:
		return fmt.Sprintf("%s: товар недоступен, использованы значения шаблона", w.Item)
	case KindBindingFailed:
		return fmt.Sprintf("%s: не удалось выбрать товар", w.Item)
	}

	if w.Err != nil {
		return fmt.Sprintf("%s: %s: %v", w.Item, w.Kind, w.Err)
	}
	return fmt.Sprintf("%s: %s", w.Item, w.Kind)
}

func (w Warning) String() string {
	return w.Message
}

// amountWarningKind сопоставляет ошибку вычислителя с видом предупреждения.
func amountWarningKind(err error) WarningKind {
	switch {
	case errors.Is(err, formula.ErrUnknownVariable):
		return KindUnknownVariable
	case errors.Is(err, formula.ErrDivisionByZero):
		return KindDivisionByZero
	case errors.Is(err, formula.ErrInvalidResult):
		return KindInvalidResult
	default:
		return KindInvalidExpression
	}
}

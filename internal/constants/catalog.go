package constants

const (
	// BaseCurrency - валюта, в которой считаются итоги сметы.
	BaseCurrency = "AZN"

	// StringVar - зарезервированное имя переменной: количество стрингов сметы.
	StringVar = "string"

	DefaultAmountExpr = "1"
	DefaultUnit       = "ədəd"

	// MinAmount - нижняя граница рассчитанного количества.
	MinAmount = 0.01
	// FallbackAmount - количество для позиций, которые не удалось рассчитать.
	FallbackAmount = 1.0

	TemplateNotePrefix = "From template: "

	DefaultSearchLimit = 100
)

var (
	// DefaultRates - курсы к AZN по умолчанию, пока в базе ничего не сохранено.
	DefaultRates = map[string]float64{
		"AZN": 1.0,
		"USD": 0.0,
		"EUR": 0.0,
		"TRY": 0.0,
	}

	SupportedCurrencies = map[string]bool{
		"AZN": true,
		"USD": true,
		"EUR": true,
		"TRY": true,
	}
)

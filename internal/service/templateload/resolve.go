package templateload

import (
	"math"
	"strings"

	"smeta-backend/internal/constants"
	"smeta-backend/internal/service/formula"
	"smeta-backend/internal/storage"
)

// NewEnv - начальное окружение загрузки: только string.
func NewEnv(stringCount int) map[string]float64 {
	return map[string]float64{constants.StringVar: float64(stringCount)}
}

type AmountResolution struct {
	Amounts  []float64
	Env      map[string]float64
	Warnings []Warning
}

// ResolveAmounts вычисляет количества позиций проходами до неподвижной точки.
// Позиция вычисляется, когда все её переменные уже известны; успешно
// вычисленная позиция с var_name публикует значение для следующих.
// Циклы и ссылки на несуществующие имена дают UnresolvedVariables.
func ResolveAmounts(items []storage.TemplateItem, seed map[string]float64) AmountResolution {
	env := make(map[string]float64, len(seed)+len(items))
	for k, v := range seed {
		env[k] = v
	}

	res := AmountResolution{
		Amounts: make([]float64, len(items)),
		Env:     env,
	}

	parsed := make([]*formula.Expr, len(items))
	pending := make([]int, 0, len(items))

	for i, item := range items {
		src := strings.TrimSpace(item.AmountExpr)
		if src == "" {
			src = constants.DefaultAmountExpr
		}

		expr, err := formula.Parse(src)
		if err != nil {
			res.Amounts[i] = constants.FallbackAmount
			res.Warnings = append(res.Warnings, newWarning(KindInvalidExpression, i, item.Label(i), nil, err))
			continue
		}
		parsed[i] = expr
		pending = append(pending, i)
	}

	for len(pending) > 0 {
		progress := false
		next := pending[:0]

		for _, i := range pending {
			if len(missingNames(parsed[i].Names(), env)) > 0 {
				next = append(next, i)
				continue
			}

			progress = true
			item := items[i]

			value, err := parsed[i].Eval(env)
			if err != nil {
				res.Amounts[i] = constants.FallbackAmount
				res.Warnings = append(res.Warnings, newWarning(amountWarningKind(err), i, item.Label(i), nil, err))
				continue
			}

			value = math.Max(value, constants.MinAmount)
			if item.AmountRound {
				value = math.Ceil(value)
			}
			res.Amounts[i] = value

			if item.DefinesVar() {
				env[strings.TrimSpace(item.VarName)] = value
			}
		}

		pending = next
		if !progress {
			break
		}
	}

	for _, i := range pending {
		res.Amounts[i] = constants.FallbackAmount
		missing := missingNames(parsed[i].Names(), env)
		res.Warnings = append(res.Warnings, newWarning(KindUnresolvedVariables, i, items[i].Label(i), missing, nil))
	}

	return res
}

type PriceResolution struct {
	// Overrides[i] == nil - формулы цены нет или она не вычислилась.
	Overrides []*float64
	Warnings  []Warning
}

// ResolvePrices вычисляет формулы цены в итоговом окружении.
// Цены не становятся переменными.
func ResolvePrices(items []storage.TemplateItem, env map[string]float64) PriceResolution {
	res := PriceResolution{Overrides: make([]*float64, len(items))}

	for i, item := range items {
		src := strings.TrimSpace(item.PriceExpr)
		if src == "" {
			continue
		}

		expr, err := formula.Parse(src)
		if err != nil {
			res.Warnings = append(res.Warnings, newWarning(KindInvalidPriceExpression, i, item.Label(i), nil, err))
			continue
		}

		if missing := missingNames(expr.Names(), env); len(missing) > 0 {
			res.Warnings = append(res.Warnings, newWarning(KindUnknownVariableInPrice, i, item.Label(i), missing, nil))
			continue
		}

		value, err := expr.Eval(env)
		if err != nil {
			res.Warnings = append(res.Warnings, newWarning(KindInvalidPriceExpression, i, item.Label(i), nil, err))
			continue
		}

		if item.PriceRound {
			value = math.Ceil(value)
		}
		res.Overrides[i] = &value
	}

	return res
}

func missingNames(names []string, env map[string]float64) []string {
	var missing []string
	for _, name := range names {
		if _, ok := env[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

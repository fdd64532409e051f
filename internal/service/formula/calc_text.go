package formula

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// plainNumberRe - только десятичная запись: без nan/inf, hex и разделителей "_".
var plainNumberRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseCalcText разбирает ввод в стиле таблицы: "=2*string" - формула,
// "12,5" или "12.5" - число. При любой ошибке ok == false.
func ParseCalcText(text string, vars map[string]float64) (value float64, ok bool) {
	defer func() {
		if recover() != nil {
			value, ok = 0, false
		}
	}()

	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	if !strings.HasPrefix(text, "=") {
		text = strings.ReplaceAll(text, ",", ".")
		if !plainNumberRe.MatchString(text) {
			return 0, false
		}
		val, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return val, true
	}

	expr := strings.TrimSpace(text[1:])
	if expr == "" {
		return 0, false
	}

	val, err := Evaluate(expr, vars)
	if err != nil {
		return 0, false
	}
	return val, true
}

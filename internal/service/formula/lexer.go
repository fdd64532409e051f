package formula

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokPow
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	pos  int
	text string
	num  float64
}

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "конец выражения"
	case tokNumber:
		return "число"
	case tokIdent:
		return "имя"
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	default:
		return "оператор"
	}
}

// tokenize разбивает выражение на токены. Любой символ вне грамматики
// (точка после имени, кавычки, запятые, скобки [] и т.д.) - ошибка.
func tokenize(src string) ([]token, error) {
	var tokens []token

	i := 0
	for i < len(src) {
		c := src[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			end, err := scanNumber(src, i)
			if err != nil {
				return nil, err
			}
			val, err := strconv.ParseFloat(src[start:end], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: некорректное число %q", ErrInvalidExpression, src[start:end])
			}
			tokens = append(tokens, token{kind: tokNumber, pos: start, text: src[start:end], num: val})
			i = end
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, pos: start, text: src[start:i]})
		case c == '*':
			if i+1 < len(src) && src[i+1] == '*' {
				tokens = append(tokens, token{kind: tokPow, pos: i, text: "**"})
				i += 2
				continue
			}
			tokens = append(tokens, token{kind: tokStar, pos: i, text: "*"})
			i++
		case c == '+':
			tokens = append(tokens, token{kind: tokPlus, pos: i, text: "+"})
			i++
		case c == '-':
			tokens = append(tokens, token{kind: tokMinus, pos: i, text: "-"})
			i++
		case c == '/':
			tokens = append(tokens, token{kind: tokSlash, pos: i, text: "/"})
			i++
		case c == '%':
			tokens = append(tokens, token{kind: tokPercent, pos: i, text: "%"})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, pos: i, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, pos: i, text: ")"})
			i++
		default:
			return nil, fmt.Errorf("%w: недопустимый символ %q в позиции %d", ErrInvalidExpression, c, i)
		}
	}

	tokens = append(tokens, token{kind: tokEOF, pos: len(src)})
	return tokens, nil
}

// scanNumber: 12, 1.5, .5, 3., 2e3, 1.5E-2
func scanNumber(src string, i int) (int, error) {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j >= len(src) || !isDigit(src[j]) {
			return 0, fmt.Errorf("%w: некорректная экспонента в позиции %d", ErrInvalidExpression, i)
		}
		for j < len(src) && isDigit(src[j]) {
			j++
		}
		i = j
	}
	// 2x, 1.2.3 и подобное
	if i < len(src) && (isIdentPart(src[i]) || src[i] == '.') {
		return 0, fmt.Errorf("%w: некорректное число в позиции %d", ErrInvalidExpression, i)
	}
	return i, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

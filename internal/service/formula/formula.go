// Package formula вычисляет арифметические выражения из полей количества
// и цены шаблона.
//
// Грамматика:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "%") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ "**" unary ]
//	primary = number | name | "(" expr ")"
//
// Всё остальное отклоняется: вызовы, обращение к атрибутам, индексы,
// литералы кроме десятичных чисел.
package formula

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInvalidExpression = errors.New("invalid expression")
	ErrUnknownVariable   = errors.New("unknown variable")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrInvalidResult     = errors.New("invalid result")
)

// UnknownVariableError - в выражении есть имя, которого нет среди переменных.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable %q", e.Name)
}

func (e *UnknownVariableError) Is(target error) bool {
	return target == ErrUnknownVariable
}

// Expr - разобранное выражение, можно вычислять многократно.
type Expr struct {
	src   string
	root  node
	names []string
}

// Parse проверяет expr по грамматике.
func Parse(expr string) (*Expr, error) {
	src := strings.TrimSpace(expr)
	if src == "" {
		return nil, fmt.Errorf("%w: пустое выражение", ErrInvalidExpression)
	}

	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: лишний токен %q в позиции %d", ErrInvalidExpression, tok.text, tok.pos)
	}

	return &Expr{src: src, root: root, names: p.names}, nil
}

// Names - имена переменных в порядке первого появления.
func (e *Expr) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

func (e *Expr) String() string {
	return e.src
}

// Eval вычисляет выражение; NaN и Inf дают ErrInvalidResult.
func (e *Expr) Eval(vars map[string]float64) (float64, error) {
	val, err := e.root.eval(vars)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidResult, val)
	}
	return val, nil
}

// Evaluate разбирает и вычисляет expr за один шаг.
func Evaluate(expr string, vars map[string]float64) (float64, error) {
	parsed, err := Parse(expr)
	if err != nil {
		return 0, err
	}
	return parsed.Eval(vars)
}

// Variables возвращает имена, на которые ссылается expr.
func Variables(expr string) ([]string, error) {
	parsed, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return parsed.Names(), nil
}

type parser struct {
	tokens []token
	pos    int
	names  []string
	seen   map[string]bool
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.kind != tokPlus && tok.kind != tokMinus {
			return left, nil
		}
		p.next()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tok.kind, left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.kind != tokStar && tok.kind != tokSlash && tok.kind != tokPercent {
			return left, nil
		}
		p.next()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tok.kind, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	tok := p.peek()
	if tok.kind == tokPlus || tok.kind == tokMinus {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: tok.kind, operand: operand}, nil
	}
	return p.parsePower()
}

// parsePower: правая ассоциативность, 2**3**2 == 2**9; показатель может
// иметь унарный знак (2**-1).
func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	p.next()

	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: tokPow, left: base, right: exp}, nil
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()

	switch tok.kind {
	case tokNumber:
		return numberNode(tok.num), nil
	case tokIdent:
		p.addName(tok.text)
		return nameNode(tok.text), nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: ожидалась ')' в позиции %d", ErrInvalidExpression, closing.pos)
		}
		return inner, nil
	default:
		return nil, fmt.Errorf("%w: неожиданный %s в позиции %d", ErrInvalidExpression, tok.kind, tok.pos)
	}
}

func (p *parser) addName(name string) {
	if p.seen == nil {
		p.seen = make(map[string]bool)
	}
	if p.seen[name] {
		return
	}
	p.seen[name] = true
	p.names = append(p.names, name)
}

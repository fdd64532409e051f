package formula

import (
	"fmt"
	"math"
)

type node interface {
	eval(vars map[string]float64) (float64, error)
}

type numberNode float64

func (n numberNode) eval(map[string]float64) (float64, error) {
	return float64(n), nil
}

type nameNode string

func (n nameNode) eval(vars map[string]float64) (float64, error) {
	val, ok := vars[string(n)]
	if !ok {
		return 0, &UnknownVariableError{Name: string(n)}
	}
	return val, nil
}

type unaryNode struct {
	op      tokenKind
	operand node
}

func (n *unaryNode) eval(vars map[string]float64) (float64, error) {
	val, err := n.operand.eval(vars)
	if err != nil {
		return 0, err
	}
	if n.op == tokMinus {
		return -val, nil
	}
	return val, nil
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n *binaryNode) eval(vars map[string]float64) (float64, error) {
	a, err := n.left.eval(vars)
	if err != nil {
		return 0, err
	}
	b, err := n.right.eval(vars)
	if err != nil {
		return 0, err
	}

	switch n.op {
	case tokPlus:
		return a + b, nil
	case tokMinus:
		return a - b, nil
	case tokStar:
		return a * b, nil
	case tokSlash:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	case tokPercent:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return floorMod(a, b), nil
	case tokPow:
		if a == 0 && b < 0 {
			return 0, ErrDivisionByZero
		}
		return math.Pow(a, b), nil
	default:
		return 0, fmt.Errorf("%w: неизвестный оператор", ErrInvalidExpression)
	}
}

// floorMod: знак результата совпадает со знаком делителя (-7 % 3 == 2).
func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

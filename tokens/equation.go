package tokens

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Equation is a two-operand arithmetic challenge over + - * /.
type Equation struct {
	A  int
	Op byte
	B  int
}

const operators = "+-*/"

func RandomEquation() Equation {
	op := operators[rand.IntN(len(operators))]
	a, b := rand.IntN(10)+1, rand.IntN(10)+1
	switch op {
	case '-':
		if b > a {
			a, b = b, a
		}
	case '/':
		a = a * b
	}
	return Equation{A: a, Op: op, B: b}
}

func (e Equation) Answer() int {
	switch e.Op {
	case '+':
		return e.A + e.B
	case '-':
		return e.A - e.B
	case '*':
		return e.A * e.B
	case '/':
		if e.B == 0 {
			return 0
		}
		return e.A / e.B
	default:
		panic(fmt.Errorf("unknown operator %q", e.Op))
	}
}

func (e Equation) String() string {
	op := string(e.Op)
	switch e.Op {
	case '*':
		op = "×"
	case '/':
		op = "÷"
	}
	return fmt.Sprintf("%d %s %d", e.A, op, e.B)
}

// ParseEquation accepts exactly "<int> <op> <int>", with ×/÷ as aliases.
func ParseEquation(s string) (Equation, error) {
	s = strings.NewReplacer("×", "*", "÷", "/", "x", "*", "X", "*").Replace(s)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "="))
	for i := 1; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(operators, c) < 0 {
			continue
		}
		a, err1 := strconv.Atoi(strings.TrimSpace(s[:i]))
		b, err2 := strconv.Atoi(strings.TrimSpace(s[i+1:]))
		if err1 != nil || err2 != nil {
			break
		}
		if c == '/' && b == 0 {
			break
		}
		return Equation{A: a, Op: c, B: b}, nil
	}
	return Equation{}, fmt.Errorf("tokens: %q is not a supported equation", s)
}

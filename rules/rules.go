// Package rules defines validator contracts and the chain semantics shared by form
// elements and the markup-free form validator.
//
// A validator is either a Rule (an object with Evaluate and Message) or a Func. A Func
// receives the value and the whole form's values and returns:
//
//   - nil: the value passes;
//   - a Rule: it is evaluated against the value, its message recorded on failure;
//   - a []Rule: each is evaluated the same way;
//   - a string or an error: recorded as a literal message;
//   - anything else: recorded as fmt.Sprint of the result.
//
// Rule failures are recorded once per distinct message; literal messages returned
// by a Func are always recorded.
package rules

import (
	"fmt"
)

type Rule interface {
	Evaluate(value any) bool
	Message() string
}

type Func func(value any, values map[string]any) any

// Comparison is implemented by the less-than/greater-than family. File uploads
// evaluate these against the uploaded size instead of the file name.
type Comparison interface {
	Rule
	Comparison()
}

// Valid reports whether v can be used as a validator.
func Valid(v any) bool {
	switch v.(type) {
	case Rule, Func, func(any, map[string]any) any:
		return true
	default:
		return false
	}
}

// Run applies every validator in order.
func Run(validators []any, value any, values map[string]any, errs *Messages) {
	for _, v := range validators {
		Apply(v, value, values, errs)
	}
}

func Apply(v any, value any, values map[string]any, errs *Messages) {
	switch v := v.(type) {
	case Rule:
		evaluate(v, value, errs)
	case Func:
		interpret(v(value, values), value, errs)
	case func(any, map[string]any) any:
		interpret(v(value, values), value, errs)
	default:
		panic(fmt.Errorf("rules: unsupported validator %T", v))
	}
}

func evaluate(r Rule, value any, errs *Messages) {
	if !r.Evaluate(value) {
		errs.AddUnique(r.Message())
	}
}

func interpret(result any, value any, errs *Messages) {
	switch r := result.(type) {
	case nil:
	case Rule:
		evaluate(r, value, errs)
	case []Rule:
		for _, rule := range r {
			evaluate(rule, value, errs)
		}
	case []any:
		for _, item := range r {
			if rule, ok := item.(Rule); ok {
				evaluate(rule, value, errs)
			} else if item != nil {
				errs.Add(fmt.Sprint(item))
			}
		}
	case string:
		if r != "" {
			errs.Add(r)
		}
	case error:
		errs.Add(r.Error())
	default:
		errs.Add(fmt.Sprint(r))
	}
}

// Messages is an ordered list of error messages.
type Messages []string

func (m *Messages) Add(msg string) {
	*m = append(*m, msg)
}

// AddUnique appends msg unless the exact string is already present.
func (m *Messages) AddUnique(msg string) bool {
	if m.Has(msg) {
		return false
	}
	*m = append(*m, msg)
	return true
}

func (m Messages) Has(msg string) bool {
	for _, s := range m {
		if s == msg {
			return true
		}
	}
	return false
}

func (m *Messages) Clear() {
	*m = nil
}

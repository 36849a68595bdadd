package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	ErrUnknownRule = errors.New("unknown validator")
	ErrBadArgument = errors.New("invalid validator argument")
)

type factory func(arg string) (any, error)

var registry = map[string]factory{
	"not_empty":    noArg(func() any { return NotEmpty("") }),
	"email":        noArg(func() any { return Email("") }),
	"url":          noArg(func() any { return URL("") }),
	"alpha":        noArg(func() any { return Alpha("") }),
	"alphanumeric": noArg(func() any { return AlphaNumeric("") }),
	"numeric":      noArg(func() any { return Numeric("") }),
	"regex": func(arg string) (any, error) {
		if arg == "" {
			return nil, ErrBadArgument
		}
		re, err := regexp.Compile(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadArgument, err)
		}
		return pattern(re, regexDefault), nil
	},
	"length_gt":      intArg(func(n int) any { return LengthGt(n, "") }),
	"length_gte":     intArg(func(n int) any { return LengthGte(n, "") }),
	"length_lt":      intArg(func(n int) any { return LengthLt(n, "") }),
	"length_lte":     intArg(func(n int) any { return LengthLte(n, "") }),
	"length_between": intPair(func(a, b int) any { return LengthBetween(a, b, "") }),
	"equal":          func(arg string) (any, error) { return Equal(arg, ""), nil },
	"not_equal":      func(arg string) (any, error) { return NotEqual(arg, ""), nil },
	"in":             func(arg string) (any, error) { return In(splitList(arg), ""), nil },
	"not_in":         func(arg string) (any, error) { return NotIn(splitList(arg), ""), nil },
	"less_than":      floatArg(func(n float64) any { return LessThan(n, "") }),
	"less_than_equal": floatArg(func(n float64) any {
		return LessThanEqual(n, "")
	}),
	"greater_than": floatArg(func(n float64) any { return GreaterThan(n, "") }),
	"greater_than_equal": floatArg(func(n float64) any {
		return GreaterThanEqual(n, "")
	}),
	"between":         floatPair(func(a, b float64) any { return Between(a, b, "") }),
	"between_include": floatPair(func(a, b float64) any { return BetweenInclude(a, b, "") }),
	"equal_field": func(arg string) (any, error) {
		if arg == "" {
			return nil, ErrBadArgument
		}
		return EqualField(arg, ""), nil
	},
}

// Names lists the rule names understood by Parse.
func Names() []string {
	names := maps.Keys(registry)
	slices.Sort(names)
	return names
}

// Parse turns "name" or "name=arg" into a validator. List and pair arguments are
// separated by commas: "in=a,b,c", "between=1,10".
func Parse(decl string) (any, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(decl), "=")
	f := registry[strings.ToLower(name)]
	if f == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}
	v, err := f(arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", decl, err)
	}
	return v, nil
}

func noArg(f func() any) factory {
	return func(string) (any, error) { return f(), nil }
}

func intArg(f func(int) any) factory {
	return func(arg string) (any, error) {
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return nil, ErrBadArgument
		}
		return f(n), nil
	}
}

func floatArg(f func(float64) any) factory {
	return func(arg string) (any, error) {
		n, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return nil, ErrBadArgument
		}
		return f(n), nil
	}
}

func intPair(f func(a, b int) any) factory {
	return func(arg string) (any, error) {
		a, b, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, ErrBadArgument
		}
		x, err1 := strconv.Atoi(strings.TrimSpace(a))
		y, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil {
			return nil, ErrBadArgument
		}
		return f(x, y), nil
	}
}

func floatPair(f func(a, b float64) any) factory {
	return func(arg string) (any, error) {
		a, b, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, ErrBadArgument
		}
		x, err1 := strconv.ParseFloat(strings.TrimSpace(a), 64)
		y, err2 := strconv.ParseFloat(strings.TrimSpace(b), 64)
		if err1 != nil || err2 != nil {
			return nil, ErrBadArgument
		}
		return f(x, y), nil
	}
}

func splitList(arg string) []string {
	var result []string
	for _, s := range strings.Split(arg, ",") {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return result
}

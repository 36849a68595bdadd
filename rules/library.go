package rules

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rules other than NotEmpty pass blank values; requiredness is an element flag.
func blank(v any) bool {
	return strings.TrimSpace(String(v)) == ""
}

func orDefault(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}

// Check is a Rule built from a predicate.
type Check struct {
	Test func(value any) bool
	Msg  string
}

func (c *Check) Evaluate(value any) bool { return c.Test(value) }
func (c *Check) Message() string         { return c.Msg }

func NotEmpty(msg string) *Check {
	return &Check{
		Msg: orDefault(msg, "This field cannot be empty."),
		Test: func(value any) bool {
			return !blank(value)
		},
	}
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func Email(msg string) *Check {
	return pattern(emailPattern, orDefault(msg, "The value must be a valid email format."))
}

const regexDefault = "The value format is not correct."

// RegEx panics on an invalid expr; Parse reports one as ErrBadArgument.
func RegEx(expr string, msg string) *Check {
	return pattern(regexp.MustCompile(expr), orDefault(msg, regexDefault))
}

func pattern(re *regexp.Regexp, msg string) *Check {
	return &Check{
		Msg: msg,
		Test: func(value any) bool {
			return blank(value) || re.MatchString(String(value))
		},
	}
}

func URL(msg string) *Check {
	return &Check{
		Msg: orDefault(msg, "The value must be a valid URL format."),
		Test: func(value any) bool {
			if blank(value) {
				return true
			}
			u, err := url.Parse(String(value))
			return err == nil && u.Scheme != "" && u.Host != ""
		},
	}
}

func Alpha(msg string) *Check {
	return runes(unicode.IsLetter, orDefault(msg, "The value must only contain characters of the alphabet."))
}

func AlphaNumeric(msg string) *Check {
	return runes(func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}, orDefault(msg, "The value must only contain alphanumeric characters."))
}

func runes(ok func(rune) bool, msg string) *Check {
	return &Check{
		Msg: msg,
		Test: func(value any) bool {
			for _, r := range String(value) {
				if !ok(r) {
					return false
				}
			}
			return true
		},
	}
}

func Numeric(msg string) *Check {
	return &Check{
		Msg: orDefault(msg, "The value must be numeric."),
		Test: func(value any) bool {
			if blank(value) {
				return true
			}
			_, ok := Float(value)
			return ok
		},
	}
}

func length(value any) int {
	return utf8.RuneCountInString(String(value))
}

func LengthGt(n int, msg string) *Check {
	return lengthCheck(func(l int) bool { return l > n }, orDefault(msg, fmt.Sprintf("The value length must be greater than %d.", n)))
}

func LengthGte(n int, msg string) *Check {
	return lengthCheck(func(l int) bool { return l >= n }, orDefault(msg, fmt.Sprintf("The value length must be greater than or equal to %d.", n)))
}

func LengthLt(n int, msg string) *Check {
	return lengthCheck(func(l int) bool { return l < n }, orDefault(msg, fmt.Sprintf("The value length must be less than %d.", n)))
}

func LengthLte(n int, msg string) *Check {
	return lengthCheck(func(l int) bool { return l <= n }, orDefault(msg, fmt.Sprintf("The value length must be less than or equal to %d.", n)))
}

func LengthBetween(min, max int, msg string) *Check {
	return lengthCheck(func(l int) bool { return l >= min && l <= max }, orDefault(msg, fmt.Sprintf("The value length must be between %d and %d.", min, max)))
}

func lengthCheck(ok func(int) bool, msg string) *Check {
	return &Check{
		Msg: msg,
		Test: func(value any) bool {
			return blank(value) || ok(length(value))
		},
	}
}

func Equal(expected any, msg string) *Check {
	return &Check{
		Msg: orDefault(msg, fmt.Sprintf("The value must be equal to %s.", String(expected))),
		Test: func(value any) bool {
			return Same(value, expected)
		},
	}
}

func NotEqual(unexpected any, msg string) *Check {
	return &Check{
		Msg: orDefault(msg, fmt.Sprintf("The value must not be equal to %s.", String(unexpected))),
		Test: func(value any) bool {
			return !Same(value, unexpected)
		},
	}
}

func In(allowed []string, msg string) *Check {
	return &Check{
		Msg: orDefault(msg, fmt.Sprintf("The value must be one of: %s.", strings.Join(allowed, ", "))),
		Test: func(value any) bool {
			return blank(value) || contains(allowed, value)
		},
	}
}

func NotIn(denied []string, msg string) *Check {
	return &Check{
		Msg: orDefault(msg, fmt.Sprintf("The value must not be one of: %s.", strings.Join(denied, ", "))),
		Test: func(value any) bool {
			return !contains(denied, value)
		},
	}
}

func contains(list []string, value any) bool {
	for _, v := range Strings(value) {
		found := false
		for _, s := range list {
			if s == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Compare is the numeric comparison family.
type Compare struct {
	Test func(v float64) bool
	Msg  string
}

func (c *Compare) Comparison()     {}
func (c *Compare) Message() string { return c.Msg }

func (c *Compare) Evaluate(value any) bool {
	if blank(value) {
		return true
	}
	f, ok := Float(value)
	return ok && c.Test(f)
}

func LessThan(n float64, msg string) *Compare {
	return &Compare{func(v float64) bool { return v < n }, orDefault(msg, fmt.Sprintf("The value must be less than %v.", n))}
}

func LessThanEqual(n float64, msg string) *Compare {
	return &Compare{func(v float64) bool { return v <= n }, orDefault(msg, fmt.Sprintf("The value must be less than or equal to %v.", n))}
}

func GreaterThan(n float64, msg string) *Compare {
	return &Compare{func(v float64) bool { return v > n }, orDefault(msg, fmt.Sprintf("The value must be greater than %v.", n))}
}

func GreaterThanEqual(n float64, msg string) *Compare {
	return &Compare{func(v float64) bool { return v >= n }, orDefault(msg, fmt.Sprintf("The value must be greater than or equal to %v.", n))}
}

func Between(min, max float64, msg string) *Compare {
	return &Compare{func(v float64) bool { return v > min && v < max }, orDefault(msg, fmt.Sprintf("The value must be between %v and %v.", min, max))}
}

func BetweenInclude(min, max float64, msg string) *Compare {
	return &Compare{func(v float64) bool { return v >= min && v <= max }, orDefault(msg, fmt.Sprintf("The value must be between or equal to %v and %v.", min, max))}
}

// EqualField compares the value with another field of the same form.
func EqualField(field string, msg string) Func {
	msg = orDefault(msg, fmt.Sprintf("The value must match %s.", field))
	return func(value any, values map[string]any) any {
		return Equal(values[field], msg)
	}
}

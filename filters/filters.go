// Package filters transforms submitted values before they are assigned to form fields.
package filters

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/net/html"
)

var (
	ErrMalformed     = errors.New("malformed filter entry")
	ErrUnknownFilter = errors.New("unknown filter")
)

type Filter interface {
	Filter(value any, name, typ string) any
}

// Func applies F to string values, element-wise to []string values, and passes
// everything else through. Fields whose name or type is excluded are left untouched.
type Func struct {
	F             func(s string) string
	ExcludeByName []string
	ExcludeByType []string
}

func New(f func(s string) string) *Func {
	return &Func{F: f}
}

func (f *Func) Excluding(names ...string) *Func {
	f.ExcludeByName = append(f.ExcludeByName, names...)
	return f
}

func (f *Func) ExcludingTypes(types ...string) *Func {
	f.ExcludeByType = append(f.ExcludeByType, types...)
	return f
}

func (f *Func) Excludes(name, typ string) bool {
	if name != "" && slices.Contains(f.ExcludeByName, strings.TrimSuffix(name, "[]")) {
		return true
	}
	return typ != "" && slices.Contains(f.ExcludeByType, typ)
}

func (f *Func) Filter(value any, name, typ string) any {
	if f.Excludes(name, typ) {
		return value
	}
	switch v := value.(type) {
	case string:
		return f.F(v)
	case []string:
		result := make([]string, len(v))
		for i, s := range v {
			result[i] = f.F(s)
		}
		return result
	default:
		return value
	}
}

func Trim() *Func {
	return New(strings.TrimSpace)
}

// StripTags drops tags and comments, keeping text as written, entities
// included.
func StripTags() *Func {
	return New(stripTags)
}

func stripTags(s string) string {
	var buf strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.TextToken:
			buf.Write(z.Raw())
		}
	}
}

func HTMLEntities() *Func {
	return New(html.EscapeString)
}

func Lower() *Func {
	return New(strings.ToLower)
}

func Upper() *Func {
	return New(strings.ToUpper)
}

func Callback(f func(s string) string) *Func {
	return New(f)
}

// Chain applies filters in order.
func Chain(value any, name, typ string, ff []Filter) any {
	for _, f := range ff {
		value = f.Filter(value, name, typ)
	}
	return value
}

// Config is a declarative filter entry, as found in form definition files.
type Config struct {
	Name          string   `yaml:"name" json:"name"`
	ExcludeByName []string `yaml:"exclude_by_name" json:"exclude_by_name"`
	ExcludeByType []string `yaml:"exclude_by_type" json:"exclude_by_type"`
}

var builtins = map[string]func() *Func{
	"trim":         Trim,
	"strip_tags":   StripTags,
	"htmlentities": HTMLEntities,
	"lower":        Lower,
	"upper":        Upper,
}

func Lookup(cfg Config) (Filter, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrMalformed)
	}
	mk := builtins[strings.ToLower(cfg.Name)]
	if mk == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, cfg.Name)
	}
	f := mk()
	f.ExcludeByName = cfg.ExcludeByName
	f.ExcludeByType = cfg.ExcludeByType
	return f, nil
}

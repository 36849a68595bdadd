package forms

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/andreyvit/formkit/filters"
	"github.com/andreyvit/formkit/rules"
)

// FormValidator validates and filters a plain name-to-value map with the same
// chain semantics as form elements, without any markup.
//
// Errors are additive: Validate records new distinct messages and keeps the
// old ones, so a field fixed since the last call stays invalid until
// ClearErrors.
type FormValidator struct {
	validators      map[string][]any
	required        []string
	RequiredMessage string
	values          map[string]any
	errors          map[string]*rules.Messages
	filters         []filters.Filter
}

func NewFormValidator(values map[string]any) *FormValidator {
	if values == nil {
		values = make(map[string]any)
	}
	return &FormValidator{
		validators:      make(map[string][]any),
		RequiredMessage: DefaultRequiredMessage,
		values:          values,
		errors:          make(map[string]*rules.Messages),
	}
}

func (v *FormValidator) AddValidator(name string, validators ...any) *FormValidator {
	for _, val := range validators {
		if !rules.Valid(val) {
			panic("forms: validator must be a rules.Rule or a rules.Func")
		}
	}
	v.validators[name] = append(v.validators[name], validators...)
	return v
}

func (v *FormValidator) AddRequired(names ...string) *FormValidator {
	for _, name := range names {
		if !slices.Contains(v.required, name) {
			v.required = append(v.required, name)
		}
	}
	return v
}

func (v *FormValidator) Required() []string { return v.required }

func (v *FormValidator) AddFilter(ff ...filters.Filter) *FormValidator {
	v.filters = append(v.filters, ff...)
	return v
}

func (v *FormValidator) Values() map[string]any          { return v.values }
func (v *FormValidator) Value(name string) any           { return v.values[name] }
func (v *FormValidator) SetValue(name string, value any) { v.values[name] = value }

func (v *FormValidator) SetValues(values map[string]any) {
	maps.Copy(v.values, values)
}

// Filter runs every value through the filters, in place.
func (v *FormValidator) Filter() {
	for name, value := range v.values {
		v.values[name] = filters.Chain(value, name, "", v.filters)
	}
}

// Validate checks requiredness and runs the validators, restricted to fields
// when any are given. It reports whether those fields have no errors.
func (v *FormValidator) Validate(fields ...string) bool {
	in := func(name string) bool {
		return len(fields) == 0 || slices.Contains(fields, name)
	}

	for _, name := range v.required {
		if in(name) && rules.IsEmpty(v.values[name]) {
			v.add(name, v.RequiredMessage)
		}
	}

	names := maps.Keys(v.validators)
	slices.Sort(names)
	for _, name := range names {
		if !in(name) {
			continue
		}
		var msgs rules.Messages
		rules.Run(v.validators[name], v.values[name], v.values, &msgs)
		for _, msg := range msgs {
			v.add(name, msg)
		}
	}

	for name, msgs := range v.errors {
		if in(name) && len(*msgs) > 0 {
			return false
		}
	}
	return true
}

func (v *FormValidator) add(name, msg string) {
	msgs := v.errors[name]
	if msgs == nil {
		msgs = new(rules.Messages)
		v.errors[name] = msgs
	}
	msgs.AddUnique(msg)
}

func (v *FormValidator) AddError(name, msg string) { v.add(name, msg) }

// ClearErrors forgets the errors of the named fields, or of all fields.
func (v *FormValidator) ClearErrors(names ...string) {
	if len(names) == 0 {
		clear(v.errors)
		return
	}
	for _, name := range names {
		delete(v.errors, name)
	}
}

func (v *FormValidator) IsValid() bool   { return !v.HasErrors() }
func (v *FormValidator) HasErrors() bool { return len(v.Errors()) > 0 }

// Errors returns the messages of every field that has any.
func (v *FormValidator) Errors() map[string][]string {
	result := make(map[string][]string, len(v.errors))
	for name, msgs := range v.errors {
		if len(*msgs) > 0 {
			result[name] = *msgs
		}
	}
	return result
}

func (v *FormValidator) FieldErrors(name string) []string {
	if msgs := v.errors[name]; msgs != nil {
		return *msgs
	}
	return nil
}

func (v *FormValidator) IsFieldValid(name string) bool {
	return len(v.FieldErrors(name)) == 0
}

// FieldMsg returns the first error of the field, or "".
func (v *FormValidator) FieldMsg(name string) string {
	if errs := v.FieldErrors(name); len(errs) > 0 {
		return errs[0]
	}
	return ""
}

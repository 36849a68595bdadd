package forms

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/andreyvit/formkit/dom"
	"github.com/andreyvit/formkit/rules"
)

const DefaultRequiredMessage = "This field is required."

// Attrs is a set of markup attributes. Attributes from an Attrs are applied
// in key order, so rendering is stable.
type Attrs map[string]string

func (attrs Attrs) Keys() []string {
	keys := maps.Keys(attrs)
	slices.Sort(keys)
	return keys
}

func (attrs Attrs) applyTo(n *dom.Node) {
	for _, k := range attrs.Keys() {
		n.SetAttribute(k, attrs[k])
	}
}

// Decoration is a label, hint, prepend or append fragment of an element.
type Decoration struct {
	Text  string
	Attrs Attrs
}

func (d Decoration) IsZero() bool {
	return d.Text == ""
}

type Renderable interface {
	Node() *dom.Node
	Render() string
}

type Labeled interface {
	Label() Decoration
	SetLabel(text string)
	SetLabelAttributes(attrs Attrs)
	Hint() Decoration
	SetHint(text string)
	SetHintAttributes(attrs Attrs)
	Prepend() Decoration
	SetPrepend(markup string, attrs Attrs)
	Append() Decoration
	SetAppend(markup string, attrs Attrs)
}

type Toggleable interface {
	IsRequired() bool
	SetRequired(required bool)
	RequiredMessage() string
	SetRequiredMessage(msg string)
	IsDisabled() bool
	SetDisabled(disabled bool)
	IsReadonly() bool
	SetReadonly(readonly bool)
	ErrorPre() bool
	SetErrorPre(pre bool)
}

type Validatable interface {
	Validate(values map[string]any) bool
	Validators() []any
	AddValidator(v any)
	Errors() []string
	HasErrors() bool
	AddError(msg string)
	ClearErrors()
}

// Element is one form control.
type Element interface {
	Renderable
	Labeled
	Toggleable
	Validatable

	Name() string
	Type() string
	ID() string
	Value() any
	SetValue(value any)
	ResetValue()
	Attribute(key string) string
	SetAttribute(key, value string)
	SetAttributes(attrs Attrs)
	LabelFor() string
}

type element struct {
	node *dom.Node
	name string
	typ  string

	label   Decoration
	hint    Decoration
	prepend Decoration
	append  Decoration

	required        bool
	requiredMessage string
	errorPre        bool

	validators []any
	errors     rules.Messages
}

func (e *element) init(tag, name, typ string) {
	e.node = dom.New(tag, "")
	e.name = name
	e.typ = typ
	if tag == "input" {
		e.node.SetAttribute("type", typ)
	}
	if name != "" {
		e.node.SetAttribute("name", name)
		e.node.SetAttribute("id", fieldID(name))
	}
}

func (e *element) Node() *dom.Node { return e.node }
func (e *element) Render() string  { return e.node.Render() }
func (e *element) Name() string    { return e.name }
func (e *element) Type() string    { return e.typ }
func (e *element) ID() string      { return e.node.Attribute("id") }
func (e *element) LabelFor() string {
	return e.ID()
}

func (e *element) Attribute(key string) string { return e.node.Attribute(key) }

func (e *element) SetAttribute(key, value string) {
	e.node.SetAttribute(key, value)
}

func (e *element) SetAttributes(attrs Attrs) {
	attrs.applyTo(e.node)
}

func (e *element) Label() Decoration              { return e.label }
func (e *element) SetLabel(text string)           { e.label.Text = text }
func (e *element) SetLabelAttributes(attrs Attrs) { e.label.Attrs = attrs }
func (e *element) Hint() Decoration               { return e.hint }
func (e *element) SetHint(text string)            { e.hint.Text = text }
func (e *element) SetHintAttributes(attrs Attrs)  { e.hint.Attrs = attrs }
func (e *element) Prepend() Decoration            { return e.prepend }
func (e *element) Append() Decoration             { return e.append }

func (e *element) SetPrepend(markup string, attrs Attrs) {
	e.prepend = Decoration{markup, attrs}
}

func (e *element) SetAppend(markup string, attrs Attrs) {
	e.append = Decoration{markup, attrs}
}

func (e *element) IsRequired() bool { return e.required }

func (e *element) SetRequired(required bool) {
	e.required = required
	toggleAttr(e.node, "required", required)
}

func (e *element) RequiredMessage() string {
	if e.requiredMessage == "" {
		return DefaultRequiredMessage
	}
	return e.requiredMessage
}

func (e *element) SetRequiredMessage(msg string) { e.requiredMessage = msg }

func (e *element) IsDisabled() bool { return e.node.HasAttribute("disabled") }

func (e *element) SetDisabled(disabled bool) {
	toggleAttr(e.node, "disabled", disabled)
}

func (e *element) IsReadonly() bool { return e.node.HasAttribute("readonly") }

func (e *element) SetReadonly(readonly bool) {
	toggleAttr(e.node, "readonly", readonly)
}

func (e *element) ErrorPre() bool       { return e.errorPre }
func (e *element) SetErrorPre(pre bool) { e.errorPre = pre }

func (e *element) Validators() []any { return e.validators }

// AddValidator accepts a rules.Rule, a rules.Func or a plain func literal of the
// same signature. Anything else is a programming error.
func (e *element) AddValidator(v any) {
	if !rules.Valid(v) {
		panic("forms: validator must be a rules.Rule or a rules.Func")
	}
	e.validators = append(e.validators, v)
}

func (e *element) Errors() []string    { return e.errors }
func (e *element) HasErrors() bool     { return len(e.errors) > 0 }
func (e *element) AddError(msg string) { e.errors.AddUnique(msg) }
func (e *element) ClearErrors()        { e.errors.Clear() }

// check runs the required check and the validator chain. Errors accumulate
// across calls: rule messages are recorded once, the required message and
// literal messages returned by funcs every time.
func (e *element) check(value any, empty bool, values map[string]any) bool {
	if e.required && empty {
		e.errors.Add(e.RequiredMessage())
	}
	rules.Run(e.validators, value, values, &e.errors)
	return len(e.errors) == 0
}

func toggleAttr(n *dom.Node, key string, on bool) {
	if on {
		n.SetAttribute(key, key)
	} else {
		n.RemoveAttribute(key)
	}
}

func isButton(e Element) bool {
	switch e.Type() {
	case "button", "submit", "reset":
		return true
	default:
		return false
	}
}

func isCheckable(e Element) bool {
	switch e.Type() {
	case "checkbox", "radio", "checkbox-set", "radio-set":
		return true
	default:
		return false
	}
}

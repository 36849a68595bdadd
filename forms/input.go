package forms

import (
	"strings"

	"github.com/andreyvit/formkit/dom"
	"github.com/andreyvit/formkit/rules"
)

// Input is an <input> of any text-like type, including number, range,
// datetime, password, hidden and the submit/reset/button types.
type Input struct {
	element
	value       string
	renderValue bool
}

func NewInput(name, typ, value string) *Input {
	i := &Input{renderValue: typ != "password"}
	i.init("input", name, typ)
	i.SetValue(value)
	return i
}

func NewText(name, value string) *Input     { return NewInput(name, "text", value) }
func NewHidden(name, value string) *Input   { return NewInput(name, "hidden", value) }
func NewPassword(name string) *Input        { return NewInput(name, "password", "") }
func NewSubmit(name, caption string) *Input { return NewInput(name, "submit", caption) }

func NewNumber(name, value, min, max string) *Input {
	i := NewInput(name, "number", value)
	i.SetRange(min, max)
	return i
}

// SetRange sets the min and max attributes; empty bounds are left unset.
func (i *Input) SetRange(min, max string) {
	if min != "" {
		i.node.SetAttribute("min", min)
	}
	if max != "" {
		i.node.SetAttribute("max", max)
	}
}

func (i *Input) Value() any { return i.value }

func (i *Input) SetValue(value any) {
	i.value = rules.String(value)
	i.sync()
}

func (i *Input) ResetValue() {
	if isButton(i) {
		return
	}
	i.SetValue("")
}

// SetRenderValue controls whether the current value is written into markup.
// Passwords are not rendered unless asked to.
func (i *Input) SetRenderValue(render bool) {
	i.renderValue = render
	i.sync()
}

func (i *Input) sync() {
	if i.renderValue {
		i.node.SetAttribute("value", i.value)
	} else {
		i.node.RemoveAttribute("value")
	}
}

func (i *Input) SetAttribute(key, value string) {
	if key == "value" {
		i.SetValue(value)
		return
	}
	i.element.SetAttribute(key, value)
}

func (i *Input) SetAttributes(attrs Attrs) {
	rest := make(Attrs, len(attrs))
	for k, v := range attrs {
		if k == "value" {
			i.SetValue(v)
		} else {
			rest[k] = v
		}
	}
	rest.applyTo(i.node)
}

func (i *Input) isEmpty() bool {
	switch i.typ {
	case "number", "range":
		// "0" is a legitimate number
		return strings.TrimSpace(i.value) == ""
	default:
		return rules.IsEmpty(i.value)
	}
}

func (i *Input) Validate(values map[string]any) bool {
	if isButton(i) {
		return true
	}
	return i.check(i.value, i.isEmpty(), values)
}

// Datalist is a text input bound to a <datalist> of suggestions.
type Datalist struct {
	Input
	list *dom.Node
}

func NewDatalist(name string, choices Choices, value string) *Datalist {
	d := &Datalist{Input: *NewInput(name, "text", value)}
	d.typ = "datalist"
	d.list = dom.New("datalist", "")
	for _, key := range choices.Keys() {
		d.list.AddChild(dom.New("option", "").SetAttribute("value", key))
	}
	d.linkList()
	return d
}

func (d *Datalist) linkList() {
	id := d.ID() + "-datalist"
	d.list.SetAttribute("id", id)
	d.node.SetAttribute("list", id)
}

func (d *Datalist) SetAttribute(key, value string) {
	d.Input.SetAttribute(key, value)
	if key == "id" {
		d.linkList()
	}
}

func (d *Datalist) SetAttributes(attrs Attrs) {
	d.Input.SetAttributes(attrs)
	d.linkList()
}

func (d *Datalist) Node() *dom.Node { return dom.Fragment(d.node, d.list) }
func (d *Datalist) Render() string  { return d.Node().Render() }

type Textarea struct {
	element
}

func NewTextarea(name, value string) *Textarea {
	t := &Textarea{}
	t.init("textarea", name, "textarea")
	t.node.SetText(value)
	return t
}

func (t *Textarea) Value() any         { return t.node.Text() }
func (t *Textarea) SetValue(value any) { t.node.SetText(rules.String(value)) }
func (t *Textarea) ResetValue()        { t.node.SetText("") }

func (t *Textarea) SetAttribute(key, value string) {
	if key == "value" {
		t.SetValue(value)
		return
	}
	t.element.SetAttribute(key, value)
}

func (t *Textarea) Validate(values map[string]any) bool {
	text := t.node.Text()
	return t.check(text, rules.IsEmpty(text), values)
}

// Button is a <button>. Its value is the caption; it always validates.
type Button struct {
	element
}

func NewButton(name, caption string) *Button {
	b := &Button{}
	b.init("button", name, "button")
	b.node.SetAttribute("type", "button")
	b.node.SetText(caption)
	return b
}

func (b *Button) Value() any                         { return b.node.Text() }
func (b *Button) SetValue(value any)                 { b.node.SetText(rules.String(value)) }
func (b *Button) ResetValue()                        {}
func (b *Button) Validate(values map[string]any) bool { return true }

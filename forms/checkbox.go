package forms

import (
	"strconv"

	"github.com/andreyvit/formkit/dom"
	"github.com/andreyvit/formkit/rules"
)

// lockCheckable makes a checkbox or radio readonly. The readonly attribute
// alone does not stop these from toggling, so clicks are cancelled too.
func lockCheckable(n *dom.Node, readonly bool) {
	toggleAttr(n, "readonly", readonly)
	if readonly {
		n.SetAttribute("onclick", "return false;")
	} else {
		n.RemoveAttribute("onclick")
	}
}

func matchesAny(key string, value any) bool {
	for _, s := range rules.Strings(value) {
		if s == key {
			return true
		}
	}
	return false
}

// Checkbox is a single checkbox or radio button. Its value is the value
// attribute when checked and empty otherwise.
type Checkbox struct {
	element
}

func NewCheckbox(name, value string, checked bool) *Checkbox {
	return newCheckable(name, "checkbox", value, checked)
}

func NewRadio(name, value string, checked bool) *Checkbox {
	return newCheckable(name, "radio", value, checked)
}

func newCheckable(name, typ, value string, checked bool) *Checkbox {
	c := &Checkbox{}
	c.init("input", name, typ)
	c.node.SetAttribute("value", value)
	c.SetChecked(checked)
	return c
}

func (c *Checkbox) IsChecked() bool { return c.node.HasAttribute("checked") }

func (c *Checkbox) SetChecked(checked bool) {
	toggleAttr(c.node, "checked", checked)
}

func (c *Checkbox) Value() any {
	if c.IsChecked() {
		return c.node.Attribute("value")
	}
	return ""
}

// SetValue checks the box iff value matches its value attribute; a bool sets
// the checked state directly.
func (c *Checkbox) SetValue(value any) {
	if b, ok := value.(bool); ok {
		c.SetChecked(b)
		return
	}
	c.SetChecked(matchesAny(c.node.Attribute("value"), value))
}

func (c *Checkbox) ResetValue() { c.SetChecked(false) }

func (c *Checkbox) SetReadonly(readonly bool) {
	lockCheckable(c.node, readonly)
}

func (c *Checkbox) Validate(values map[string]any) bool {
	return c.check(c.Value(), !c.IsChecked(), values)
}

// choiceSet is the shared part of CheckboxSet and RadioSet: a <fieldset>
// holding an input and a caption span per choice.
type choiceSet struct {
	element
	legend   string
	inputs   []*dom.Node
	captions []*dom.Node
	disabled bool
	readonly bool
}

func (s *choiceSet) build(name, typ string, choices Choices) {
	s.name = name
	s.typ = typ
	s.node = dom.New("fieldset", "")
	s.node.SetAttribute("class", typ[:len(typ)-len("-set")]+"-fieldset")
	id := fieldID(name)
	s.node.SetAttribute("id", id)

	inputName, inputType := name, "radio"
	if typ == "checkbox-set" {
		inputName, inputType = MultiName(name), "checkbox"
	}
	for i, c := range choices.Flatten() {
		in := dom.New("input", "")
		in.SetAttribute("type", inputType)
		in.SetAttribute("name", inputName)
		in.SetAttribute("id", id+strconv.Itoa(i+1))
		in.SetAttribute("value", c.Key)
		s.inputs = append(s.inputs, in)
		s.captions = append(s.captions, dom.New("span", c.Label))
	}
	s.layout()
}

func (s *choiceSet) layout() {
	s.node.RemoveChildren()
	if s.legend != "" {
		s.node.AddChild(dom.New("legend", s.legend))
	}
	for i, in := range s.inputs {
		s.node.AddChild(in)
		s.node.AddChild(s.captions[i])
	}
}

func (s *choiceSet) Legend() string { return s.legend }

func (s *choiceSet) SetLegend(legend string) {
	s.legend = legend
	s.layout()
}

func (s *choiceSet) LabelFor() string { return s.ID() + "1" }

func (s *choiceSet) Inputs() []*dom.Node { return s.inputs }

func (s *choiceSet) Attribute(key string) string {
	if key == "id" || len(s.inputs) == 0 {
		return s.node.Attribute(key)
	}
	return s.inputs[0].Attribute(key)
}

// SetAttribute applies the attribute to every input of the set. A numeric
// tabindex increments from one input to the next; an id goes on the fieldset
// and renumbers the inputs.
func (s *choiceSet) SetAttribute(key, value string) {
	switch key {
	case "id":
		s.node.SetAttribute("id", value)
		for i, in := range s.inputs {
			in.SetAttribute("id", value+strconv.Itoa(i+1))
		}
	case "tabindex":
		n, err := strconv.Atoi(value)
		for i, in := range s.inputs {
			if err == nil {
				in.SetAttribute(key, strconv.Itoa(n+i))
			} else {
				in.SetAttribute(key, value)
			}
		}
	default:
		for _, in := range s.inputs {
			in.SetAttribute(key, value)
		}
	}
}

func (s *choiceSet) SetAttributes(attrs Attrs) {
	for _, k := range attrs.Keys() {
		s.SetAttribute(k, attrs[k])
	}
}

func (s *choiceSet) SetRequired(required bool) { s.required = required }

func (s *choiceSet) IsDisabled() bool { return s.disabled }

func (s *choiceSet) SetDisabled(disabled bool) {
	s.disabled = disabled
	for _, in := range s.inputs {
		toggleAttr(in, "disabled", disabled)
	}
}

func (s *choiceSet) IsReadonly() bool { return s.readonly }

func (s *choiceSet) SetReadonly(readonly bool) {
	s.readonly = readonly
	for _, in := range s.inputs {
		lockCheckable(in, readonly)
	}
}

func (s *choiceSet) checked() []string {
	var result []string
	for _, in := range s.inputs {
		if in.HasAttribute("checked") {
			result = append(result, in.Attribute("value"))
		}
	}
	return result
}

// CheckboxSet is a group of checkboxes named name[]; any subset may be checked.
type CheckboxSet struct {
	choiceSet
}

func NewCheckboxSet(name string, choices Choices, checked []string) *CheckboxSet {
	s := &CheckboxSet{}
	s.build(name, "checkbox-set", choices)
	s.SetChecked(checked)
	return s
}

// Checked returns the checked keys in choice order.
func (s *CheckboxSet) Checked() []string { return s.checked() }

// SetChecked checks exactly the inputs whose keys are listed.
func (s *CheckboxSet) SetChecked(keys []string) {
	for _, in := range s.inputs {
		toggleAttr(in, "checked", matchesAny(in.Attribute("value"), keys))
	}
}

func (s *CheckboxSet) Value() any         { return s.checked() }
func (s *CheckboxSet) SetValue(value any) { s.SetChecked(rules.Strings(value)) }
func (s *CheckboxSet) ResetValue()        { s.SetChecked(nil) }

func (s *CheckboxSet) Validate(values map[string]any) bool {
	checked := s.checked()
	return s.check(checked, len(checked) == 0, values)
}

// RadioSet is a group of radio buttons; at most one is checked.
type RadioSet struct {
	choiceSet
}

func NewRadioSet(name string, choices Choices, selected string) *RadioSet {
	s := &RadioSet{}
	s.build(name, "radio-set", choices)
	s.SetSelected(selected)
	return s
}

func (s *RadioSet) Selected() string {
	if keys := s.checked(); len(keys) > 0 {
		return keys[0]
	}
	return ""
}

// SetSelected checks the first input whose key equals key and unchecks the rest.
func (s *RadioSet) SetSelected(key string) {
	found := false
	for _, in := range s.inputs {
		on := !found && key != "" && in.Attribute("value") == key
		toggleAttr(in, "checked", on)
		found = found || on
	}
}

func (s *RadioSet) Value() any         { return s.Selected() }
func (s *RadioSet) SetValue(value any) { s.SetSelected(rules.String(value)) }
func (s *RadioSet) ResetValue()        { s.SetSelected("") }

func (s *RadioSet) Validate(values map[string]any) bool {
	selected := s.Selected()
	return s.check(selected, selected == "", values)
}

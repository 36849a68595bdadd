package forms

import (
	"github.com/andreyvit/formkit/dom"
	"github.com/andreyvit/formkit/rules"
)

// Select is a <select>, single or multiple. The option tree is built once;
// selection is always derived from the option nodes themselves.
type Select struct {
	element
	multiple bool
	options  []*dom.Node
	readonly bool
}

func NewSelect(name string, choices Choices, selected any) *Select {
	s := &Select{}
	s.init("select", name, "select")
	s.build(choices)
	s.SetValue(selected)
	return s
}

// NewSelectMultiple makes a multiple select submitting as name[].
func NewSelectMultiple(name string, choices Choices, selected []string) *Select {
	s := &Select{multiple: true}
	s.init("select", name, "select-multiple")
	s.node.SetAttribute("name", MultiName(name))
	s.node.SetAttribute("multiple", "multiple")
	s.build(choices)
	s.SetValue(selected)
	return s
}

func (s *Select) build(choices Choices) {
	for _, c := range choices {
		if c.IsGroup() {
			group := dom.New("optgroup", "").SetAttribute("label", c.Label)
			for _, o := range c.Group.Flatten() {
				group.AddChild(s.option(o))
			}
			s.node.AddChild(group)
		} else {
			s.node.AddChild(s.option(c))
		}
	}
}

func (s *Select) option(c Choice) *dom.Node {
	opt := dom.New("option", c.Label).SetAttribute("value", c.Key)
	s.options = append(s.options, opt)
	return opt
}

func (s *Select) IsMultiple() bool { return s.multiple }

// Options returns the option nodes in document order, optgroups flattened.
func (s *Select) Options() []*dom.Node { return s.options }

// Selected returns the keys of the selected options.
func (s *Select) Selected() []string {
	var result []string
	for _, opt := range s.options {
		if opt.HasAttribute("selected") {
			result = append(result, opt.Attribute("value"))
		}
	}
	return result
}

func (s *Select) Value() any {
	selected := s.Selected()
	if s.multiple {
		return selected
	}
	if len(selected) == 0 {
		return ""
	}
	return selected[0]
}

// SetValue selects the options whose keys equal value. A single select takes
// the first option matching the first key; a multiple select takes them all.
func (s *Select) SetValue(value any) {
	keys := rules.Strings(value)
	if !s.multiple && len(keys) > 1 {
		keys = keys[:1]
	}
	found := false
	for _, opt := range s.options {
		on := matchesAny(opt.Attribute("value"), keys)
		if !s.multiple {
			on = on && !found
			found = found || on
		}
		toggleAttr(opt, "selected", on)
	}
	s.syncReadonly()
}

func (s *Select) ResetValue() { s.SetValue(nil) }

func (s *Select) SetAttribute(key, value string) {
	if key == "value" {
		s.SetValue(value)
		return
	}
	s.element.SetAttribute(key, value)
}

func (s *Select) IsReadonly() bool { return s.readonly }

// SetReadonly disables every option but the selected ones, which are marked
// readonly instead; <select> itself has no readonly state.
func (s *Select) SetReadonly(readonly bool) {
	s.readonly = readonly
	s.syncReadonly()
}

func (s *Select) syncReadonly() {
	for _, opt := range s.options {
		if !s.readonly {
			opt.RemoveAttribute("disabled")
			opt.RemoveAttribute("readonly")
		} else if opt.HasAttribute("selected") {
			opt.RemoveAttribute("disabled")
			opt.SetAttribute("readonly", "readonly")
		} else {
			opt.RemoveAttribute("readonly")
			opt.SetAttribute("disabled", "disabled")
		}
	}
}

func (s *Select) Validate(values map[string]any) bool {
	value := s.Value()
	return s.check(value, rules.IsEmpty(value), values)
}

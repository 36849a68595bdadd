package forms

import (
	"strings"
	"testing"
)

var flagColors = Options("Red", "White", "Blue")

func TestRadioSetMutualExclusion(t *testing.T) {
	s := NewRadioSet("color", flagColors, "")
	s.SetValue("White")
	s.SetValue("Blue")

	var checked []string
	for _, in := range s.Inputs() {
		if in.HasAttribute("checked") {
			checked = append(checked, in.Attribute("value"))
		}
	}
	if strings.Join(checked, ",") != "Blue" {
		t.Errorf("** checked inputs = %v", checked)
	}
	if s.Value() != "Blue" {
		t.Errorf("** Value = %v", s.Value())
	}
}

func TestCheckboxSetMultiSelect(t *testing.T) {
	s := NewCheckboxSet("color", flagColors, []string{"Red"})
	s.SetChecked([]string{"White", "Blue"})
	if got := strings.Join(s.Checked(), ","); got != "White,Blue" {
		t.Errorf("** Checked = %s", got)
	}
	if s.Inputs()[0].HasAttribute("checked") {
		t.Errorf("** Red still checked")
	}
}

func TestChoiceSetMarkup(t *testing.T) {
	s := NewCheckboxSet("color", flagColors, nil)
	s.SetLegend("Colors")
	out := s.Render()
	for _, want := range []string{
		`<fieldset class="checkbox-fieldset" id="color">`,
		`<legend>Colors</legend>`,
		`<input type="checkbox" name="color[]" id="color1" value="Red" />`,
		`<span>Blue</span>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("** missing %s in:\n%s", want, out)
		}
	}
	if s.LabelFor() != "color1" {
		t.Errorf("** LabelFor = %q", s.LabelFor())
	}

	r := NewRadioSet("size", Options("S", "M"), "M")
	if !strings.Contains(r.Render(), `<input type="radio" name="size" id="size2" value="M" checked="checked" />`) {
		t.Errorf("** radio markup:\n%s", r.Render())
	}
}

func TestChoiceSetAttributeFanOut(t *testing.T) {
	s := NewRadioSet("size", Options("S", "M", "L"), "")
	s.SetAttributes(Attrs{"tabindex": "5", "class": "pick", "id": "sz"})
	for i, in := range s.Inputs() {
		wantTab := []string{"5", "6", "7"}[i]
		wantID := []string{"sz1", "sz2", "sz3"}[i]
		if in.Attribute("tabindex") != wantTab || in.Attribute("class") != "pick" || in.Attribute("id") != wantID {
			t.Errorf("** input %d: %s", i, in.Render())
		}
	}
	if s.ID() != "sz" || s.Attribute("class") != "pick" {
		t.Errorf("** set id %q class %q", s.ID(), s.Attribute("class"))
	}

	s.SetDisabled(true)
	s.SetReadonly(true)
	for _, in := range s.Inputs() {
		if !in.HasAttribute("disabled") || in.Attribute("onclick") != "return false;" {
			t.Errorf("** locked input: %s", in.Render())
		}
	}
	if !s.IsDisabled() || !s.IsReadonly() {
		t.Errorf("** set flags not reported")
	}
}

func TestChoiceSetRequired(t *testing.T) {
	s := NewCheckboxSet("tags", flagColors, nil)
	s.SetRequired(true)
	if s.Validate(nil) || len(s.Errors()) != 1 {
		t.Errorf("** empty required set: errors %v", s.Errors())
	}
	if strings.Contains(s.Render(), "required") {
		t.Errorf("** required attribute leaked onto inputs:\n%s", s.Render())
	}
	s.ClearErrors()
	s.SetValue([]string{"Red"})
	if !s.Validate(nil) {
		t.Errorf("** checked set failed: %v", s.Errors())
	}
}

package forms

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/exp/slices"

	"github.com/andreyvit/formkit/logging"
	"github.com/andreyvit/formkit/rules"
	"github.com/andreyvit/formkit/tokens"
)

func testCtx(t *testing.T) context.Context {
	return logging.With(context.Background(), logging.TestLogger(t))
}

func TestBuilderField(t *testing.T) {
	e, err := NewField(FieldConfig{
		Name:            "age",
		Type:            "number",
		Value:           0,
		Min:             "0",
		Max:             "120",
		Label:           "Age",
		LabelAttributes: Attrs{"class": "lbl"},
		Hint:            "Years",
		Required:        true,
		RequiredMessage: "Age?",
		ErrorPre:        true,
		Attributes:      Attrs{"step": "1"},
		Validators:      []any{rules.LessThan(150, "")},
		Indent:          "\t",
	})
	if err != nil {
		t.Fatalf("** NewField: %v", err)
	}
	out := e.Render()
	if out != "\t"+`<input type="number" name="age" id="age" value="0" min="0" max="120" step="1" required="required" />`+"\n" {
		t.Errorf("** Render = %q", out)
	}
	if e.Label().Text != "Age" || e.Label().Attrs["class"] != "lbl" || e.Hint().Text != "Years" || !e.ErrorPre() {
		t.Errorf("** decorations not configured")
	}
	if !e.Validate(nil) {
		t.Errorf("** zero age rejected: %v", e.Errors())
	}
	e.SetValue("")
	if e.Validate(nil) || e.Errors()[0] != "Age?" {
		t.Errorf("** Errors = %v", e.Errors())
	}
}

func TestBuilderKinds(t *testing.T) {
	tests := []struct {
		cfg  FieldConfig
		want string
	}{
		{FieldConfig{Name: "go", Type: "button", Label: "Press"}, `<button name="go" id="go" type="button">Press</button>`},
		{FieldConfig{Name: "b", Type: "input-button", Value: "Hi"}, `<input type="button" name="b" id="b" value="Hi" />`},
		{FieldConfig{Name: "ok", Type: "checkbox", Value: "1", Checked: true}, `<input type="checkbox" name="ok" id="ok" value="1" checked="checked" />`},
		{FieldConfig{Name: "m", Type: "select", Preset: "MONTHS_SHORT", Value: "02"}, `<option value="02" selected="selected">Feb</option>`},
		{FieldConfig{Name: "t", Type: "select-multiple", Values: Options("a", "b"), Checked: []string{"b"}}, `<select name="t[]" id="t" multiple="multiple">`},
		{FieldConfig{Name: "r", Type: "radio-set", Values: Options("x", "y"), Checked: "y", Legend: "Pick"}, `<legend>Pick</legend>`},
		{FieldConfig{Name: "pw", Type: "password", Value: "s3", Render: true}, `value="s3"`},
		{FieldConfig{Name: "when", Type: "datetime-local", Min: "2024-01-01T00:00"}, `min="2024-01-01T00:00"`},
		{FieldConfig{Name: "c", Type: "datalist", Values: Options("p")}, `<datalist id="c-datalist">`},
		{FieldConfig{Name: "bio", Type: "textarea", Value: "hi", Readonly: true, Disabled: true}, `<textarea name="bio" id="bio" disabled="disabled" readonly="readonly">hi</textarea>`},
		{FieldConfig{Name: "f", Type: "file"}, `<input type="file" name="f" id="f" />`},
	}
	for _, tt := range tests {
		e, err := NewField(tt.cfg)
		if err != nil {
			t.Errorf("** %s: %v", tt.cfg.Type, err)
			continue
		}
		if out := e.Render(); !strings.Contains(out, tt.want) {
			t.Errorf("** %s: %s lacks %s", tt.cfg.Type, out, tt.want)
		} else {
			t.Logf("✓ %s", tt.cfg.Type)
		}
	}
	if !slices.Contains(Kinds(), "email") || !slices.Contains(Kinds(), "captcha") {
		t.Errorf("** Kinds = %v", Kinds())
	}
}

func TestBuilderErrors(t *testing.T) {
	tests := []struct {
		cfg  FieldConfig
		key  string
		want error
	}{
		{FieldConfig{Type: "text"}, "name", ErrMissingKey},
		{FieldConfig{Name: "x"}, "type", ErrMissingKey},
		{FieldConfig{Name: "x", Type: "hologram"}, "type", ErrUnknownType},
		{FieldConfig{Name: "x", Type: "select", Preset: "FORTNIGHTS"}, "values", ErrUnknownPreset},
		{FieldConfig{Name: "x", Type: "csrf"}, "type", ErrNoTokens},
		{FieldConfig{Name: "x", Type: "captcha"}, "type", ErrNoTokens},
	}
	for _, tt := range tests {
		_, err := NewField(tt.cfg)
		var cerr *ConfigError
		if !errors.As(err, &cerr) || cerr.Key != tt.key || !errors.Is(err, tt.want) {
			t.Errorf("** %+v: err = %v, wanted %v on %s", tt.cfg, err, tt.want, tt.key)
		} else {
			t.Logf("✓ %v", err)
		}
	}
}

func TestBuilderTokens(t *testing.T) {
	ctx := testCtx(t)
	b := &Builder{Tokens: tokens.NewKeeper(tokens.NewMemoryStore(), "sess1")}
	form, err := b.Form(ctx, FormConfig{
		Action: "/contact",
		Fieldsets: []FieldsetConfig{{
			Groups: [][]FieldConfig{
				{{Name: "_token", Type: "csrf"}},
				{{Name: "sky", Type: "captcha", Captcha: "What color is the sky?", Answer: "Blue", ACL: "bots"}},
			},
		}},
	})
	if err != nil {
		t.Fatalf("** Form: %v", err)
	}
	csrf := form.Field("_token").(*CSRF)
	if csrf.Token() == "" || !strings.Contains(form.Render(), `value="`+csrf.Token()+`"`) {
		t.Errorf("** CSRF token not rendered:\n%s", form.Render())
	}
	captcha := form.Field("sky").(*Captcha)
	if captcha.Question() != "What color is the sky?" || captcha.Label().Text != captcha.Question() {
		t.Errorf("** captcha question %q label %q", captcha.Question(), captcha.Label().Text)
	}
	if form.Resource("sky") != "bots" {
		t.Errorf("** Resource = %q", form.Resource("sky"))
	}

	form.SetFieldValues(map[string]any{"_token": "forged", "sky": " blue "})
	if form.IsValid() {
		t.Fatalf("** forged token accepted")
	}
	if errs := form.AllErrors(); len(errs) != 1 || errs["_token"][0] != CSRFMessage {
		t.Errorf("** AllErrors = %v", errs)
	}
	if strings.Contains(form.Render(), "blue") {
		t.Errorf("** captcha answer rendered back:\n%s", form.Render())
	}

	form.ClearErrors()
	form.SetFieldValues(map[string]any{"_token": csrf.Token(), "sky": "green"})
	if form.IsValid() || form.Field("sky").Errors()[0] != CaptchaMessage {
		t.Errorf("** wrong answer accepted: %v", form.AllErrors())
	}

	again, err := b.Field(ctx, FieldConfig{Name: "_token", Type: "csrf"})
	if err != nil {
		t.Fatal(err)
	}
	if again.(*CSRF).Token() != csrf.Token() {
		t.Errorf("** CSRF token changed within its lifetime")
	}

	pinned, err := b.Field(ctx, FieldConfig{Name: "_token", Type: "csrf", Attributes: Attrs{"value": "x", "class": "tok"}})
	if err != nil {
		t.Fatal(err)
	}
	pinned.SetAttribute("value", "y")
	if got := pinned.Node().Render(); !strings.Contains(got, `value="`+csrf.Token()+`"`) || !strings.Contains(got, `class="tok"`) {
		t.Errorf("** configured value replaced the CSRF token: %s", got)
	}
}

func TestBuilderFieldsetGroups(t *testing.T) {
	fs, err := new(Builder).Fieldset(context.Background(), FieldsetConfig{
		Legend:     "Name",
		Container:  ContainerP,
		Attributes: Attrs{"class": "names"},
		Groups: [][]FieldConfig{
			{{Name: "first", Type: "text"}},
			{{Name: "last", Type: "text"}},
		},
	})
	if err != nil {
		t.Fatalf("** Fieldset: %v", err)
	}
	if len(fs.Groups()) != 2 || fs.Container() != ContainerP || fs.Attribute("class") != "names" {
		t.Errorf("** fieldset = %d groups, %s, %q", len(fs.Groups()), fs.Container(), fs.Attribute("class"))
	}
}

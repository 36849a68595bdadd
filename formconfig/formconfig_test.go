package formconfig

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andreyvit/formkit/filters"
	"github.com/andreyvit/formkit/forms"
)

const signupYAML = `
action: /signup
method: post
attributes: {id: signup}
filters:
  - trim
  - {name: strip_tags, exclude_by_type: [password]}
columns:
  left: [0]
fieldsets:
  - legend: Account
    container: table
    fields:
      email:
        type: email
        label: Email
        required: true
        validators: [email, "length_lte=64"]
      password: {type: password, label: Password, validators: required}
  - groups:
      - first: {type: text}
        last: {type: text}
      - color:
          type: select
          values: {r: Red, g: Green, warm: {o: Orange, y: Yellow}}
          selected: g
        month: {type: select, values: MONTHS_SHORT}
        tags: {type: checkbox-set, values: [a, b, c], checked: [a, c]}
        agree: {type: checkbox, value: yes, checked: true}
`

func TestParseYAML(t *testing.T) {
	cfg, err := Parse([]byte(signupYAML), YAML)
	if err != nil {
		t.Fatalf("** Parse: %v", err)
	}
	if cfg.Action != "/signup" || cfg.Method != "post" || cfg.Attributes["id"] != "signup" {
		t.Errorf("** form header = %q %q %v", cfg.Action, cfg.Method, cfg.Attributes)
	}
	if len(cfg.Filters) != 2 {
		t.Fatalf("** filters = %d, wanted 2", len(cfg.Filters))
	}
	if f := cfg.Filters[1].(*filters.Func); len(f.ExcludeByType) != 1 || f.ExcludeByType[0] != "password" {
		t.Errorf("** strip_tags excludes %v", f.ExcludeByType)
	}
	if len(cfg.Columns) != 1 || cfg.Columns[0].Class != "left" {
		t.Errorf("** columns = %v", cfg.Columns)
	}
	if len(cfg.Fieldsets) != 2 {
		t.Fatalf("** fieldsets = %d, wanted 2", len(cfg.Fieldsets))
	}

	account := cfg.Fieldsets[0]
	if account.Legend != "Account" || account.Container != "table" {
		t.Errorf("** account fieldset = %q %q", account.Legend, account.Container)
	}
	email := account.Groups[0][0]
	if email.Name != "email" || !email.Required || len(email.Validators) != 2 {
		t.Errorf("** email = %+v", email)
	}
	if pw := account.Groups[0][1]; !pw.Required || len(pw.Validators) != 0 {
		t.Errorf("** password: required=%v validators=%d", pw.Required, len(pw.Validators))
	}

	groups := cfg.Fieldsets[1].Groups
	if len(groups) != 2 {
		t.Fatalf("** groups = %d, wanted 2", len(groups))
	}
	var names []string
	for _, fc := range groups[1] {
		names = append(names, fc.Name)
	}
	if got := strings.Join(names, ","); got != "color,month,tags,agree" {
		t.Errorf("** field order = %s", got)
	}
	color := groups[1][0]
	if color.Values.Len() != 4 || !color.Values[2].IsGroup() || color.Checked != "g" {
		t.Errorf("** color = %+v", color)
	}
	if groups[1][1].Preset != "MONTHS_SHORT" {
		t.Errorf("** month preset = %q", groups[1][1].Preset)
	}
	if checked, _ := groups[1][2].Checked.([]string); len(checked) != 2 {
		t.Errorf("** tags checked = %v", groups[1][2].Checked)
	}
	if groups[1][3].Checked != true {
		t.Errorf("** agree checked = %v", groups[1][3].Checked)
	}
}

func TestParseBareMapping(t *testing.T) {
	cfg, err := Parse([]byte("name: {type: text, label: Name}\nage: {type: number, min: 0, max: 120}\n"), YAML)
	if err != nil {
		t.Fatalf("** Parse: %v", err)
	}
	if len(cfg.Fieldsets) != 1 || len(cfg.Fieldsets[0].Groups) != 1 || len(cfg.Fieldsets[0].Groups[0]) != 2 {
		t.Fatalf("** shape = %+v", cfg.Fieldsets)
	}
	age := cfg.Fieldsets[0].Groups[0][1]
	if age.Min != "0" || age.Max != "120" {
		t.Errorf("** age range = %q..%q", age.Min, age.Max)
	}
}

func TestParseJSONWithComments(t *testing.T) {
	src := `{
    // contact form
    "action": "/contact",
    "fields": {
      "msg": {"type": "textarea", "required": true,},
      "code": {"type": "captcha", "expire": 600},
    },
	}`
	cfg, err := Parse([]byte(src), JSON)
	if err != nil {
		t.Fatalf("** Parse: %v", err)
	}
	fields := cfg.Fieldsets[0].Groups[0]
	if fields[0].Name != "msg" || !fields[0].Required {
		t.Errorf("** msg = %+v", fields[0])
	}
	if fields[1].Expire.Seconds() != 600 {
		t.Errorf("** captcha expire = %v", fields[1].Expire)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		want error
	}{
		{"name: {label: x}", forms.ErrMissingKey},
		{"name: {type: text, colour: red}", ErrUnknownKey},
		{"name: {type: text, validators: [nope]}", nil},
		{"action: /x\nbogus: 1", ErrUnknownKey},
		{"action: /x\nfilters: [{exclude_by_name: [a]}]", filters.ErrMalformed},
		{"- a\n- b", ErrShape},
		{"name: {type: select, xml: options.xml}", forms.ErrMissingKey},
	}
	for _, tt := range tests {
		_, err := Parse([]byte(tt.src), YAML)
		if err == nil {
			t.Errorf("** Parse(%q) succeeded, wanted error", tt.src)
		} else if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("** Parse(%q) = %v, wanted %v", tt.src, err, tt.want)
		} else {
			t.Logf("✓ %q: %v", tt.src, err)
		}
	}
}

func TestLoadBuildsForm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signup.yaml")
	if err := os.WriteFile(path, []byte(signupYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("** Load: %v", err)
	}
	form, err := new(forms.Builder).Form(context.Background(), *cfg)
	if err != nil {
		t.Fatalf("** Form: %v", err)
	}
	if got := strings.Join(form.FieldNames(), ","); got != "email,password,first,last,color,month,tags,agree" {
		t.Errorf("** FieldNames = %s", got)
	}
	if got := form.Get("color"); got != "g" {
		t.Errorf("** color = %v", got)
	}

	form.SetFieldValues(map[string]any{"email": "  bob@example.com ", "password": " <b>pw</b> "})
	if got := form.Get("email"); got != "bob@example.com" {
		t.Errorf("** filtered email = %q", got)
	}
	if got := form.Get("password"); got != "<b>pw</b>" {
		t.Errorf("** filtered password = %q", got)
	}
}

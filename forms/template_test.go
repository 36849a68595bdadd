package forms

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func templateForm() *Form {
	form := NewForm("/x", "")
	email := NewInput("email", "email", "")
	email.SetLabel("Email")
	email.SetHint("Work address")
	email.AddError("Bad.")
	email.AddError("Worse.")
	form.AddField(email)
	return form
}

func TestTemplate(t *testing.T) {
	text := "<div class=\"row\">\n  [{email_label}]\n  [{email}]\n  [{email_hint}]\n  [{email_errors}]\n  <p>[{nope}]</p>\n</div>\n"
	want := `<form action="/x" method="post">
<div class="row">
  <label for="email">Email</label>
  <input type="email" name="email" id="email" value="" />
  <span class="hint">Work address</span>
  <div class="error">Bad.</div>
  <div class="error">Worse.</div>
  <p></p>
</div>
</form>
`
	if got := NewTemplate(templateForm(), text).Render(); got != want {
		t.Errorf("** Render:\n%s\nwanted:\n%s", got, want)
	}
}

func TestTemplateEnctype(t *testing.T) {
	form := NewForm("/up", "")
	form.AddField(NewFile("doc"))
	want := `<form action="/up" method="post" enctype="multipart/form-data">
<p>[upload]</p>
</form>
`
	if got := NewTemplate(form, "<p>[upload]</p>").Render(); got != want {
		t.Errorf("** Render:\n%s", got)
	}
}

func TestFileTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.html")
	if err := os.WriteFile(path, []byte(`{{.email_label}} {{.email}}{{.missing}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	ft, err := NewFileTemplate(templateForm(), path)
	if err != nil {
		t.Fatalf("** NewFileTemplate: %v", err)
	}
	got, err := ft.Render()
	if err != nil {
		t.Fatalf("** Render: %v", err)
	}
	want := `<form action="/x" method="post">
<label for="email">Email</label> <input type="email" name="email" id="email" value="" />
</form>
`
	if got != want {
		t.Errorf("** Render:\n%s\nwanted:\n%s", got, want)
	}
	if _, ok := ft.Data()["email_errors"]; !ok {
		t.Errorf("** Data lacks email_errors")
	}
}

func TestTemplateValuesAreNotSubstituted(t *testing.T) {
	form := NewForm("/x", "")
	form.AddField(NewText("note", "see [{token}] and [{note}]"))
	form.AddField(NewHidden("token", "abc"))
	got := NewTemplate(form, "[{note}]\n[{token}]").Render()
	if !strings.Contains(got, `value="see [{token}] and [{note}]"`) {
		t.Errorf("** submitted placeholder text was substituted:\n%s", got)
	}
	if strings.Count(got, `name="token"`) != 1 {
		t.Errorf("** token field rendered %d times:\n%s", strings.Count(got, `name="token"`), got)
	}
}

func TestTemplateErrorsFollowFieldset(t *testing.T) {
	fs := NewFieldset("")
	fs.ErrorTag, fs.ErrorClass = "p", "oops"
	a := NewText("a", "")
	a.AddError("Bad.")
	fs.AddField(a)
	form := NewForm("/x", "")
	form.AddFieldset(fs)

	want := `<p class="oops">Bad.</p>`
	if got := NewTemplate(form, "[{a_errors}]").Render(); !strings.Contains(got, want) {
		t.Errorf("** Template errors:\n%s", got)
	}
	path := filepath.Join(t.TempDir(), "form.html")
	if err := os.WriteFile(path, []byte(`{{.a_errors}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	ft, err := NewFileTemplate(form, path)
	if err != nil {
		t.Fatalf("** NewFileTemplate: %v", err)
	}
	if got := string(ft.Data()["a_errors"]); got != want {
		t.Errorf("** FileTemplate errors = %q, wanted %q", got, want)
	}
}

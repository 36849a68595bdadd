package forms

import (
	"html/template"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/andreyvit/formkit/dom"
)

// Template renders a form by substituting field markup into text at
// [{name}], [{name_label}], [{name_hint}] and [{name_errors}] placeholders.
// Multi-line field markup is indented to match the placeholder's line.
type Template struct {
	form *Form
	text string
}

func NewTemplate(form *Form, text string) *Template {
	return &Template{form: form, text: text}
}

var placeholderPattern = regexp.MustCompile(`\[\{([^\]\}\s]+)\}\]`)

// Render returns the <form> tag wrapped around the substituted text.
// Placeholders of fields the form does not have are removed. Placeholders are
// located in the template text only; rendered field markup is never rescanned.
func (t *Template) Render() string {
	fragments := t.fragments()
	var buf strings.Builder
	last := 0
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(t.text, -1) {
		start, end := m[0], m[1]
		buf.WriteString(t.text[last:start])
		if render := fragments[t.text[m[2]:m[3]]]; render != nil {
			buf.WriteString(render(lineIndent(t.text, start)))
		}
		last = end
	}
	buf.WriteString(t.text[last:])
	return t.form.renderAround(dom.Raw(strings.TrimRight(buf.String(), "\n")).SetIndent(""))
}

// fragments maps placeholder names to their renderers. The first field of a
// key wins.
func (t *Template) fragments() map[string]func(indent string) string {
	result := make(map[string]func(indent string) string)
	add := func(name string, render func(indent string) string) {
		if _, found := result[name]; !found {
			result[name] = render
		}
	}
	for _, e := range t.form.Fields() {
		key := ValueKey(e.Name())
		errs := t.form.errorNodes(e)
		add(key, func(indent string) string { return renderNodes(controlNodes(e), indent) })
		add(key+"_label", func(string) string { return renderNodes([]*dom.Node{labelNode(e)}, "") })
		add(key+"_hint", func(string) string { return renderNodes([]*dom.Node{hintNode(e)}, "") })
		add(key+"_errors", func(indent string) string { return renderNodes(errs, indent) })
	}
	return result
}

// errorNodes renders e's errors with the tag and class of the fieldset
// holding it.
func (f *Form) errorNodes(e Element) []*dom.Node {
	for _, fs := range f.fieldsets {
		if fs.Field(e.Name()) == e {
			return fs.errorNodes(e)
		}
	}
	return errorNodes(e, "div", "error")
}

// lineIndent returns the whitespace preceding offset i on its line, or "" if
// anything else precedes it.
func lineIndent(text string, i int) string {
	lineStart := strings.LastIndexByte(text[:i], '\n') + 1
	indent := text[lineStart:i]
	if strings.TrimSpace(indent) != "" {
		return ""
	}
	return indent
}

// renderNodes renders nodes at the given indent, without the indent of the
// first line and without the final newline.
func renderNodes(nodes []*dom.Node, indent string) string {
	var buf strings.Builder
	for _, n := range nodes {
		if n != nil {
			n.RenderInto(&buf, indent)
		}
	}
	s := strings.TrimSuffix(buf.String(), "\n")
	return strings.TrimPrefix(s, indent)
}

// FileTemplate renders a form through an html/template file. The template
// sees a map of field keys to markup, with the same _label, _hint and _errors
// suffixes as Template placeholders: {{.email}}, {{.email_label}}. Unknown
// keys render as nothing.
type FileTemplate struct {
	form *Form
	tmpl *template.Template
}

func NewFileTemplate(form *Form, path string) (*FileTemplate, error) {
	tmpl, err := template.New(filepath.Base(path)).Option("missingkey=zero").ParseFiles(path)
	if err != nil {
		return nil, err
	}
	return &FileTemplate{form: form, tmpl: tmpl}, nil
}

// Data returns the markup fragments passed to the template.
func (t *FileTemplate) Data() map[string]template.HTML {
	data := make(map[string]template.HTML)
	for _, e := range t.form.Fields() {
		key := ValueKey(e.Name())
		data[key] = template.HTML(renderNodes(controlNodes(e), ""))
		data[key+"_label"] = template.HTML(renderNodes([]*dom.Node{labelNode(e)}, ""))
		data[key+"_hint"] = template.HTML(renderNodes([]*dom.Node{hintNode(e)}, ""))
		data[key+"_errors"] = template.HTML(renderNodes(t.form.errorNodes(e), ""))
	}
	return data
}

func (t *FileTemplate) Render() (string, error) {
	var buf strings.Builder
	if err := t.tmpl.Execute(&buf, t.Data()); err != nil {
		return "", err
	}
	return t.form.renderAround(dom.Raw(strings.TrimRight(buf.String(), "\n")).SetIndent("")), nil
}

package forms

import (
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/exp/maps"

	"github.com/andreyvit/formkit/dom"
	"github.com/andreyvit/formkit/filters"
)

const MultipartEnctype = "multipart/form-data"

// Column wraps the listed fieldsets (by index) into a <div> of the given class.
type Column struct {
	Class     string
	Fieldsets []int
}

// ArrayOptions narrows the result of Form.ToArray.
type ArrayOptions struct {
	Exclude []string
	Filter  func(name string, value any) bool
}

// Form is an ordered collection of fieldsets with form-wide value, filter and
// validation handling.
//
// The markup tree is built by Prepare and reused by Render until a mutation
// discards it.
type Form struct {
	node      *dom.Node
	fieldsets []*Fieldset
	columns   []Column
	current   int
	filters   []filters.Filter
	resources map[string]string
	autoEnc   bool
}

// NewForm makes a form posting to action; an empty action posts back to the
// current URL and an empty method means "post".
func NewForm(action, method string) *Form {
	if method == "" {
		method = "post"
	}
	node := dom.New("form", "")
	node.SetAttribute("action", action)
	node.SetAttribute("method", method)
	return &Form{node: node}
}

func (f *Form) Node() *dom.Node { return f.node }

func (f *Form) Action() string              { return f.node.Attribute("action") }
func (f *Form) SetAction(action string)     { f.node.SetAttribute("action", action) }
func (f *Form) Method() string              { return f.node.Attribute("method") }
func (f *Form) SetMethod(method string)     { f.node.SetAttribute("method", method) }
func (f *Form) Attribute(key string) string { return f.node.Attribute(key) }

func (f *Form) SetAttribute(key, value string) {
	f.node.SetAttribute(key, value)
	f.invalidate()
}

func (f *Form) SetAttributes(attrs Attrs) {
	attrs.applyTo(f.node)
	f.invalidate()
}

func (f *Form) invalidate() {
	f.node.RemoveChildren()
}

// AddFieldset appends fs, makes it current and returns its index.
func (f *Form) AddFieldset(fs *Fieldset) int {
	f.fieldsets = append(f.fieldsets, fs)
	f.current = len(f.fieldsets) - 1
	f.invalidate()
	return f.current
}

func (f *Form) Fieldsets() []*Fieldset { return f.fieldsets }

func (f *Form) FieldsetAt(index int) *Fieldset {
	if index < 0 || index >= len(f.fieldsets) {
		return nil
	}
	return f.fieldsets[index]
}

func (f *Form) SetCurrent(index int) {
	if index >= 0 && index < len(f.fieldsets) {
		f.current = index
	}
}

// Current returns the fieldset receiving AddField calls, creating one if the
// form has none.
func (f *Form) Current() *Fieldset {
	if len(f.fieldsets) == 0 {
		f.AddFieldset(NewFieldset(""))
	}
	return f.fieldsets[f.current]
}

func (f *Form) AddField(e Element) *Form {
	f.Current().AddField(e)
	f.invalidate()
	return f
}

func (f *Form) AddFields(ee ...Element) *Form {
	for _, e := range ee {
		f.AddField(e)
	}
	return f
}

func (f *Form) InsertFieldBefore(anchor string, e Element) bool {
	inserted := false
	for _, fs := range f.fieldsets {
		inserted = fs.InsertFieldBefore(anchor, e) || inserted
	}
	f.invalidate()
	return inserted
}

func (f *Form) InsertFieldAfter(anchor string, e Element) bool {
	inserted := false
	for _, fs := range f.fieldsets {
		inserted = fs.InsertFieldAfter(anchor, e) || inserted
	}
	f.invalidate()
	return inserted
}

func (f *Form) RemoveField(name string) bool {
	removed := false
	for _, fs := range f.fieldsets {
		removed = fs.RemoveField(name) || removed
	}
	f.invalidate()
	return removed
}

// Field returns the field named name, or nil.
func (f *Form) Field(name string) Element {
	var found Element
	for _, fs := range f.fieldsets {
		if e := fs.Field(name); e != nil {
			found = e
		}
	}
	return found
}

// Fields returns all fields in fieldset order.
func (f *Form) Fields() []Element {
	var result []Element
	for _, fs := range f.fieldsets {
		result = append(result, fs.Fields()...)
	}
	return result
}

func (f *Form) FieldNames() []string {
	fields := f.Fields()
	names := make([]string, len(fields))
	for i, e := range fields {
		names[i] = e.Name()
	}
	return names
}

func (f *Form) Count() int {
	return len(f.Fields())
}

// Get returns the value of the named field, or nil when there is no such field.
func (f *Form) Get(name string) any {
	if e := f.Field(name); e != nil {
		return e.Value()
	}
	return nil
}

// Set assigns the value of the named field. Unknown names are ignored.
func (f *Form) Set(name string, value any) {
	f.SetFieldValue(name, value)
}

func (f *Form) AddColumn(class string, fieldsets ...int) {
	f.columns = append(f.columns, Column{Class: class, Fieldsets: fieldsets})
	f.invalidate()
}

func (f *Form) Columns() []Column { return f.columns }

func (f *Form) AddFilter(ff ...filters.Filter) {
	f.filters = append(f.filters, ff...)
}

func (f *Form) Filters() []filters.Filter { return f.filters }

// FilterValue runs field's value through the form filters. For an Element the
// result is also stored back, except on checkboxes, radios and buttons. Any
// other argument is filtered as a bare value with no name or type.
func (f *Form) FilterValue(field any) any {
	e, ok := field.(Element)
	if !ok {
		return filters.Chain(field, "", "", f.filters)
	}
	value := filters.Chain(e.Value(), ValueKey(e.Name()), e.Type(), f.filters)
	if !isCheckable(e) && !isButton(e) {
		e.SetValue(value)
	}
	return value
}

// Filter filters every field.
func (f *Form) Filter() {
	for _, e := range f.Fields() {
		f.FilterValue(e)
	}
	f.invalidate()
}

func (f *Form) SetFieldValue(name string, value any) {
	if e := f.Field(name); e != nil {
		e.SetValue(value)
		f.invalidate()
	}
}

// SetFieldValues assigns submitted values and then filters them. A field
// missing from values is reset to empty rather than left alone; buttons are
// never touched.
func (f *Form) SetFieldValues(values map[string]any) {
	for _, e := range f.Fields() {
		if isButton(e) {
			continue
		}
		if v, ok := lookupValue(values, e.Name()); ok {
			e.SetValue(v)
		} else {
			e.ResetValue()
		}
	}
	f.Filter()
}

func lookupValue(values map[string]any, name string) (any, bool) {
	if v, ok := values[ValueKey(name)]; ok {
		return v, true
	}
	v, ok := values[name]
	return v, ok
}

// Values maps field keys (names without a trailing "[]") to values.
func (f *Form) Values() map[string]any {
	values := make(map[string]any)
	for _, fs := range f.fieldsets {
		maps.Copy(values, fs.Values())
	}
	return values
}

// ToArray is Values with names in opts.Exclude dropped and, if opts.Filter is
// set, only the entries it accepts kept.
func (f *Form) ToArray(opts ArrayOptions) map[string]any {
	values := f.Values()
	for _, name := range opts.Exclude {
		delete(values, ValueKey(name))
	}
	if opts.Filter != nil {
		maps.DeleteFunc(values, func(name string, value any) bool {
			return !opts.Filter(name, value)
		})
	}
	return values
}

// IsValid validates every field against the form's values. All fields are
// visited so each collects its own errors.
func (f *Form) IsValid() bool {
	values := f.Values()
	valid := true
	for _, e := range f.Fields() {
		if !e.Validate(values) {
			valid = false
		}
	}
	f.invalidate()
	return valid
}

func (f *Form) HasErrors() bool {
	for _, e := range f.Fields() {
		if e.HasErrors() {
			return true
		}
	}
	return false
}

// AllErrors returns the errors of fields that have any, keyed like Values.
func (f *Form) AllErrors() map[string][]string {
	result := make(map[string][]string)
	for _, e := range f.Fields() {
		if errs := e.Errors(); len(errs) > 0 {
			result[ValueKey(e.Name())] = errs
		}
	}
	return result
}

func (f *Form) ClearErrors() {
	for _, e := range f.Fields() {
		e.ClearErrors()
	}
	f.invalidate()
}

// Reset empties every field except buttons and clears all errors.
func (f *Form) Reset() {
	for _, e := range f.Fields() {
		if !isButton(e) {
			e.ResetValue()
		}
		e.ClearErrors()
	}
	f.invalidate()
}

// SetFiles hands the upload source to every file input.
func (f *Form) SetFiles(source FileSource) {
	for _, e := range f.Fields() {
		if file, ok := e.(*File); ok {
			file.SetSource(source)
		}
	}
}

func (f *Form) HasFile() bool {
	for _, fs := range f.fieldsets {
		if fs.HasFile() {
			return true
		}
	}
	return false
}

// Prepare builds the markup tree: id and class are propagated to the
// fieldsets ("-fieldset", or "-fieldset-N" when there are several), and
// fieldsets listed in a column are wrapped together.
func (f *Form) Prepare() {
	f.node.RemoveChildren()
	id, class := f.node.Attribute("id"), f.node.Attribute("class")
	for i, fs := range f.fieldsets {
		if id != "" {
			if len(f.fieldsets) == 1 {
				fs.SetAttribute("id", id+"-fieldset")
			} else {
				fs.SetAttribute("id", id+"-fieldset-"+strconv.Itoa(i+1))
			}
		}
		if class != "" {
			fs.SetAttribute("class", class+"-fieldset")
		}
	}

	placed := make(map[int]bool, len(f.fieldsets))
	for i, fs := range f.fieldsets {
		if placed[i] {
			continue
		}
		if col := f.columnOf(i); col != nil {
			wrapper := dom.New("div", "").SetAttribute("class", col.Class)
			for _, j := range col.Fieldsets {
				if fs := f.FieldsetAt(j); fs != nil && !placed[j] {
					fs.Prepare()
					wrapper.AddChild(fs.Node())
					placed[j] = true
				}
			}
			f.node.AddChild(wrapper)
			continue
		}
		fs.Prepare()
		f.node.AddChild(fs.Node())
		placed[i] = true
	}
}

func (f *Form) columnOf(index int) *Column {
	for i := range f.columns {
		for _, j := range f.columns[i].Fieldsets {
			if j == index {
				return &f.columns[i]
			}
		}
	}
	return nil
}

// applyEnctype forces multipart encoding when the form has a file input.
func (f *Form) applyEnctype() {
	if f.HasFile() {
		if f.node.Attribute("enctype") != MultipartEnctype {
			f.node.SetAttribute("enctype", MultipartEnctype)
			f.autoEnc = true
		}
	} else if f.autoEnc {
		f.node.RemoveAttribute("enctype")
		f.autoEnc = false
	}
}

// Render prepares the form unless already prepared and returns its markup.
func (f *Form) Render() string {
	if !f.node.HasChildren() {
		f.Prepare()
	}
	f.applyEnctype()
	return f.node.Render()
}

// renderAround renders the form tag around body instead of the fieldsets.
func (f *Form) renderAround(body *dom.Node) string {
	f.applyEnctype()
	shell := dom.New("form", "")
	shell.SetAttributes(f.node.Attributes()...)
	shell.AddChild(body)
	return shell.Render()
}

// ValuesFromURL converts parsed request values into a form value map. Keys
// ending in "[]" or carrying several values become []string.
func ValuesFromURL(vals url.Values) map[string]any {
	result := make(map[string]any, len(vals))
	for k, vv := range vals {
		if IsMultiName(k) || len(vv) > 1 {
			result[ValueKey(k)] = vv
		} else if len(vv) == 1 {
			result[k] = vv[0]
		}
	}
	return result
}

// RequestAction is the action posting back to the current request, minus
// the captcha=1 marker.
func RequestAction(r *http.Request) string {
	q := r.URL.Query()
	if q.Get("captcha") == "1" {
		q.Del("captcha")
	}
	action := r.URL.Path
	if enc := q.Encode(); enc != "" {
		action += "?" + enc
	}
	return action
}

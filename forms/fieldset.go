package forms

import (
	"github.com/andreyvit/formkit/dom"
)

const (
	ContainerTable = "table"
	ContainerDL    = "dl"
	ContainerDiv   = "div"
	ContainerP     = "p"
)

type group struct {
	index  int
	fields []Element
}

func (g *group) find(name string) int {
	key := ValueKey(name)
	for i, e := range g.fields {
		if ValueKey(e.Name()) == key {
			return i
		}
	}
	return -1
}

func (g *group) insertAt(i int, e Element) {
	g.fields = append(g.fields, nil)
	copy(g.fields[i+1:], g.fields[i:])
	g.fields[i] = e
}

// Fieldset is an ordered collection of elements split into numbered groups,
// rendered as a <fieldset> in one of the table, dl, div or p layouts.
//
// Field names are expected to be unique across groups; lookups return the
// last match.
type Fieldset struct {
	node      *dom.Node
	groups    []*group
	current   int
	legend    string
	container string

	ErrorTag   string
	ErrorClass string
}

func NewFieldset(legend string) *Fieldset {
	return &Fieldset{
		node:       dom.New("fieldset", ""),
		legend:     legend,
		container:  ContainerDL,
		ErrorTag:   "div",
		ErrorClass: "error",
	}
}

func (fs *Fieldset) Node() *dom.Node { return fs.node }

func (fs *Fieldset) Legend() string          { return fs.legend }
func (fs *Fieldset) SetLegend(legend string) { fs.legend = legend }
func (fs *Fieldset) Container() string       { return fs.container }

// SetContainer selects the layout. Unknown names produce one element of that
// tag per field, like div and p.
func (fs *Fieldset) SetContainer(container string) {
	if container == "" {
		container = ContainerDL
	}
	fs.container = container
}

func (fs *Fieldset) Attribute(key string) string { return fs.node.Attribute(key) }

func (fs *Fieldset) SetAttribute(key, value string) {
	fs.node.SetAttribute(key, value)
}

func (fs *Fieldset) SetAttributes(attrs Attrs) {
	attrs.applyTo(fs.node)
}

func (fs *Fieldset) group(index int, create bool) *group {
	for i, g := range fs.groups {
		if g.index == index {
			return g
		}
		if g.index > index {
			if !create {
				return nil
			}
			g := &group{index: index}
			fs.groups = append(fs.groups[:i], append([]*group{g}, fs.groups[i:]...)...)
			return g
		}
	}
	if !create {
		return nil
	}
	g := &group{index: index}
	fs.groups = append(fs.groups, g)
	return g
}

// AddField appends e to the current group. A field of the same name already in
// that group is replaced in place.
func (fs *Fieldset) AddField(e Element) *Fieldset {
	g := fs.group(fs.current, true)
	if i := g.find(e.Name()); i >= 0 {
		g.fields[i] = e
	} else {
		g.fields = append(g.fields, e)
	}
	return fs
}

func (fs *Fieldset) AddFields(ee ...Element) *Fieldset {
	for _, e := range ee {
		fs.AddField(e)
	}
	return fs
}

// CreateGroup starts a new empty group after all existing ones and makes it
// current.
func (fs *Fieldset) CreateGroup() int {
	next := fs.current
	for _, g := range fs.groups {
		if g.index > next {
			next = g.index
		}
	}
	next++
	fs.SetCurrent(next)
	return next
}

// SetCurrent makes group index current, creating it if needed.
func (fs *Fieldset) SetCurrent(index int) {
	fs.current = index
	fs.group(index, true)
}

func (fs *Fieldset) Current() int { return fs.current }

// InsertFieldBefore puts e right before the first field named anchor, in every
// group that has one. It reports whether anything was inserted.
func (fs *Fieldset) InsertFieldBefore(anchor string, e Element) bool {
	return fs.insert(anchor, e, 0)
}

// InsertFieldAfter is InsertFieldBefore, but after the anchor.
func (fs *Fieldset) InsertFieldAfter(anchor string, e Element) bool {
	return fs.insert(anchor, e, 1)
}

func (fs *Fieldset) insert(anchor string, e Element, offset int) bool {
	inserted := false
	for _, g := range fs.groups {
		if i := g.find(anchor); i >= 0 {
			g.insertAt(i+offset, e)
			inserted = true
		}
	}
	return inserted
}

func (fs *Fieldset) RemoveField(name string) bool {
	removed := false
	for _, g := range fs.groups {
		for i := g.find(name); i >= 0; i = g.find(name) {
			g.fields = append(g.fields[:i], g.fields[i+1:]...)
			removed = true
		}
	}
	return removed
}

// Field returns the last field named name, or nil.
func (fs *Fieldset) Field(name string) Element {
	var found Element
	for _, g := range fs.groups {
		if i := g.find(name); i >= 0 {
			found = g.fields[i]
		}
	}
	return found
}

// Fields returns all fields, groups in index order.
func (fs *Fieldset) Fields() []Element {
	var result []Element
	for _, g := range fs.groups {
		result = append(result, g.fields...)
	}
	return result
}

// Groups returns the fields of each non-empty group, in index order.
func (fs *Fieldset) Groups() [][]Element {
	var result [][]Element
	for _, g := range fs.groups {
		if len(g.fields) > 0 {
			result = append(result, g.fields)
		}
	}
	return result
}

func (fs *Fieldset) Count() int {
	return len(fs.Fields())
}

// Values maps field keys to values. Buttons carry no value and are skipped.
func (fs *Fieldset) Values() map[string]any {
	values := make(map[string]any)
	for _, e := range fs.Fields() {
		if isButton(e) {
			continue
		}
		values[ValueKey(e.Name())] = e.Value()
	}
	return values
}

func (fs *Fieldset) HasFile() bool {
	for _, e := range fs.Fields() {
		if _, ok := e.(*File); ok {
			return true
		}
	}
	return false
}

// Prepare rebuilds the markup of the fieldset from its fields.
func (fs *Fieldset) Prepare() {
	fs.node.RemoveChildren()
	if fs.legend != "" {
		fs.node.AddChild(dom.New("legend", fs.legend))
	}
	for _, fields := range fs.Groups() {
		switch fs.container {
		case ContainerTable:
			fs.node.AddChild(fs.table(fields))
		case ContainerDL:
			fs.node.AddChild(fs.dl(fields))
		default:
			for _, e := range fields {
				fs.node.AddChild(fs.wrap(e))
			}
		}
	}
}

func (fs *Fieldset) Render() string {
	fs.Prepare()
	return fs.node.Render()
}

func (fs *Fieldset) table(fields []Element) *dom.Node {
	table := dom.New("table", "")
	for _, e := range fields {
		tr := dom.New("tr", "")
		value := dom.New("td", "")
		if label := labelNode(e); label != nil {
			tr.AddChild(dom.New("td", "").AddChild(label))
		} else {
			value.SetAttribute("colspan", "2")
		}
		fs.fill(value, e)
		table.AddChild(tr.AddChild(value))
	}
	return table
}

func (fs *Fieldset) dl(fields []Element) *dom.Node {
	dl := dom.New("dl", "")
	for _, e := range fields {
		if label := labelNode(e); label != nil {
			dl.AddChild(dom.New("dt", "").AddChild(label))
		}
		dd := dom.New("dd", "")
		fs.fill(dd, e)
		dl.AddChild(dd)
	}
	return dl
}

func (fs *Fieldset) wrap(e Element) *dom.Node {
	box := dom.New(fs.container, "")
	box.AddChild(labelNode(e))
	fs.fill(box, e)
	return box
}

// fill adds the control with its decorations, then the hint; errors go first
// or last depending on the element's ErrorPre.
func (fs *Fieldset) fill(parent *dom.Node, e Element) {
	if e.ErrorPre() {
		parent.AddChildren(fs.errorNodes(e)...)
	}
	parent.AddChildren(controlNodes(e)...)
	parent.AddChild(hintNode(e))
	if !e.ErrorPre() {
		parent.AddChildren(fs.errorNodes(e)...)
	}
}

func (fs *Fieldset) errorNodes(e Element) []*dom.Node {
	return errorNodes(e, fs.ErrorTag, fs.ErrorClass)
}

func labelNode(e Element) *dom.Node {
	label := e.Label()
	if label.IsZero() {
		return nil
	}
	n := dom.New("label", label.Text).SetAttribute("for", e.LabelFor())
	label.Attrs.applyTo(n)
	if e.IsRequired() {
		n.AddClass("required")
	}
	return n
}

func hintNode(e Element) *dom.Node {
	hint := e.Hint()
	if hint.IsZero() {
		return nil
	}
	n := dom.New("span", hint.Text)
	hint.Attrs.applyTo(n)
	if !n.HasAttribute("class") {
		n.SetAttribute("class", "hint")
	}
	return n
}

func decorationNode(d Decoration) *dom.Node {
	if d.IsZero() {
		return nil
	}
	if len(d.Attrs) == 0 {
		return dom.Raw(d.Text)
	}
	n := dom.New("span", "").AddChild(dom.Raw(d.Text))
	d.Attrs.applyTo(n)
	return n
}

func controlNodes(e Element) []*dom.Node {
	var result []*dom.Node
	if n := decorationNode(e.Prepend()); n != nil {
		result = append(result, n)
	}
	result = append(result, e.Node())
	if n := decorationNode(e.Append()); n != nil {
		result = append(result, n)
	}
	return result
}

func errorNodes(e Element, tag, class string) []*dom.Node {
	var result []*dom.Node
	for _, msg := range e.Errors() {
		result = append(result, dom.New(tag, msg).SetAttribute("class", class))
	}
	return result
}

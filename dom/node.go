// Package dom is a tiny markup tree used to build and serialize form HTML.
package dom

import (
	"strings"

	"golang.org/x/net/html"
)

const indentUnit = "  "

type kind uint8

const (
	kindElement kind = iota
	kindText
	kindRaw
	kindFragment
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

type Attr struct {
	Key   string
	Value string
}

// Node is an element, a text run, a raw markup chunk or a fragment
// (children without a wrapping tag).
type Node struct {
	kind     kind
	tag      string
	text     string
	attrs    []Attr
	children []*Node
	indent   string
	hasInd   bool
}

func New(tag string, text string) *Node {
	return &Node{kind: kindElement, tag: tag, text: text}
}

func Text(text string) *Node {
	return &Node{kind: kindText, text: text}
}

// Raw is emitted verbatim, without escaping.
func Raw(markup string) *Node {
	return &Node{kind: kindRaw, text: markup}
}

func Fragment(children ...*Node) *Node {
	n := &Node{kind: kindFragment}
	n.AddChildren(children...)
	return n
}

func (n *Node) Tag() string       { return n.tag }
func (n *Node) IsElement() bool   { return n.kind == kindElement }
func (n *Node) IsFragment() bool  { return n.kind == kindFragment }
func (n *Node) Text() string      { return n.text }
func (n *Node) SetText(s string)  { n.text = s }
func (n *Node) Children() []*Node { return n.children }
func (n *Node) HasChildren() bool { return len(n.children) > 0 }

func (n *Node) AddChild(c *Node) *Node {
	if c != nil {
		n.children = append(n.children, c)
	}
	return n
}

func (n *Node) AddChildren(cc ...*Node) *Node {
	for _, c := range cc {
		n.AddChild(c)
	}
	return n
}

func (n *Node) SetChildren(cc []*Node) {
	n.children = cc
}

func (n *Node) RemoveChildren() {
	n.children = nil
}

func (n *Node) Attribute(key string) string {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

func (n *Node) HasAttribute(key string) bool {
	for _, a := range n.attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttribute replaces the value in place, keeping the original attribute position.
func (n *Node) SetAttribute(key, value string) *Node {
	for i, a := range n.attrs {
		if a.Key == key {
			n.attrs[i].Value = value
			return n
		}
	}
	n.attrs = append(n.attrs, Attr{key, value})
	return n
}

func (n *Node) SetAttributes(attrs ...Attr) *Node {
	for _, a := range attrs {
		n.SetAttribute(a.Key, a.Value)
	}
	return n
}

func (n *Node) RemoveAttribute(key string) *Node {
	for i, a := range n.attrs {
		if a.Key == key {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			break
		}
	}
	return n
}

func (n *Node) Attributes() []Attr {
	return n.attrs
}

// AddClass appends cls to the class attribute unless already present.
func (n *Node) AddClass(cls string) *Node {
	cur := n.Attribute("class")
	for _, c := range strings.Fields(cur) {
		if c == cls {
			return n
		}
	}
	if cur == "" {
		return n.SetAttribute("class", cls)
	}
	return n.SetAttribute("class", cur+" "+cls)
}

// SetIndent overrides the leading whitespace of this node; descendants nest from it.
func (n *Node) SetIndent(indent string) *Node {
	n.indent = indent
	n.hasInd = true
	return n
}

func (n *Node) Indent() string {
	return n.indent
}

func (n *Node) Render() string {
	return n.RenderAt(0)
}

func (n *Node) RenderAt(depth int) string {
	var buf strings.Builder
	n.RenderInto(&buf, strings.Repeat(indentUnit, depth))
	return buf.String()
}

func (n *Node) RenderInto(buf *strings.Builder, prefix string) {
	if n.hasInd {
		prefix = n.indent
	}
	switch n.kind {
	case kindText:
		buf.WriteString(prefix)
		buf.WriteString(html.EscapeString(n.text))
		buf.WriteByte('\n')
	case kindRaw:
		buf.WriteString(prefix)
		buf.WriteString(n.text)
		buf.WriteByte('\n')
	case kindFragment:
		for _, c := range n.children {
			c.RenderInto(buf, prefix)
		}
	default:
		buf.WriteString(prefix)
		n.openTag(buf)
		if voidElements[n.tag] {
			buf.WriteByte('\n')
			return
		}
		if len(n.children) == 0 {
			buf.WriteString(html.EscapeString(n.text))
		} else {
			buf.WriteByte('\n')
			if n.text != "" {
				buf.WriteString(prefix + indentUnit)
				buf.WriteString(html.EscapeString(n.text))
				buf.WriteByte('\n')
			}
			for _, c := range n.children {
				c.RenderInto(buf, prefix+indentUnit)
			}
			buf.WriteString(prefix)
		}
		buf.WriteString("</")
		buf.WriteString(n.tag)
		buf.WriteString(">\n")
	}
}

func (n *Node) openTag(buf *strings.Builder) {
	buf.WriteByte('<')
	buf.WriteString(n.tag)
	for _, a := range n.attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Key)
		buf.WriteString(`="`)
		buf.WriteString(html.EscapeString(a.Value))
		buf.WriteByte('"')
	}
	if voidElements[n.tag] {
		buf.WriteString(" />")
	} else {
		buf.WriteByte('>')
	}
}

// Walk visits n and its descendants depth-first.
func (n *Node) Walk(f func(*Node)) {
	f(n)
	for _, c := range n.children {
		c.Walk(f)
	}
}

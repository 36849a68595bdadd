package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestRender(t *testing.T) {
	tests := []struct {
		node     *Node
		expected string
	}{
		{New("p", "hi"), "<p>hi</p>\n"},
		{New("p", "a < b"), "<p>a &lt; b</p>\n"},
		{New("input", "").SetAttribute("type", "text").SetAttribute("name", "x"), "<input type=\"text\" name=\"x\" />\n"},
		{New("span", "").SetAttribute("title", `"q"`), "<span title=\"&#34;q&#34;\"></span>\n"},
		{New("div", "").AddChild(New("b", "x")), "<div>\n  <b>x</b>\n</div>\n"},
		{Fragment(New("i", "1"), Raw("<br>")), "<i>1</i>\n<br>\n"},
		{New("ul", "").AddChild(New("li", "a").SetIndent("    ")), "<ul>\n    <li>a</li>\n</ul>\n"},
	}
	for _, tt := range tests {
		actual := tt.node.Render()
		if actual != tt.expected {
			t.Errorf("** Render() == %q, expected %q", actual, tt.expected)
		} else {
			t.Logf("✓ Render() == %q", actual)
		}
	}
}

func TestAttributesKeepOrder(t *testing.T) {
	n := New("input", "")
	n.SetAttribute("type", "text").SetAttribute("name", "a").SetAttribute("id", "a")
	n.SetAttribute("type", "email")
	n.RemoveAttribute("name")
	actual := n.Render()
	expected := "<input type=\"email\" id=\"a\" />\n"
	if actual != expected {
		t.Errorf("** got %q, expected %q", actual, expected)
	}
	if n.HasAttribute("name") {
		t.Errorf("** name attribute not removed")
	}
}

func TestAddClass(t *testing.T) {
	n := New("label", "Name")
	n.AddClass("required")
	n.AddClass("required")
	if a := n.Attribute("class"); a != "required" {
		t.Errorf("** class = %q", a)
	}
	n.SetAttribute("class", "big")
	n.AddClass("required")
	if a := n.Attribute("class"); a != "big required" {
		t.Errorf("** class = %q", a)
	}
}

func TestRenderParses(t *testing.T) {
	n := New("form", "").SetAttribute("method", "post")
	fs := New("fieldset", "")
	fs.AddChild(New("legend", "Sign <up>"))
	fs.AddChild(New("input", "").SetAttribute("value", `a"b`))
	n.AddChild(fs)
	if _, err := html.Parse(strings.NewReader(n.Render())); err != nil {
		t.Fatalf("** bad HTML: %v", err)
	}
}

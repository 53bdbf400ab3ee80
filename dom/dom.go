package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses a markup fragment and returns a detached container
// element (a <div>) holding the fragment's nodes as children.
func ParseFragment(markup string) (*html.Node, error) {
	container := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// Serialize renders the children of root back to markup. This is the
// snapshot format: partitioning captures it once before the first mutation,
// and revert restores it verbatim.
func Serialize(root *html.Node) string {
	sb := strings.Builder{}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			tracer().Errorf("cannot serialize node: %v", err)
		}
	}
	return sb.String()
}

// Text returns the concatenated text content of root's subtree.
func Text(root *html.Node) string {
	sb := strings.Builder{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return sb.String()
}

// TextLeaves collects the text nodes of root's subtree in document order.
func TextLeaves(root *html.Node) []*html.Node {
	var leaves []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			leaves = append(leaves, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return leaves
}

// RemoveChildren detaches all children of n.
func RemoveChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// ReplaceContent replaces n's children with the nodes parsed from markup.
// Used by revert to restore a snapshot.
func ReplaceContent(n *html.Node, markup string) error {
	fragment, err := ParseFragment(markup)
	if err != nil {
		return err
	}
	RemoveChildren(n)
	for fragment.FirstChild != nil {
		c := fragment.FirstChild
		fragment.RemoveChild(c)
		n.AppendChild(c)
	}
	return nil
}

// Clone deep-copies a subtree. The copy is detached.
func Clone(n *html.Node) *html.Node {
	cp := &html.Node{
		Type:     n.Type,
		Data:     n.Data,
		DataAtom: n.DataAtom,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cp.AppendChild(Clone(c))
	}
	return cp
}

// NewElement creates a detached element node with the given tag name.
func NewElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// NewText creates a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// GetAttr returns the value of attribute key on n, or "".
func GetAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets attribute key on n, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// DelAttr removes attribute key from n, if present.
func DelAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// AddClass appends a class token to n's class attribute.
func AddClass(n *html.Node, class string) {
	if class == "" {
		return
	}
	if have := GetAttr(n, "class"); have != "" {
		SetAttr(n, "class", have+" "+class)
	} else {
		SetAttr(n, "class", class)
	}
}

// HasClass reports whether n carries the given class token.
func HasClass(n *html.Node, class string) bool {
	for _, tok := range strings.Fields(GetAttr(n, "class")) {
		if tok == class {
			return true
		}
	}
	return false
}

// AppendStyle appends a CSS declaration to n's style attribute.
func AppendStyle(n *html.Node, decl string) {
	if have := GetAttr(n, "style"); have != "" {
		if !strings.HasSuffix(strings.TrimSpace(have), ";") {
			have += ";"
		}
		SetAttr(n, "style", have+" "+decl)
	} else {
		SetAttr(n, "style", decl)
	}
}

// Document walks up from n and returns the enclosing document node, or nil
// if n lives in a detached fragment.
func Document(n *html.Node) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.DocumentNode {
			return p
		}
	}
	return nil
}

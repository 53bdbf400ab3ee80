package project

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/npillmayer/textsplit/dom"
)

// ScreenReaderClass marks the visually hidden copy of the original markup
// that assistive technology reads instead of the split scaffolding.
const ScreenReaderClass = "ts-sr-only"

// screenReaderRule visually hides an element while keeping it exposed to
// assistive technology (the classic clipped 1×1 box).
const screenReaderRule = "." + ScreenReaderClass +
	"{position:absolute!important;width:1px;height:1px;padding:0;margin:-1px;" +
	"overflow:hidden;clip:rect(0,0,0,0);white-space:nowrap;border:0}"

// The screen-reader style rule is injected into a document once per
// process.
var srStyleInjected = false

// ApplyA11y attaches the accessibility projection.
//
// Flat sources (no nested inline markup) get an aria-label with the
// original text on the root, and every generated top-level token is
// marked decorative. Nested sources cannot be represented by a flat
// label: the visual split structure is wrapped decorative-but-visible and
// a visually hidden clone of the original markup is appended for
// assistive technology.
func (b *Build) ApplyA11y(label, snapshot string) {
	if !b.nested {
		dom.SetAttr(b.root, "aria-label", label)
		b.RootAttrs = append(b.RootAttrs, "aria-label")
		for c := b.root.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				dom.SetAttr(c, "aria-hidden", "true")
			}
		}
		return
	}
	visual := dom.NewElement("span")
	dom.SetAttr(visual, "aria-hidden", "true")
	for b.root.FirstChild != nil {
		c := b.root.FirstChild
		b.root.RemoveChild(c)
		visual.AppendChild(c)
	}
	b.root.AppendChild(visual)

	clone := dom.NewElement("span")
	dom.AddClass(clone, ScreenReaderClass)
	if err := dom.ReplaceContent(clone, snapshot); err != nil {
		tracer().Errorf("cannot build screen-reader clone: %v", err)
		return
	}
	b.root.AppendChild(clone)
	ensureScreenReaderStyle(b.root)
}

// ensureScreenReaderStyle injects the hidden-clone style rule into the
// enclosing document, once per process. Detached fragments have no
// document to inject into; the guard stays unset so a later attached
// projection still injects.
func ensureScreenReaderStyle(n *html.Node) {
	if srStyleInjected {
		return
	}
	doc := dom.Document(n)
	if doc == nil {
		tracer().Debugf("no document for style injection, skipping")
		return
	}
	head := findElement(doc, atom.Head)
	if head == nil {
		head = findElement(doc, atom.Html)
	}
	if head == nil {
		head = doc
	}
	style := dom.NewElement("style")
	style.AppendChild(dom.NewText(screenReaderRule))
	head.AppendChild(style)
	srStyleInjected = true
	tracer().Debugf("injected screen-reader style rule")
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// resetScreenReaderStyle clears the injection guard. Test helper.
func resetScreenReaderStyle() { srStyleInjected = false }

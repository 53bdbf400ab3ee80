package project

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/metrics"
	"github.com/npillmayer/textsplit/partition"
)

// BuildLines restructures the projected words into line wrappers matching
// the host's wrap decisions. The renderer must have laid out the current
// (post-kerning) state; grouping uses that geometry. Word wrappers keep
// their identity (and applied kern corrections) while moving, and merged
// ancestor wrappers are re-instantiated per line, so a link wrapping
// across two lines becomes one rebuilt wrapper instance per line.
//
// When words were not requested, the internal word wrappers are unwrapped
// into their line: the line then holds text (or rebuilt ancestor
// wrappers) directly.
func (b *Build) BuildLines(rend metrics.Renderer) {
	grouped := partition.GroupLines(rend, b.WordSpans)
	dom.RemoveChildren(b.root)

	spanIndex := make(map[*html.Node]int, len(b.words))
	for i, w := range b.words {
		spanIndex[w.span] = i
	}
	for lineNo, group := range grouped {
		line := dom.NewElement("div")
		dom.AddClass(line, b.spec.LineClass)
		if b.spec.PropIndex {
			dom.AppendStyle(line, fmt.Sprintf("--ts-line: %d", lineNo))
		}
		items := make([]wordItem, 0, len(group))
		for _, span := range group {
			w := b.words[spanIndex[span]]
			if span.Parent != nil {
				span.Parent.RemoveChild(span)
			}
			items = append(items, w)
		}
		emitMerged(line, items)
		if b.spec.Types&(Words|Chars) == 0 {
			// lines-only: word wrappers were internal scaffolding
			for _, span := range group {
				unwrap(span)
			}
		}
		b.root.AppendChild(line)
		b.Lines = append(b.Lines, line)
	}
	tracer().Debugf("grouped %d words into %d lines", len(b.WordSpans), len(b.Lines))
}

// unwrap replaces a wrapper by its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for n.FirstChild != nil {
		c := n.FirstChild
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

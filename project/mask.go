package project

import (
	"github.com/npillmayer/textsplit/dom"
	"golang.org/x/net/html"
)

// ApplyMask wraps every node of the masked granularity in a clipping
// wrapper, enabling reveal animations that slide tokens out of an
// overflow-hidden parent. A request for an unmasked projection is a no-op.
func (b *Build) ApplyMask() {
	var nodes []*html.Node
	var class string
	switch b.spec.Mask {
	case 0:
		return
	case Chars:
		nodes, class = b.Chars, b.spec.CharClass
	case Words:
		nodes, class = b.WordSpans, b.spec.WordClass
	case Lines:
		nodes, class = b.Lines, b.spec.LineClass
	default:
		tracer().Infof("mask granularity %s not maskable, ignoring", b.spec.Mask)
		return
	}
	for _, n := range nodes {
		mask := dom.NewElement(n.Data) // same element type as the masked node
		dom.AddClass(mask, class+"-mask")
		dom.AppendStyle(mask, "display: inline-block; overflow: clip")
		parent := n.Parent
		if parent == nil {
			continue
		}
		parent.InsertBefore(mask, n)
		parent.RemoveChild(n)
		mask.AppendChild(n)
	}
	tracer().Debugf("masked %d %s nodes", len(nodes), b.spec.Mask)
}

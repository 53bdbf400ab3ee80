/*
Package metrics defines the measurement boundary between the splitting
engine and the host that renders the markup.

The engine never lays out text itself. It asks a Renderer — a browser
binding, a typesetter, or the deterministic reference implementation in
internal/textflow — for the geometry of nodes and character ranges in the
current rendered state. All coordinates are 26.6 fixed-point "layout
units" (one integer unit corresponds to one CSS pixel in a browser host).

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package metrics

import (
	"fmt"

	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Rect is a bounding box in layout units, relative to the flow origin.
type Rect struct {
	Left, Top     fixed.Int26_6
	Width, Height fixed.Int26_6
}

func (r Rect) String() string {
	return fmt.Sprintf("(%v,%v %vx%v)", r.Left, r.Top, r.Width, r.Height)
}

// Renderer is the engine's view of the host's layout. Bounds and
// RangeBounds reflect the rendered state as of the last Layout call;
// TextWidth measures text in isolation (off-screen), independent of the
// current document.
type Renderer interface {
	// Layout (re-)flows the subtree under root. The engine calls it after
	// every structural mutation and before re-measuring.
	Layout(root *html.Node)
	// Bounds returns the bounding box of an element or text node, or
	// ok=false if the node is not part of the rendered flow.
	Bounds(n *html.Node) (r Rect, ok bool)
	// RangeBounds returns the bounding box of the byte range [off,off+n)
	// within a text leaf.
	RangeBounds(text *html.Node, off, n int) (r Rect, ok bool)
	// TextWidth measures s as an isolated run, including any kerning the
	// host applies inside the run.
	TextWidth(s string) fixed.Int26_6
	// FontSize returns the effective font size at node n.
	FontSize(n *html.Node) fixed.Int26_6
	// InnerWidth returns the content width of a container element.
	InnerWidth(n *html.Node) fixed.Int26_6
}

// PairKern derives the kerning between two adjacent clusters by
// differencing isolated measurements: width(ab) − width(a) − width(b).
// This is the synthetic-width strategy; it survives rendering engines
// whose per-character bounding boxes already absorb kerning. Pair text is
// NFC-folded first so composed and decomposed accents measure alike.
func PairKern(r Renderer, a, b string) fixed.Int26_6 {
	pair := norm.NFC.String(a + b)
	return r.TextWidth(pair) - r.TextWidth(norm.NFC.String(a)) - r.TextWidth(norm.NFC.String(b))
}

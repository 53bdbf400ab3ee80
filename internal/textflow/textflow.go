/*
Package textflow is a deterministic inline-flow layout engine implementing
the metrics.Renderer boundary.

It exists so the splitting engine can be exercised without a browser: tests
and the CLI tools flow markup at a configurable container width and obtain
reproducible geometry. The model is intentionally plain — cell-based
advances (one cell per narrow rune, two per wide rune), a fixed line
height of 1.2em, greedy wrapping at whitespace, and a pair-kerning table
that applies only between adjacent clusters of the same text node. That
last restriction mirrors real rendering engines: kerning is lost across
element boundaries, which is precisely the defect the kerning compensator
corrects.
*/
package textflow

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/metrics"
	"github.com/npillmayer/textsplit/segment"
)

// tracer writes to trace with key 'textsplit.flow'
func tracer() tracing.Trace {
	return tracing.Select("textsplit.flow")
}

// Config parameterizes a Flow.
type Config struct {
	Width    fixed.Int26_6            // container content width
	FontSize fixed.Int26_6            // em size; one cell advances FontSize/2
	Kerning  map[string]fixed.Int26_6 // cluster-pair → kern (usually negative)
	// SkipClasses lists element classes taken out of the rendered flow
	// (e.g. the visually hidden screen-reader clone).
	SkipClasses []string
}

// Pair builds a kerning-table key from two adjacent cluster texts.
func Pair(a, b string) string { return a + b }

// Flow lays out a node tree and answers geometry queries about it.
type Flow struct {
	cfg    Config
	boxes  map[*html.Node]metrics.Rect
	ranges map[*html.Node][]clusterBox
}

type clusterBox struct {
	off, n int
	rect   metrics.Rect
}

// New creates a Flow with the given configuration. A zero FontSize
// defaults to 16 units.
func New(cfg Config) *Flow {
	if cfg.FontSize == 0 {
		cfg.FontSize = fixed.I(16)
	}
	return &Flow{cfg: cfg}
}

// SetWidth changes the container width for subsequent Layout calls.
func (f *Flow) SetWidth(w fixed.Int26_6) { f.cfg.Width = w }

func (f *Flow) cell() fixed.Int26_6       { return f.cfg.FontSize / 2 }
func (f *Flow) lineHeight() fixed.Int26_6 { return f.cfg.FontSize * 6 / 5 }

func (f *Flow) advance(cluster string) fixed.Int26_6 {
	return f.cell().Mul(fixed.I(runewidth.StringWidth(cluster)))
}

func (f *Flow) kern(a, b string) fixed.Int26_6 {
	if f.cfg.Kerning == nil {
		return 0
	}
	return f.cfg.Kerning[Pair(a, b)]
}

// --- Flattening ------------------------------------------------------------

const (
	clusterItem = iota
	blockBreakItem
)

// item is one flattened unit of the inline flow.
type item struct {
	kind   int
	node   *html.Node // owning text node
	off, n int
	text   string
	space  bool
	brk    bool          // dash-class: break opportunity after this cluster
	margin fixed.Int26_6 // pending margin-left applied before this cluster
}

func blockLevel(n *html.Node) bool {
	switch n.Data {
	case "div", "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol", "blockquote":
		return true
	}
	return false
}

func (f *Flow) skipped(n *html.Node) bool {
	for _, class := range f.cfg.SkipClasses {
		if dom.HasClass(n, class) {
			return true
		}
	}
	return false
}

// marginLeft parses a "margin-left: <v>px" declaration from n's style.
func marginLeft(n *html.Node) fixed.Int26_6 {
	style := dom.GetAttr(n, "style")
	for _, decl := range strings.Split(style, ";") {
		key, val, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(key) != "margin-left" {
			continue
		}
		val = strings.TrimSuffix(strings.TrimSpace(val), "px")
		if x, err := strconv.ParseFloat(val, 64); err == nil {
			return fixed.Int26_6(x * 64)
		}
	}
	return 0
}

func (f *Flow) flatten(root *html.Node) []item {
	var items []item
	var pendingMargin fixed.Int26_6
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			for _, cl := range segment.Clusters(n.Data) {
				it := item{
					kind:   clusterItem,
					node:   n,
					off:    cl.Off,
					n:      len(cl.Text),
					text:   cl.Text,
					space:  segment.IsWhitespace(cl.Text),
					brk:    segment.IsBreak(cl.Text),
					margin: pendingMargin,
				}
				pendingMargin = 0
				items = append(items, it)
			}
		case html.ElementNode:
			if f.skipped(n) {
				return
			}
			block := blockLevel(n) && n.Parent != nil
			if block {
				items = append(items, item{kind: blockBreakItem})
			}
			pendingMargin += marginLeft(n)
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if block {
				items = append(items, item{kind: blockBreakItem})
			}
		}
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return items
}

// --- Layout ----------------------------------------------------------------

// Layout flows root's content at the configured width and records geometry
// for subsequent Bounds/RangeBounds queries. Queries about nodes outside
// root's subtree (or laid out before a mutation) answer ok=false.
func (f *Flow) Layout(root *html.Node) {
	f.boxes = make(map[*html.Node]metrics.Rect)
	f.ranges = make(map[*html.Node][]clusterBox)
	items := f.flatten(root)

	var x fixed.Int26_6
	line := 0
	var prev item // previously placed cluster, for kerning
	havePrev := false

	place := func(run []item) {
		if len(run) == 0 {
			return
		}
		w := f.runWidth(run)
		if x > 0 && x+w > f.cfg.Width {
			x = 0
			line++
			havePrev = false
		}
		for i := range run {
			it := run[i]
			x += it.margin
			if havePrev && prev.node == it.node && prev.off+prev.n == it.off {
				x += f.kern(prev.text, it.text)
			}
			rect := metrics.Rect{
				Left:   x,
				Top:    fixed.Int26_6(line) * f.lineHeight(),
				Width:  f.advance(it.text),
				Height: f.lineHeight(),
			}
			f.ranges[it.node] = append(f.ranges[it.node], clusterBox{off: it.off, n: it.n, rect: rect})
			x += rect.Width
			prev = it
			havePrev = true
		}
	}

	var run []item
	flush := func() {
		place(run)
		run = run[:0]
	}
	for i := range items {
		it := items[i]
		switch {
		case it.kind == blockBreakItem:
			flush()
			if x > 0 {
				x = 0
				line++
			}
			havePrev = false
		case it.space:
			flush()
			if x > 0 { // leading spaces collapse
				x += it.margin
				rect := metrics.Rect{
					Left:   x,
					Top:    fixed.Int26_6(line) * f.lineHeight(),
					Width:  f.advance(it.text),
					Height: f.lineHeight(),
				}
				f.ranges[it.node] = append(f.ranges[it.node], clusterBox{off: it.off, n: it.n, rect: rect})
				x += rect.Width
				havePrev = false
			}
		default:
			run = append(run, it)
			if it.brk {
				flush()
			}
		}
	}
	flush()

	f.collectBoxes(root)
	tracer().Debugf("flowed %d lines at width %v", line+1, f.cfg.Width)
}

// runWidth measures an unbreakable run, including margins and in-node kerning.
func (f *Flow) runWidth(run []item) fixed.Int26_6 {
	var w fixed.Int26_6
	for i := range run {
		w += run[i].margin + f.advance(run[i].text)
		if i > 0 && run[i-1].node == run[i].node && run[i-1].off+run[i-1].n == run[i].off {
			w += f.kern(run[i-1].text, run[i].text)
		}
	}
	return w
}

// collectBoxes derives node boxes bottom-up as unions of cluster rects.
func (f *Flow) collectBoxes(n *html.Node) (metrics.Rect, bool) {
	switch n.Type {
	case html.TextNode:
		boxes := f.ranges[n]
		if len(boxes) == 0 {
			return metrics.Rect{}, false
		}
		r := boxes[0].rect
		for _, b := range boxes[1:] {
			r = union(r, b.rect)
		}
		f.boxes[n] = r
		return r, true
	case html.ElementNode, html.DocumentNode:
		var r metrics.Rect
		have := false
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			cr, ok := f.collectBoxes(c)
			if !ok {
				continue
			}
			if !have {
				r, have = cr, true
			} else {
				r = union(r, cr)
			}
		}
		if have {
			f.boxes[n] = r
		}
		return r, have
	}
	return metrics.Rect{}, false
}

func union(a, b metrics.Rect) metrics.Rect {
	left, top := a.Left, a.Top
	if b.Left < left {
		left = b.Left
	}
	if b.Top < top {
		top = b.Top
	}
	right, bottom := a.Left+a.Width, a.Top+a.Height
	if br := b.Left + b.Width; br > right {
		right = br
	}
	if bb := b.Top + b.Height; bb > bottom {
		bottom = bb
	}
	return metrics.Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// --- Renderer queries ------------------------------------------------------

// Bounds returns the recorded box of n.
func (f *Flow) Bounds(n *html.Node) (metrics.Rect, bool) {
	r, ok := f.boxes[n]
	return r, ok
}

// RangeBounds returns the union box of the clusters of text overlapping
// the byte range [off, off+n).
func (f *Flow) RangeBounds(text *html.Node, off, n int) (metrics.Rect, bool) {
	var r metrics.Rect
	have := false
	for _, b := range f.ranges[text] {
		if b.off >= off+n || b.off+b.n <= off {
			continue
		}
		if !have {
			r, have = b.rect, true
		} else {
			r = union(r, b.rect)
		}
	}
	return r, have
}

// TextWidth measures s as one isolated run, kerning applied between all
// adjacent clusters.
func (f *Flow) TextWidth(s string) fixed.Int26_6 {
	var w fixed.Int26_6
	var prev string
	for i, cl := range segment.Clusters(s) {
		w += f.advance(cl.Text)
		if i > 0 {
			w += f.kern(prev, cl.Text)
		}
		prev = cl.Text
	}
	return w
}

// FontSize returns the configured em size for any node.
func (f *Flow) FontSize(*html.Node) fixed.Int26_6 { return f.cfg.FontSize }

// InnerWidth returns the configured container width for any node.
func (f *Flow) InnerWidth(*html.Node) fixed.Int26_6 { return f.cfg.Width }

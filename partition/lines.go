package partition

import (
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit/metrics"
)

// LineTolerance returns the vertical clustering tolerance for a given font
// size: max(5, 0.3 × fontSize) layout units. Elements whose tops differ by
// less than this belong to the same line.
func LineTolerance(fontSize fixed.Int26_6) fixed.Int26_6 {
	tol := fontSize * 3 / 10
	if min := fixed.I(5); tol < min {
		tol = min
	}
	return tol
}

// GroupLines clusters elements into lines by rendered vertical position.
// Elements must arrive in visual/document order; the pass is strictly
// left-to-right, top-to-bottom with no backtracking. The reference top of
// a line is the top of the first element placed into it.
func GroupLines(rend metrics.Renderer, elements []*html.Node) [][]*html.Node {
	var lines [][]*html.Node
	if len(elements) == 0 {
		return lines
	}
	tol := LineTolerance(rend.FontSize(elements[0]))
	var ref fixed.Int26_6
	for _, el := range elements {
		r, ok := rend.Bounds(el)
		if !ok {
			tracer().Infof("element without geometry skipped in line grouping")
			continue
		}
		delta := r.Top - ref
		if delta < 0 {
			delta = -delta
		}
		if len(lines) == 0 || delta >= tol {
			lines = append(lines, []*html.Node{el})
			ref = r.Top
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], el)
	}
	return lines
}

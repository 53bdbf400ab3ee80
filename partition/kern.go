package partition

import (
	"fmt"

	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/metrics"
)

// KernStrategy selects how inter-character spacing is preserved across
// the split.
type KernStrategy int

const (
	// KernSynthetic derives kerning from isolated glyph-pair widths,
	// width(ab) − width(a) − width(b). Portable across rendering engines;
	// the default strategy (and the zero value).
	KernSynthetic KernStrategy = iota
	// KernPositional differences pre-split bounding-box left edges and
	// restores the measured gap after the split.
	KernPositional
	// KernOff disables kerning compensation.
	KernOff
)

func (s KernStrategy) String() string {
	switch s {
	case KernOff:
		return "off"
	case KernSynthetic:
		return "synthetic-width"
	case KernPositional:
		return "positional"
	}
	return fmt.Sprintf("KernStrategy(%d)", int(s))
}

// MaxKernCorrection is the sanity window for corrections. A correction at
// or beyond this magnitude stems from cross-line or cross-element
// measurement, not from kerning, and is discarded rather than applied.
var MaxKernCorrection = fixed.I(20)

// KernPlan holds the spacing targets recorded before the split. For the
// positional strategy these are the measured left-edge gaps between
// adjacent characters of each word; the synthetic strategy needs no
// pre-measurement and derives values at apply time.
type KernPlan struct {
	Strategy KernStrategy
	gaps     [][]fixed.Int26_6 // gaps[w][i]: left(char i+1) − left(char i)
}

// PlanKerning records compensation targets for p. Call before the
// projection builder mutates the markup (the positional baseline is only
// valid then).
func PlanKerning(p *Partition, strategy KernStrategy) *KernPlan {
	plan := &KernPlan{Strategy: strategy}
	if strategy != KernPositional {
		return plan
	}
	plan.gaps = make([][]fixed.Int26_6, len(p.Words))
	for w := range p.Words {
		chars := p.Words[w].Chars
		if len(chars) < 2 {
			continue
		}
		gaps := make([]fixed.Int26_6, len(chars)-1)
		for i := 0; i+1 < len(chars); i++ {
			gaps[i] = chars[i+1].Left - chars[i].Left
		}
		plan.gaps[w] = gaps
	}
	return plan
}

// Apply re-measures the post-split gaps and applies corrective offsets to
// the character elements. charNodes holds, per word of p, the projected
// character elements in order. The renderer must have laid out the
// mutated tree. Returns the number of corrections applied.
//
// Corrections apply as negative (or positive, positional only) margins on
// the second element of each pair. Synthetic corrections are clamped to
// tightening only, since kerning is never positive.
func (plan *KernPlan) Apply(rend metrics.Renderer, p *Partition, charNodes [][]*html.Node) int {
	if plan.Strategy == KernOff {
		return 0
	}
	applied := 0
	for w := range charNodes {
		nodes := charNodes[w]
		if w >= len(p.Words) {
			break
		}
		chars := p.Words[w].Chars
		for i := 0; i+1 < len(nodes) && i+1 < len(chars); i++ {
			var corr fixed.Int26_6
			switch plan.Strategy {
			case KernPositional:
				if plan.gaps == nil || i >= len(plan.gaps[w]) {
					continue
				}
				first, ok1 := rend.Bounds(nodes[i])
				second, ok2 := rend.Bounds(nodes[i+1])
				if !ok1 || !ok2 {
					continue
				}
				actual := second.Left - first.Left
				corr = plan.gaps[w][i] - actual
			case KernSynthetic:
				corr = metrics.PairKern(rend, chars[i].Text, chars[i+1].Text)
				if corr > 0 {
					corr = 0
				}
			}
			if corr == 0 {
				continue
			}
			if corr >= MaxKernCorrection || -corr >= MaxKernCorrection {
				tracer().Infof("discarding out-of-window kern correction %v for %q|%q",
					corr, chars[i].Text, chars[i+1].Text)
				continue
			}
			dom.AppendStyle(nodes[i+1], fmt.Sprintf("margin-left: %.4fpx", float64(corr)/64.0))
			applied++
		}
	}
	tracer().Debugf("applied %d kern corrections (%s)", applied, plan.Strategy)
	return applied
}

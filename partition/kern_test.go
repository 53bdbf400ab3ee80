package partition_test

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/internal/textflow"
	"github.com/npillmayer/textsplit/partition"
)

// splitChars projects a partition's words into naked per-char spans, the
// minimal structure the compensator operates on.
func splitChars(p *partition.Partition) [][]*html.Node {
	dom.RemoveChildren(p.Root)
	charNodes := make([][]*html.Node, len(p.Words))
	for w := range p.Words {
		span := dom.NewElement("span")
		for _, g := range p.Words[w].Chars {
			c := dom.NewElement("span")
			c.AppendChild(dom.NewText(g.Text))
			span.AppendChild(c)
			charNodes[w] = append(charNodes[w], c)
		}
		if w > 0 {
			p.Root.AppendChild(dom.NewText(" "))
		}
		p.Root.AppendChild(span)
	}
	return charNodes
}

func kernedFlow(k fixed.Int26_6) *textflow.Flow {
	return textflow.New(textflow.Config{
		Width:    fixed.I(640),
		FontSize: fixed.I(16),
		Kerning: map[string]fixed.Int26_6{
			textflow.Pair("W", "A"): k,
		},
	})
}

func TestSyntheticKerningApplied(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.partition")
	defer teardown()
	flow := kernedFlow(fixed.I(-4))
	root, _ := dom.ParseFragment("WAVE")
	flow.Layout(root)
	p, err := partition.Split(root, flow, true)
	if err != nil {
		t.Fatal(err)
	}
	plan := partition.PlanKerning(p, partition.KernSynthetic)
	charNodes := splitChars(p)
	flow.Layout(root)
	applied := plan.Apply(flow, p, charNodes)
	if applied != 1 {
		t.Errorf("expected 1 correction (WA pair), got %d", applied)
	}
	style := dom.GetAttr(charNodes[0][1], "style")
	if !strings.Contains(style, "margin-left: -4.0000px") {
		t.Errorf("correction style = %q", style)
	}
	// after re-layout, the split positions match the unsplit baseline
	flow.Layout(root)
	r, _ := flow.Bounds(charNodes[0][1])
	if r.Left != fixed.I(4) {
		t.Errorf("corrected 'A' at %v, expected 4", r.Left)
	}
}

func TestPositionalKerningApplied(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.partition")
	defer teardown()
	flow := kernedFlow(fixed.I(-4))
	root, _ := dom.ParseFragment("WAVE")
	flow.Layout(root)
	p, err := partition.Split(root, flow, true)
	if err != nil {
		t.Fatal(err)
	}
	plan := partition.PlanKerning(p, partition.KernPositional)
	charNodes := splitChars(p)
	flow.Layout(root)
	applied := plan.Apply(flow, p, charNodes)
	if applied != 1 {
		t.Errorf("expected 1 correction, got %d", applied)
	}
	flow.Layout(root)
	r, _ := flow.Bounds(charNodes[0][1])
	if r.Left != fixed.I(4) {
		t.Errorf("corrected 'A' at %v, expected 4", r.Left)
	}
}

func TestOutOfWindowCorrectionDiscarded(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.partition")
	defer teardown()
	// a 25-unit kern is beyond the sanity window and must never be applied
	flow := kernedFlow(fixed.I(-25))
	root, _ := dom.ParseFragment("WAVE")
	flow.Layout(root)
	p, _ := partition.Split(root, flow, true)
	for _, strategy := range []partition.KernStrategy{partition.KernSynthetic, partition.KernPositional} {
		dom.ReplaceContent(root, p.Snapshot)
		flow.Layout(root)
		p, _ = partition.Split(root, flow, true)
		plan := partition.PlanKerning(p, strategy)
		charNodes := splitChars(p)
		flow.Layout(root)
		if applied := plan.Apply(flow, p, charNodes); applied != 0 {
			t.Errorf("strategy %s applied %d out-of-window corrections", strategy, applied)
		}
	}
}

func TestPositiveSyntheticKernClamped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.partition")
	defer teardown()
	flow := kernedFlow(fixed.I(3)) // kerning is never positive; treat as noise
	root, _ := dom.ParseFragment("WAVE")
	flow.Layout(root)
	p, _ := partition.Split(root, flow, true)
	plan := partition.PlanKerning(p, partition.KernSynthetic)
	charNodes := splitChars(p)
	flow.Layout(root)
	if applied := plan.Apply(flow, p, charNodes); applied != 0 {
		t.Errorf("positive synthetic kern applied %d corrections", applied)
	}
}

func TestKernOff(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.partition")
	defer teardown()
	flow := kernedFlow(fixed.I(-4))
	root, _ := dom.ParseFragment("WAVE")
	flow.Layout(root)
	p, _ := partition.Split(root, flow, true)
	plan := partition.PlanKerning(p, partition.KernOff)
	charNodes := splitChars(p)
	flow.Layout(root)
	if applied := plan.Apply(flow, p, charNodes); applied != 0 {
		t.Errorf("KernOff applied %d corrections", applied)
	}
}

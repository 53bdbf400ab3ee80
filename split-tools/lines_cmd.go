package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"

	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/metrics"
	"github.com/npillmayer/textsplit/partition"
)

// runLinesCommand flows a fragment at every width of a sweep range and
// prints one row per width where the line structure changed.
func runLinesCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	markup := strings.TrimSpace(markupArg(args["markup"]))
	if markup == "" {
		fatalf("markup fragment is required")
	}
	from := mustFlagInt(flags["from"], "from")
	to := mustFlagInt(flags["to"], "to")
	step := mustFlagInt(flags["step"], "step")
	if step <= 0 || to < from {
		fatalf("invalid sweep range %d..%d step %d", from, to, step)
	}
	fontsize := mustFlagInt(flags["fontsize"], "fontsize")

	data := [][]string{
		{"Width", "Lines", "Content"},
	}
	var last string
	for w := from; w <= to; w += step {
		root, err := dom.ParseFragment(markup)
		if err != nil {
			fatalf("cannot parse markup: %v", err)
		}
		flow := newFlow(w, fontsize)
		flow.Layout(root)
		p, err := partition.Split(root, flow, false)
		if err != nil {
			fatalf("%v", err)
		}
		lines := wordLines(p, flow)
		fp := strings.Join(lines, " ⏎ ")
		if fp == last {
			continue // only report widths where wrapping changed
		}
		last = fp
		data = append(data, []string{
			fmt.Sprintf("%d", w), fmt.Sprintf("%d", len(lines)), fp,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// wordLines clusters a partition's words into lines by the rendered
// vertical position of each word's first grapheme — the unsplit analogue
// of partition.GroupLines.
func wordLines(p *partition.Partition, rend metrics.Renderer) []string {
	var lines []string
	var tops []metrics.Rect
	tol := partition.LineTolerance(rend.FontSize(p.Root))
	for w := range p.Words {
		word := &p.Words[w]
		if len(word.Chars) == 0 {
			continue
		}
		g := &word.Chars[0]
		r, ok := rend.RangeBounds(g.Leaf, g.Off, g.Len)
		if !ok {
			continue
		}
		newLine := len(lines) == 0
		if !newLine {
			delta := r.Top - tops[len(tops)-1].Top
			if delta < 0 {
				delta = -delta
			}
			newLine = delta >= tol
		}
		if newLine {
			lines = append(lines, word.Text())
			tops = append(tops, r)
			continue
		}
		sep := " "
		if word.NoSpaceBefore {
			sep = ""
		}
		lines[len(lines)-1] += sep + word.Text()
	}
	return lines
}

package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit"
	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/internal/textflow"
	"github.com/npillmayer/textsplit/partition"
)

func runPartitionCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	markup := strings.TrimSpace(markupArg(args["markup"]))
	if markup == "" {
		fatalf("markup fragment is required")
	}
	root, err := dom.ParseFragment(markup)
	if err != nil {
		fatalf("cannot parse markup: %v", err)
	}
	flow := newFlow(mustFlagInt(flags["width"], "width"), mustFlagInt(flags["fontsize"], "fontsize"))
	flow.Layout(root)

	kern, err := flags["kern"].GetString()
	if err != nil {
		fatalf("invalid --kern flag: %v", err)
	}
	var strategy partition.KernStrategy
	switch kern {
	case "synthetic":
		strategy = partition.KernSynthetic
	case "positional":
		strategy = partition.KernPositional
	case "off":
		strategy = partition.KernOff
	default:
		fatalf("invalid --kern flag: %q", kern)
	}

	result, err := textsplit.Split(root, flow, textsplit.Options{
		Types:     parseGranularityFlag(flags["granularity"], "granularity"),
		Mask:      parseGranularityFlag(flags["mask"], "mask"),
		Kerning:   strategy,
		PropIndex: true,
	})
	if err != nil {
		fatalf("%v", err)
	}
	for _, w := range result.Warnings() {
		pterm.Printf("%s\n", w)
	}
	printNodes(flow, "Char", result.Chars())
	printNodes(flow, "Word", result.Words())
	printNodes(flow, "Line", result.Lines())
	pterm.Println("projected markup:")
	pterm.Println(dom.Serialize(root))
}

func printNodes(flow *textflow.Flow, kind string, nodes []*html.Node) {
	if len(nodes) == 0 {
		return
	}
	pterm.Printf("%d %s nodes\n", len(nodes), strings.ToLower(kind))
	data := [][]string{
		{"Index", kind, "Left", "Top", "Width"},
	}
	for i, n := range nodes {
		left, top, width := "-", "-", "-"
		if r, ok := flow.Bounds(n); ok {
			left = fmt.Sprintf("%.2f", float64(r.Left)/64.0)
			top = fmt.Sprintf("%.2f", float64(r.Top)/64.0)
			width = fmt.Sprintf("%.2f", float64(r.Width)/64.0)
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i), fmt.Sprintf("%q", dom.Text(n)), left, top, width,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

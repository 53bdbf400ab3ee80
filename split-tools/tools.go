package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/thatisuday/commando"
	"golang.org/x/image/math/fixed"

	"github.com/npillmayer/textsplit/internal/textflow"
	"github.com/npillmayer/textsplit/project"
)

func main() {
	setupTracing()

	commando.
		SetExecutableName("split-tools").
		SetVersion("v0.0.1").
		SetDescription("CLI for inspecting text partitioning, line wrapping and token reconciliation.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("partition").
		SetDescription("Split a markup fragment into chars/words/lines at a given container width and print the projected structure.").
		SetShortDescription("split a fragment").
		AddArgument("markup...", "markup fragment to split (variadic argument parts joined by comma by commando)", "").
		AddFlag("width,w", "container width in layout units", commando.Int, 320).
		AddFlag("fontsize,s", "font size in layout units", commando.Int, 16).
		AddFlag("granularity,g", "granularities, joined by '+' (chars, words, lines, all)", commando.String, "all").
		AddFlag("mask,m", "granularity to wrap in clipping masks (or '-')", commando.String, "-").
		AddFlag("kern,k", "kerning strategy: synthetic|positional|off", commando.String, "synthetic").
		SetAction(runPartitionCommand)

	commando.
		Register("lines").
		SetDescription("Sweep the container width over a range and report how the fragment's line structure changes.").
		SetShortDescription("width sweep").
		AddArgument("markup...", "markup fragment to flow", "").
		AddFlag("from,f", "start width in layout units", commando.Int, 200).
		AddFlag("to,t", "end width in layout units", commando.Int, 400).
		AddFlag("step,d", "width step in layout units", commando.Int, 10).
		AddFlag("fontsize,s", "font size in layout units", commando.Int, 16).
		SetAction(runLinesCommand)

	commando.
		Register("diff").
		SetDescription("Reconcile two comma-separated token sequences and print enter/persist/exit changes with stable identities.").
		SetShortDescription("reconcile tokens").
		AddArgument("prev", "previous token sequence, comma-separated", "").
		AddArgument("next", "next token sequence, comma-separated", "").
		SetAction(runDiffCommand)

	commando.Parse(nil)
}

func setupTracing() {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":  "go",
		"trace.tyse.split": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fatalf("error configuring tracing: %v", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
}

// markupArg reassembles the variadic markup argument (commando joins the
// parts by comma).
func markupArg(arg commando.ArgValue) string {
	return strings.ReplaceAll(arg.Value, ",", " ")
}

func newFlow(width, fontsize int) *textflow.Flow {
	return textflow.New(textflow.Config{
		Width:       fixed.I(width),
		FontSize:    fixed.I(fontsize),
		SkipClasses: []string{project.ScreenReaderClass},
	})
}

func parseGranularityFlag(flag commando.FlagValue, name string) project.Granularity {
	s, err := flag.GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	if s == "-" {
		return 0
	}
	if s == "" || s == "all" {
		return project.AllGranularities
	}
	var g project.Granularity
	for _, part := range strings.Split(s, "+") {
		switch part {
		case "chars":
			g |= project.Chars
		case "words":
			g |= project.Words
		case "lines":
			g |= project.Lines
		default:
			fatalf("invalid --%s flag: unknown granularity %q", name, part)
		}
	}
	return g
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "split-tools: "+format+"\n", args...)
	os.Exit(1)
}

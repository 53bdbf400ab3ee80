package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "split":
		pterm.Info.Println("split[:granularities[:mask]]")
		pterm.Println(`
	Partition the loaded fragment and project it into new markup.
	Granularities are joined by '+', e.g.  split:chars+words
	An optional second argument masks one granularity, e.g.  split:all:lines
	Splitting activates auto-resplit: width changes re-run the pipeline.
	`)
	case "width":
		pterm.Info.Println("width:<units>")
		pterm.Println(`
	Set the container width in layout units (sub-unit values allowed,
	e.g. width:321.7). If the fragment is split, the change is signalled
	to the resize observer and triggers a debounced resplit; a
	notification appears only if line contents actually changed.
	`)
	case "diff":
		pterm.Info.Println("diff:<prev tokens>:<next tokens>")
		pterm.Println(`
	Reconcile two comma-separated token sequences, e.g.
	    diff:one,more,time:one,last,time
	Prints enter/persist/exit changes with stable identities assigned
	by longest-common-subsequence alignment.
	`)
	case "load":
		pterm.Info.Println("load:<markup>")
		pterm.Println(`
	Replace the working fragment, e.g.  load:Take it to the <em>limit</em>
	(everything after 'load:' is taken verbatim).
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	load:<markup>      load a new fragment
	split[:g[:mask]]   split into chars/words/lines (default all)
	width:<units>      set container width, trigger resplit
	chars|words|lines  print the projected nodes with geometry
	markup             print the current serialized markup
	revert             restore the original markup
	diff:<a>:<b>       reconcile two token sequences
	help[:topic]       this help; topics: split, width, diff, load
	quit               leave (also <ctrl>D)
	`)
	}
}

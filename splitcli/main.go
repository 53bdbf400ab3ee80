package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit"
	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/internal/textflow"
	"github.com/npillmayer/textsplit/project"
	"github.com/npillmayer/textsplit/reconcile"
	"github.com/npillmayer/textsplit/resplit"
)

// tracer traces with key 'tyse.split'
func tracer() tracing.Trace {
	return tracing.Select("tyse.split")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":  "go",
		"trace.tyse.split": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	markup := flag.String("markup", "Take it to the limit, one more time", "Markup fragment to split")
	width := flag.Float64("width", 320, "Container width in layout units")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError) // will set the correct level later
	pterm.Info.Println("Welcome to the text splitting CLI")
	//
	// set up REPL
	repl, err := readline.New("split > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load fragment to use
	if err := intp.loadMarkup(*markup, *width); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D")
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl     *readline.Instance
	flow     *textflow.Flow
	root     *html.Node
	result   *textsplit.Result
	observer *resplit.FuncObserver
	width    fixed.Int26_6
	resplits int
}

func (intp *Intp) String() string {
	if intp == nil || intp.root == nil {
		return "()"
	}
	state := "unsplit"
	if intp.result != nil {
		state = fmt.Sprintf("split, %d resplits", intp.resplits)
	}
	return fmt.Sprintf("( width=%.1f %s )", float64(intp.width)/64.0, state)
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code int
	arg  string
	arg2 string
}

type Command struct {
	count int
	op    [32]Op
}

const NOOP = -1
const (
	QUIT int = iota
	HELP
	LOAD
	SPLIT
	WIDTH
	WORDS
	CHARS
	LINES
	MARKUP
	REVERT
	DIFF
)

var opMap = map[string]int{
	"quit":   QUIT,
	"help":   HELP,
	"load":   LOAD,
	"split":  SPLIT,
	"width":  WIDTH,
	"words":  WORDS,
	"chars":  CHARS,
	"lines":  LINES,
	"markup": MARKUP,
	"revert": REVERT,
	"diff":   DIFF,
}

var opNames = []string{
	"quit", "help", "load", "split", "width", "words", "chars",
	"lines", "markup", "revert", "diff",
}

var command = Command{}

func resetCommand() {
	command.count = 0
	for i := range command.op {
		command.op[i].code = NOOP
		command.op[i].arg = ""
		command.op[i].arg2 = ""
	}
}

func (intp *Intp) parseCommand(line string) (*Command, error) {
	resetCommand()
	if arg, ok := strings.CutPrefix(line, "load:"); ok {
		// markup may contain spaces and colons, take it verbatim
		command.count = 1
		command.op[0] = Op{code: LOAD, arg: arg}
		return &command, nil
	}
	steps := strings.Split(line, " ")
	command.count = len(steps)
	for i, step := range steps {
		c := strings.SplitN(step, ":", 3) // e.g.  "split:chars+words" or "width:280.5"
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		command.op[i].code = code
		command.op[i].arg = getOptArg(c, 1)
		command.op[i].arg2 = getOptArg(c, 2)
		if command.op[i].arg == "" {
			tracer().Infof("%s", opNames[command.op[i].code])
		} else {
			tracer().Infof("%s: '%s'", opNames[command.op[i].code], command.op[i].arg)
		}
	}
	return &command, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:   quitOp,
	HELP:   helpOp,
	LOAD:   loadOp,
	SPLIT:  splitOp,
	WIDTH:  widthOp,
	WORDS:  wordsOp,
	CHARS:  charsOp,
	LINES:  linesOp,
	MARKUP: markupOp,
	REVERT: revertOp,
	DIFF:   diffOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.op)
	for _, c := range cmd.op {
		if c.code == NOOP {
			break
		}
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Fragment loading -------------------------------------------------------

func (intp *Intp) loadMarkup(markup string, width float64) error {
	root, err := dom.ParseFragment(markup)
	if err != nil {
		return err
	}
	intp.root = root
	intp.width = fixed.Int26_6(width * 64)
	intp.flow = textflow.New(textflow.Config{
		Width:       intp.width,
		FontSize:    fixed.I(16),
		SkipClasses: []string{project.ScreenReaderClass},
	})
	intp.flow.Layout(root)
	intp.result = nil
	intp.observer = nil
	intp.resplits = 0
	pterm.Printf("loaded fragment: %q\n", markup)
	return nil
}

func loadOp(intp *Intp, op *Op) (error, bool) {
	if op.arg == "" {
		return errors.New("usage: load:<markup>"), false
	}
	return intp.loadMarkup(op.arg, float64(intp.width)/64.0), false
}

// --- Splitting --------------------------------------------------------------

func parseGranularities(arg string) (project.Granularity, error) {
	if arg == "" || arg == "all" {
		return project.AllGranularities, nil
	}
	var g project.Granularity
	for _, part := range strings.Split(arg, "+") {
		switch part {
		case "chars":
			g |= project.Chars
		case "words":
			g |= project.Words
		case "lines":
			g |= project.Lines
		default:
			return 0, fmt.Errorf("unknown granularity: %s", part)
		}
	}
	return g, nil
}

func splitOp(intp *Intp, op *Op) (error, bool) {
	if intp.result != nil {
		return errors.New("already split; revert first"), false
	}
	types, err := parseGranularities(op.arg)
	if err != nil {
		return err, false
	}
	var mask project.Granularity
	if op.arg2 != "" {
		if mask, err = parseGranularities(op.arg2); err != nil {
			return err, false
		}
	}
	intp.observer = &resplit.FuncObserver{}
	result, err := textsplit.Split(intp.root, intp.flow, textsplit.Options{
		Types:       types,
		Mask:        mask,
		PropIndex:   true,
		AutoResplit: true,
		Observer:    intp.observer,
		Debounce:    1, // effectively immediate for interactive use
		OnResplit: func(*textsplit.Result) {
			intp.resplits++
			pterm.Info.Println("resplit: line contents changed")
		},
	})
	if err != nil {
		return err, false
	}
	intp.result = result
	intp.observer.Trigger(intp.width) // prime the width baseline
	for _, w := range result.Warnings() {
		pterm.Printf("%s\n", w)
	}
	pterm.Printf("split into %d chars, %d words, %d lines\n",
		len(result.Chars()), len(result.Words()), len(result.Lines()))
	return nil, false
}

func widthOp(intp *Intp, op *Op) (error, bool) {
	w, err := strconv.ParseFloat(op.arg, 64)
	if err != nil {
		return fmt.Errorf("width not numeric: %v", op.arg), false
	}
	intp.width = fixed.Int26_6(w * 64)
	intp.flow.SetWidth(intp.width)
	if intp.result != nil && intp.observer != nil {
		intp.observer.Trigger(intp.width)
		pterm.Printf("width change to %.2f signalled\n", w)
	} else {
		intp.flow.Layout(intp.root)
		pterm.Printf("width set to %.2f\n", w)
	}
	return nil, false
}

func revertOp(intp *Intp, op *Op) (error, bool) {
	if intp.result == nil {
		return errors.New("nothing to revert"), false
	}
	intp.result.Revert()
	intp.result = nil
	intp.observer = nil
	intp.resplits = 0
	intp.flow.Layout(intp.root)
	pterm.Info.Println("reverted to original markup")
	return nil, false
}

// --- Reconciler demo --------------------------------------------------------

func diffOp(intp *Intp, op *Op) (error, bool) {
	if op.arg == "" || op.arg2 == "" {
		return errors.New("usage: diff:a,b,c:a,c,d"), false
	}
	prevValues := strings.Split(op.arg, ",")
	nextValues := strings.Split(op.arg2, ",")
	snapshot := reconcile.NewSnapshot(prevValues)
	_, changes := reconcile.Reconcile(snapshot, nextValues)
	printChanges(changes)
	return nil, false
}

// ----------------------------------------------------------------------------

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

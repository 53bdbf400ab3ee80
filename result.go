package textsplit

import (
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/metrics"
	"github.com/npillmayer/textsplit/partition"
	"github.com/npillmayer/textsplit/project"
	"github.com/npillmayer/textsplit/resplit"
)

// Result is the outcome of a Split and the owner of the projected state:
// the created nodes per granularity, the immutable source snapshot, and
// the resize machinery. All lifecycle state lives in explicit fields —
// snapshot, projection, active flag, controller — so multiple independent
// results never interfere and teardown during in-flight callbacks is a
// safe no-op.
type Result struct {
	mu         sync.Mutex
	root       *html.Node
	rend       metrics.Renderer
	opts       Options
	snapshot   string // original serialized content, captured pre-mutation
	chars      []*html.Node
	words      []*html.Node
	lines      []*html.Node
	rootAttrs  []string
	warnings   []SplitWarning
	controller *resplit.Controller
	lastFp     resplit.Fingerprint
	active     bool
	reverted   bool
}

// Chars returns the projected character nodes (empty unless requested).
func (r *Result) Chars() []*html.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*html.Node(nil), r.chars...)
}

// Words returns the projected word nodes (empty unless requested).
func (r *Result) Words() []*html.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*html.Node(nil), r.words...)
}

// Lines returns the projected line nodes (empty unless requested).
func (r *Result) Lines() []*html.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*html.Node(nil), r.lines...)
}

// Warnings returns the recoverable anomalies recorded so far.
func (r *Result) Warnings() []SplitWarning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SplitWarning(nil), r.warnings...)
}

func (r *Result) warn(stage, issue string) {
	tracer().Infof("[%s] %s", stage, issue)
	r.mu.Lock()
	r.warnings = append(r.warnings, SplitWarning{Stage: stage, Issue: issue})
	r.mu.Unlock()
}

// --- Pipeline --------------------------------------------------------------

// projectPartition runs the mutating stages for an already measured
// partition: word/char projection, kerning compensation, line grouping,
// masks, accessibility. Returns the line fingerprint of the new state,
// or nil when a concurrent revert deactivated the result: the pipeline
// must not mutate markup a revert has already restored.
func (r *Result) projectPartition(p *partition.Partition) resplit.Fingerprint {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()
	label := strings.TrimSpace(dom.Text(p.Root))
	plan := partition.PlanKerning(p, r.opts.Kerning)

	spec := project.Spec{
		Types:     r.opts.Types,
		Mask:      r.opts.Mask,
		CharClass: r.opts.CharClass,
		WordClass: r.opts.WordClass,
		LineClass: r.opts.LineClass,
		PropIndex: r.opts.PropIndex,
	}
	b := project.BuildWords(p, spec)
	if b.Defaulted {
		r.warn("project", "invalid or empty granularity selection, using chars+words+lines")
	}
	r.rend.Layout(p.Root)
	plan.Apply(r.rend, p, b.CharNodes)
	r.rend.Layout(p.Root)

	fp := lineFingerprint(r.rend, b.WordSpans)
	if spec.Types&Lines != 0 {
		b.BuildLines(r.rend)
		r.rend.Layout(p.Root)
	}
	b.ApplyMask()
	b.ApplyA11y(label, p.Snapshot)
	r.rend.Layout(p.Root)

	r.mu.Lock()
	if !r.active {
		// a revert landed while the pipeline ran; its restored markup is
		// authoritative, so undo this pass's mutations instead of committing
		if err := dom.ReplaceContent(r.root, r.snapshot); err != nil {
			tracer().Errorf("cannot restore snapshot: %v", err)
		}
		for _, key := range b.RootAttrs {
			dom.DelAttr(r.root, key)
		}
		r.mu.Unlock()
		return nil
	}
	r.chars = b.Chars
	r.words = b.Words
	r.lines = b.Lines
	r.rootAttrs = b.RootAttrs
	r.lastFp = fp
	r.mu.Unlock()
	return fp
}

// lineFingerprint derives the ordered per-line text content from the word
// wrappers' rendered positions.
func lineFingerprint(rend metrics.Renderer, wordSpans []*html.Node) resplit.Fingerprint {
	groups := partition.GroupLines(rend, wordSpans)
	fp := make(resplit.Fingerprint, 0, len(groups))
	for _, group := range groups {
		texts := make([]string, 0, len(group))
		for _, span := range group {
			texts = append(texts, dom.Text(span))
		}
		fp = append(fp, strings.Join(texts, " "))
	}
	return fp
}

// repartition restores the original markup and re-runs the full pipeline.
// Driven by the resize controller (debounced) and by Refresh.
func (r *Result) repartition() resplit.Fingerprint {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return nil
	}
	r.restoreLocked()
	r.mu.Unlock()

	p, err := partition.Split(r.root, r.rend, r.needCharMeasurement())
	if err != nil {
		// root cannot become unusable after a successful Split
		tracer().Errorf("repartition failed: %v", err)
		return nil
	}
	if p.Empty() {
		return nil
	}
	return r.projectPartition(p)
}

// notifyResplit forwards the controller's change notification.
func (r *Result) notifyResplit() {
	r.mu.Lock()
	active := r.active
	fn := r.opts.OnResplit
	r.mu.Unlock()
	if active && fn != nil {
		fn(r)
	}
}

// Refresh re-runs the pipeline manually, for hosts without a width
// observer. The resplit notification fires only if the line contents
// changed — same gating as resize-driven repartitions.
func (r *Result) Refresh() {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	prev := r.lastFp
	r.mu.Unlock()
	fp := r.repartition()
	if fp != nil && !fp.Equal(prev) {
		r.notifyResplit()
	}
}

// restoreLocked puts the original markup back and removes every attribute
// this instance added to the root. Caller holds r.mu.
func (r *Result) restoreLocked() {
	if err := dom.ReplaceContent(r.root, r.snapshot); err != nil {
		tracer().Errorf("cannot restore snapshot: %v", err)
	}
	for _, key := range r.rootAttrs {
		dom.DelAttr(r.root, key)
	}
	r.rootAttrs = nil
	r.chars = nil
	r.words = nil
	r.lines = nil
}

// Revert restores the original markup byte-for-byte, removes injected
// attributes, and disconnects observers and timers owned by this
// instance. Idempotent: later calls (and any still-pending callbacks)
// are no-ops.
func (r *Result) Revert() {
	r.mu.Lock()
	if r.reverted {
		r.mu.Unlock()
		return
	}
	r.reverted = true
	r.active = false
	ctrl := r.controller
	r.controller = nil
	r.restoreLocked()
	r.mu.Unlock()
	if ctrl != nil {
		ctrl.Disconnect()
	}
	tracer().Debugf("reverted to original markup")
}

// revertWhenDone awaits an animation-completion signal and then reverts.
// A rejected signal skips the revert — the split state stays rather than
// snapping back mid-animation — and records a warning.
func (r *Result) revertWhenDone(signal Completion) {
	err := signal.Await()
	r.mu.Lock()
	active := r.active
	r.mu.Unlock()
	if !active {
		return
	}
	if err != nil {
		r.warn("revert", "animation completion rejected, keeping split state: "+err.Error())
		return
	}
	r.Revert()
}

package textsplit_test

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit"
	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/internal/textflow"
	"github.com/npillmayer/textsplit/partition"
	"github.com/npillmayer/textsplit/resplit"
)

func newFlow(width int, kerning map[string]fixed.Int26_6) *textflow.Flow {
	return textflow.New(textflow.Config{
		Width:       fixed.I(width),
		FontSize:    fixed.I(16),
		Kerning:     kerning,
		SkipClasses: []string{"ts-sr-only"},
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func hasWarning(r *textsplit.Result, stage string) bool {
	for _, w := range r.Warnings() {
		if w.Stage == stage {
			return true
		}
	}
	return false
}

func TestSplitConservesText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	inputs := []string{
		"Take it to the limit",
		`x <a href="#">y z</a> w`,
		"word—continuation",
		"se<em>lf</em> evident",
	}
	for _, input := range inputs {
		flow := newFlow(640, nil)
		root, _ := dom.ParseFragment(input)
		flow.Layout(root)
		before := strings.Join(strings.Fields(dom.Text(root)), " ")
		r, err := textsplit.Split(root, flow, textsplit.Options{})
		if err != nil {
			t.Fatalf("input %q: %v", input, err)
		}
		// the visible text survives splitting; the sr clone may add a copy
		visible := root
		if c := root.FirstChild; c != nil && dom.GetAttr(c, "aria-hidden") == "true" && c.Data == "span" {
			visible = c
		}
		after := strings.Join(strings.Fields(dom.Text(visible)), " ")
		if !strings.HasPrefix(after, before) {
			t.Errorf("input %q: text %q after split", input, after)
		}
		r.Revert()
	}
}

func TestDefaultGranularities(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	flow := newFlow(640, nil)
	root, _ := dom.ParseFragment("Take it")
	flow.Layout(root)
	r, err := textsplit.Split(root, flow, textsplit.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Chars()) != 6 {
		t.Errorf("%d chars, expected 6", len(r.Chars()))
	}
	if len(r.Words()) != 2 {
		t.Errorf("%d words, expected 2", len(r.Words()))
	}
	if len(r.Lines()) != 1 {
		t.Errorf("%d lines, expected 1", len(r.Lines()))
	}
}

func TestInvalidGranularityFallsBack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	flow := newFlow(640, nil)
	root, _ := dom.ParseFragment("Take it")
	flow.Layout(root)
	r, err := textsplit.Split(root, flow, textsplit.Options{Types: textsplit.Granularity(0x70)})
	if err != nil {
		t.Fatal(err)
	}
	if !hasWarning(r, "project") {
		t.Error("defaulted granularity selection should warn")
	}
	if len(r.Words()) != 2 || len(r.Lines()) != 1 {
		t.Error("fallback should still produce the full projection")
	}
}

func TestRevertRestoresVerbatim(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	markup := `Take <a href="#">it</a> to the <em>limit</em>`
	flow := newFlow(100, nil)
	root, _ := dom.ParseFragment(markup)
	flow.Layout(root)
	original := dom.Serialize(root)
	r, err := textsplit.Split(root, flow, textsplit.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if dom.Serialize(root) == original {
		t.Fatal("split did not change the markup, nothing to test")
	}
	r.Revert()
	if got := dom.Serialize(root); got != original {
		t.Errorf("revert produced %s, expected %s", got, original)
	}
	if len(root.Attr) != 0 {
		t.Errorf("revert left root attributes %v", root.Attr)
	}
	r.Revert() // idempotent
	if got := dom.Serialize(root); got != original {
		t.Error("second revert changed the markup")
	}
}

func TestKerningCompensation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	kerning := map[string]fixed.Int26_6{textflow.Pair("W", "A"): fixed.I(-4)}
	flow := newFlow(640, kerning)
	root, _ := dom.ParseFragment("WAVE")
	flow.Layout(root)
	r, err := textsplit.Split(root, flow, textsplit.Options{
		Types:   textsplit.Chars | textsplit.Words,
		Kerning: partition.KernSynthetic,
	})
	if err != nil {
		t.Fatal(err)
	}
	chars := r.Chars()
	if len(chars) != 4 {
		t.Fatalf("%d chars, expected 4", len(chars))
	}
	// baseline positions of the unsplit text: W 0, A 4, V 12, E 20
	want := []fixed.Int26_6{fixed.I(0), fixed.I(4), fixed.I(12), fixed.I(20)}
	for i, c := range chars {
		rect, ok := flow.Bounds(c)
		if !ok {
			t.Fatalf("char %d has no geometry", i)
		}
		if rect.Left != want[i] {
			t.Errorf("char %d at %v, expected %v", i, rect.Left, want[i])
		}
	}
}

func TestEmptyContentDegrades(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	flow := newFlow(640, nil)
	root, _ := dom.ParseFragment("   ")
	flow.Layout(root)
	r, err := textsplit.Split(root, flow, textsplit.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !hasWarning(r, "partition") {
		t.Error("empty content should be recorded as a warning")
	}
	if len(r.Chars())+len(r.Words())+len(r.Lines()) != 0 {
		t.Error("empty content must produce no tokens")
	}
	r.Revert()
}

func TestSplitErrorOnBadRoot(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	flow := newFlow(640, nil)
	if _, err := textsplit.Split(nil, flow, textsplit.Options{}); err == nil {
		t.Error("nil root must be fatal")
	}
	if _, err := textsplit.Split(dom.NewText("loose"), flow, textsplit.Options{}); err == nil {
		t.Error("text-node root must be fatal")
	}
}

func TestAutoResplitWithoutObserverWarns(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	flow := newFlow(640, nil)
	root, _ := dom.ParseFragment("Take it")
	flow.Layout(root)
	r, err := textsplit.Split(root, flow, textsplit.Options{AutoResplit: true})
	if err != nil {
		t.Fatal(err)
	}
	if !hasWarning(r, "resplit") {
		t.Error("auto-resplit without an observer should warn")
	}
}

func TestResizeTriggersResplit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	flow := newFlow(640, nil)
	root, _ := dom.ParseFragment("Take it to the limit")
	flow.Layout(root)
	obs := &resplit.FuncObserver{}
	var notices int32
	r, err := textsplit.Split(root, flow, textsplit.Options{
		Types:       textsplit.Words | textsplit.Lines,
		AutoResplit: true,
		Observer:    obs,
		Debounce:    time.Millisecond,
		OnResplit:   func(*textsplit.Result) { atomic.AddInt32(&notices, 1) },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Revert()
	if len(r.Lines()) != 1 {
		t.Fatalf("expected a single line at width 640, got %d", len(r.Lines()))
	}
	obs.Trigger(fixed.I(640)) // on-attach callback

	flow.SetWidth(fixed.I(100))
	obs.Trigger(fixed.I(100))
	waitFor(t, "resplit notice", func() bool { return atomic.LoadInt32(&notices) == 1 })
	if len(r.Lines()) != 2 {
		t.Errorf("expected 2 lines at width 100, got %d", len(r.Lines()))
	}
	if dom.Text(r.Lines()[0]) != "Take it to" {
		t.Errorf("line 0 = %q", dom.Text(r.Lines()[0]))
	}
}

func TestSubPixelResizeWithoutRewrapStaysQuiet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	flow := newFlow(640, nil)
	root, _ := dom.ParseFragment("Take it to the limit")
	flow.Layout(root)
	obs := &resplit.FuncObserver{}
	var notices int32
	r, err := textsplit.Split(root, flow, textsplit.Options{
		Types:       textsplit.Words | textsplit.Lines,
		AutoResplit: true,
		Observer:    obs,
		Debounce:    time.Millisecond,
		OnResplit:   func(*textsplit.Result) { atomic.AddInt32(&notices, 1) },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Revert()
	obs.Trigger(fixed.I(640))

	// a fraction-of-a-unit delta repartitions, but the wrap is unchanged
	flow.SetWidth(fixed.I(640) + 6)
	obs.Trigger(fixed.I(640) + 6)
	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&notices); n != 0 {
		t.Errorf("unchanged lines produced %d notices", n)
	}
	if len(r.Lines()) != 1 {
		t.Errorf("expected the single line to survive, got %d", len(r.Lines()))
	}
}

func TestRevertAfterResplit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	markup := `Take <em>it</em> to the limit`
	flow := newFlow(640, nil)
	root, _ := dom.ParseFragment(markup)
	flow.Layout(root)
	original := dom.Serialize(root)
	obs := &resplit.FuncObserver{}
	var notices int32
	r, err := textsplit.Split(root, flow, textsplit.Options{
		AutoResplit: true,
		Observer:    obs,
		Debounce:    time.Millisecond,
		OnResplit:   func(*textsplit.Result) { atomic.AddInt32(&notices, 1) },
	})
	if err != nil {
		t.Fatal(err)
	}
	obs.Trigger(fixed.I(640))
	flow.SetWidth(fixed.I(100))
	obs.Trigger(fixed.I(100))
	waitFor(t, "resplit", func() bool { return atomic.LoadInt32(&notices) == 1 })

	r.Revert()
	if got := dom.Serialize(root); got != original {
		t.Errorf("revert after resplit produced %s, expected %s", got, original)
	}
	// a late resize must not resurrect the split
	flow.SetWidth(fixed.I(80))
	obs.Trigger(fixed.I(80))
	time.Sleep(30 * time.Millisecond)
	if got := dom.Serialize(root); got != original {
		t.Error("disconnected result reacted to a resize")
	}
}

// gatedFlow wraps a Flow so a test can stall a chosen Layout call and
// interleave other operations while the pipeline is mid-flight.
type gatedFlow struct {
	*textflow.Flow
	mu      sync.Mutex
	holdAt  int
	entered chan struct{}
	release chan struct{}
}

func (g *gatedFlow) arm(nthLayout int) {
	g.mu.Lock()
	g.holdAt = nthLayout
	g.entered = make(chan struct{})
	g.release = make(chan struct{})
	g.mu.Unlock()
}

func (g *gatedFlow) Layout(root *html.Node) {
	g.mu.Lock()
	hold := false
	if g.holdAt > 0 {
		g.holdAt--
		hold = g.holdAt == 0
	}
	g.mu.Unlock()
	if hold {
		close(g.entered)
		<-g.release
	}
	g.Flow.Layout(root)
}

func TestRevertDuringRepartition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	markup := `Take <em>it</em> to the limit`
	g := &gatedFlow{Flow: newFlow(640, nil)}
	root, _ := dom.ParseFragment(markup)
	g.Layout(root)
	original := dom.Serialize(root)
	r, err := textsplit.Split(root, g, textsplit.Options{})
	if err != nil {
		t.Fatal(err)
	}
	// a repartition lays out once for the pre-mutation baseline; the
	// second layout is the first one after the pipeline started mutating
	g.arm(2)
	g.Flow.SetWidth(fixed.I(100))
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Refresh()
	}()
	<-g.entered
	r.Revert() // lands while the pipeline is mid-flight
	close(g.release)
	<-done
	if got := dom.Serialize(root); got != original {
		t.Errorf("in-flight repartition overrode the revert:\n got %s\nwant %s", got, original)
	}
	if len(root.Attr) != 0 {
		t.Errorf("repartition left root attributes %v", root.Attr)
	}
	if n := len(r.Chars()) + len(r.Words()) + len(r.Lines()); n != 0 {
		t.Errorf("reverted result still exposes %d projected nodes", n)
	}
}

func TestRefreshGatesNotification(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	flow := newFlow(640, nil)
	root, _ := dom.ParseFragment("Take it to the limit")
	flow.Layout(root)
	var notices int32
	r, err := textsplit.Split(root, flow, textsplit.Options{
		Types:     textsplit.Words | textsplit.Lines,
		OnResplit: func(*textsplit.Result) { atomic.AddInt32(&notices, 1) },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Revert()
	r.Refresh() // same width, same lines
	if n := atomic.LoadInt32(&notices); n != 0 {
		t.Errorf("no-op refresh produced %d notices", n)
	}
	flow.SetWidth(fixed.I(100))
	r.Refresh()
	if n := atomic.LoadInt32(&notices); n != 1 {
		t.Errorf("re-wrapping refresh produced %d notices, expected 1", n)
	}
	if len(r.Lines()) != 2 {
		t.Errorf("expected 2 lines after refresh, got %d", len(r.Lines()))
	}
}

func TestLineVerticalAlignmentAcrossWidths(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	flow := newFlow(320, nil)
	root, _ := dom.ParseFragment("one more time for the road again and again")
	flow.Layout(root)
	r, err := textsplit.Split(root, flow, textsplit.Options{
		Types: textsplit.Words | textsplit.Lines,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Revert()
	for _, width := range []int{320, 200, 120, 90} {
		flow.SetWidth(fixed.I(width))
		r.Refresh()
		for i, line := range r.Lines() {
			var ref fixed.Int26_6
			for j, span := range wordSpansOf(line) {
				rect, ok := flow.Bounds(span)
				if !ok {
					t.Fatalf("width %d line %d: word %d without geometry", width, i, j)
				}
				if j == 0 {
					ref = rect.Top
					continue
				}
				delta := rect.Top - ref
				if delta < 0 {
					delta = -delta
				}
				if delta > fixed.I(2) {
					t.Errorf("width %d line %d: word %d misaligned by %v", width, i, j, delta)
				}
			}
		}
	}
}

func wordSpansOf(line *html.Node) []*html.Node {
	var spans []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && dom.HasClass(n, "ts-word") {
			spans = append(spans, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(line)
	return spans
}

func TestAnimateRevertOnComplete(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	markup := "Take it"
	flow := newFlow(640, nil)
	root, _ := dom.ParseFragment(markup)
	flow.Layout(root)
	original := dom.Serialize(root)
	done := make(chan struct{})
	_, err := textsplit.Split(root, flow, textsplit.Options{
		Animate:          func(*textsplit.Result) any { return done },
		RevertOnComplete: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if dom.Serialize(root) == original {
		t.Fatal("animation start should see the split state")
	}
	close(done)
	waitFor(t, "revert on completion", func() bool {
		return dom.Serialize(root) == original
	})
}

func TestAnimateRejectionKeepsSplit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit")
	defer teardown()
	flow := newFlow(640, nil)
	root, _ := dom.ParseFragment("Take it")
	flow.Layout(root)
	original := dom.Serialize(root)
	failed := make(chan error, 1)
	failed <- errors.New("animation interrupted")
	r, err := textsplit.Split(root, flow, textsplit.Options{
		Animate:          func(*textsplit.Result) any { return failed },
		RevertOnComplete: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, "rejection warning", func() bool { return hasWarning(r, "revert") })
	if dom.Serialize(root) == original {
		t.Error("rejected completion must keep the split state")
	}
	r.Revert()
	if dom.Serialize(root) != original {
		t.Error("manual revert after rejection failed")
	}
}

package resplit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"golang.org/x/image/math/fixed"
)

// recorder counts pipeline runs and replays a scripted fingerprint
// sequence, one entry per repartition.
type recorder struct {
	mu      sync.Mutex
	runs    int
	notices int32
	script  []Fingerprint
}

func (r *recorder) repartition() Fingerprint {
	r.mu.Lock()
	defer r.mu.Unlock()
	fp := r.script[0]
	if len(r.script) > 1 {
		r.script = r.script[1:]
	}
	r.runs++
	return fp
}

func (r *recorder) runCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

func (r *recorder) config(debounce time.Duration) Config {
	return Config{
		Debounce:    debounce,
		Repartition: r.repartition,
		Notify:      func() { atomic.AddInt32(&r.notices, 1) },
	}
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

func TestInitialObservationDiscarded(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.resplit")
	defer teardown()
	rec := &recorder{script: []Fingerprint{{"one line"}}}
	ctl := NewController(rec.config(time.Millisecond))
	obs := &FuncObserver{}
	ctl.Connect(obs, Fingerprint{"one line"})
	defer ctl.Disconnect()

	obs.Trigger(fixed.I(320)) // the on-attach callback, not a resize
	time.Sleep(30 * time.Millisecond)
	if rec.runCount() != 0 {
		t.Errorf("initial observation triggered %d repartitions", rec.runCount())
	}
}

func TestEqualWidthIsNoOp(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.resplit")
	defer teardown()
	rec := &recorder{script: []Fingerprint{{"one line"}}}
	ctl := NewController(rec.config(time.Millisecond))
	obs := &FuncObserver{}
	ctl.Connect(obs, Fingerprint{"one line"})
	defer ctl.Disconnect()

	obs.Trigger(fixed.I(320))
	obs.Trigger(fixed.I(320))
	obs.Trigger(fixed.I(320))
	time.Sleep(30 * time.Millisecond)
	if rec.runCount() != 0 {
		t.Errorf("unchanged width triggered %d repartitions", rec.runCount())
	}
}

func TestSubPixelDeltaTriggers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.resplit")
	defer teardown()
	rec := &recorder{script: []Fingerprint{{"one line"}}}
	ctl := NewController(rec.config(time.Millisecond))
	obs := &FuncObserver{}
	ctl.Connect(obs, Fingerprint{"some", "lines"})
	defer ctl.Disconnect()

	obs.Trigger(fixed.I(321) + 6)  // ≈ 321.1px
	obs.Trigger(fixed.I(321) + 45) // ≈ 321.7px
	waitFor(t, "repartition", func() bool { return rec.runCount() == 1 })
}

func TestDebounceCoalescesBursts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.resplit")
	defer teardown()
	rec := &recorder{script: []Fingerprint{{"a"}}}
	ctl := NewController(rec.config(40 * time.Millisecond))
	obs := &FuncObserver{}
	ctl.Connect(obs, Fingerprint{"a"})
	defer ctl.Disconnect()

	obs.Trigger(fixed.I(320))
	for w := 321; w <= 329; w++ {
		obs.Trigger(fixed.I(w))
		time.Sleep(2 * time.Millisecond)
	}
	waitFor(t, "repartition", func() bool { return rec.runCount() >= 1 })
	time.Sleep(60 * time.Millisecond)
	if rec.runCount() != 1 {
		t.Errorf("burst of 9 resizes ran the pipeline %d times", rec.runCount())
	}
}

func TestNotifyGatedOnFingerprint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.resplit")
	defer teardown()
	rec := &recorder{script: []Fingerprint{
		{"take it to", "the limit"}, // same as baseline: no notice
		{"take it", "to the limit"}, // re-wrapped: notice
	}}
	ctl := NewController(rec.config(time.Millisecond))
	obs := &FuncObserver{}
	ctl.Connect(obs, Fingerprint{"take it to", "the limit"})
	defer ctl.Disconnect()

	obs.Trigger(fixed.I(320))
	obs.Trigger(fixed.I(321))
	waitFor(t, "first repartition", func() bool { return rec.runCount() == 1 })
	if n := atomic.LoadInt32(&rec.notices); n != 0 {
		t.Errorf("unchanged fingerprint produced %d notices", n)
	}
	obs.Trigger(fixed.I(280))
	waitFor(t, "second repartition", func() bool { return rec.runCount() == 2 })
	waitFor(t, "notice", func() bool { return atomic.LoadInt32(&rec.notices) == 1 })
}

func TestDisconnectStopsPendingWork(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.resplit")
	defer teardown()
	rec := &recorder{script: []Fingerprint{{"a"}}}
	ctl := NewController(rec.config(30 * time.Millisecond))
	obs := &FuncObserver{}
	ctl.Connect(obs, Fingerprint{"a"})

	obs.Trigger(fixed.I(320))
	obs.Trigger(fixed.I(400)) // debounce pending
	ctl.Disconnect()
	ctl.Disconnect() // must be idempotent
	time.Sleep(60 * time.Millisecond)
	if rec.runCount() != 0 {
		t.Errorf("disconnected controller ran the pipeline %d times", rec.runCount())
	}
	obs.Trigger(fixed.I(500)) // observer cancelled, callback gone
	time.Sleep(40 * time.Millisecond)
	if rec.runCount() != 0 {
		t.Errorf("cancelled observer still reached the pipeline")
	}
}

func TestFingerprintEqual(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.resplit")
	defer teardown()
	a := Fingerprint{"one", "two"}
	if !a.Equal(Fingerprint{"one", "two"}) {
		t.Error("equal fingerprints compared unequal")
	}
	if a.Equal(Fingerprint{"one"}) || a.Equal(Fingerprint{"one", "2"}) {
		t.Error("unequal fingerprints compared equal")
	}
	if !Fingerprint(nil).Equal(Fingerprint{}) {
		t.Error("nil and empty fingerprints should be equal")
	}
}

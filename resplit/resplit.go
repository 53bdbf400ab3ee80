/*
Package resplit keeps a projection consistent with its container width.

A Controller attaches to a width signal (a ResizeObserver binding in a
browser host, a fake in tests), debounces bursts of callbacks, and drives
a repartition whenever the measured width actually changed — any delta
counts, including sub-pixel ones; equality is the only no-op condition.
After repartitioning it compares a line fingerprint (the ordered per-line
text content) against the previous one and notifies the caller only when
re-wrapping materially changed the lines, so animations are not replayed
for no-op resizes.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package resplit

import (
	"strings"
	"sync"
	"time"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/math/fixed"
)

// tracer writes to trace with key 'textsplit.resplit'
func tracer() tracing.Trace {
	return tracing.Select("textsplit.resplit")
}

// Observer is the host's width signal. Observe registers a callback to be
// invoked with the container's current width — typically immediately once
// on attach, then on every resize — and returns a cancel function.
// Cancel must be safe to call more than once.
type Observer interface {
	Observe(fn func(width fixed.Int26_6)) (cancel func())
}

// DefaultDebounce coalesces observer callbacks before repartitioning.
const DefaultDebounce = 120 * time.Millisecond

// Config parameterizes a Controller.
type Config struct {
	Debounce time.Duration
	// Repartition re-runs the split pipeline and returns the new line
	// fingerprint.
	Repartition func() Fingerprint
	// Notify fires after a repartition whose fingerprint differs from the
	// previous one.
	Notify func()
}

// Controller is the resize state machine: idle → observing →
// (width changed) → repartitioning → idle. All state is explicit; no
// captured variables, so independent instances never interfere.
type Controller struct {
	mu        sync.Mutex
	cfg       Config
	cancel    func()
	timer     *time.Timer
	active    bool
	primed    bool // first observation (fired on attach) consumed
	lastWidth fixed.Int26_6
	lastFp    Fingerprint
}

// NewController creates a detached controller. Connect attaches it.
func NewController(cfg Config) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Controller{cfg: cfg}
}

// Connect starts observing. The observer's initial callback is discarded;
// only subsequent width changes trigger repartitioning. The baseline
// fingerprint is the current one.
func (c *Controller) Connect(obs Observer, baseline Fingerprint) {
	c.mu.Lock()
	c.active = true
	c.primed = false
	c.lastFp = baseline
	c.mu.Unlock()
	cancel := obs.Observe(c.observed) // may fire the callback synchronously
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
}

// observed handles one width sample from the observer.
func (c *Controller) observed(width fixed.Int26_6) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	if !c.primed {
		// observers fire once immediately on attach; not a resize
		c.primed = true
		c.lastWidth = width
		return
	}
	if width == c.lastWidth {
		return
	}
	tracer().Debugf("width changed %v -> %v", c.lastWidth, width)
	c.lastWidth = width
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.cfg.Debounce, c.repartition)
}

// repartition runs after the debounce window closed.
func (c *Controller) repartition() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	prev := c.lastFp
	c.mu.Unlock()

	fp := c.cfg.Repartition()

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.lastFp = fp
	changed := !fp.Equal(prev)
	c.mu.Unlock()
	if changed {
		tracer().Debugf("line fingerprint changed, notifying")
		if c.cfg.Notify != nil {
			c.cfg.Notify()
		}
	}
}

// Disconnect stops observing and clears any pending debounce. Idempotent
// and safe to call during an in-flight debounce: the pending callback
// checks the active flag and becomes a no-op.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	c.active = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// --- Fingerprints ----------------------------------------------------------

// Fingerprint summarizes a projection's line structure as the ordered
// per-line text content. Two projections with equal fingerprints wrapped
// identically.
type Fingerprint []string

// Equal compares two fingerprints element-wise.
func (fp Fingerprint) Equal(other Fingerprint) bool {
	if len(fp) != len(other) {
		return false
	}
	for i := range fp {
		if fp[i] != other[i] {
			return false
		}
	}
	return true
}

func (fp Fingerprint) String() string {
	return strings.Join(fp, "⏎")
}

// --- Observer helpers ------------------------------------------------------

// FuncObserver is a manually driven Observer for hosts (and tests) that
// push width samples themselves.
type FuncObserver struct {
	mu sync.Mutex
	fn func(fixed.Int26_6)
}

// Observe registers fn and fires nothing; drive samples with Trigger.
func (o *FuncObserver) Observe(fn func(width fixed.Int26_6)) (cancel func()) {
	o.mu.Lock()
	o.fn = fn
	o.mu.Unlock()
	return func() {
		o.mu.Lock()
		o.fn = nil
		o.mu.Unlock()
	}
}

// Trigger pushes one width sample to the registered callback.
func (o *FuncObserver) Trigger(width fixed.Int26_6) {
	o.mu.Lock()
	fn := o.fn
	o.mu.Unlock()
	if fn != nil {
		fn(width)
	}
}

/*
Package textsplit partitions rendered text into characters, words, and
lines for use by animation code, while preserving the original visual
typography and markup semantics.

Splitting text for animation sounds like string surgery but is mostly a
measurement problem: the split must respect the layout the host already
performed (line wrapping, kerning), keep nested inline markup such as
links and emphasis intact, and stay invisible to assistive technology.
This package orchestrates that pipeline:

▪︎ partition — segment the content into graphemes and words, measuring
positions against the unmodified rendering (package partition);

▪︎ project — replace the content with char/word/line wrappers, merging
tokens that share ancestor markup and emitting accessibility structures
(package project);

▪︎ compensate — restore inter-character spacing the split destroyed
(kerning compensation, package partition);

▪︎ resplit — observe the container width and re-run the pipeline when
re-wrapping would change the lines (package resplit).

Layout itself is delegated to the host through the metrics.Renderer
boundary; this library measures and respects, it does not typeset.

An independent facility, package reconcile, assigns stable identities to
token sequences across renders, so morphing animations can tell
persisting, entering, and exiting tokens apart.

# Status

Kerning restoration is bounded best-effort: corrections beyond a sanity
window are discarded rather than applied, so sub-pixel-perfect spacing
across all font/engine combinations is explicitly not guaranteed.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package textsplit

import (
	"time"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit/metrics"
	"github.com/npillmayer/textsplit/partition"
	"github.com/npillmayer/textsplit/project"
	"github.com/npillmayer/textsplit/resplit"
)

// tracer writes to trace with key 'textsplit'
func tracer() tracing.Trace {
	return tracing.Select("textsplit")
}

// Granularity selects which token levels a split produces.
type Granularity = project.Granularity

// Granularity set members, combinable by OR.
const (
	Chars = project.Chars
	Words = project.Words
	Lines = project.Lines
)

// Options configures a call to Split. The zero value requests the default
// granularity set (chars+words+lines) with synthetic kerning
// compensation and no auto-resplit.
type Options struct {
	// Types is the requested granularity subset. Empty or invalid
	// selections fall back to the full default set, with a warning.
	Types Granularity
	// Mask wraps one granularity's nodes in clipping wrappers for reveal
	// animations. Zero means no mask.
	Mask Granularity
	// Class labels applied to generated nodes. Defaults: "ts-char",
	// "ts-word", "ts-line".
	CharClass string
	WordClass string
	LineClass string
	// PropIndex exposes each token's positional index as a custom style
	// property (--ts-char, --ts-word, --ts-line).
	PropIndex bool
	// Kerning selects the spacing-preservation strategy. The synthetic
	// glyph-pair-width strategy is the default; KernOff disables
	// compensation.
	Kerning partition.KernStrategy
	// AutoResplit re-runs the pipeline when the observed container width
	// changes. Requires Observer; without one, auto-resplit is inert and
	// a warning is recorded.
	AutoResplit bool
	// Observer is the host's container-width signal.
	Observer resplit.Observer
	// Debounce coalesces resize callbacks. Zero selects the default.
	Debounce time.Duration
	// OnResplit fires after a resize-triggered repartition whose line
	// contents actually changed.
	OnResplit func(*Result)
	// Animate is the caller's animation hook, invoked once after
	// projection. Its return value is normalized into a Completion.
	Animate func(*Result) any
	// RevertOnComplete reverts the split once the animation's completion
	// signal resolves. A rejected signal skips the revert, with a
	// warning, leaving the split state in place.
	RevertOnComplete bool
}

// Split partitions root's content and projects it into the requested
// granularities, measured and laid out through rend.
//
// The only fatal condition is an unusable root (nil or not an element);
// every other anomaly — empty content, invalid granularity selection,
// missing resize observer — degrades to a defined fallback and is
// recorded as a warning on the returned Result.
//
// The returned Result owns the projected state. Revert restores the
// original markup byte-for-byte and is idempotent.
func Split(root *html.Node, rend metrics.Renderer, opts Options) (*Result, error) {
	r := &Result{
		root:   root,
		rend:   rend,
		opts:   opts,
		active: true,
	}
	p, err := partition.Split(root, rend, r.needCharMeasurement())
	if err != nil {
		return nil, SplitError{Op: "partition", Issue: err.Error()}
	}
	r.snapshot = p.Snapshot
	if p.Empty() {
		r.warn("partition", "no content to split")
		return r, nil
	}
	tracer().Debugf("splitting %d words at container width %v", len(p.Words), rend.InnerWidth(root))
	fp := r.projectPartition(p)

	if opts.AutoResplit {
		if opts.Observer == nil {
			r.warn("resplit", "no container width signal to observe, auto-resplit inert")
		} else {
			r.controller = resplit.NewController(resplit.Config{
				Debounce:    opts.Debounce,
				Repartition: r.repartition,
				Notify:      r.notifyResplit,
			})
			r.controller.Connect(opts.Observer, fp)
		}
	}
	if opts.Animate != nil {
		signal := Normalize(opts.Animate(r))
		if opts.RevertOnComplete {
			go r.revertWhenDone(signal)
		}
	}
	return r, nil
}

func (r *Result) needCharMeasurement() bool {
	types := r.opts.Types
	if types == 0 || types&^project.AllGranularities != 0 {
		types = project.AllGranularities
	}
	return types&Chars != 0 || r.opts.Kerning == partition.KernPositional
}

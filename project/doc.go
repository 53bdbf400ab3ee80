/*
Package project realizes a measured partition as new markup: character,
word, and line nodes replacing the original content of the root element.

The builder honors three structural obligations that are easy to get
wrong when splitting text naively:

▪︎ word wrappers are always materialized, even when the caller asked only
for characters or lines — inter-word spacing and kerning correction
depend on them;

▪︎ consecutive tokens sharing an identical ancestor chain are merged under
a single rebuilt wrapper instance of that chain, so a link spanning three
words comes back as one <a> with three word spans inside, not three
anchors;

▪︎ the original markup is never needed for rendering again, but it is
preserved verbatim for revert and projected for assistive technology —
either as an aria-label on the root (flat sources) or as a visually
hidden clone next to the decorative split structure (nested sources).

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package project

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'textsplit.project'
func tracer() tracing.Trace {
	return tracing.Select("textsplit.project")
}

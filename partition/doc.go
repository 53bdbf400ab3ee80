/*
Package partition turns a rendered markup fragment into an ordered
Word→Grapheme structure, measured against the unmodified layout.

Partitioning is the first stage of the splitting pipeline and the only
stage that sees the original, unsplit rendering. Everything that must
reflect the host's own typography — character positions for the kerning
compensator, word order for line grouping — is captured here, before the
projection builder mutates the markup.

The package also houses the two measurement-dependent stages that bracket
projection: the kerning compensator (PlanKerning/Apply) and the line
grouper (GroupLines).

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package partition

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'textsplit.partition'
func tracer() tracing.Trace {
	return tracing.Select("textsplit.partition")
}

// errPartition wraps a message as a user-facing partitioning error.
func errPartition(x string) error {
	return fmt.Errorf("text partitioning: %s", x)
}

/*
Package dom is a thin markup layer over golang.org/x/net/html nodes.

It provides the handful of document operations the splitting engine needs:
parsing fragments, serializing a subtree back to its source form (for
snapshots and byte-exact revert), walking text leaves in document order,
and tracking ancestor chains of inline wrapper elements.

Ancestor chains carry an instance identity per originating wrapper node,
so that two text leaves inside the same <em> element report the same
identity while two visually identical but distinct <em> elements do not.
This identity is what the projection builder's adjacent-merge compares.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package dom

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'textsplit.dom'
func tracer() tracing.Trace {
	return tracing.Select("textsplit.dom")
}

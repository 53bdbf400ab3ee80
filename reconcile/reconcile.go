/*
Package reconcile assigns stable identities to tokens across successive
text states, so that morphing animations can tell persisting, entering,
and exiting tokens apart deterministically.

Reconcile is a pure function of (previous snapshot, next values): it
aligns the two value sequences by their longest common subsequence and
carries identities forward along the matched positions. It keeps no
hidden state and is callable repeatedly — and concurrently across
independent sequences; only the minting of fresh identity tokens draws
from a process-wide counter.

Tie-breaking is fixed: the backtrack always prefers the match that is
leftmost in both sequences simultaneously, so repeated identical values
match in strict left-to-right correspondence and running the same
transition twice yields identical output.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package reconcile

import (
	"sync/atomic"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'textsplit.reconcile'
func tracer() tracing.Trace {
	return tracing.Select("textsplit.reconcile")
}

// Status classifies one token transition.
type Status int

const (
	Enter Status = iota
	Persist
	Exit
)

func (s Status) String() string {
	switch s {
	case Enter:
		return "enter"
	case Persist:
		return "persist"
	case Exit:
		return "exit"
	}
	return "invalid"
}

// ID is an identity token. IDs are unique per process.
type ID int64

var idCounter atomic.Int64

func mintID() ID { return ID(idCounter.Add(1)) }

// Change records one token's fate across a transition. Enter carries
// NextIndex only, Exit carries PrevIndex only, Persist carries both; the
// absent index is −1.
type Change[T comparable] struct {
	ID        ID
	Status    Status
	Value     T
	PrevIndex int
	NextIndex int
}

// Snapshot pairs an observed value sequence with its identity tokens,
// aligned 1:1. Snapshots are owned by the caller and replaced, never
// mutated, on each reconciliation.
type Snapshot[T comparable] struct {
	Values []T
	IDs    []ID
}

// Reconcile aligns prev's values with next and returns the new snapshot
// plus the ordered change list. A nil prev makes every position enter.
//
// Matched positions persist their identity token; unmatched previous
// positions exit (identity discarded); unmatched next positions enter
// with a freshly minted identity. Plain O(n·m) dynamic programming; fine
// for sequences in the low hundreds.
func Reconcile[T comparable](prev *Snapshot[T], next []T) (*Snapshot[T], []Change[T]) {
	var prevValues []T
	var prevIDs []ID
	if prev != nil {
		prevValues = prev.Values
		prevIDs = prev.IDs
	}
	n, m := len(prevValues), len(next)

	// dp[i][j]: LCS length of prevValues[i:] and next[j:]. Suffix form
	// lets the backtrack walk forward, which makes the leftmost-pair
	// preference explicit.
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if prevValues[i] == next[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	snapshot := &Snapshot[T]{
		Values: append([]T(nil), next...),
		IDs:    make([]ID, m),
	}
	changes := make([]Change[T], 0, n+m-dp[0][0])
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && prevValues[i] == next[j] && dp[i][j] == dp[i+1][j+1]+1:
			snapshot.IDs[j] = prevIDs[i]
			changes = append(changes, Change[T]{
				ID: prevIDs[i], Status: Persist, Value: next[j],
				PrevIndex: i, NextIndex: j,
			})
			i++
			j++
		case i < n && (j == m || dp[i+1][j] >= dp[i][j+1]):
			changes = append(changes, Change[T]{
				ID: prevIDs[i], Status: Exit, Value: prevValues[i],
				PrevIndex: i, NextIndex: -1,
			})
			i++
		default:
			id := mintID()
			snapshot.IDs[j] = id
			changes = append(changes, Change[T]{
				ID: id, Status: Enter, Value: next[j],
				PrevIndex: -1, NextIndex: j,
			})
			j++
		}
	}
	tracer().Debugf("reconciled %d -> %d values, %d changes", n, m, len(changes))
	return snapshot, changes
}

// NewSnapshot mints identities for an initial value sequence without
// producing changes. Equivalent to Reconcile(nil, values) with the change
// list dropped.
func NewSnapshot[T comparable](values []T) *Snapshot[T] {
	s := &Snapshot[T]{
		Values: append([]T(nil), values...),
		IDs:    make([]ID, len(values)),
	}
	for i := range s.IDs {
		s.IDs[i] = mintID()
	}
	return s
}

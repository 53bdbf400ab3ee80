/*
Package segment breaks text runs into grapheme clusters and classifies
cluster boundaries for word splitting.

A grapheme cluster is the smallest atomic unit of rendered text and may
consist of multiple code points (combining marks, emoji ZWJ sequences,
regional-indicator pairs). Splitting animated text at anything finer than
cluster boundaries tears glyphs apart, so everything downstream of this
package operates on clusters, never on runes.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package segment

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Cluster is one grapheme cluster of a text run, together with its byte
// position within that run.
type Cluster struct {
	Text string // the cluster's text, possibly multiple code points
	Off  int    // byte offset within the originating run
}

// Clusters segments s into grapheme clusters in order of appearance.
func Clusters(s string) []Cluster {
	if s == "" {
		return nil
	}
	clusters := make([]Cluster, 0, len(s))
	off := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.StepString(s, state)
		clusters = append(clusters, Cluster{Text: cluster, Off: off})
		off += len(cluster)
	}
	return clusters
}

// Count returns the number of grapheme clusters in s.
func Count(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// IsWhitespace reports whether a cluster consists of whitespace only.
// Whitespace clusters terminate the current word.
func IsWhitespace(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Characters after which a word may break without an inserted space.
// This is the dash class (plus the solidus), not the general Unicode
// line-break classification: a word like "self‑contained" or a date range
// "2019–2026" splits after the dash, and reassembly must not insert a
// space at that seam.
const breakChars = "-/‐‒–—―"

// IsBreak reports whether a cluster is a break-character: the current word
// closes immediately after it and the following word starts with no space
// expected before it.
func IsBreak(cluster string) bool {
	r, size := utf8.DecodeRuneInString(cluster)
	if size != len(cluster) {
		return false // multi-rune clusters are never break-characters
	}
	for _, b := range breakChars {
		if r == b {
			return true
		}
	}
	return false
}

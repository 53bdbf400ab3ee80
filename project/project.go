package project

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/partition"
)

// Granularity is a set of split granularities.
type Granularity uint8

const (
	Chars Granularity = 1 << iota
	Words
	Lines
)

// AllGranularities is the default granularity set.
const AllGranularities = Chars | Words | Lines

func (g Granularity) String() string {
	var parts []string
	if g&Chars != 0 {
		parts = append(parts, "chars")
	}
	if g&Words != 0 {
		parts = append(parts, "words")
	}
	if g&Lines != 0 {
		parts = append(parts, "lines")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Spec configures a projection.
type Spec struct {
	Types     Granularity // requested granularities; invalid/empty falls back to all
	Mask      Granularity // single granularity wrapped in clipping masks, or 0
	CharClass string
	WordClass string
	LineClass string
	PropIndex bool // expose positional index as a custom style property
}

// Normalize substitutes defaults and reports whether an invalid or empty
// granularity selection was replaced by the full default set.
func (s *Spec) Normalize() (defaulted bool) {
	if s.Types == 0 || s.Types&^AllGranularities != 0 {
		s.Types = AllGranularities
		defaulted = true
	}
	if s.CharClass == "" {
		s.CharClass = "ts-char"
	}
	if s.WordClass == "" {
		s.WordClass = "ts-word"
	}
	if s.LineClass == "" {
		s.LineClass = "ts-line"
	}
	return defaulted
}

// Build is the outcome of a projection pass: the created nodes per
// requested granularity, plus internal bookkeeping the pipeline needs for
// kerning application, line restructuring, and revert.
type Build struct {
	Chars []*html.Node
	Words []*html.Node
	Lines []*html.Node

	// CharNodes holds, per word, the projected character elements — the
	// kerning compensator's apply targets.
	CharNodes [][]*html.Node

	// WordSpans are the internal word wrappers in document order,
	// materialized regardless of the requested granularities.
	WordSpans []*html.Node

	// RootAttrs lists attribute keys added to the root (accessibility),
	// to be removed on revert.
	RootAttrs []string

	// Defaulted is set when an invalid granularity selection was replaced
	// by the default set; the caller reports this as a recoverable warning.
	Defaulted bool

	spec   Spec
	root   *html.Node
	nested bool // source contained nested inline markup
	words  []wordItem
}

// wordItem pairs a projected word wrapper with the merge data of its
// source word.
type wordItem struct {
	span    *html.Node
	chain   []dom.AncestorInfo // uniform ancestor chain, or nil if mixed
	noSpace bool
}

// --- Word and character projection ----------------------------------------

// BuildWords replaces root's content with word wrappers (and character
// wrappers inside them when requested). It is the first mutating stage of
// the pipeline; partitioning and kerning pre-measurement must already
// have happened.
func BuildWords(p *partition.Partition, spec Spec) *Build {
	b := &Build{spec: spec, root: p.Root}
	b.Defaulted = b.spec.Normalize()
	if b.Defaulted {
		tracer().Infof("invalid granularity selection, falling back to %s", b.spec.Types)
	}
	b.nested = hasNestedMarkup(p.Root)
	dom.RemoveChildren(p.Root)

	charIndex := 0
	for w := range p.Words {
		word := &p.Words[w]
		span := dom.NewElement("span")
		dom.AddClass(span, b.spec.WordClass)
		if b.spec.PropIndex {
			dom.AppendStyle(span, fmt.Sprintf("--ts-word: %d", w))
		}
		chain := uniformChain(word)
		var charNodes []*html.Node
		if b.spec.Types&Chars != 0 {
			charNodes = b.emitChars(span, word, chain != nil, &charIndex)
		} else {
			b.emitWordText(span, word, chain != nil)
		}
		b.CharNodes = append(b.CharNodes, charNodes)
		b.Chars = append(b.Chars, charNodes...)
		b.WordSpans = append(b.WordSpans, span)
		b.words = append(b.words, wordItem{span: span, chain: chain, noSpace: word.NoSpaceBefore})
	}
	emitMerged(p.Root, b.words)
	if b.spec.Types&Words != 0 {
		b.Words = append(b.Words, b.WordSpans...)
	}
	tracer().Debugf("projected %d words, %d chars", len(b.WordSpans), len(b.Chars))
	return b
}

// emitChars fills a word wrapper with one element per grapheme, rebuilding
// intra-word ancestor wrappers when the word's chain is not uniform.
func (b *Build) emitChars(span *html.Node, word *partition.Word, wrapped bool, charIndex *int) []*html.Node {
	nodes := make([]*html.Node, 0, len(word.Chars))
	parent := span
	var open []dom.AncestorInfo
	for i := range word.Chars {
		g := &word.Chars[i]
		if !wrapped {
			if !dom.EqualChains(open, g.Ancestors) {
				parent = span
				if len(g.Ancestors) > 0 {
					outer, inner := rebuildChain(g.Ancestors)
					span.AppendChild(outer)
					parent = inner
				}
				open = g.Ancestors
			}
		}
		c := dom.NewElement("span")
		dom.AddClass(c, b.spec.CharClass)
		if b.spec.PropIndex {
			dom.AppendStyle(c, fmt.Sprintf("--ts-char: %d", *charIndex))
		}
		c.AppendChild(dom.NewText(g.Text))
		parent.AppendChild(c)
		nodes = append(nodes, c)
		*charIndex++
	}
	return nodes
}

// emitWordText fills a word wrapper with plain text (chars not requested),
// rebuilding intra-word ancestor wrappers for mixed-chain words.
func (b *Build) emitWordText(span *html.Node, word *partition.Word, wrapped bool) {
	if wrapped {
		span.AppendChild(dom.NewText(word.Text()))
		return
	}
	var open []dom.AncestorInfo
	parent := span
	sb := strings.Builder{}
	flush := func() {
		if sb.Len() > 0 {
			parent.AppendChild(dom.NewText(sb.String()))
			sb.Reset()
		}
	}
	for i := range word.Chars {
		g := &word.Chars[i]
		if !dom.EqualChains(open, g.Ancestors) {
			flush()
			parent = span
			if len(g.Ancestors) > 0 {
				outer, inner := rebuildChain(g.Ancestors)
				span.AppendChild(outer)
				parent = inner
			}
			open = g.Ancestors
		}
		sb.WriteString(g.Text)
	}
	flush()
}

// emitMerged appends word wrappers to parent, merging consecutive words
// with identical ancestor chains under one rebuilt wrapper instance.
// Inter-word spaces land inside the merged wrapper when both neighbors
// share it, outside otherwise.
func emitMerged(parent *html.Node, words []wordItem) {
	container := parent
	var open []dom.AncestorInfo
	for i, w := range words {
		sameChain := dom.EqualChains(open, w.chain)
		if i > 0 && !w.noSpace {
			// the space precedes any wrapper opened for this word
			spaceParent := container
			if !sameChain {
				spaceParent = parent
			}
			spaceParent.AppendChild(dom.NewText(" "))
		}
		if !sameChain {
			container = parent
			if len(w.chain) > 0 {
				outer, inner := rebuildChain(w.chain)
				parent.AppendChild(outer)
				container = inner
			}
			open = w.chain
		}
		container.AppendChild(w.span)
	}
}

// rebuildChain instantiates fresh wrapper elements for an ancestor chain
// (innermost first) and returns the outermost and innermost nodes.
func rebuildChain(chain []dom.AncestorInfo) (outer, inner *html.Node) {
	for i := len(chain) - 1; i >= 0; i-- {
		el := dom.NewElement(chain[i].TagName)
		el.Attr = append([]html.Attribute(nil), chain[i].Attributes...)
		if outer == nil {
			outer = el
		} else {
			inner.AppendChild(el)
		}
		inner = el
	}
	return outer, inner
}

// uniformChain returns the ancestor chain shared by all of a word's
// graphemes, or nil when the word crosses wrapper boundaries.
func uniformChain(word *partition.Word) []dom.AncestorInfo {
	if len(word.Chars) == 0 {
		return nil
	}
	chain := word.Chars[0].Ancestors
	if len(chain) == 0 {
		return nil
	}
	for i := 1; i < len(word.Chars); i++ {
		if !dom.EqualChains(chain, word.Chars[i].Ancestors) {
			return nil
		}
	}
	return chain
}

// hasNestedMarkup reports whether root's subtree contains element nodes.
func hasNestedMarkup(root *html.Node) bool {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
		if c.FirstChild != nil && hasNestedMarkup(c) {
			return true
		}
	}
	return false
}

package partition

import (
	"strings"

	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"

	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/metrics"
	"github.com/npillmayer/textsplit/segment"
)

// Grapheme is one atomic rendering unit of the partitioned text, annotated
// with its pre-split position and the chain of inline wrappers enclosing
// it in the original markup (innermost first). Immutable after measurement.
type Grapheme struct {
	Text      string
	Left      fixed.Int26_6 // rendered left edge before any mutation
	Ancestors []dom.AncestorInfo
	Leaf      *html.Node // originating text node
	Off, Len  int        // byte range within Leaf
}

// Word is an ordered grapheme sequence between word boundaries. A word
// never spans whitespace; it closes immediately after a break-character,
// in which case the following word carries NoSpaceBefore.
type Word struct {
	Chars         []Grapheme
	StartLeft     fixed.Int26_6
	NoSpaceBefore bool
}

// Text returns the word's text, clusters concatenated.
func (w *Word) Text() string {
	sb := strings.Builder{}
	for _, g := range w.Chars {
		sb.WriteString(g.Text)
	}
	return sb.String()
}

// Partition is the measured word structure of one fragment, together with
// the immutable source snapshot taken before the first mutation.
type Partition struct {
	Words    []Word
	Snapshot string // serialized original content, for revert
	Root     *html.Node
}

// Empty reports whether partitioning found no words (empty or
// whitespace-only content). Non-fatal; callers degrade to a no-op result.
func (p *Partition) Empty() bool { return len(p.Words) == 0 }

// JoinedText reassembles the partition's text: word texts joined by single
// spaces, except at NoSpaceBefore seams. For any input this reconstructs
// the original trimmed text (modulo whitespace runs collapsing to one
// space).
func (p *Partition) JoinedText() string {
	sb := strings.Builder{}
	for i := range p.Words {
		if i > 0 && !p.Words[i].NoSpaceBefore {
			sb.WriteString(" ")
		}
		sb.WriteString(p.Words[i].Text())
	}
	return sb.String()
}

// Split partitions root's content into words. If measureChars is set, each
// grapheme's rendered left edge is captured from the renderer before any
// structural mutation, so the baseline reflects unmodified layout.
//
// The only fatal condition is an unusable root; empty content yields an
// empty partition.
func Split(root *html.Node, rend metrics.Renderer, measureChars bool) (*Partition, error) {
	if root == nil || root.Type != html.ElementNode {
		return nil, errPartition("root is not a measurable content node")
	}
	p := &Partition{Root: root, Snapshot: dom.Serialize(root)}
	if strings.TrimSpace(dom.Text(root)) == "" {
		tracer().Infof("no content to partition")
		return p, nil
	}
	if measureChars {
		rend.Layout(root)
	}
	cache := dom.NewAncestorCache()
	var current *Word
	noSpace := false
	closeWord := func() {
		if current != nil {
			p.Words = append(p.Words, *current)
			current = nil
		}
	}
	for _, leaf := range dom.TextLeaves(root) {
		chain := cache.ChainFor(leaf, root)
		for _, cl := range segment.Clusters(leaf.Data) {
			if segment.IsWhitespace(cl.Text) {
				closeWord()
				noSpace = false
				continue
			}
			g := Grapheme{
				Text:      cl.Text,
				Ancestors: chain,
				Leaf:      leaf,
				Off:       cl.Off,
				Len:       len(cl.Text),
			}
			if measureChars {
				if r, ok := rend.RangeBounds(leaf, cl.Off, len(cl.Text)); ok {
					g.Left = r.Left
				}
			}
			if current == nil {
				current = &Word{NoSpaceBefore: noSpace, StartLeft: g.Left}
				noSpace = false
			}
			current.Chars = append(current.Chars, g)
			if segment.IsBreak(cl.Text) {
				closeWord()
				noSpace = true
			}
		}
	}
	closeWord()
	tracer().Debugf("partitioned %d words", len(p.Words))
	return p, nil
}

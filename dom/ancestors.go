package dom

import (
	"golang.org/x/net/html"
)

// AncestorInfo describes one inline wrapper element enclosing a text unit:
// its tag, its attributes in source order, and an instance identity unique
// per originating node. Identity, not tag/attribute equality, decides
// whether two chains refer to the same wrapper.
type AncestorInfo struct {
	TagName    string
	Attributes []html.Attribute
	InstanceID int
}

// Inline wrapper tags whose identity survives splitting. Block-level and
// unknown elements are dropped from ancestor chains.
var inlineWrapperTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true,
	"cite": true, "code": true, "data": true, "dfn": true, "em": true,
	"i": true, "kbd": true, "mark": true, "q": true, "s": true,
	"samp": true, "small": true, "span": true, "strong": true,
	"sub": true, "sup": true, "time": true, "u": true, "var": true,
}

// IsInlineWrapper reports whether tag is whitelisted for ancestor tracking.
func IsInlineWrapper(tag string) bool {
	return inlineWrapperTags[tag]
}

// AncestorCache assigns stable instance identities to wrapper nodes. The
// first visit of a node mints a fresh id; every later visit yields the
// same id. One cache instance belongs to one partitioning pass.
type AncestorCache struct {
	ids  map[*html.Node]int
	next int
}

// NewAncestorCache creates an empty cache.
func NewAncestorCache() *AncestorCache {
	return &AncestorCache{ids: make(map[*html.Node]int)}
}

// instanceID returns the cached id for n, minting one on first visit.
func (c *AncestorCache) instanceID(n *html.Node) int {
	if id, ok := c.ids[n]; ok {
		return id
	}
	c.next++
	c.ids[n] = c.next
	return c.next
}

// ChainFor walks from leaf's parent up to (excluding) root and returns the
// chain of whitelisted inline wrappers, innermost first. The chain is
// computed once per leaf and attached to every grapheme of that leaf.
func (c *AncestorCache) ChainFor(leaf, root *html.Node) []AncestorInfo {
	var chain []AncestorInfo
	for p := leaf.Parent; p != nil && p != root; p = p.Parent {
		if p.Type != html.ElementNode || !IsInlineWrapper(p.Data) {
			continue
		}
		chain = append(chain, AncestorInfo{
			TagName:    p.Data,
			Attributes: append([]html.Attribute(nil), p.Attr...),
			InstanceID: c.instanceID(p),
		})
	}
	return chain
}

// EqualChains reports whether two ancestor chains refer to the same wrapper
// instances in the same nesting order.
func EqualChains(a, b []AncestorInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].InstanceID != b[i].InstanceID {
			return false
		}
	}
	return true
}

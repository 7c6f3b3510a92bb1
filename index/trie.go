package index

import "github.com/hupe1980/quickset/model"

// trieNode is one code point of the trie. terminal holds the rows
// whose full key ends here; it is nil when no key terminates here.
type trieNode struct {
	children map[rune]*trieNode
	terminal *Postings
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// TrieIndex is a character-level trie over string keys supporting
// prefix walks. Each terminal node stores the posting set of rows
// sharing that exact key.
type TrieIndex struct {
	root *trieNode
	keys int
}

// NewTrieIndex creates an empty trie index.
func NewTrieIndex() *TrieIndex {
	return &TrieIndex{root: newTrieNode()}
}

// Insert adds (key, id) to the trie.
func (ix *TrieIndex) Insert(key string, id model.RowID) {
	node := ix.root
	for _, r := range key {
		child, ok := node.children[r]
		if !ok {
			child = newTrieNode()
			node.children[r] = child
		}
		node = child
	}
	if node.terminal == nil {
		node.terminal = NewPostings()
		ix.keys++
	}
	node.terminal.Add(id)
}

// Remove deletes (key, id), pruning leaf nodes that no longer carry a
// terminal or children. Internal nodes still in use are preserved.
func (ix *TrieIndex) Remove(key string, id model.RowID) {
	runes := []rune(key)
	path := make([]*trieNode, 0, len(runes)+1)
	node := ix.root
	path = append(path, node)
	for _, r := range runes {
		child, ok := node.children[r]
		if !ok {
			return
		}
		node = child
		path = append(path, node)
	}
	if node.terminal == nil {
		return
	}
	node.terminal.Remove(id)
	if !node.terminal.IsEmpty() {
		return
	}
	node.terminal = nil
	ix.keys--

	// Prune empty leaves bottom-up, never the root.
	for i := len(path) - 1; i > 0; i-- {
		n := path[i]
		if n.terminal != nil || len(n.children) > 0 {
			break
		}
		delete(path[i-1].children, runes[i-1])
	}
}

// Prefix returns the union of all terminal posting sets below the
// node for p. The empty prefix returns every row in the index. The
// returned set is owned by the caller.
func (ix *TrieIndex) Prefix(p string) *Postings {
	out := NewPostings()
	node := ix.root
	for _, r := range p {
		child, ok := node.children[r]
		if !ok {
			return out
		}
		node = child
	}
	collect(node, out)
	return out
}

func collect(node *trieNode, out *Postings) {
	if node.terminal != nil {
		out.Or(node.terminal)
	}
	for _, child := range node.children {
		collect(child, out)
	}
}

// Len returns the number of distinct keys in the trie.
func (ix *TrieIndex) Len() int { return ix.keys }

// Package fptree implements the frequent-pattern tree: a prefix tree that
// compresses transactions sharing leading items, plus the header table that
// threads every occurrence of an item together.
//
// Nodes live in an arena owned by the Tree and refer to each other through
// NodeID handles. Parent handles and node-links never own anything; they are
// plain indexes into the same arena.
package fptree

// NodeID is a handle to a node in a tree's arena.
type NodeID int32

// NoNode is the zero handle for "no parent" or "end of node-link chain".
const NoNode NodeID = -1

// RootID is the handle of the synthetic root node.
const RootID NodeID = 0

// Node is one entry of the prefix tree.
type Node struct {
	Item   string
	Count  int
	Parent NodeID
	// Link points to the next node in the tree bearing the same item.
	Link     NodeID
	children []NodeID
}

// IsRoot reports whether the node is the synthetic root.
func (n Node) IsRoot() bool {
	return n.Parent == NoNode
}

// Children returns the node's children in insertion order.
func (n Node) Children() []NodeID {
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out
}

type edge struct {
	item   string
	parent NodeID
}

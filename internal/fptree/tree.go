package fptree

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Veraticus/market-basket/internal/model"
)

// rootLabel is printed for the synthetic root by Dump. The root carries a
// count of 1 and is never mined.
const rootLabel = "Null Set"

// Tree is an FP-tree together with its header table.
type Tree struct {
	header     *HeaderTable
	childIndex map[edge]NodeID
	nodes      []Node
}

// Build constructs an FP-tree from weighted transactions. Items whose total
// count falls below minSupport are dropped; the remaining items of each
// transaction are inserted by descending global count.
//
// The second return value is false when no item is frequent. That is the
// recursion base case of mining, not an error.
func Build(transactions []model.WeightedTransaction, minSupport int) (*Tree, bool) {
	counts := make(map[string]int)
	for _, txn := range transactions {
		for _, item := range txn.Items.Items() {
			counts[item] += txn.Count
		}
	}
	for item, count := range counts {
		if count < minSupport {
			delete(counts, item)
		}
	}
	if len(counts) == 0 {
		return nil, false
	}

	t := &Tree{
		header:     newHeaderTable(counts),
		childIndex: make(map[edge]NodeID),
		nodes:      []Node{{Parent: NoNode, Link: NoNode, Count: 1}},
	}

	for _, txn := range transactions {
		ordered := t.orderItems(txn.Items)
		if len(ordered) == 0 {
			continue
		}
		t.insert(ordered, txn.Count)
	}

	return t, true
}

// orderItems keeps the frequent items of set, sorted by header rank.
func (t *Tree) orderItems(set model.ItemSet) []string {
	ordered := make([]string, 0, set.Len())
	for _, item := range set.Items() {
		if _, ok := t.header.rank[item]; ok {
			ordered = append(ordered, item)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		return t.header.rank[ordered[i]] < t.header.rank[ordered[j]]
	})
	return ordered
}

// insert walks ordered items down from the root, sharing existing prefixes and
// adding count along the way.
func (t *Tree) insert(ordered []string, count int) {
	current := RootID
	for _, item := range ordered {
		key := edge{parent: current, item: item}
		if child, ok := t.childIndex[key]; ok {
			t.nodes[child].Count += count
			current = child
			continue
		}

		id := NodeID(len(t.nodes))
		t.nodes = append(t.nodes, Node{
			Item:   item,
			Count:  count,
			Parent: current,
			Link:   NoNode,
		})
		t.nodes[current].children = append(t.nodes[current].children, id)
		t.childIndex[key] = id
		t.header.link(t, item, id)
		current = id
	}
}

// Header returns the tree's header table.
func (t *Tree) Header() *HeaderTable {
	return t.header
}

// Len returns the number of nodes, including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node behind id.
func (t *Tree) Node(id NodeID) Node {
	return t.nodes[id]
}

// Links returns every node bearing item, following its node-link chain from
// the header entry.
func (t *Tree) Links(item string) []NodeID {
	e, ok := t.header.entries[item]
	if !ok {
		return nil
	}
	var ids []NodeID
	for id := e.Head; id != NoNode; id = t.nodes[id].Link {
		ids = append(ids, id)
	}
	return ids
}

// PrefixPath returns the items on the path from id's parent up to, but not
// including, the root. The nearest ancestor comes first.
func (t *Tree) PrefixPath(id NodeID) []string {
	var path []string
	for p := t.nodes[id].Parent; p != NoNode && p != RootID; p = t.nodes[p].Parent {
		path = append(path, t.nodes[p].Item)
	}
	return path
}

// ConditionalPatternBase collects the prefix path of every occurrence of item,
// weighted by that occurrence's count. Empty paths are left out.
func (t *Tree) ConditionalPatternBase(item string) []model.WeightedTransaction {
	var base []model.WeightedTransaction
	for _, id := range t.Links(item) {
		path := t.PrefixPath(id)
		if len(path) == 0 {
			continue
		}
		base = append(base, model.WeightedTransaction{
			Items: model.NewItemSet(path...),
			Count: t.nodes[id].Count,
		})
	}
	return base
}

// Dump writes the tree indented two spaces per level, one `item count` line
// per node.
func (t *Tree) Dump(w io.Writer) error {
	return t.dump(w, RootID, 0)
}

func (t *Tree) dump(w io.Writer, id NodeID, depth int) error {
	n := t.nodes[id]
	label := n.Item
	if n.IsRoot() {
		label = rootLabel
	}
	if _, err := fmt.Fprintf(w, "%s%s %d\n", strings.Repeat("  ", depth), label, n.Count); err != nil {
		return err
	}
	for _, child := range n.children {
		if err := t.dump(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

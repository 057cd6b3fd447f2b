package fptree

import "sort"

// HeaderEntry is the header-table record for one frequent item.
type HeaderEntry struct {
	Item  string
	Count int
	Head  NodeID
	tail  NodeID
}

// HeaderTable maps each frequent item of one tree to its total count and the
// head of its node-link chain. It lives exactly as long as its tree.
type HeaderTable struct {
	entries map[string]*HeaderEntry
	rank    map[string]int
}

func newHeaderTable(counts map[string]int) *HeaderTable {
	h := &HeaderTable{
		entries: make(map[string]*HeaderEntry, len(counts)),
		rank:    make(map[string]int, len(counts)),
	}
	for item, count := range counts {
		h.entries[item] = &HeaderEntry{Item: item, Count: count, Head: NoNode, tail: NoNode}
	}
	for i, item := range h.FrequencyOrder() {
		h.rank[item] = i
	}
	return h
}

// Len returns the number of frequent items in the table.
func (h *HeaderTable) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}

// Entry returns the record for item.
func (h *HeaderTable) Entry(item string) (HeaderEntry, bool) {
	e, ok := h.entries[item]
	if !ok {
		return HeaderEntry{}, false
	}
	return *e, true
}

// Count returns the total count of item, or 0 when it is not frequent.
func (h *HeaderTable) Count(item string) int {
	if e, ok := h.entries[item]; ok {
		return e.Count
	}
	return 0
}

// Items returns the table's items in ascending identifier order. This is the
// order in which the miner visits them.
func (h *HeaderTable) Items() []string {
	items := make([]string, 0, len(h.entries))
	for item := range h.entries {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

// FrequencyOrder returns the table's items by descending count, ties broken by
// ascending identifier. Transactions are inserted into the tree in this order.
func (h *HeaderTable) FrequencyOrder() []string {
	items := make([]string, 0, len(h.entries))
	for item := range h.entries {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		ci, cj := h.entries[items[i]].Count, h.entries[items[j]].Count
		if ci != cj {
			return ci > cj
		}
		return items[i] < items[j]
	})
	return items
}

// link appends id to the tail of item's node-link chain.
func (h *HeaderTable) link(t *Tree, item string, id NodeID) {
	e := h.entries[item]
	if e.Head == NoNode {
		e.Head = id
	} else {
		t.nodes[e.tail].Link = id
	}
	e.tail = id
}

// Package model defines the core data structures for the basket application.
package model

import (
	"sort"
	"strconv"
	"strings"
)

// ItemSet is an immutable, canonical set of item identifiers. Items are kept
// sorted in ascending order with no duplicates.
type ItemSet struct {
	items []string
}

// NewItemSet builds a canonical item set. Labels are opaque and kept verbatim;
// only empty labels are ignored.
func NewItemSet(items ...string) ItemSet {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return ItemSet{items: out}
}

// Items returns a copy of the set's items in ascending order.
func (s ItemSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of items in the set.
func (s ItemSet) Len() int {
	return len(s.items)
}

// Key returns a string uniquely identifying the set's contents. Each item is
// length-prefixed, so no label can make two different sets share a key.
func (s ItemSet) Key() string {
	var b strings.Builder
	for _, item := range s.items {
		b.WriteString(strconv.Itoa(len(item)))
		b.WriteByte(':')
		b.WriteString(item)
	}
	return b.String()
}

// Has reports whether item is in the set.
func (s ItemSet) Has(item string) bool {
	i := sort.SearchStrings(s.items, item)
	return i < len(s.items) && s.items[i] == item
}

// IsSubsetOf reports whether every item in s is also in other.
func (s ItemSet) IsSubsetOf(other ItemSet) bool {
	if len(s.items) > len(other.items) {
		return false
	}
	// Both sides are sorted, so a single merge pass is enough.
	j := 0
	for _, item := range s.items {
		for j < len(other.items) && other.items[j] < item {
			j++
		}
		if j == len(other.items) || other.items[j] != item {
			return false
		}
		j++
	}
	return true
}

// With returns a new set holding s plus item.
func (s ItemSet) With(item string) ItemSet {
	if s.Has(item) {
		return s
	}
	items := make([]string, 0, len(s.items)+1)
	items = append(items, s.items...)
	items = append(items, item)
	return NewItemSet(items...)
}

// Without returns a new set holding s minus item.
func (s ItemSet) Without(item string) ItemSet {
	items := make([]string, 0, len(s.items))
	for _, it := range s.items {
		if it != item {
			items = append(items, it)
		}
	}
	return ItemSet{items: items}
}

// Equal reports whether both sets hold the same items.
func (s ItemSet) Equal(other ItemSet) bool {
	return s.Key() == other.Key()
}

func (s ItemSet) String() string {
	return "{" + strings.Join(s.items, ", ") + "}"
}

// FrequentItemSet is an item set whose support met the mining threshold.
type FrequentItemSet struct {
	Items   ItemSet
	Support int
}

// SortBySize orders item sets by ascending cardinality. The sort is stable, so
// sets of equal size keep their discovery order.
func SortBySize(sets []ItemSet) {
	sort.SliceStable(sets, func(i, j int) bool {
		return sets[i].Len() < sets[j].Len()
	})
}

package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Transaction is one basket of discrete items, as loaded from a source.
type Transaction struct {
	ID    string   `json:"id,omitempty" yaml:"id,omitempty"`
	Hash  string   `json:"-" yaml:"-"`
	Items []string `json:"items" yaml:"items"`
}

// NewTransaction builds a transaction from raw item labels. Blank labels are
// dropped and duplicates collapse, so the result is always a set.
func NewTransaction(id string, items ...string) Transaction {
	t := Transaction{
		ID:    id,
		Items: NewItemSet(items...).Items(),
	}
	t.Hash = t.GenerateHash()
	return t
}

// GenerateHash creates a content hash for duplicate detection. Two transactions
// with the same item set hash equally regardless of item order or ID.
func (t *Transaction) GenerateHash() string {
	set := NewItemSet(t.Items...)
	hash := sha256.Sum256([]byte(set.Key()))
	return fmt.Sprintf("%x", hash)
}

// ItemSet returns the transaction's items as a canonical set.
func (t Transaction) ItemSet() ItemSet {
	return NewItemSet(t.Items...)
}

// Contains reports whether every item of s occurs in the transaction.
func (t Transaction) Contains(s ItemSet) bool {
	return s.IsSubsetOf(t.ItemSet())
}

func (t Transaction) String() string {
	return "{" + strings.Join(t.Items, ", ") + "}"
}

// WeightedTransaction is a deduplicated transaction carrying how many times it
// occurred. Conditional pattern bases are expressed in the same shape.
type WeightedTransaction struct {
	Items ItemSet
	Count int
}

// Compact merges identical transactions into weighted transactions. The output
// keeps the order in which each distinct item set first appeared. Transactions
// with no items are skipped.
func Compact(transactions []Transaction) []WeightedTransaction {
	index := make(map[string]int, len(transactions))
	weighted := make([]WeightedTransaction, 0, len(transactions))

	for _, txn := range transactions {
		set := txn.ItemSet()
		if set.Len() == 0 {
			continue
		}
		key := set.Key()
		if i, ok := index[key]; ok {
			weighted[i].Count++
			continue
		}
		index[key] = len(weighted)
		weighted = append(weighted, WeightedTransaction{Items: set, Count: 1})
	}

	return weighted
}

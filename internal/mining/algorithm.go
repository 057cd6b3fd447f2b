package mining

import (
	"errors"
	"fmt"

	"github.com/Veraticus/market-basket/internal/model"
)

// Algorithm names a frequent item set mining strategy.
type Algorithm string

const (
	// AlgorithmFPGrowth mines with an FP-tree and conditional trees.
	AlgorithmFPGrowth Algorithm = "fpgrowth"
	// AlgorithmApriori mines with level-wise candidate generation.
	AlgorithmApriori Algorithm = "apriori"
)

// ErrUnknownAlgorithm is returned for an unrecognized algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown mining algorithm")

// ParseAlgorithm validates an algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case AlgorithmFPGrowth, AlgorithmApriori:
		return Algorithm(name), nil
	case "":
		return AlgorithmFPGrowth, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
}

// Mine runs the named algorithm and returns item sets in discovery order.
func Mine(alg Algorithm, transactions []model.Transaction, minSupport int) ([]model.FrequentItemSet, error) {
	switch alg {
	case AlgorithmFPGrowth, "":
		sets, _ := FPGrowth(transactions, minSupport)
		return sets, nil
	case AlgorithmApriori:
		return Apriori(transactions, minSupport), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
}

// Package source reads transactions from CSV, JSON and YAML files.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/model"
)

// Format identifies a transaction file encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, path)
	}
}

// Load reads every transaction in the file at path.
func Load(path string) ([]model.Transaction, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // user-provided input file
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	transactions, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return transactions, nil
}

// Read decodes transactions from r in the given format.
func Read(r io.Reader, format Format) ([]model.Transaction, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, format)
	}
}

// basket is the decoded shape shared by the JSON and YAML readers: either a
// bare item list or an object with an optional id.
type basket struct {
	ID    string   `json:"id" yaml:"id"`
	Items []string `json:"items" yaml:"items"`
}

// finish converts decoded baskets into transactions. Missing IDs become the
// one-based position in the file.
func finish(baskets []basket) []model.Transaction {
	transactions := make([]model.Transaction, 0, len(baskets))
	for i, b := range baskets {
		id := strings.TrimSpace(b.ID)
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		transactions = append(transactions, model.NewTransaction(id, cleanItems(b.Items)...))
	}
	return transactions
}

// cleanItems trims surrounding whitespace from item labels read from a file.
// Labels that end up empty are dropped by model.NewTransaction.
func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.TrimSpace(item))
	}
	return out
}

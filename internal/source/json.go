package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/market-basket/internal/model"
)

// ReadJSON reads a JSON array whose elements are either item arrays
// (["milk", "bread"]) or objects ({"id": "7", "items": ["milk"]}).
func ReadJSON(r io.Reader) ([]model.Transaction, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	baskets := make([]basket, 0, len(raw))
	for i, msg := range raw {
		var b basket
		trimmed := bytes.TrimSpace(msg)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &b.Items); err != nil {
				return nil, fmt.Errorf("decoding basket %d: %w", i+1, err)
			}
		} else if err := json.Unmarshal(trimmed, &b); err != nil {
			return nil, fmt.Errorf("decoding basket %d: %w", i+1, err)
		}
		baskets = append(baskets, b)
	}

	return finish(baskets), nil
}

package source

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/market-basket/internal/model"
)

// ReadYAML reads a YAML sequence whose entries are either item sequences or
// mappings with id and items keys.
func ReadYAML(r io.Reader) ([]model.Transaction, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("decoding YAML: line %d: expected a sequence of baskets", root.Line)
	}

	baskets := make([]basket, 0, len(root.Content))
	for _, node := range root.Content {
		var b basket
		var err error
		switch node.Kind {
		case yaml.SequenceNode:
			err = node.Decode(&b.Items)
		case yaml.MappingNode:
			err = node.Decode(&b)
		default:
			err = errors.New("expected a list or mapping")
		}
		if err != nil {
			return nil, fmt.Errorf("decoding basket at line %d: %w", node.Line, err)
		}
		baskets = append(baskets, b)
	}

	return finish(baskets), nil
}

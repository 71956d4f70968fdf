// Package fixtures reads seed records from YAML.
//
// A file holds one or more YAML documents. Each document is either a list of
// records or a mapping with the list under a "jokes" key:
//
//	- title: Why did the scarecrow win?
//	  body: He was outstanding in his field.
//	  category: dad
//	  author_email: ada@example.com
//
// Records come back as plain maps in file order; checking them is left to
// the dto engine.
package fixtures

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load decodes every document of r into records.
func Load(r io.Reader) ([]map[string]any, error) {
	dec := yaml.NewDecoder(r)
	var records []map[string]any
	for doc := 0; ; doc++ {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}
		items, err := decodeDocument(&node)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}
		records = append(records, items...)
	}
}

// LoadFile reads the records of the YAML file at path.
func LoadFile(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func decodeDocument(node *yaml.Node) ([]map[string]any, error) {
	root := node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	switch root.Kind {
	case yaml.SequenceNode:
	case yaml.MappingNode:
		var wrapped struct {
			Jokes yaml.Node `yaml:"jokes"`
		}
		if err := root.Decode(&wrapped); err != nil {
			return nil, err
		}
		if wrapped.Jokes.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: expected a list under \"jokes\"", root.Line)
		}
		root = &wrapped.Jokes
	default:
		return nil, fmt.Errorf("line %d: expected a list of records", root.Line)
	}

	records := make([]map[string]any, 0, len(root.Content))
	for _, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: record must be a mapping", item.Line)
		}
		var rec map[string]any
		if err := item.Decode(&rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", item.Line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

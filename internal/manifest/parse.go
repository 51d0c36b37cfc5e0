package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// maxDepth bounds nesting so alias cycles cannot recurse forever.
const maxDepth = 64

// ParseFile reads and parses the manifest at path. The file is closed on
// every return path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewParseError("cannot read manifest", err)
	}
	defer f.Close()

	return Parse(f)
}

// ParseBytes parses a manifest held in memory.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// Parse reads a single YAML document from r. It fails with a parse error
// if r cannot be read, the YAML is malformed, the stream holds more than
// one document, or the top-level node is not a mapping.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, NewParseError("manifest must be a YAML mapping", nil)
		}
		return nil, NewParseError("invalid YAML", err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, NewParseError("invalid YAML", err)
		}
		return nil, NewParseError("manifest must be a single YAML document", nil)
	}

	node := &root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, NewParseError("manifest must be a YAML mapping", nil)
		}
		node = node.Content[0]
	}
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return nil, NewParseError("manifest must be a YAML mapping", nil)
	}

	doc, err := decodeMapping(node, 0)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for i := 0; n != nil && n.Kind == yaml.AliasNode && i < maxDepth; i++ {
		n = n.Alias
	}
	return n
}

func decodeMapping(n *yaml.Node, depth int) (*Document, error) {
	if len(n.Content)%2 != 0 {
		return nil, NewParseError("malformed mapping", nil)
	}
	doc := newDocument(len(n.Content) / 2)
	for i := 0; i < len(n.Content); i += 2 {
		keyNode := resolveAlias(n.Content[i])
		if keyNode == nil || keyNode.Kind != yaml.ScalarNode {
			return nil, NewParseError(fmt.Sprintf("line %d: mapping key must be a scalar", n.Content[i].Line), nil)
		}
		value, err := decodeValue(n.Content[i+1], depth+1)
		if err != nil {
			return nil, err
		}
		if !doc.set(keyNode.Value, value) {
			return nil, NewParseError(fmt.Sprintf("line %d: duplicate key %q", keyNode.Line, keyNode.Value), nil)
		}
	}
	return doc, nil
}

func decodeValue(n *yaml.Node, depth int) (any, error) {
	if depth > maxDepth {
		return nil, NewParseError("document nesting too deep", nil)
	}
	n = resolveAlias(n)
	if n == nil {
		return nil, nil
	}

	switch n.Kind {
	case yaml.MappingNode:
		return decodeMapping(n, depth)
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeValue(c, depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.ScalarNode:
		// Timestamp-looking scalars decode to string here, which is what
		// the timestamp checks expect.
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, NewParseError(fmt.Sprintf("line %d: invalid scalar", n.Line), err)
		}
		return v, nil
	default:
		return nil, NewParseError(fmt.Sprintf("line %d: unsupported YAML node", n.Line), nil)
	}
}

package manifest

import (
	"fmt"

	"github.com/asaidimu/go-gqlbuilder/core/query"
	"gopkg.in/yaml.v3"
)

// enumTag marks a scalar that renders as a bare enum literal.
const enumTag = "!enum"

// Value holds a decoded argument or condition value. Scalars tagged !enum
// become query.Enum, at any depth.
type Value struct {
	V any
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := decodeNode(node)
	if err != nil {
		return err
	}
	v.V = decoded
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return encodeValue(v.V), nil
}

func decodeNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return decodeNode(node.Alias)
	case yaml.ScalarNode:
		if node.Tag == enumTag {
			return query.Enum(node.Value), nil
		}
		var scalar any
		if err := node.Decode(&scalar); err != nil {
			return nil, err
		}
		return scalar, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := decodeNode(child)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case yaml.MappingNode:
		fields := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var key string
			if err := node.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: object keys must be strings: %w", node.Content[i].Line, err)
			}
			value, err := decodeNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			fields[key] = value
		}
		return fields, nil
	}
	return nil, fmt.Errorf("line %d: unsupported value", node.Line)
}

func encodeValue(value any) any {
	switch v := value.(type) {
	case query.Enum:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: enumTag, Value: string(v)}
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, encodeValue(item))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = encodeValue(item)
		}
		return out
	}
	return value
}

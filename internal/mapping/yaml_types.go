package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML implements custom YAML unmarshaling for Output.
// Accepts either a scalar type name or a mapping with type and root.
func (o *Output) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var typ string

		err := node.Decode(&typ)
		if err != nil {
			return err
		}

		*o = Output{Type: typ}

		return nil

	case yaml.MappingNode:
		// Decode through an alias to avoid recursing into this method.
		type plain Output

		var p plain

		err := node.Decode(&p)
		if err != nil {
			return err
		}

		*o = Output(p)

		return nil

	default:
		return fmt.Errorf("expected output type or mapping, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for Output.
// Outputs the bare type when no root is set.
func (o Output) MarshalYAML() (any, error) {
	if o.Root == "" {
		return o.Type, nil
	}

	type plain Output

	return plain(o), nil
}

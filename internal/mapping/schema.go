package mapping

import "strings"

// Output types.
const (
	OutputJSON = "json"
	OutputXML  = "xml"
)

// DefaultXMLRoot is the root element used when output.root is not set.
const DefaultXMLRoot = "message"

// Content types produced by Transform.
const (
	ContentTypeJSON = "application/json"
	ContentTypeXML  = "application/xml"
)

// Document is the root structure of a mapping document.
type Document struct {
	// CartridgeID is informational; the resolver decides which document is used.
	CartridgeID string `yaml:"cartridgeId,omitempty"`
	// Output selects the serialization of the mapped structure.
	Output Output `yaml:"output"`
	// Validations run before any mapping, in order.
	Validations []ValidationRule `yaml:"validations,omitempty"`
	// Mappings build the output, in order.
	Mappings []MappingRule `yaml:"mappings,omitempty"`
	// Metadata is carried along untouched.
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

// Output describes how the mapped structure is serialized.
// In YAML it is either a scalar type name or a mapping with type and root.
type Output struct {
	Type string `yaml:"type"`
	Root string `yaml:"root,omitempty"`
}

// IsXML reports whether the output is serialized as XML.
func (o Output) IsXML() bool {
	return strings.EqualFold(o.Type, OutputXML)
}

// ValidationRule is a single validation check.
type ValidationRule struct {
	// Path is a read path, optionally containing "[]" array markers.
	Path     string `yaml:"path"`
	Required bool   `yaml:"required,omitempty"`

	WhenPath   string  `yaml:"whenPath,omitempty"`
	WhenEquals *string `yaml:"whenEquals,omitempty"`
	WhenExists *bool   `yaml:"whenExists,omitempty"`

	Equals    *string  `yaml:"equals,omitempty"`
	MinLength *int     `yaml:"minLength,omitempty"`
	MaxLength *int     `yaml:"maxLength,omitempty"`
	Pattern   string   `yaml:"pattern,omitempty"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
}

// HasGuard reports whether the rule is conditional.
func (r *ValidationRule) HasGuard() bool {
	return r.WhenPath != ""
}

// MappingRule copies one value from the input into the output.
type MappingRule struct {
	// Source is a read path ($.a.b).
	Source string `yaml:"source"`
	// Target is a write path (a.b).
	Target   string  `yaml:"target"`
	Required bool    `yaml:"required,omitempty"`
	Default  *string `yaml:"defaultValue,omitempty"`
}

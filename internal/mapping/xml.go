package mapping

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"unicode"

	"cartridge-engine/internal/common"
)

// EncodeXML serializes m as an XML document with the given root element.
// Nested maps become child elements, list values repeat their element and
// nil values produce empty elements. Keys of plain maps are sorted.
func EncodeXML(root string, m *OrderedMap) (string, error) {
	var buf bytes.Buffer

	enc := xml.NewEncoder(&buf)

	err := encodeElement(enc, root, m)
	if err != nil {
		return "", err
	}

	err = enc.Flush()
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

func encodeElement(enc *xml.Encoder, name string, v any) error {
	if !validXMLName(name) {
		return fmt.Errorf("invalid XML element name %q", name)
	}

	if list, ok := v.([]any); ok {
		for _, item := range list {
			err := encodeElement(enc, name, item)
			if err != nil {
				return err
			}
		}

		return nil
	}

	start := xml.StartElement{Name: xml.Name{Local: name}}

	err := enc.EncodeToken(start)
	if err != nil {
		return err
	}

	switch t := v.(type) {
	case nil:
	case *OrderedMap:
		for _, k := range t.keys {
			err = encodeElement(enc, k, t.values[k])
			if err != nil {
				return err
			}
		}
	case map[string]any:
		for _, k := range sortedKeys(t) {
			err = encodeElement(enc, k, t[k])
			if err != nil {
				return err
			}
		}
	default:
		err = enc.EncodeToken(xml.CharData(common.Stringify(t)))
		if err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}

// validXMLName accepts names made of letters, digits, '_', '-' and '.',
// starting with a letter or '_'.
func validXMLName(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		default:
			return false
		}
	}

	return true
}

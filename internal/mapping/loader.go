package mapping

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/resource"
)

// ErrEmptyDocument is returned by Parse when the data holds no document.
var ErrEmptyDocument = errors.New("empty mapping document")

// Parse parses YAML data into a Document.
func Parse(data []byte) (*Document, error) {
	var doc *Document

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	if doc == nil {
		return nil, ErrEmptyDocument
	}

	// Apply defaults and normalize
	applyDefaults(doc)

	return doc, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(doc *Document) {
	doc.Output.Type = strings.TrimSpace(doc.Output.Type)
	if doc.Output.Type == "" {
		doc.Output.Type = OutputJSON
	}

	doc.Output.Root = strings.TrimSpace(doc.Output.Root)
	if doc.Output.IsXML() && doc.Output.Root == "" {
		doc.Output.Root = DefaultXMLRoot
	}
}

// Marshal serializes a Document to YAML.
func Marshal(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// Loader loads mapping documents through a resource.Loader and caches them
// by path. Cached documents are shared and must be treated as read-only.
type Loader struct {
	res   resource.Loader
	cache sync.Map // path -> *Document
}

// NewLoader creates a Loader reading through res.
func NewLoader(res resource.Loader) *Loader {
	return &Loader{res: res}
}

// Load returns the document at path, reading it on first use.
func (l *Loader) Load(path string) (*Document, error) {
	if cached, ok := l.cache.Load(path); ok {
		return cached.(*Document), nil
	}

	doc, err := l.read(path)
	if err != nil {
		return nil, err
	}

	actual, _ := l.cache.LoadOrStore(path, doc)

	return actual.(*Document), nil
}

func (l *Loader) read(path string) (*Document, error) {
	if !l.res.Exists(path) {
		return nil, diagnostic.Functional(diagnostic.CodeMappingNotFound, diagnostic.StepValidation, "",
			"mapping YAML not found: %s", path)
	}

	data, err := l.res.Read(path)
	if err != nil {
		return nil, diagnostic.Technical(diagnostic.CodeMappingReadFailed, diagnostic.StepValidation, "",
			"failed to read mapping YAML: %s", path).Wrap(err)
	}

	doc, err := Parse(data)
	if errors.Is(err, ErrEmptyDocument) {
		return nil, diagnostic.Functional(diagnostic.CodeMappingEmpty, diagnostic.StepValidation, "",
			"empty mapping YAML: %s", path)
	}

	if err != nil {
		return nil, diagnostic.Technical(diagnostic.CodeMappingReadFailed, diagnostic.StepValidation, "",
			"failed to read mapping YAML: %s", path).Wrap(err)
	}

	return doc, nil
}

// Clear drops every cached document.
func (l *Loader) Clear() {
	l.cache.Clear()
}

// Len returns the number of cached documents.
func (l *Loader) Len() int {
	n := 0

	l.cache.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}

package enrich

import (
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/resource"
)

// Document is the root structure of an enrichment document.
type Document struct {
	CartridgeID string  `yaml:"cartridgeId,omitempty"`
	Rules       []*Rule `yaml:"rules"`
}

// Rule is one enrichment step. Exactly one of Set, Copy or Call is expected.
type Rule struct {
	When *When `yaml:"when,omitempty"`
	Set  *Set  `yaml:"set,omitempty"`
	Copy *Copy `yaml:"copy,omitempty"`
	Call *Call `yaml:"call,omitempty"`
}

// When guards a rule.
type When struct {
	Path   string  `yaml:"path"`
	Equals *string `yaml:"equals,omitempty"`
	Exists *bool   `yaml:"exists,omitempty"`
}

// Set writes a literal or a token value.
type Set struct {
	Target string `yaml:"target"`
	Value  any    `yaml:"value"`
}

// Copy copies a value between paths.
type Copy struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Call invokes a registered function.
type Call struct {
	Bean   string `yaml:"bean"`
	Method string `yaml:"method"`
	Target string `yaml:"target,omitempty"`
}

// Name returns "bean.method".
func (c *Call) Name() string {
	return c.Bean + "." + c.Method
}

// ErrEmptyDocument is returned by Parse when the data holds no document.
var ErrEmptyDocument = errors.New("empty enrichment document")

// Parse parses YAML data into a Document.
func Parse(data []byte) (*Document, error) {
	var doc *Document

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse enrichment YAML: %w", err)
	}

	if doc == nil {
		return nil, ErrEmptyDocument
	}

	return doc, nil
}

// Loader loads optional enrichment documents and caches both present and
// absent outcomes by path.
type Loader struct {
	res   resource.Loader
	cache sync.Map // path -> *Document (nil when absent)
}

// NewLoader creates a Loader reading through res.
func NewLoader(res resource.Loader) *Loader {
	return &Loader{res: res}
}

// LoadOptional returns the document at path and whether it exists. A missing
// or empty file is a cached absence. Read failures are TECHNICAL
// enrich.readFailed errors and are not cached.
func (l *Loader) LoadOptional(path string) (*Document, bool, error) {
	if cached, ok := l.cache.Load(path); ok {
		doc := cached.(*Document)
		return doc, doc != nil, nil
	}

	doc, err := l.read(path)
	if err != nil {
		return nil, false, err
	}

	actual, _ := l.cache.LoadOrStore(path, doc)
	doc = actual.(*Document)

	return doc, doc != nil, nil
}

func (l *Loader) read(path string) (*Document, error) {
	if !l.res.Exists(path) {
		return nil, nil
	}

	data, err := l.res.Read(path)
	if err != nil {
		return nil, readFailed(path, err)
	}

	doc, err := Parse(data)
	if errors.Is(err, ErrEmptyDocument) {
		return nil, nil
	}

	if err != nil {
		return nil, readFailed(path, err)
	}

	return doc, nil
}

func readFailed(path string, err error) *diagnostic.Error {
	return diagnostic.Technical(diagnostic.CodeEnrichReadFailed, diagnostic.StepEnrichment, "",
		"failed to read enrichment YAML: %s", path).Wrap(err)
}

// Clear drops every cached outcome.
func (l *Loader) Clear() {
	l.cache.Clear()
}

// Len returns the number of cached outcomes, absences included.
func (l *Loader) Len() int {
	n := 0

	l.cache.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}

// Package resource abstracts where cartridge and catalog documents live.
//
// The engine only needs two capabilities: checking that a document exists and
// reading its bytes. Dir serves them from the local filesystem and Memory from
// an in-process map, which is mainly useful in tests because it counts every
// access.
package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by Read when no document exists at the path.
var ErrNotFound = errors.New("resource not found")

// Loader fetches documents addressed by slash-separated path strings.
type Loader interface {
	// Exists reports whether a document exists at p.
	Exists(p string) bool
	// Read returns the document bytes, or an error wrapping ErrNotFound.
	Read(p string) ([]byte, error)
}

// Dir serves documents from a directory on the local filesystem.
// Relative paths are resolved against Root; absolute paths are used as is.
type Dir struct {
	Root string
}

func (d Dir) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) || d.Root == "" {
		return p
	}

	return filepath.Join(d.Root, p)
}

// Exists implements Loader.
func (d Dir) Exists(p string) bool {
	info, err := os.Stat(d.resolve(p))
	return err == nil && !info.IsDir()
}

// Read implements Loader.
func (d Dir) Read(p string) ([]byte, error) {
	data, err := os.ReadFile(d.resolve(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}

	return data, nil
}

// Memory is an in-process Loader that records how often each path was
// checked or read. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	docs   map[string][]byte
	exists map[string]int
	reads  map[string]int
}

// NewMemory creates a Memory loader seeded with docs.
func NewMemory(docs map[string]string) *Memory {
	m := &Memory{
		docs:   make(map[string][]byte, len(docs)),
		exists: make(map[string]int),
		reads:  make(map[string]int),
	}

	for k, v := range docs {
		m.docs[k] = []byte(v)
	}

	return m
}

// Put adds or replaces a document.
func (m *Memory) Put(p, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[p] = []byte(content)
}

// Delete removes a document.
func (m *Memory) Delete(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, p)
}

// Exists implements Loader.
func (m *Memory) Exists(p string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exists[p]++
	_, ok := m.docs[p]

	return ok
}

// Read implements Loader.
func (m *Memory) Read(p string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads[p]++

	data, ok := m.docs[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}

	return append([]byte(nil), data...), nil
}

// Reads returns how many times p was read.
func (m *Memory) Reads(p string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.reads[p]
}

// ExistsChecks returns how many times p was checked for existence.
func (m *Memory) ExistsChecks(p string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.exists[p]
}

// TotalAccesses returns the number of Exists and Read calls across all paths.
func (m *Memory) TotalAccesses() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, n := range m.exists {
		total += n
	}

	for _, n := range m.reads {
		total += n
	}

	return total
}

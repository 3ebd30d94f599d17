package fieldpath

import (
	"fmt"
	"strings"
	"sync"

	"cartridge-engine/internal/common"
)

// Segment is one step of a read path.
type Segment struct {
	// Key is the map key for this step.
	Key string
	// Index is the list index when Key is purely numeric, otherwise -1.
	Index int
}

// ReadPath is a parsed read path. A ReadPath with no segments addresses the root.
type ReadPath struct {
	Raw      string
	Segments []Segment
}

// WritePath is a parsed write path.
type WritePath struct {
	Raw  string
	Keys []string
}

// Cache memoizes parsed paths by their literal string.
// The zero value is ready to use and safe for concurrent use.
type Cache struct {
	reads  sync.Map // string -> readEntry
	writes sync.Map // string -> WritePath
}

type readEntry struct {
	path ReadPath
	err  error
}

// defaultCache backs the package-level Get and Put.
var defaultCache Cache

// ParseRead parses a read path. "$" (or an empty path) addresses the root;
// anything else must start with "$.".
func ParseRead(path string) (ReadPath, error) {
	p := strings.TrimSpace(path)
	if p == "" || p == "$" {
		return ReadPath{Raw: path}, nil
	}

	if len(p) < 3 || p[0] != '$' || p[1] != '.' {
		return ReadPath{}, fmt.Errorf("invalid read path %q: must start with '$.'", path)
	}

	keys := splitByDot(p, 2)
	segments := make([]Segment, len(keys))

	for i, k := range keys {
		segments[i] = Segment{Key: k, Index: parseIndex(k)}
	}

	return ReadPath{Raw: path, Segments: segments}, nil
}

// ParseWrite parses a write path. An empty path yields no keys.
func ParseWrite(path string) WritePath {
	if path == "" {
		return WritePath{Raw: path}
	}

	return WritePath{Raw: path, Keys: splitByDot(path, 0)}
}

// Read returns the parsed read path, parsing and caching it on first use.
func (c *Cache) Read(path string) (ReadPath, error) {
	if v, ok := c.reads.Load(path); ok {
		e := v.(readEntry)
		return e.path, e.err
	}

	rp, err := ParseRead(path)
	c.reads.Store(path, readEntry{path: rp, err: err})

	return rp, err
}

// Write returns the parsed write path, parsing and caching it on first use.
func (c *Cache) Write(path string) WritePath {
	if v, ok := c.writes.Load(path); ok {
		return v.(WritePath)
	}

	wp := ParseWrite(path)
	c.writes.Store(path, wp)

	return wp
}

// Get evaluates path against root. It returns nil for blank or malformed paths
// and for anything that does not resolve.
func (c *Cache) Get(root any, path string) any {
	if common.IsBlank(path) {
		return nil
	}

	rp, err := c.Read(path)
	if err != nil {
		return nil
	}

	return rp.Eval(root)
}

// Put writes value at path inside root. A blank path is a no-op.
func (c *Cache) Put(root map[string]any, path string, value any) {
	if path == "" || root == nil {
		return
	}

	c.Write(path).Assign(root, value)
}

// Get evaluates path against root using the shared cache.
func Get(root any, path string) any {
	return defaultCache.Get(root, path)
}

// Put writes value at path inside root using the shared cache.
func Put(root map[string]any, path string, value any) {
	defaultCache.Put(root, path, value)
}

// Eval walks the path from root.
func (p ReadPath) Eval(root any) any {
	cur := root
	for _, seg := range p.Segments {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[seg.Key]
		case []any:
			if seg.Index < 0 || seg.Index >= len(node) {
				return nil
			}

			cur = node[seg.Index]
		default:
			return nil
		}

		if cur == nil {
			return nil
		}
	}

	return cur
}

// IsRoot returns true if the path addresses the whole root.
func (p ReadPath) IsRoot() bool {
	return len(p.Segments) == 0
}

// Assign writes value at the path, creating intermediate maps.
func (p WritePath) Assign(root map[string]any, value any) {
	if len(p.Keys) == 0 {
		return
	}

	cur := root
	last := len(p.Keys) - 1

	for _, key := range p.Keys[:last] {
		next, ok := cur[key].(map[string]any)
		if !ok {
			next = make(map[string]any, 4)
			cur[key] = next
		}

		cur = next
	}

	cur[p.Keys[last]] = value
}

// SplitArray splits "list[].field" into ("list", "field", true).
// The element path is returned as a read path relative to the element
// ("$" when the marker is last). Paths without "[]" report false.
func SplitArray(path string) (listPath, elemPath string, ok bool) {
	idx := strings.Index(path, "[]")
	if idx < 0 {
		return "", "", false
	}

	listPath = path[:idx]
	rest := path[idx+2:]

	switch {
	case rest == "":
		elemPath = "$"
	case rest[0] == '.':
		elemPath = "$" + rest
	default:
		elemPath = "$." + rest
	}

	return listPath, elemPath, true
}

// splitByDot splits s on '.' starting at offset, without regexp or extra passes.
func splitByDot(s string, offset int) []string {
	n := 1
	for i := offset; i < len(s); i++ {
		if s[i] == '.' {
			n++
		}
	}

	out := make([]string, 0, n)
	start := offset

	for i := offset; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}

	return append(out, s[start:])
}

// parseIndex returns the numeric value of an all-digit segment, or -1.
func parseIndex(seg string) int {
	if seg == "" || len(seg) > 9 {
		return -1
	}

	n := 0
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if c < '0' || c > '9' {
			return -1
		}

		n = n*10 + int(c-'0')
	}

	return n
}

// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jacoelho/xsd"

	"kenshin-cli/internal/issue"
)

// SearchPath is the ordered schema root list, highest precedence first.
// It is immutable after construction; the caches make it safe to share
// across goroutines.
type SearchPath struct {
	roots []string

	mu       sync.RWMutex
	resolved map[string]string
	compiled map[string]*xsd.Schema
}

// NewSearchPath builds a search path over the given roots, highest
// precedence first.
func NewSearchPath(roots []string) *SearchPath {
	return &SearchPath{
		roots:    append([]string(nil), roots...),
		resolved: make(map[string]string),
		compiled: make(map[string]*xsd.Schema),
	}
}

// Roots returns the configured roots in precedence order.
func (sp *SearchPath) Roots() []string {
	return append([]string(nil), sp.roots...)
}

// Resolve maps a logical schema name (a slash-separated path relative to a
// root, e.g. "hc08_V08.xsd" or "coreschemas/datatypes_hcgv08.xsd") to the
// concrete file in the highest-precedence root that carries it. Results are
// cached for the run.
func (sp *SearchPath) Resolve(name string) (string, error) {
	sp.mu.RLock()
	path, ok := sp.resolved[name]
	sp.mu.RUnlock()
	if ok {
		return path, nil
	}

	for _, root := range sp.roots {
		candidate := filepath.Join(root, filepath.FromSlash(name))
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		sp.mu.Lock()
		sp.resolved[name] = candidate
		sp.mu.Unlock()
		return candidate, nil
	}
	return "", &issue.SchemaResolutionError{Name: name, Roots: sp.Roots()}
}

// Compile loads and compiles the named schema through the search path,
// memoizing the result. Include and import references inside the schema
// resolve with the same per-file precedence as Resolve.
func (sp *SearchPath) Compile(name string) (*xsd.Schema, error) {
	sp.mu.RLock()
	s, ok := sp.compiled[name]
	sp.mu.RUnlock()
	if ok {
		return s, nil
	}

	if _, err := sp.Resolve(name); err != nil {
		return nil, err
	}
	s, err := xsd.Load(sp.FS(), name)
	if err != nil {
		return nil, err
	}
	sp.mu.Lock()
	sp.compiled[name] = s
	sp.mu.Unlock()
	return s, nil
}

// FS exposes the search path as a read-only filesystem: Open serves each
// name from the first root that carries it.
func (sp *SearchPath) FS() fs.FS {
	return multiRootFS{roots: sp.roots}
}

type multiRootFS struct {
	roots []string
}

func (m multiRootFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	for _, root := range m.roots {
		f, err := os.DirFS(root).Open(name)
		if err == nil {
			return f, nil
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

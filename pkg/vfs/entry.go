package vfs

import (
	"strings"
	"time"
)

// Kind discriminates the two entry types in the tree.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// entry is one node in the virtual tree. Sibling names are unique under
// case-insensitive comparison: the children map is keyed by the lowercased
// name while each child keeps its original spelling.
//
// For files, ciphertext/key/nonce hold the encrypted content and its fresh
// per-write key material; key and nonce are present whenever ciphertext is
// non-empty. Directories carry none of the three.
type entry struct {
	name     string
	kind     Kind
	owner    string
	size     int
	modified time.Time
	parent   *entry
	children map[string]*entry

	ciphertext []byte
	key        []byte
	nonce      []byte
}

func newDirectory(name, owner string, parent *entry) *entry {
	return &entry{
		name:     name,
		kind:     KindDirectory,
		owner:    owner,
		modified: time.Now(),
		parent:   parent,
		children: make(map[string]*entry),
	}
}

func newFile(name, owner string, parent *entry) *entry {
	return &entry{
		name:     name,
		kind:     KindFile,
		owner:    owner,
		modified: time.Now(),
		parent:   parent,
	}
}

// path reconstructs the entry's absolute virtual path by walking to the root.
func (e *entry) path() string {
	if e.parent == nil {
		return "/"
	}
	var segments []string
	for n := e; n.parent != nil; n = n.parent {
		segments = append(segments, n.name)
	}
	// Reverse into root-to-leaf order.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return "/" + strings.Join(segments, "/")
}

func (e *entry) child(name string) (*entry, bool) {
	c, ok := e.children[strings.ToLower(name)]
	return c, ok
}

func (e *entry) link(c *entry) {
	e.children[strings.ToLower(c.name)] = c
	e.modified = time.Now()
}

func (e *entry) unlink(name string) {
	delete(e.children, strings.ToLower(name))
	e.modified = time.Now()
}

// Info is a defensive snapshot of entry metadata. Callers cannot reach the
// live tree through it.
type Info struct {
	Name     string
	Path     string
	Kind     Kind
	Owner    string
	Size     int
	Modified time.Time
	Children int
}

func (e *entry) info() Info {
	return Info{
		Name:     e.name,
		Path:     e.path(),
		Kind:     e.kind,
		Owner:    e.owner,
		Size:     e.size,
		Modified: e.modified,
		Children: len(e.children),
	}
}

// IsDir reports whether the snapshot describes a directory.
func (i Info) IsDir() bool {
	return i.Kind == KindDirectory
}

package vfs

import (
	"sort"
	"strings"
	"sync"
	"time"

	"brackish/pkg/crypto"
	"brackish/pkg/opsec"
)

// Store is the encrypted in-memory entry tree. It is constructed explicitly
// and passed by handle into every command; there is no package-level tree.
//
// Concurrency: structural mutations (Mkdir, WriteFile, Delete) serialize on
// the write lock; read-only operations (ReadFile, List, Stat, ChildNames) run
// concurrently under the read lock. Every operation either fully commits or
// fully fails — no caller can observe a partially-mutated tree.
type Store struct {
	mu   sync.RWMutex
	root *entry
}

// NewStore returns an empty tree containing only the root directory "/".
func NewStore() *Store {
	return &Store{root: newDirectory("", "system", nil)}
}

// walk resolves a normalized path to its entry. A missing segment yields
// ErrNotFound; a file where more segments remain yields ErrTypeConflict.
func (s *Store) walk(path string) (*entry, error) {
	cur := s.root
	segments := Split(path)
	for i, seg := range segments {
		if cur.kind != KindDirectory {
			return nil, ErrTypeConflict
		}
		next, ok := cur.child(seg)
		if !ok {
			return nil, ErrNotFound
		}
		if next.kind != KindDirectory && i < len(segments)-1 {
			return nil, ErrTypeConflict
		}
		cur = next
	}
	return cur, nil
}

// Mkdir creates the directory at path, auto-creating any missing intermediate
// directories. Creating an existing directory is a no-op; a file occupying any
// segment fails with ErrTypeConflict before anything is created.
func (s *Store) Mkdir(path, owner string) error {
	path = Normalize(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.root
	for _, seg := range Split(path) {
		next, ok := cur.child(seg)
		if !ok {
			next = newDirectory(seg, owner, cur)
			cur.link(next)
		} else if next.kind != KindDirectory {
			return opErr("mkdir", path, ErrTypeConflict)
		}
		cur = next
	}
	return nil
}

// WriteFile encrypts plaintext under a fresh random key and nonce and stores
// it at path, overwriting any existing file there in full — there is no
// partial update. Missing parent directories are auto-created. The caller's
// plaintext buffer is shredded before WriteFile returns, on success and on
// every failure path alike; ownership of the buffer transfers to this call.
func (s *Store) WriteFile(path string, plaintext []byte, owner string) error {
	defer opsec.Shred(plaintext)

	path = Normalize(path)
	segments := Split(path)
	if len(segments) == 0 {
		return opErr("write", path, ErrTypeConflict)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the existing portion of the path before generating key
	// material or touching the tree.
	cur := s.root
	depth := 0
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur.child(seg)
		if !ok {
			break
		}
		if next.kind != KindDirectory {
			return opErr("write", path, ErrTypeConflict)
		}
		cur = next
		depth++
	}
	var target *entry
	if depth == len(segments)-1 {
		leaf, ok := cur.child(segments[len(segments)-1])
		if ok {
			if leaf.kind != KindFile {
				return opErr("write", path, ErrTypeConflict)
			}
			target = leaf
		}
	}

	// Encrypt before any structural change so a primitive failure leaves
	// the tree exactly as it was.
	key, err := crypto.RandomBytes(crypto.KeySize)
	if err != nil {
		return opErr("write", path, err)
	}
	nonce, err := crypto.RandomBytes(crypto.NonceSize)
	if err != nil {
		opsec.Shred(key)
		return opErr("write", path, err)
	}
	ciphertext, err := crypto.EncryptWithKey(key, nonce, plaintext)
	if err != nil {
		opsec.Shred(key)
		return opErr("write", path, err)
	}
	size := len(plaintext)

	// Commit: create any missing intermediate directories, then install the
	// new ciphertext and key material.
	for _, seg := range segments[depth : len(segments)-1] {
		next := newDirectory(seg, owner, cur)
		cur.link(next)
		cur = next
	}
	if target == nil {
		target = newFile(segments[len(segments)-1], owner, cur)
		cur.link(target)
	} else {
		opsec.Shred(target.ciphertext)
		opsec.Shred(target.key)
		opsec.Shred(target.nonce)
	}
	target.ciphertext = ciphertext
	target.key = key
	target.nonce = nonce
	target.size = size
	target.owner = owner
	target.modified = time.Now()
	return nil
}

// ReadFile decrypts and returns the file's plaintext. Decryption happens
// fresh on every call; no plaintext is cached anywhere in the store. The
// caller owns the returned buffer and should shred it when done. Directories
// and missing paths fail with ErrNotFound; corrupted or mismatched key
// material fails with ErrDecryptionFailed, never silent garbage.
func (s *Store) ReadFile(path string) ([]byte, error) {
	path = Normalize(path)

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.walk(path)
	if err != nil {
		return nil, opErr("read", path, err)
	}
	if e.kind != KindFile {
		return nil, opErr("read", path, ErrNotFound)
	}

	plaintext, err := crypto.DecryptWithKey(e.key, e.nonce, e.ciphertext)
	if err != nil {
		return nil, opErr("read", path, ErrDecryptionFailed)
	}
	return plaintext, nil
}

// List returns metadata snapshots for a directory's children, directories
// first and case-insensitively by name within each group. Listing a file
// returns that single entry.
func (s *Store) List(path string) ([]Info, error) {
	path = Normalize(path)

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.walk(path)
	if err != nil {
		return nil, opErr("list", path, err)
	}
	if e.kind == KindFile {
		return []Info{e.info()}, nil
	}

	infos := make([]Info, 0, len(e.children))
	for _, c := range e.children {
		infos = append(infos, c.info())
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].IsDir() != infos[j].IsDir() {
			return infos[i].IsDir()
		}
		return strings.ToLower(infos[i].Name) < strings.ToLower(infos[j].Name)
	})
	return infos, nil
}

// ChildNames returns a directory's child names (original spelling), sorted
// case-insensitively. Used by the wildcard expander.
func (s *Store) ChildNames(path string) ([]string, error) {
	path = Normalize(path)

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.walk(path)
	if err != nil {
		return nil, opErr("list", path, err)
	}
	if e.kind != KindDirectory {
		return nil, opErr("list", path, ErrTypeConflict)
	}

	names := make([]string, 0, len(e.children))
	for _, c := range e.children {
		names = append(names, c.name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names, nil
}

// Stat returns a defensive metadata snapshot for the entry at path.
func (s *Store) Stat(path string) (Info, error) {
	path = Normalize(path)

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.walk(path)
	if err != nil {
		return Info{}, opErr("stat", path, err)
	}
	return e.info(), nil
}

// Delete removes the entry at path. Files are removed unconditionally;
// directories only when empty unless recursive is set. Every descendant
// file's ciphertext and key material is shredded in place before the entry
// is unlinked, so nothing recoverable remains referenced. The root cannot
// be deleted.
func (s *Store) Delete(path string, recursive bool) error {
	path = Normalize(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "/" {
		return opErr("delete", path, ErrRootProtected)
	}
	e, err := s.walk(path)
	if err != nil {
		return opErr("delete", path, err)
	}
	if e.kind == KindDirectory && len(e.children) > 0 && !recursive {
		return opErr("delete", path, ErrNotEmpty)
	}

	shredSubtree(e)
	e.parent.unlink(e.name)
	return nil
}

// shredSubtree zeroes all secret material beneath e, files and descendants
// alike, before the subtree is cut loose.
func shredSubtree(e *entry) {
	if e.kind == KindFile {
		opsec.Shred(e.ciphertext)
		opsec.Shred(e.key)
		opsec.Shred(e.nonce)
		e.ciphertext = nil
		e.key = nil
		e.nonce = nil
		return
	}
	for _, c := range e.children {
		shredSubtree(c)
	}
}

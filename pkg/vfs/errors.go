package vfs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the path does not name an existing entry.
	ErrNotFound = errors.New("entry not found")

	// ErrTypeConflict indicates a file sits where a directory is needed,
	// or vice versa.
	ErrTypeConflict = errors.New("file/directory type conflict")

	// ErrNotEmpty indicates a non-recursive delete of a populated directory.
	ErrNotEmpty = errors.New("directory not empty")

	// ErrRootProtected indicates an attempt to delete the virtual root.
	ErrRootProtected = errors.New("root directory is protected")

	// ErrInvalidPath indicates a malformed path token.
	ErrInvalidPath = errors.New("invalid path")

	// ErrDecryptionFailed indicates corrupted ciphertext or mismatched key
	// material. It is always surfaced explicitly rather than returning
	// garbage plaintext.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Error wraps a store failure with the operation and the path it affected.
// The sentinel cause is reachable through errors.Is/errors.As via Unwrap.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("vfs: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("vfs: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opErr(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}

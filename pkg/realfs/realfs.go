// Package realfs is the host-filesystem adapter behind paths the resolver
// tags as real. It mirrors the store's operation set over the OS, and adds
// forensic-resistant deletion for material the operator stages on disk.
package realfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileEntry is a single directory listing entry.
type FileEntry struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Mode    string `json:"mode"`
	ModTime string `json:"mod_time"`
	IsDir   bool   `json:"is_dir"`
}

// FS performs real-filesystem operations. The zero value is usable;
// Passes defaults to 3 when unset.
type FS struct {
	// Passes is the number of random overwrite passes SecureDelete makes
	// before unlinking a file.
	Passes int
}

// New returns an adapter with the default overwrite pass count.
func New() *FS {
	return &FS{Passes: 3}
}

// Exists reports whether path names an existing file or directory.
func (f *FS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path names an existing directory.
func (f *FS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Stat returns a single entry's metadata.
func (f *FS) Stat(path string) (FileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileEntry{}, fmt.Errorf("realfs: stat %s: %w", path, err)
	}
	return FileEntry{
		Name:    info.Name(),
		Size:    info.Size(),
		Mode:    info.Mode().String(),
		ModTime: info.ModTime().Format(time.RFC3339),
		IsDir:   info.IsDir(),
	}, nil
}

// ReadFile returns the file's contents.
func (f *FS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("realfs: read %s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes data to path atomically: parent directories are created,
// the bytes land in a temp file first, then a rename swaps it into place.
func (f *FS) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("realfs: create directory %s: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0640); err != nil {
		return fmt.Errorf("realfs: write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("realfs: rename into %s: %w", path, err)
	}
	return nil
}

// Mkdir creates the directory at path along with any missing parents.
func (f *FS) Mkdir(path string) error {
	if err := os.MkdirAll(path, 0750); err != nil {
		return fmt.Errorf("realfs: mkdir %s: %w", path, err)
	}
	return nil
}

// ListNames returns the directory's child names sorted case-insensitively.
// It satisfies the expander's DirLister.
func (f *FS) ListNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("realfs: list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names, nil
}

// List returns directory entries with metadata, directories first and
// case-insensitively by name within each group — the same ordering the
// virtual store presents.
func (f *FS) List(dir string) ([]FileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("realfs: list %s: %w", dir, err)
	}

	files := make([]FileEntry, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			// Skip entries we cannot stat.
			continue
		}
		files = append(files, FileEntry{
			Name:    entry.Name(),
			Size:    info.Size(),
			Mode:    info.Mode().String(),
			ModTime: info.ModTime().Format(time.RFC3339),
			IsDir:   entry.IsDir(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].IsDir != files[j].IsDir {
			return files[i].IsDir
		}
		return strings.ToLower(files[i].Name) < strings.ToLower(files[j].Name)
	})
	return files, nil
}

// Delete removes a file, or a directory when recursive is set. A populated
// directory without recursive fails the same way the store's delete does.
func (f *FS) Delete(path string, recursive bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("realfs: delete %s: %w", path, err)
	}
	if info.IsDir() && recursive {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("realfs: delete %s: %w", path, err)
		}
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("realfs: delete %s: %w", path, err)
	}
	return nil
}

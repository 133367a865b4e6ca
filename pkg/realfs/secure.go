package realfs

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// SecureDelete overwrites the file with Passes rounds of random data, syncing
// after each round, then removes it. This makes recovery from disk
// significantly harder than a plain unlink.
func (f *FS) SecureDelete(path string) error {
	passes := f.Passes
	if passes <= 0 {
		passes = 3
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("realfs: stat %s: %w", path, err)
	}

	size := info.Size()
	if size == 0 {
		return os.Remove(path)
	}

	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("realfs: open %s for overwrite: %w", path, err)
	}

	buf := make([]byte, 4096)
	for pass := 0; pass < passes; pass++ {
		if _, err := file.Seek(0, 0); err != nil {
			file.Close()
			return fmt.Errorf("realfs: seek failed on pass %d: %w", pass, err)
		}

		remaining := size
		for remaining > 0 {
			n := int64(len(buf))
			if remaining < n {
				n = remaining
			}
			if _, err := rand.Read(buf[:n]); err != nil {
				file.Close()
				return fmt.Errorf("realfs: rand read failed: %w", err)
			}
			written, err := file.Write(buf[:n])
			if err != nil {
				file.Close()
				return fmt.Errorf("realfs: overwrite failed on pass %d: %w", pass, err)
			}
			remaining -= int64(written)
		}

		// Flush each pass so the overwrite actually reaches the platter.
		if err := file.Sync(); err != nil {
			file.Close()
			return fmt.Errorf("realfs: sync failed on pass %d: %w", pass, err)
		}
	}
	file.Close()

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("realfs: remove %s: %w", path, err)
	}
	return nil
}

// SecureDeleteDir recursively secure-deletes every file under dir, then
// removes the emptied directory tree.
func (f *FS) SecureDeleteDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("realfs: read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := f.SecureDeleteDir(fullPath); err != nil {
				return err
			}
			continue
		}
		if err := f.SecureDelete(fullPath); err != nil {
			return err
		}
	}

	if err := os.Remove(dir); err != nil {
		return fmt.Errorf("realfs: remove directory %s: %w", dir, err)
	}
	return nil
}

// Timestomp copies atime and mtime from a reference file to the target path.
// Old system binaries such as /bin/ls make unsuspicious references.
func (f *FS) Timestomp(targetPath, referenceFile string) error {
	var stat unix.Stat_t
	if err := unix.Stat(referenceFile, &stat); err != nil {
		return fmt.Errorf("realfs: stat reference %s: %w", referenceFile, err)
	}

	times := []unix.Timespec{
		{Sec: stat.Atim.Sec, Nsec: stat.Atim.Nsec},
		{Sec: stat.Mtim.Sec, Nsec: stat.Mtim.Nsec},
	}
	if err := unix.UtimesNano(targetPath, times); err != nil {
		return fmt.Errorf("realfs: set timestamps on %s: %w", targetPath, err)
	}
	return nil
}

// TimestompToTime sets atime and mtime on path to the given time.
func (f *FS) TimestompToTime(path string, t time.Time) error {
	ts := unix.NsecToTimespec(t.UnixNano())
	if err := unix.UtimesNano(path, []unix.Timespec{ts, ts}); err != nil {
		return fmt.Errorf("realfs: set timestamps on %s: %w", path, err)
	}
	return nil
}

package realfs

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestWriteReadRoundTrip(t *testing.T) {
	fs := New()
	dir := t.TempDir()

	t.Run("write creates parents and reads back", func(t *testing.T) {
		path := filepath.Join(dir, "a", "b", "out.bin")
		data := []byte("staged payload")
		if err := fs.WriteFile(path, data); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		got, err := fs.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("write leaves no temp file behind", func(t *testing.T) {
		path := filepath.Join(dir, "clean.txt")
		if err := fs.WriteFile(path, []byte("x")); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if fs.Exists(path + ".tmp") {
			t.Fatal("temp file left behind after rename")
		}
	})

	t.Run("overwrite replaces content", func(t *testing.T) {
		path := filepath.Join(dir, "over.txt")
		if err := fs.WriteFile(path, []byte("first")); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := fs.WriteFile(path, []byte("second")); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		got, err := fs.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(got) != "second" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("read missing file fails", func(t *testing.T) {
		if _, err := fs.ReadFile(filepath.Join(dir, "nope")); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestExistsIsDirStat(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := fs.WriteFile(path, []byte("hello")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if !fs.Exists(path) || fs.Exists(filepath.Join(dir, "nope")) {
		t.Fatal("Exists wrong")
	}
	if !fs.IsDir(dir) || fs.IsDir(path) {
		t.Fatal("IsDir wrong")
	}

	entry, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if entry.Name != "f.txt" || entry.Size != 5 || entry.IsDir {
		t.Fatalf("got %+v", entry)
	}
}

func TestListNames(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	for _, name := range []string{"Zeta.txt", "alpha.txt", "README"} {
		if err := fs.WriteFile(filepath.Join(dir, name), []byte("x")); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	names, err := fs.ListNames(dir)
	if err != nil {
		t.Fatalf("ListNames: %v", err)
	}
	want := []string{"alpha.txt", "README", "Zeta.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v, want %v", names, want)
	}
}

func TestList(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	if err := fs.Mkdir(filepath.Join(dir, "build")); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	for _, name := range []string{"Zeta.txt", "alpha.txt"} {
		if err := fs.WriteFile(filepath.Join(dir, name), []byte("x")); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	entries, err := fs.List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := []string{"build", "alpha.txt", "Zeta.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("order = %v, want %v", names, want)
	}
	if !entries[0].IsDir {
		t.Fatal("directory not flagged")
	}
}

func TestDelete(t *testing.T) {
	fs := New()

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "f")
		if err := fs.WriteFile(path, []byte("x")); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := fs.Delete(path, false); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if fs.Exists(path) {
			t.Fatal("file survived delete")
		}
	})

	t.Run("populated directory needs recursive", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "sub")
		if err := fs.WriteFile(filepath.Join(sub, "f"), []byte("x")); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := fs.Delete(sub, false); err == nil {
			t.Fatal("populated directory removed without recursive")
		}
		if err := fs.Delete(sub, true); err != nil {
			t.Fatalf("recursive Delete: %v", err)
		}
		if fs.Exists(sub) {
			t.Fatal("directory survived recursive delete")
		}
	})

	t.Run("missing path fails", func(t *testing.T) {
		if err := fs.Delete(filepath.Join(t.TempDir(), "nope"), false); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestSecureDelete(t *testing.T) {
	fs := New()

	t.Run("removes the file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "secret.bin")
		if err := fs.WriteFile(path, bytes.Repeat([]byte{0xAA}, 10000)); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := fs.SecureDelete(path); err != nil {
			t.Fatalf("SecureDelete: %v", err)
		}
		if fs.Exists(path) {
			t.Fatal("file survived secure delete")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "empty")
		if err := fs.WriteFile(path, nil); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := fs.SecureDelete(path); err != nil {
			t.Fatalf("SecureDelete: %v", err)
		}
		if fs.Exists(path) {
			t.Fatal("file survived secure delete")
		}
	})

	t.Run("directory tree", func(t *testing.T) {
		dir := t.TempDir()
		root := filepath.Join(dir, "stash")
		for _, rel := range []string{"a.bin", "deep/b.bin"} {
			if err := fs.WriteFile(filepath.Join(root, rel), []byte("secret")); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
		}
		if err := fs.SecureDeleteDir(root); err != nil {
			t.Fatalf("SecureDeleteDir: %v", err)
		}
		if fs.Exists(root) {
			t.Fatal("tree survived secure delete")
		}
	})
}

func TestTimestomp(t *testing.T) {
	fs := New()
	dir := t.TempDir()

	t.Run("copies reference timestamps", func(t *testing.T) {
		ref := filepath.Join(dir, "ref")
		target := filepath.Join(dir, "target")
		if err := fs.WriteFile(ref, []byte("r")); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := fs.WriteFile(target, []byte("t")); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		past := time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC)
		if err := fs.TimestompToTime(ref, past); err != nil {
			t.Fatalf("TimestompToTime: %v", err)
		}
		if err := fs.Timestomp(target, ref); err != nil {
			t.Fatalf("Timestomp: %v", err)
		}

		info, err := os.Stat(target)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if !info.ModTime().Equal(past) {
			t.Fatalf("mtime = %v, want %v", info.ModTime(), past)
		}
	})

	t.Run("missing reference fails", func(t *testing.T) {
		target := filepath.Join(dir, "t2")
		if err := fs.WriteFile(target, []byte("t")); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := fs.Timestomp(target, filepath.Join(dir, "no-ref")); err == nil {
			t.Fatal("expected an error")
		}
	})
}

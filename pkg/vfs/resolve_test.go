package vfs

import (
	"errors"
	"testing"
)

func testResolver() *Resolver {
	return &Resolver{Home: "/home/operator"}
}

func TestResolveSchemeTokens(t *testing.T) {
	r := testResolver()
	realCwd := ResolvedPath{Namespace: NamespaceReal, Path: "/tmp"}

	t.Run("bare scheme is the virtual root", func(t *testing.T) {
		got, err := r.Resolve(realCwd, "vfs:")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Namespace != NamespaceVirtual || got.Path != "/" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("scheme wins over real cwd", func(t *testing.T) {
		got, err := r.Resolve(realCwd, "vfs:/docs/readme.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Namespace != NamespaceVirtual || got.Path != "/docs/readme.txt" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		got, err := r.Resolve(realCwd, "VFS:/docs")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Namespace != NamespaceVirtual || got.Path != "/docs" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("scheme with relative segments roots at the implicit root", func(t *testing.T) {
		got, err := r.Resolve(realCwd, "vfs:docs/notes")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Namespace != NamespaceVirtual || got.Path != "/docs/notes" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("scheme with backslashes", func(t *testing.T) {
		got, err := r.Resolve(realCwd, `vfs:\docs\readme.txt`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Path != "/docs/readme.txt" {
			t.Fatalf("got %+v", got)
		}
	})
}

func TestResolveRealRootedTokens(t *testing.T) {
	r := testResolver()
	virtualCwd := ResolvedPath{Namespace: NamespaceVirtual, Path: "/docs"}

	t.Run("drive-letter token against virtual cwd", func(t *testing.T) {
		got, err := r.Resolve(virtualCwd, `C:\Temp\loot.bin`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Namespace != NamespaceReal || got.Path != `C:\Temp\loot.bin` {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("drive letter with forward slashes canonicalizes", func(t *testing.T) {
		got, err := r.Resolve(virtualCwd, "C:/Temp/./sub/../loot.bin")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Path != `C:\Temp\loot.bin` {
			t.Fatalf("got %q", got.Path)
		}
	})

	t.Run("bare drive", func(t *testing.T) {
		got, err := r.Resolve(virtualCwd, "C:")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Namespace != NamespaceReal || got.Path != `C:\` {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("UNC token", func(t *testing.T) {
		got, err := r.Resolve(virtualCwd, `\\fileserver\share\tools`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Namespace != NamespaceReal || got.Path != `\\fileserver\share\tools` {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("leading separator", func(t *testing.T) {
		got, err := r.Resolve(virtualCwd, "/etc/hosts")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Namespace != NamespaceReal || got.Path != "/etc/hosts" {
			t.Fatalf("got %+v", got)
		}
	})
}

func TestResolveHomeTokens(t *testing.T) {
	r := testResolver()
	virtualCwd := VirtualRoot()

	t.Run("bare tilde", func(t *testing.T) {
		got, err := r.Resolve(virtualCwd, "~")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Namespace != NamespaceReal || got.Path != "/home/operator" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("tilde slash", func(t *testing.T) {
		got, err := r.Resolve(virtualCwd, "~/loot/c.bin")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Path != "/home/operator/loot/c.bin" {
			t.Fatalf("got %q", got.Path)
		}
	})

	t.Run("tilde backslash", func(t *testing.T) {
		got, err := r.Resolve(virtualCwd, `~\loot`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Path != "/home/operator/loot" {
			t.Fatalf("got %q", got.Path)
		}
	})

	t.Run("no home known fails cleanly", func(t *testing.T) {
		noHome := &Resolver{}
		_, err := noHome.Resolve(virtualCwd, "~/x")
		if !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("expected ErrInvalidPath, got %v", err)
		}
	})

	t.Run("tilde in the middle is not expansion", func(t *testing.T) {
		got, err := r.Resolve(virtualCwd, "docs/~backup")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Namespace != NamespaceVirtual || got.Path != "/docs/~backup" {
			t.Fatalf("got %+v", got)
		}
	})
}

func TestResolveInheritsCwd(t *testing.T) {
	r := testResolver()

	t.Run("relative token in virtual cwd", func(t *testing.T) {
		cwd := ResolvedPath{Namespace: NamespaceVirtual, Path: "/docs"}
		got, err := r.Resolve(cwd, "sub/file")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Namespace != NamespaceVirtual || got.Path != "/docs/sub/file" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("relative token in real cwd", func(t *testing.T) {
		cwd := ResolvedPath{Namespace: NamespaceReal, Path: "/tmp"}
		got, err := r.Resolve(cwd, "staging/a.bin")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Namespace != NamespaceReal || got.Path != "/tmp/staging/a.bin" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("dot-dot climbs the cwd", func(t *testing.T) {
		cwd := ResolvedPath{Namespace: NamespaceVirtual, Path: "/docs/tools"}
		got, err := r.Resolve(cwd, "../notes.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Path != "/docs/notes.txt" {
			t.Fatalf("got %q", got.Path)
		}
	})

	t.Run("empty token fails", func(t *testing.T) {
		_, err := r.Resolve(VirtualRoot(), "   ")
		if !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("expected ErrInvalidPath, got %v", err)
		}
	})
}

func TestResolvedPathRendering(t *testing.T) {
	r := testResolver()

	t.Run("virtual renders with scheme and round-trips", func(t *testing.T) {
		p := ResolvedPath{Namespace: NamespaceVirtual, Path: "/docs/readme.txt"}
		rendered := p.String()
		if rendered != "vfs:/docs/readme.txt" {
			t.Fatalf("got %q", rendered)
		}
		back, err := r.Resolve(ResolvedPath{Namespace: NamespaceReal, Path: "/tmp"}, rendered)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if back != p {
			t.Fatalf("round-trip mismatch: %+v != %+v", back, p)
		}
	})

	t.Run("real renders bare and round-trips", func(t *testing.T) {
		p := ResolvedPath{Namespace: NamespaceReal, Path: `C:\Temp`}
		back, err := r.Resolve(VirtualRoot(), p.String())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if back != p {
			t.Fatalf("round-trip mismatch: %+v != %+v", back, p)
		}
	})

	t.Run("child stays in namespace", func(t *testing.T) {
		v := VirtualRoot().Child("docs")
		if v.Namespace != NamespaceVirtual || v.Path != "/docs" {
			t.Fatalf("got %+v", v)
		}
		real := ResolvedPath{Namespace: NamespaceReal, Path: `C:\Temp`}.Child("loot.bin")
		if real.Path != `C:\Temp\loot.bin` {
			t.Fatalf("got %q", real.Path)
		}
	})
}

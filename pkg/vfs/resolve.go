package vfs

import (
	"os"
	"strings"
)

// Scheme is the reserved prefix that roots a token in the virtual namespace.
// The bare scheme denotes the virtual root itself.
const Scheme = "vfs:"

// Namespace identifies which backing store a resolved path addresses.
type Namespace int

const (
	NamespaceVirtual Namespace = iota
	NamespaceReal
)

func (n Namespace) String() string {
	switch n {
	case NamespaceVirtual:
		return "virtual"
	case NamespaceReal:
		return "real"
	default:
		return "unknown"
	}
}

// ResolvedPath is an absolute, normalized path tagged with its namespace.
// The tag is decided exactly once by the Resolver and carried explicitly
// through the call chain; callers dispatch on it and never re-inspect
// string prefixes.
type ResolvedPath struct {
	Namespace Namespace
	Path      string
}

// VirtualRoot returns the tagged root of the virtual tree.
func VirtualRoot() ResolvedPath {
	return ResolvedPath{Namespace: NamespaceVirtual, Path: "/"}
}

// String renders the path in the syntax the Resolver accepts, so rendering
// and resolving round-trip.
func (p ResolvedPath) String() string {
	if p.Namespace == NamespaceVirtual {
		return Scheme + p.Path
	}
	return p.Path
}

// Child resolves name directly beneath p, staying in p's namespace.
func (p ResolvedPath) Child(name string) ResolvedPath {
	if p.Namespace == NamespaceVirtual {
		return ResolvedPath{Namespace: NamespaceVirtual, Path: Join(p.Path, name)}
	}
	return ResolvedPath{Namespace: NamespaceReal, Path: canonicalReal(p.Path + "/" + name)}
}

// Resolver decides, for a raw user token and a tagged current directory,
// which backing store the final absolute path belongs to.
type Resolver struct {
	// Home is the real user home directory used for ~ expansion.
	Home string
}

// NewResolver returns a Resolver with Home taken from the environment.
// ~ expansion fails cleanly when no home directory is known.
func NewResolver() *Resolver {
	home, _ := os.UserHomeDir()
	return &Resolver{Home: home}
}

// Resolve applies the namespace rules in priority order:
//
//  1. an explicit scheme prefix pins the token to the virtual tree,
//     regardless of the current directory;
//  2. real-rooted syntax (drive-letter form, UNC form, a leading
//     separator) pins it to the real filesystem;
//  3. ~, ~/ and ~\ expand to the real user home directory;
//  4. anything else inherits the current directory's namespace and is
//     joined against it.
//
// Virtual-looking tokens short-circuit before any real-path handling, since
// real-path utilities may reject syntax that is only valid in the virtual
// scheme.
func (r *Resolver) Resolve(cwd ResolvedPath, token string) (ResolvedPath, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ResolvedPath{}, opErr("resolve", token, ErrInvalidPath)
	}

	if len(token) >= len(Scheme) && strings.EqualFold(token[:len(Scheme)], Scheme) {
		return ResolvedPath{Namespace: NamespaceVirtual, Path: Normalize(token[len(Scheme):])}, nil
	}

	if isRealRooted(token) {
		return ResolvedPath{Namespace: NamespaceReal, Path: canonicalReal(token)}, nil
	}

	if token == "~" || strings.HasPrefix(token, "~/") || strings.HasPrefix(token, `~\`) {
		if r.Home == "" {
			return ResolvedPath{}, opErr("resolve", token, ErrInvalidPath)
		}
		return ResolvedPath{Namespace: NamespaceReal, Path: canonicalReal(r.Home + "/" + token[1:])}, nil
	}

	if cwd.Namespace == NamespaceVirtual {
		return ResolvedPath{Namespace: NamespaceVirtual, Path: Join(cwd.Path, token)}, nil
	}
	return ResolvedPath{Namespace: NamespaceReal, Path: canonicalReal(cwd.Path + "/" + token)}, nil
}

// isRealRooted recognizes tokens rooted in the real-filesystem sense:
// drive-letter form (C:\ or C:/), UNC form (\\host\share), or a leading
// native separator.
func isRealRooted(token string) bool {
	if isDriveRooted(token) {
		return true
	}
	if strings.HasPrefix(token, `\\`) {
		return true
	}
	return strings.HasPrefix(token, "/") || strings.HasPrefix(token, `\`)
}

func isDriveRooted(token string) bool {
	if len(token) < 2 || token[1] != ':' {
		return false
	}
	c := token[0]
	if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
		return false
	}
	// "C:" alone or followed by a separator; "C:relative" is not rooted.
	return len(token) == 2 || token[2] == '/' || token[2] == '\\'
}

// canonicalReal collapses a real-rooted path into its native canonical form:
// backslash-separated for drive-letter and UNC roots, slash-separated
// otherwise. Dot segments collapse the same way Normalize collapses them.
func canonicalReal(p string) string {
	switch {
	case isDriveRooted(p):
		vol, rest := p[:2], p[2:]
		segments := splitSegments(rest)
		if len(segments) == 0 {
			return vol + `\`
		}
		return vol + `\` + strings.Join(segments, `\`)
	case strings.HasPrefix(p, `\\`):
		segments := splitSegments(p)
		return `\\` + strings.Join(segments, `\`)
	default:
		return Normalize(p)
	}
}

package vfs

import (
	"strings"
	"unicode/utf8"
)

// DirLister enumerates leaf names of a real directory. The realfs adapter
// implements it; the Expander stays decoupled from actual disk access.
type DirLister interface {
	ListNames(dir string) ([]string, error)
}

// Expander turns a single token containing * or ? into the concrete absolute
// paths matching it, within whichever namespace the Resolver assigns to the
// token's directory portion.
type Expander struct {
	Resolver *Resolver
	Store    *Store
	Real     DirLister
}

// HasMeta reports whether token contains a wildcard metacharacter.
func HasMeta(token string) bool {
	return strings.ContainsAny(token, "*?")
}

// Expand resolves token against cwd and returns the matching paths rendered
// in resolvable syntax. Option flags (leading dash), URLs, and tokens without
// metacharacters are passed through after normalization only, never
// pattern-matched. A pattern that matches nothing yields an empty, non-nil
// slice; whether that is an error is the caller's decision.
func (x *Expander) Expand(cwd ResolvedPath, token string) ([]string, error) {
	if strings.HasPrefix(token, "-") || strings.Contains(token, "://") {
		return []string{token}, nil
	}
	if !HasMeta(token) {
		resolved, err := x.Resolver.Resolve(cwd, token)
		if err != nil {
			return nil, err
		}
		return []string{resolved.String()}, nil
	}

	dir, leaf := splitToken(cwd, token)
	dirResolved, err := resolveDir(x.Resolver, cwd, dir)
	if err != nil {
		return nil, err
	}

	var names []string
	if dirResolved.Namespace == NamespaceVirtual {
		names, err = x.Store.ChildNames(dirResolved.Path)
	} else {
		names, err = x.Real.ListNames(dirResolved.Path)
	}
	if err != nil {
		return nil, err
	}

	matches := make([]string, 0, len(names))
	for _, name := range names {
		if Match(leaf, name) {
			matches = append(matches, dirResolved.Child(name).String())
		}
	}
	return matches, nil
}

// splitToken separates a token into its directory portion and leaf pattern.
// An empty directory portion means the pattern applies to cwd itself.
func splitToken(cwd ResolvedPath, token string) (dir, leaf string) {
	idx := strings.LastIndexAny(token, `/\`)
	if idx < 0 {
		// "vfs:*.txt" patterns the virtual root; the scheme carries its
		// own implicit root.
		if len(token) >= len(Scheme) && strings.EqualFold(token[:len(Scheme)], Scheme) {
			return Scheme, token[len(Scheme):]
		}
		return "", token
	}
	if idx == 0 {
		// Keep the root separator itself as the directory portion.
		return token[:1], token[1:]
	}
	return token[:idx], token[idx+1:]
}

func resolveDir(r *Resolver, cwd ResolvedPath, dir string) (ResolvedPath, error) {
	if dir == "" {
		return cwd, nil
	}
	return r.Resolve(cwd, dir)
}

// Match reports whether name matches pattern under case-insensitive
// comparison. '*' matches zero or more characters and consecutive stars
// collapse; '?' matches exactly one character, a character being one rune,
// so multi-byte names match the same way ASCII ones do. The recursive
// backtracking is exponential on pathological patterns, which is acceptable
// against the small directory listings it runs over.
func Match(pattern, name string) bool {
	return matchFold(strings.ToLower(pattern), strings.ToLower(name))
}

func matchFold(p, s string) bool {
	if p == "" {
		return s == ""
	}
	switch p[0] {
	case '*':
		for len(p) > 0 && p[0] == '*' {
			p = p[1:]
		}
		if p == "" {
			return true
		}
		for {
			if matchFold(p, s) {
				return true
			}
			if s == "" {
				return false
			}
			_, n := utf8.DecodeRuneInString(s)
			s = s[n:]
		}
	case '?':
		if s == "" {
			return false
		}
		_, n := utf8.DecodeRuneInString(s)
		return matchFold(p[1:], s[n:])
	default:
		if s == "" {
			return false
		}
		pr, pn := utf8.DecodeRuneInString(p)
		sr, sn := utf8.DecodeRuneInString(s)
		if pr != sr {
			return false
		}
		return matchFold(p[pn:], s[sn:])
	}
}

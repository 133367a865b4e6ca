package vfs

import "strings"

// Normalize canonicalizes a raw path string into an absolute, slash-separated
// virtual path. Both forward and backward slashes delimit segments, "." segments
// are dropped, and ".." pops the last accumulated segment without ever
// underflowing past the root. Empty or whitespace-only input maps to "/".
// Normalize is idempotent and never fails.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "/"
	}

	segments := splitSegments(raw)
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}

// Join resolves child against the absolute base path and normalizes the
// result. An absolute-looking child still resolves beneath base; callers that
// want re-rooting decide that before calling Join.
func Join(base, child string) string {
	return Normalize(base + "/" + child)
}

// Split returns the normalized path's segments in root-to-leaf order.
// The root itself yields no segments.
func Split(path string) []string {
	return splitSegments(Normalize(path))
}

// SplitLeaf separates a path into its directory portion and leaf name.
// The root splits into ("/", "").
func SplitLeaf(path string) (dir, leaf string) {
	segments := Split(path)
	if len(segments) == 0 {
		return "/", ""
	}
	leaf = segments[len(segments)-1]
	dir = "/" + strings.Join(segments[:len(segments)-1], "/")
	return dir, leaf
}

// splitSegments walks raw and accumulates cleaned segments, collapsing "."
// and resolving ".." as it goes.
func splitSegments(raw string) []string {
	var segments []string
	for _, seg := range strings.FieldsFunc(raw, isSeparator) {
		switch seg {
		case "", ".":
			// skip
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, seg)
		}
	}
	return segments
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

package keyfold

import (
	"path"
	"strings"
)

// CleanDir normalizes a user-supplied logical directory path into a listing
// prefix. The empty string is the virtual root; any other path loses its
// leading separator and gains a trailing one, so the result is exactly the
// key prefix shared by all descendants.
func CleanDir(raw string) string {
	dir := strings.TrimPrefix(raw, "/")
	if dir == "" {
		return ""
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir
}

// DisplayName returns the name an object key shows under its parent prefix.
// An empty result means the key is the folder marker for prefix itself.
func DisplayName(key, prefix string) string {
	return strings.TrimPrefix(key, prefix)
}

// FolderName returns the display name of a one-level sub-prefix, without the
// trailing separator.
func FolderName(subPrefix, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(subPrefix, prefix), "/")
}

// BaseName returns the final path segment of a key, used as the download
// filename.
func BaseName(key string) string {
	return path.Base(strings.TrimSuffix(key, "/"))
}

// IsFolderKey reports whether a key denotes a folder marker by convention.
func IsFolderKey(key string) bool {
	return strings.HasSuffix(key, "/")
}

// EscapeLikePattern escapes special LIKE characters (%, _, \) so a key prefix
// can be used verbatim in a SQL LIKE query.
func EscapeLikePattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, `\`, `\\`)
	pattern = strings.ReplaceAll(pattern, `%`, `\%`)
	pattern = strings.ReplaceAll(pattern, `_`, `\_`)
	return pattern
}

package discovery

import (
	"path/filepath"
	"strings"
)

// NormalizeExtension lowercases ext and makes sure it starts with a dot
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// HasExtension reports whether filename ends with ext (case-insensitive)
func HasExtension(filename, ext string) bool {
	return strings.HasSuffix(strings.ToLower(filename), NormalizeExtension(ext))
}

// MatchesPath determines from a full path whether the file should be mined
func MatchesPath(path, ext string) bool {
	return HasExtension(filepath.Base(path), ext)
}

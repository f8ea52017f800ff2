package discovery

import "time"

// DiscoveredFile represents a source file discovered during filesystem traversal
type DiscoveredFile struct {
	Path         string    // Absolute path to file
	RelativePath string    // Path relative to search root
	Size         int64     // Size in bytes
	ModTime      time.Time // Last modification time
}

// DefaultExtension is the extension mined when none is configured
const DefaultExtension = ".ino"

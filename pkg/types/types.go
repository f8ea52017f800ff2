package types

import (
	"fmt"
	"time"
)

// Config holds runtime configuration combining defaults, config file,
// environment variables and flags
type Config struct {
	// Corpus selection
	Extension string `yaml:"extension"` // File extension to mine, e.g. ".ino"
	Keywords  string `yaml:"keywords"`  // Reserved word family: "c" or "cpp"
	ProjectID string `yaml:"project"`   // Google Cloud project billed for the query

	// Pipeline files
	FileList     string `yaml:"file_list"`     // JSON lines of {repo, ref, path}
	RecordsFile  string `yaml:"records_file"`  // JSON lines of scanned records
	ProgressFile string `yaml:"progress_file"` // Resume marker for fetch
	OutputDir    string `yaml:"output_dir"`    // Where listings are written
	Format       string `yaml:"format"`        // Listing format (lst, json, html)

	// Fetching
	BaseURL     string        `yaml:"base_url"`    // Raw content host
	Parallelism int           `yaml:"parallel"`    // Concurrent downloads (1 = sequential)
	Timeout     time.Duration `yaml:"timeout"`     // Per-request timeout
	MaxRetries  int           `yaml:"max_retries"` // Retries for transient failures
	MaxBytes    int64         `yaml:"max_bytes"`   // Largest file accepted
	CacheSize   int           `yaml:"cache_size"`  // Bodies kept in the in-memory LRU

	// Optional sinks
	DatabaseURL string        `yaml:"database_url"` // PostgreSQL connection string
	Archive     ArchiveConfig `yaml:"archive"`

	Verbose bool `yaml:"verbose"` // Enable debug logging
}

// ArchiveConfig configures the optional S3-compatible content archive
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled reports whether enough is configured to use the archive
func (a ArchiveConfig) Enabled() bool {
	return a.Endpoint != "" && a.Bucket != ""
}

// ConfigError represents a configuration validation failure
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	if e.Suggestion != "" {
		msg += "\nSuggestion: " + e.Suggestion
	}
	return msg
}

// Validate checks that the configuration can drive the pipeline
func (c *Config) Validate() error {
	if c.Extension == "" {
		return &ConfigError{
			Field:      "extension",
			Value:      c.Extension,
			Message:    "extension must not be empty",
			Suggestion: "Pass --extension .ino (or any other file extension).",
		}
	}
	if c.Parallelism < 1 || c.Parallelism > 100 {
		return &ConfigError{
			Field:      "parallel",
			Value:      c.Parallelism,
			Message:    fmt.Sprintf("invalid parallelism: %d", c.Parallelism),
			Suggestion: "Parallelism must be between 1 and 100.",
		}
	}
	if c.Timeout <= 0 {
		return &ConfigError{
			Field:      "timeout",
			Value:      c.Timeout,
			Message:    fmt.Sprintf("invalid timeout: %v", c.Timeout),
			Suggestion: "Use a positive duration such as 30s.",
		}
	}
	if c.MaxRetries < 0 {
		return &ConfigError{
			Field:      "max-retries",
			Value:      c.MaxRetries,
			Message:    fmt.Sprintf("invalid retry count: %d", c.MaxRetries),
			Suggestion: "Use 0 to disable retries.",
		}
	}
	if c.MaxBytes <= 0 {
		return &ConfigError{
			Field:      "max-bytes",
			Value:      c.MaxBytes,
			Message:    fmt.Sprintf("invalid size limit: %d", c.MaxBytes),
			Suggestion: "Use a positive byte count, e.g. 1048576.",
		}
	}
	if c.RecordsFile == "" {
		return &ConfigError{
			Field:      "records",
			Value:      c.RecordsFile,
			Message:    "records file must not be empty",
			Suggestion: "Pass --records ino_content.json.",
		}
	}
	if c.Archive.Endpoint != "" && c.Archive.Bucket == "" {
		return &ConfigError{
			Field:      "archive-bucket",
			Value:      c.Archive.Bucket,
			Message:    "archive endpoint set without a bucket",
			Suggestion: "Set ARCHIVE_BUCKET or archive.bucket in the config file.",
		}
	}
	return nil
}

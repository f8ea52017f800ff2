package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/inocensus/inocensus/internal/parser"
	"github.com/inocensus/inocensus/internal/query"
	"github.com/inocensus/inocensus/internal/report"
	"github.com/inocensus/inocensus/pkg/types"
)

// Config is an alias for the shared Config type
type Config = types.Config

// ConfigError is an alias for the shared ConfigError type
type ConfigError = types.ConfigError

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Extension:    ".ino",
		Keywords:     "c",
		FileList:     "ino.json",
		RecordsFile:  "ino_content.json",
		ProgressFile: "ino.done",
		OutputDir:    ".",
		Format:       string(report.FormatLST),
		BaseURL:      query.DefaultRawBase,
		Parallelism:  4,
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		MaxBytes:     1 << 20,
		CacheSize:    1024,
		Archive:      types.ArchiveConfig{UseSSL: true},
	}
}

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error; variables already set win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfig layers defaults, the optional YAML file and the environment
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile != "" {
		if err := LoadConfigFile(cfg, configFile); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile overlays the YAML file at path onto cfg; keys absent from
// the file keep their current values
func LoadConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{
			Field:      "config",
			Value:      path,
			Message:    err.Error(),
			Suggestion: "Pass an existing YAML file to --config or omit the flag.",
		}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ConfigError{
			Field:      "config",
			Value:      path,
			Message:    fmt.Sprintf("invalid YAML: %v", err),
			Suggestion: "Keys mirror the long flag names with underscores, e.g. max_retries: 5.",
		}
	}
	return nil
}

// envLookup matches os.LookupEnv
type envLookup func(key string) (string, bool)

// ApplyEnv overlays environment variables onto cfg
func ApplyEnv(cfg *Config, lookup envLookup) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("INOCENSUS_EXTENSION", &cfg.Extension)
	str("INOCENSUS_KEYWORDS", &cfg.Keywords)
	str("INOCENSUS_FORMAT", &cfg.Format)
	str("INOCENSUS_BASE_URL", &cfg.BaseURL)
	str("GOOGLE_CLOUD_PROJECT", &cfg.ProjectID)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("ARCHIVE_ENDPOINT", &cfg.Archive.Endpoint)
	str("ARCHIVE_REGION", &cfg.Archive.Region)
	str("ARCHIVE_ACCESS_KEY", &cfg.Archive.AccessKey)
	str("ARCHIVE_SECRET_KEY", &cfg.Archive.SecretKey)
	str("ARCHIVE_BUCKET", &cfg.Archive.Bucket)

	ints := []struct {
		key string
		dst *int
	}{
		{"INOCENSUS_PARALLEL", &cfg.Parallelism},
		{"INOCENSUS_MAX_RETRIES", &cfg.MaxRetries},
		{"INOCENSUS_CACHE_SIZE", &cfg.CacheSize},
	}
	for _, e := range ints {
		if v, ok := lookup(e.key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return envError(e.key, v, "an integer")
			}
			*e.dst = n
		}
	}

	if v, ok := lookup("INOCENSUS_MAX_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return envError("INOCENSUS_MAX_BYTES", v, "a byte count")
		}
		cfg.MaxBytes = n
	}
	if v, ok := lookup("INOCENSUS_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("INOCENSUS_TIMEOUT", v, "a duration such as 30s")
		}
		cfg.Timeout = d
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"INOCENSUS_VERBOSE", &cfg.Verbose},
		{"ARCHIVE_USE_SSL", &cfg.Archive.UseSSL},
	}
	for _, e := range bools {
		if v, ok := lookup(e.key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return envError(e.key, v, "true or false")
			}
			*e.dst = b
		}
	}
	return nil
}

func envError(key, value, want string) error {
	return &ConfigError{
		Field:      strings.ToLower(key),
		Value:      value,
		Message:    fmt.Sprintf("cannot parse %q", value),
		Suggestion: fmt.Sprintf("Set %s to %s.", key, want),
	}
}

// FlagSet is the view of parsed command-line flags ApplyFlags needs;
// *cli.Command from urfave/cli satisfies it
type FlagSet interface {
	IsSet(name string) bool
	String(name string) string
	Int(name string) int
	Int64(name string) int64
	Duration(name string) time.Duration
	Bool(name string) bool
}

// ApplyFlagsToConfig applies explicitly set command-line flags to cfg
func ApplyFlagsToConfig(c *Config, flags FlagSet) {
	strs := map[string]*string{
		"extension":    &c.Extension,
		"keywords":     &c.Keywords,
		"project":      &c.ProjectID,
		"list":         &c.FileList,
		"records":      &c.RecordsFile,
		"progress":     &c.ProgressFile,
		"output-dir":   &c.OutputDir,
		"format":       &c.Format,
		"base-url":     &c.BaseURL,
		"database-url": &c.DatabaseURL,
	}
	for name, dst := range strs {
		if flags.IsSet(name) {
			*dst = flags.String(name)
		}
	}
	if flags.IsSet("parallel") {
		c.Parallelism = flags.Int("parallel")
	}
	if flags.IsSet("max-retries") {
		c.MaxRetries = flags.Int("max-retries")
	}
	if flags.IsSet("cache-size") {
		c.CacheSize = flags.Int("cache-size")
	}
	if flags.IsSet("max-bytes") {
		c.MaxBytes = flags.Int64("max-bytes")
	}
	if flags.IsSet("timeout") {
		c.Timeout = flags.Duration("timeout")
	}
	if flags.IsSet("verbose") {
		c.Verbose = flags.Bool("verbose")
	}
}

// ValidateConfig runs Config.Validate and the checks that need other packages
func ValidateConfig(c *Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !report.ValidFormat(c.Format) {
		return &ConfigError{
			Field:      "format",
			Value:      c.Format,
			Message:    fmt.Sprintf("unsupported format: %s", c.Format),
			Suggestion: fmt.Sprintf("Use one of: %s.", strings.Join(report.SupportedFormats(), ", ")),
		}
	}
	if _, err := parser.KeywordSetByName(c.Keywords); err != nil {
		return &ConfigError{
			Field:      "keywords",
			Value:      c.Keywords,
			Message:    err.Error(),
			Suggestion: "Use --keywords c for plain sketches or --keywords cpp for C++ sources.",
		}
	}
	return nil
}

// newScanner builds the scanner selected by the configuration
func newScanner(c *Config) (*parser.Scanner, error) {
	ks, err := parser.KeywordSetByName(c.Keywords)
	if err != nil {
		return nil, err
	}
	return parser.NewScanner(parser.WithKeywords(ks)), nil
}

// Package config loads the static description of one derivation: which source
// to read, what to slice, rewrite and exclude, and where to write the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"testderive/internal/rewrite"
	"testderive/pkg/block"
)

// DefaultFile is the config file looked up when --config is not given.
const DefaultFile = "testderive.yaml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all testderive configuration.
type Config struct {
	SourcePath string `yaml:"source_path"`
	OutputPath string `yaml:"output_path"`

	// Extraction
	LineRange   rewrite.Range `yaml:"line_range"`
	StrictRange bool          `yaml:"strict_range"`

	// Rewriting
	TokenSubstitution TokenSubstitution `yaml:"token_substitution"`

	// Exclusions
	ExcludedHelpers []string `yaml:"excluded_helpers"`
	ExcludedTests   []string `yaml:"excluded_tests"`
	ExclusionsFile  string   `yaml:"exclusions_file"`

	// Used only for the reconciliation report; 0 means "count the source".
	OriginalTotalCount int `yaml:"original_total_count"`

	Convention block.Convention `yaml:"convention"`

	Logging LoggingConfig `yaml:"logging"`

	// baseDir is where relative paths resolve; the config file's directory.
	baseDir string
}

// TokenSubstitution is a literal old -> new replacement.
type TokenSubstitution struct {
	Old string `yaml:"old"`
	New string `yaml:"new"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Convention: block.DefaultConvention(),
		Logging: LoggingConfig{
			Level: "info",
		},
		baseDir: ".",
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; relative paths in the file resolve against its directory.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.baseDir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, err
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Parse decodes YAML into cfg, keeping defaults for absent keys.
func Parse(data []byte, cfg *Config) error {
	conv := cfg.Convention
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Convention = mergeConvention(conv, cfg.Convention)
	return nil
}

// mergeConvention fills empty fields of over from base. An explicitly empty
// attribute prefix cannot be expressed and falls back to the default.
func mergeConvention(base, over block.Convention) block.Convention {
	out := over
	if out.Indent == "" {
		out.Indent = base.Indent
	}
	if out.RoutineKeyword == "" {
		out.RoutineKeyword = base.RoutineKeyword
	}
	if out.CloseToken == "" {
		out.CloseToken = base.CloseToken
	}
	if out.Marker == "" {
		out.Marker = base.Marker
	}
	if out.AttributePrefix == "" {
		out.AttributePrefix = base.AttributePrefix
	}
	return out
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TESTDERIVE_SOURCE"); v != "" {
		c.SourcePath = v
	}
	if v := os.Getenv("TESTDERIVE_OUTPUT"); v != "" {
		c.OutputPath = v
	}
	if v := os.Getenv("TESTDERIVE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.SourcePath) == "" {
		problems = append(problems, "source_path is required")
	}
	if c.LineRange.Start < 0 || c.LineRange.End < 0 {
		problems = append(problems, fmt.Sprintf("line_range bounds must not be negative (got %d..%d)", c.LineRange.Start, c.LineRange.End))
	}
	if c.OriginalTotalCount < 0 {
		problems = append(problems, "original_total_count must not be negative")
	}
	conv := c.Convention
	if conv.Indent == "" || conv.RoutineKeyword == "" || conv.CloseToken == "" || conv.Marker == "" {
		problems = append(problems, "convention indent, routine_keyword, close_token and marker must be set")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Source returns the resolved source path.
func (c *Config) Source() string {
	return c.resolve(c.SourcePath)
}

// Output returns the resolved output path, defaulting to DerivedPath(Source()).
func (c *Config) Output() string {
	if c.OutputPath == "" {
		return DerivedPath(c.Source())
	}
	return c.resolve(c.OutputPath)
}

// Exclusions returns the resolved exclusions file path, or "" when unset.
func (c *Config) Exclusions() string {
	if c.ExclusionsFile == "" {
		return ""
	}
	return c.resolve(c.ExclusionsFile)
}

// RangePolicy maps StrictRange onto the extractor policy.
func (c *Config) RangePolicy() rewrite.Policy {
	if c.StrictRange {
		return rewrite.Strict
	}
	return rewrite.Clamp
}

// BaseDir returns the directory relative paths resolve against.
func (c *Config) BaseDir() string {
	return c.baseDir
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.baseDir, p)
}

// DerivedPath names the generated sibling of src: "dir/tcp.rs" becomes
// "dir/tcp_derived.inc.rs".
func DerivedPath(src string) string {
	ext := filepath.Ext(src)
	stem := strings.TrimSuffix(src, ext)
	return stem + "_derived.inc" + ext
}

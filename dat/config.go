package dat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Config holds configuration for a Repository.
// Zero values use sensible defaults where noted.
type Config struct {
	// DatPath is the path to the dat binary.
	// Default: "dat" (found via PATH).
	DatPath string `json:"dat_path" yaml:"dat_path" toml:"dat_path" mapstructure:"dat_path" jsonschema_description:"Path to the dat binary"`

	// Timeout bounds each dat invocation.
	// 0 means no deadline.
	Timeout time.Duration `json:"timeout" yaml:"timeout" toml:"timeout" mapstructure:"timeout" jsonschema_description:"Deadline for each dat invocation as a duration string such as 30s; 0s disables it"`

	// BatchSize is the default number of lines per batch for streamed exports and diffs.
	// Default: 100.
	BatchSize int `json:"batch_size" yaml:"batch_size" toml:"batch_size" mapstructure:"batch_size" jsonschema:"minimum=1" jsonschema_description:"Lines per batch for streamed exports and diffs"`

	// WatchDebounce is how long Watch waits for file activity to settle.
	// Default: 250ms.
	WatchDebounce time.Duration `json:"watch_debounce" yaml:"watch_debounce" toml:"watch_debounce" mapstructure:"watch_debounce" jsonschema_description:"Quiet period before Watch re-reads the log, as a duration string such as 250ms"`

	// NotRepositoryPattern overrides the regular expression recognizing dat's
	// not-a-repository message. Optional.
	NotRepositoryPattern string `json:"not_repository_pattern,omitempty" yaml:"not_repository_pattern,omitempty" toml:"not_repository_pattern,omitempty" mapstructure:"not_repository_pattern" jsonschema_description:"Regular expression for dat's not-a-repository message"`

	// AutoDetectPattern overrides the regular expression recognizing dat's
	// auto-detect failure message. Optional.
	AutoDetectPattern string `json:"auto_detect_pattern,omitempty" yaml:"auto_detect_pattern,omitempty" toml:"auto_detect_pattern,omitempty" mapstructure:"auto_detect_pattern" jsonschema_description:"Regular expression for dat's input auto-detect failure message"`

	// Env provides additional environment variables for dat.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty" mapstructure:"env" jsonschema_description:"Extra environment variables for dat"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DatPath:       DefaultDatPath,
		BatchSize:     DefaultBatchSize,
		WatchDebounce: DefaultWatchDebounce,
	}
}

// LoadFromEnv populates config fields from environment variables.
// Environment variables use the DATKIT_ prefix and take precedence over existing values.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("DATKIT_PATH"); v != "" {
		c.DatPath = v
	}
	if v := os.Getenv("DATKIT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("DATKIT_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchSize = n
		}
	}
	if v := os.Getenv("DATKIT_WATCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.WatchDebounce = d
		}
	}
	if v := os.Getenv("DATKIT_NOT_REPOSITORY_PATTERN"); v != "" {
		c.NotRepositoryPattern = v
	}
	if v := os.Getenv("DATKIT_AUTO_DETECT_PATTERN"); v != "" {
		c.AutoDetectPattern = v
	}
}

// FromEnv creates a Config from environment variables with defaults.
func FromEnv() Config {
	cfg := DefaultConfig()
	cfg.LoadFromEnv()
	return cfg
}

// LoadFile reads a config file over DefaultConfig. The format follows the extension:
// .yaml, .yml, and .json are read as YAML, .toml as TOML.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DatPath == "" {
		return fmt.Errorf("dat_path is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0, got %d", c.BatchSize)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must be >= 0, got %v", c.WatchDebounce)
	}
	if c.NotRepositoryPattern != "" {
		if _, err := regexp.Compile(c.NotRepositoryPattern); err != nil {
			return fmt.Errorf("not_repository_pattern: %w", err)
		}
	}
	if c.AutoDetectPattern != "" {
		if _, err := regexp.Compile(c.AutoDetectPattern); err != nil {
			return fmt.Errorf("auto_detect_pattern: %w", err)
		}
	}
	return nil
}

// ToOptions converts the config to functional options.
// This enables mixing Config with additional options.
func (c *Config) ToOptions() []Option {
	opts := make([]Option, 0, 6)

	if c.DatPath != "" {
		opts = append(opts, WithDatPath(c.DatPath))
	}
	if c.Timeout > 0 {
		opts = append(opts, WithTimeout(c.Timeout))
	}
	if c.BatchSize > 0 {
		opts = append(opts, WithBatchSize(c.BatchSize))
	}
	if c.WatchDebounce > 0 {
		opts = append(opts, WithWatchDebounce(c.WatchDebounce))
	}
	if c.NotRepositoryPattern != "" || c.AutoDetectPattern != "" {
		opts = append(opts, WithErrorPatterns(c.NotRepositoryPattern, c.AutoDetectPattern))
	}
	if len(c.Env) > 0 {
		opts = append(opts, WithEnv(c.Env))
	}

	return opts
}

// NewFromConfig validates cfg and opens the repository in dir with it. Extra options
// are applied after the config.
func NewFromConfig(dir string, cfg Config, opts ...Option) (*Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, NewError("config", err)
	}
	return NewRepository(dir, append(cfg.ToOptions(), opts...)...)
}

// ConfigSchema returns the JSON Schema describing Config files.
func ConfigSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
		Mapper:                     durationSchema,
	}
	schema := r.Reflect(&Config{})
	schema.Title = "datkit configuration"
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal config schema: %w", err)
	}
	return out, nil
}

// durationPattern matches the strings time.ParseDuration accepts.
const durationPattern = `^[-+]?(0|(([0-9]+(\.[0-9]*)?|\.[0-9]+)(ns|us|µs|μs|ms|s|m|h))+)$`

// durationSchema describes time.Duration fields as the strings LoadFile decodes.
func durationSchema(t reflect.Type) *jsonschema.Schema {
	if t != reflect.TypeOf(time.Duration(0)) {
		return nil
	}
	return &jsonschema.Schema{Type: "string", Pattern: durationPattern}
}

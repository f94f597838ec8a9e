package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfig    = "SPLITPATCH_CONFIG"
	EnvEncoding  = "SPLITPATCH_ENCODING"
	EnvFullName  = "SPLITPATCH_FULLNAME"
	EnvHunks     = "SPLITPATCH_HUNKS"
	EnvLogLevel  = "SPLITPATCH_LOG_LEVEL"
	EnvOutputDir = "SPLITPATCH_OUTPUT_DIR"
)

// Config holds the settings that command-line flags start from.
type Config struct {
	Encoding  string `toml:"encoding"`
	FullName  bool   `toml:"fullname"`
	Hunks     bool   `toml:"hunks"`
	LogLevel  string `toml:"log_level"`
	OutputDir string `toml:"output_dir"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Encoding:  "UTF-8",
		LogLevel:  "warn",
		OutputDir: ".",
	}
}

// DefaultPath returns ~/.config/splitpatch/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "splitpatch", "config.toml"), nil
}

// Load reads the config file at path, falling back to $SPLITPATCH_CONFIG and
// then DefaultPath. A missing file yields the defaults; an explicitly named
// file that is missing is an error.
func Load(path string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	explicit := true
	if path == "" {
		path = getenv(EnvConfig)
	}
	if path == "" {
		explicit = false
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg, err := LoadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), nil
	}
	return cfg, err
}

// LoadFromFile parses and validates a TOML config file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML config data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if err := validate(doc); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from SPLITPATCH_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvEncoding)); v != "" {
		c.Encoding = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(getenv(EnvOutputDir)); v != "" {
		c.OutputDir = v
	}
	for key, dst := range map[string]*bool{EnvFullName: &c.FullName, EnvHunks: &c.Hunks} {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
	}
	return nil
}

// Package config loads the mindbook CLI configuration.
//
// The configuration lives in a single YAML file under
// os.UserConfigDir()/mindbook/:
//
//	~/Library/Application Support/mindbook/config.yaml   (macOS)
//	~/.config/mindbook/config.yaml                       (Linux)
//	%AppData%/mindbook/config.yaml                       (Windows)
//
// The note data (badger directory) defaults to a "data" subdirectory
// next to the config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	// appDir is the directory name under os.UserConfigDir().
	appDir = "mindbook"

	// configFile is the YAML file name inside appDir.
	configFile = "config.yaml"
)

// Providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// OpenAI holds OpenAI (or OpenAI-compatible) provider settings.
type OpenAI struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url,omitempty"`
	ChatModel  string `yaml:"chat_model,omitempty"`
	EmbedModel string `yaml:"embed_model,omitempty"`
	Dimension  int    `yaml:"dimension,omitempty"`
}

// Gemini holds Gemini provider settings.
type Gemini struct {
	APIKey     string `yaml:"api_key"`
	ChatModel  string `yaml:"chat_model,omitempty"`
	EmbedModel string `yaml:"embed_model,omitempty"`
	Dimension  int    `yaml:"dimension,omitempty"`
}

// Config is the mindbook CLI configuration.
type Config struct {
	// Provider selects the model backend: "openai" or "gemini".
	Provider string `yaml:"provider"`

	OpenAI OpenAI `yaml:"openai,omitempty"`
	Gemini Gemini `yaml:"gemini,omitempty"`

	// User is the default owner partition.
	User string `yaml:"user,omitempty"`

	// DataDir is the badger directory. Empty means "data" next to the
	// config file.
	DataDir string `yaml:"data_dir,omitempty"`

	// Tuning. Zero values fall back to the note store defaults.
	RelateThreshold float32 `yaml:"relate_threshold,omitempty"`
	SearchThreshold float32 `yaml:"search_threshold,omitempty"`
	TopK            int     `yaml:"top_k,omitempty"`
	Symmetric       bool    `yaml:"symmetric,omitempty"`

	// dir is where the config was loaded from.
	dir string
}

// Default returns a configuration with sensible defaults and no
// credentials.
func Default() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		User:     "default",
	}
}

// Dir returns the configuration directory.
func (c *Config) Dir() string {
	return c.dir
}

// ResolveDataDir returns the badger directory, applying the default.
func (c *Config) ResolveDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return filepath.Join(c.dir, "data")
}

// Validate checks that the selected provider has credentials.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("config: openai.api_key is not set")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("config: gemini.api_key is not set")
		}
	default:
		return fmt.Errorf("config: unknown provider %q (want %q or %q)", c.Provider, ProviderOpenAI, ProviderGemini)
	}
	return nil
}

// Load loads the configuration from the default location. A missing file
// yields the defaults, so commands that need no credentials still work.
func Load() (*Config, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine config directory: %w", err)
	}
	return LoadFrom(filepath.Join(base, appDir))
}

// LoadFrom loads the configuration from a specific directory.
func LoadFrom(dir string) (*Config, error) {
	cfg := Default()
	cfg.dir = dir

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Join(dir, configFile), err)
	}
	return cfg, nil
}

// Save writes the configuration back to its directory.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	path := filepath.Join(c.dir, configFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the project config file at the repo root.
const FileName = "bankfeed.yaml"

// Config represents the top-level bankfeed.yaml configuration.
type Config struct {
	Business  BusinessConfig `yaml:"business"`
	Import    ImportConfig   `yaml:"import"`
	Store     StoreConfig    `yaml:"store"`
	Git       GitConfig      `yaml:"git"`
	RulesPath string         `yaml:"rules_path"`
	LogLevel  string         `yaml:"log_level"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// ImportConfig holds defaults for import batches.
type ImportConfig struct {
	DefaultAccount string `yaml:"default_account,omitempty"`
	DateFormat     string `yaml:"date_format"`
	SkipDuplicates bool   `yaml:"skip_duplicates"`
	Categorize     bool   `yaml:"categorize"`
}

// StoreConfig selects the transaction store. Driver is "csv", "sqlite" or
// "postgres"; DSN is ignored for csv.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
}

// GitConfig controls committing imports to the project's git repository.
type GitConfig struct {
	Enabled     bool   `yaml:"enabled"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a bankfeed.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Import: ImportConfig{
			DateFormat:     "DD/MM/YYYY",
			SkipDuplicates: true,
			Categorize:     true,
		},
		Store: StoreConfig{
			Driver: "csv",
		},
		Git: GitConfig{
			AuthorName:  "bankfeed",
			AuthorEmail: "bankfeed@localhost",
		},
		RulesPath: "rules/categorization-rules.yaml",
		LogLevel:  "info",
	}
}

// Environment variables that override file values.
const (
	EnvStoreDriver = "BANKFEED_STORE_DRIVER"
	EnvStoreDSN    = "BANKFEED_STORE_DSN"
	EnvLogLevel    = "BANKFEED_LOG_LEVEL"
)

// ApplyEnv loads envFile if it exists, then applies BANKFEED_* overrides.
// Variables already set in the environment win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	c.Store.Driver = getEnv(EnvStoreDriver, c.Store.Driver)
	c.Store.DSN = getEnv(EnvStoreDSN, c.Store.DSN)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

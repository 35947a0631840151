package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/napkin/pkg/napkin/annotate"
	"github.com/cognicore/napkin/pkg/napkin/category"
	"github.com/cognicore/napkin/pkg/napkin/export"
	"github.com/cognicore/napkin/pkg/napkin/internalerr"
)

// Backends accepted by Store.Backend.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the napkin configuration file.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Report   ReportConfig   `yaml:"report"`
	Classify ClassifyConfig `yaml:"classify"`

	// Lang is the expected document language.
	Lang string `yaml:"lang"`

	// Lexicon is the path of a word list for the text annotator.
	Lexicon string `yaml:"lexicon"`
}

// StoreConfig selects and addresses the aggregation store.
type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig addresses a Redis server.
type RedisConfig struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	Namespace string `yaml:"namespace"`
}

// ReportConfig holds report defaults.
type ReportConfig struct {
	Limit  int    `yaml:"limit"`
	Format string `yaml:"format"`
	Style  string `yaml:"style"`
}

// ClassifyConfig holds classifier defaults.
type ClassifyConfig struct {
	Verbatim   bool     `yaml:"verbatim"`
	FullLabels bool     `yaml:"full_labels"`
	Labels     []string `yaml:"labels"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendSQLite,
			Path:    "napkin.db",
			Redis: RedisConfig{
				Address:   "localhost:6380",
				DB:        5,
				Namespace: "napkin",
			},
		},
		Report: ReportConfig{
			Limit:  100,
			Format: export.CSV.String(),
			Style:  "default",
		},
		Classify: ClassifyConfig{
			Labels: append([]string(nil), category.DefaultLabels...),
		},
		Lang: "en",
	}
}

// LoadConfig reads a YAML configuration file. Keys absent from the file keep
// their Default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and returns the first problem as a
// ConfigError (or UnsupportedLanguageError for the language).
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.Path == "" {
			return &internalerr.ConfigError{Field: "store.path", Reason: "required for the sqlite backend"}
		}
	case BackendRedis:
		if c.Store.Redis.Address == "" {
			return &internalerr.ConfigError{Field: "store.redis.address", Reason: "required for the redis backend"}
		}
		if c.Store.Redis.DB < 0 {
			return &internalerr.ConfigError{Field: "store.redis.db", Reason: "must not be negative"}
		}
	case BackendMemory:
	default:
		return &internalerr.ConfigError{
			Field:  "store.backend",
			Reason: fmt.Sprintf("unknown backend %q (supported: %s, %s, %s)", c.Store.Backend, BackendSQLite, BackendRedis, BackendMemory),
		}
	}

	if c.Report.Limit < -1 {
		return &internalerr.ConfigError{Field: "report.limit", Reason: "must be -1 (unlimited) or a non-negative count"}
	}
	if _, err := export.ParseFormat(c.Report.Format); err != nil {
		return &internalerr.ConfigError{Field: "report.format", Reason: err.Error()}
	}
	if _, err := export.ParseStyle(c.Report.Style); err != nil {
		return &internalerr.ConfigError{Field: "report.style", Reason: err.Error()}
	}
	for _, l := range c.Classify.Labels {
		if strings.TrimSpace(l) == "" {
			return &internalerr.ConfigError{Field: "classify.labels", Reason: "empty label"}
		}
	}
	return annotate.CheckSupported(c.Lang)
}

// Lexicon is the in-vocabulary word list of the text annotator.
type Lexicon struct {
	Words []string `yaml:"words"`
}

// LoadLexicon loads a lexicon from a YAML file
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, err
	}

	return &lex, nil
}

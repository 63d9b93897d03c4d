package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tcpou/internal/domain"
)

const DataDirName = ".tcpou"

// Config holds all configuration for the tcpou tool.
type Config struct {
	Index    IndexConfig    `yaml:"index"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// IndexConfig holds file discovery and indexing configuration.
type IndexConfig struct {
	Includes         []string `yaml:"includes"`
	Excludes         []string `yaml:"excludes"`
	RespectGitignore bool     `yaml:"respect_gitignore"`
	Workers          int      `yaml:"workers"` // parallel extractions, one parser each
}

// PipelineConfig is handed to the downstream merge stage as is.
type PipelineConfig struct {
	MaxChunkSize   int     `yaml:"max_chunk_size"`
	MinChunkSize   int     `yaml:"min_chunk_size"`
	MergeThreshold float64 `yaml:"merge_threshold"`
	GreedyMerge    bool    `yaml:"greedy_merge"`
	SafeTokenLimit int     `yaml:"safe_token_limit"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Includes:         []string{"**/*.[Tt][Cc][Pp][Oo][Uu]"},
			Excludes:         []string{"**/.git/**", "**/_Boot/**", "**/_CompileInfo/**", "**/_Libraries/**", "**/" + DataDirName + "/**"},
			RespectGitignore: true,
			Workers:          4,
		},
		Pipeline: PipelineConfig{
			MaxChunkSize:   1200,
			MinChunkSize:   50,
			MergeThreshold: 0.8,
			GreedyMerge:    true,
			SafeTokenLimit: 6000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Settings converts the pipeline section into the bundle carried by
// pipeline batches.
func (p PipelineConfig) Settings() domain.PipelineSettings {
	return domain.PipelineSettings{
		MaxChunkSize:   p.MaxChunkSize,
		MinChunkSize:   p.MinChunkSize,
		MergeThreshold: p.MergeThreshold,
		GreedyMerge:    p.GreedyMerge,
		SafeTokenLimit: p.SafeTokenLimit,
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for tcpou.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "tcpou.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, DataDirName, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the index database.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, DataDirName, "index.db")
}

// EnsureDataDir ensures the .tcpou directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, DataDirName), 0755)
}

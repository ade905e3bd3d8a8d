package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	TestPath string `yaml:"test_path"`

	// Output settings
	OutputJSONFile string `yaml:"output_json_file"`
	OutputJSONDir  string `yaml:"output_json_dir"`

	// Execution settings
	Processors       int `yaml:"processors"`
	ContentCacheSize int `yaml:"content_cache_size"`

	// Paths to ignore when scanning
	PathsToIgnore []string `yaml:"paths_to_ignore"`

	// Type names that are always deduplicated
	KnownCommonNames []string `yaml:"known_common_names"`

	Rewrite RewriteOptions `yaml:"rewrite"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// RewriteOptions selects the edits applied by the rewrite command
type RewriteOptions struct {
	AddProcessIsolation   bool   `yaml:"add_process_isolation"`
	AddFactAttributes     bool   `yaml:"add_fact_attributes"`
	DeduplicateClassNames bool   `yaml:"deduplicate_class_names"`
	CleanupModuleAssembly bool   `yaml:"cleanup_module_assembly"`
	ClassToDeduplicate    string `yaml:"class_to_deduplicate"`
	MatchSourceToProject  bool   `yaml:"match_source_to_project"`
	DryRun                bool   `yaml:"dry_run"`
}

// Flags holds command-line flags
type Flags struct {
	Processors int
	Filter     string
	TestPath   string
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		TestPath:         DefaultTestPath,
		OutputJSONFile:   DefaultOutputJSONFile,
		OutputJSONDir:    DefaultOutputJSONDir,
		Processors:       DefaultProcessors,
		ContentCacheSize: DefaultContentCacheSize,
		Flags:            Flags{Processors: DefaultProcessors},
	}
	cfg.PathsToIgnore = append([]string(nil), DefaultPathsToIgnore...)
	cfg.KnownCommonNames = append([]string(nil), DefaultKnownCommonNames...)
	return cfg
}

// Load builds the config from defaults, an optional .env file, the config
// file, ILTRANSFORM_* environment variables and finally the flags.
func Load(flags Flags) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := New()
	v := viper.New()
	v.SetConfigType("yaml")
	if flags.ConfigFile != "" {
		v.SetConfigFile(flags.ConfigFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, filepath.Ext(DefaultConfigFile)))
		v.AddConfigPath(".")
	}

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if flags.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.TestPath = v.GetString("test_path")
	cfg.OutputJSONFile = v.GetString("output_json_file")
	cfg.OutputJSONDir = v.GetString("output_json_dir")
	cfg.Processors = v.GetInt("processors")
	cfg.ContentCacheSize = v.GetInt("content_cache_size")
	cfg.PathsToIgnore = v.GetStringSlice("paths_to_ignore")
	cfg.KnownCommonNames = v.GetStringSlice("known_common_names")
	cfg.Rewrite = RewriteOptions{
		AddProcessIsolation:   v.GetBool("rewrite.add_process_isolation"),
		AddFactAttributes:     v.GetBool("rewrite.add_fact_attributes"),
		DeduplicateClassNames: v.GetBool("rewrite.deduplicate_class_names"),
		CleanupModuleAssembly: v.GetBool("rewrite.cleanup_module_assembly"),
		ClassToDeduplicate:    v.GetString("rewrite.class_to_deduplicate"),
		MatchSourceToProject:  v.GetBool("rewrite.match_source_to_project"),
		DryRun:                v.GetBool("rewrite.dry_run"),
	}

	cfg.ApplyFlags(flags)
	if cfg.Processors < 1 {
		return nil, fmt.Errorf("processors must be at least 1, got %d", cfg.Processors)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("test_path", cfg.TestPath)
	v.SetDefault("output_json_file", cfg.OutputJSONFile)
	v.SetDefault("output_json_dir", cfg.OutputJSONDir)
	v.SetDefault("processors", cfg.Processors)
	v.SetDefault("content_cache_size", cfg.ContentCacheSize)
	v.SetDefault("paths_to_ignore", cfg.PathsToIgnore)
	v.SetDefault("known_common_names", cfg.KnownCommonNames)
	v.SetDefault("rewrite.add_process_isolation", cfg.Rewrite.AddProcessIsolation)
	v.SetDefault("rewrite.add_fact_attributes", cfg.Rewrite.AddFactAttributes)
	v.SetDefault("rewrite.deduplicate_class_names", cfg.Rewrite.DeduplicateClassNames)
	v.SetDefault("rewrite.cleanup_module_assembly", cfg.Rewrite.CleanupModuleAssembly)
	v.SetDefault("rewrite.class_to_deduplicate", cfg.Rewrite.ClassToDeduplicate)
	v.SetDefault("rewrite.match_source_to_project", cfg.Rewrite.MatchSourceToProject)
	v.SetDefault("rewrite.dry_run", cfg.Rewrite.DryRun)
}

// ApplyFlags overrides file values with the flags that were set
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if flags.TestPath != "" {
		c.TestPath = flags.TestPath
	}
}

// GetTestPath returns the absolute test tree root
func (c *Config) GetTestPath() string {
	if abs, err := filepath.Abs(c.TestPath); err == nil {
		return abs
	}
	return c.TestPath
}

// GetOutputPath returns the full path to the snapshot file. Relative output
// directories live under the test tree so every command finds the same file.
func (c *Config) GetOutputPath() string {
	dir := c.OutputJSONDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.GetTestPath(), dir)
	}
	return filepath.Join(dir, c.OutputJSONFile)
}

// WriteDefault writes the default configuration as YAML. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yaml.Marshal(New())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the beanc configuration
type Config struct {
	ProjectName string      `mapstructure:"project_name"`
	Build       BuildConfig `mapstructure:"build"`
	Log         LogConfig   `mapstructure:"log"`
}

// BuildConfig represents build configuration
type BuildConfig struct {
	FactsDir    string `mapstructure:"facts_dir"`
	OutputDir   string `mapstructure:"output_dir"`
	Compress    bool   `mapstructure:"compress"`
	Parallelism int    `mapstructure:"parallelism"`
	CacheSize   int    `mapstructure:"cache_size"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EnvPrefix prefixes environment overrides, e.g. BEANC_BUILD_OUTPUT_DIR
const EnvPrefix = "BEANC"

// factsExtensions are the file types picked up from the facts directory
var factsExtensions = map[string]bool{".yml": true, ".yaml": true, ".json": true}

// Load loads the configuration from beanc.yml or beanc.yaml in the current
// directory
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads the configuration from beanc.yml or beanc.yaml in dir.
// Variables in dir/.env are exported first; they never replace variables
// already set in the environment.
func LoadFrom(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// Set defaults
	v.SetDefault("project_name", "")
	v.SetDefault("build.facts_dir", "beans")
	v.SetDefault("build.output_dir", "build/beans")
	v.SetDefault("build.compress", false)
	v.SetDefault("build.parallelism", 4)
	v.SetDefault("build.cache_size", 256)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Set config name and paths
	v.SetConfigName("beanc")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	// Enable environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// FactsFiles lists the facts documents in the facts directory, sorted
func (b BuildConfig) FactsFiles() ([]string, error) {
	entries, err := os.ReadDir(b.FactsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read facts directory %s: %w", b.FactsDir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if factsExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(b.FactsDir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Build.OutputDir == "" {
		return fmt.Errorf("build.output_dir must not be empty")
	}
	if cfg.Build.Parallelism < 1 {
		return fmt.Errorf("build.parallelism must be at least 1, got: %d", cfg.Build.Parallelism)
	}
	if cfg.Build.CacheSize < 1 {
		return fmt.Errorf("build.cache_size must be at least 1, got: %d", cfg.Build.CacheSize)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got: %s", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got: %s", cfg.Log.Format)
	}
	return nil
}

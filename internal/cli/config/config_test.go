package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(oldWd)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "beans", cfg.Build.FactsDir)
	assert.Equal(t, "build/beans", cfg.Build.OutputDir)
	assert.False(t, cfg.Build.Compress)
	assert.Equal(t, 4, cfg.Build.Parallelism)
	assert.Equal(t, 256, cfg.Build.CacheSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFrom_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `
project_name: acme-beans
build:
  facts_dir: analyzer/out
  output_dir: dist/beans
  compress: true
  parallelism: 8
  cache_size: 32
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "beanc.yml"), []byte(configContent), 0644))

	cfg, err := LoadFrom(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "acme-beans", cfg.ProjectName)
	assert.Equal(t, "analyzer/out", cfg.Build.FactsDir)
	assert.Equal(t, "dist/beans", cfg.Build.OutputDir)
	assert.True(t, cfg.Build.Compress)
	assert.Equal(t, 8, cfg.Build.Parallelism)
	assert.Equal(t, 32, cfg.Build.CacheSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("BEANC_BUILD_OUTPUT_DIR", "env/out")
	t.Setenv("BEANC_BUILD_PARALLELISM", "2")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "env/out", cfg.Build.OutputDir)
	assert.Equal(t, 2, cfg.Build.Parallelism)
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "beanc.yml"), []byte("build: [oops"), 0644))

	_, err := LoadFrom(tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		return Config{
			Build: BuildConfig{OutputDir: "out", Parallelism: 1, CacheSize: 1},
			Log:   LogConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty output dir", func(c *Config) { c.Build.OutputDir = "" }, "build.output_dir"},
		{"zero parallelism", func(c *Config) { c.Build.Parallelism = 0 }, "build.parallelism"},
		{"negative cache size", func(c *Config) { c.Build.CacheSize = -1 }, "build.cache_size"},
		{"unknown level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFactsFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yml", "a.json", "c.yaml", "notes.txt", ".hidden.yml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("beans: []"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yml"), 0755))

	files, err := BuildConfig{FactsDir: dir}.FactsFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.yml"),
		filepath.Join(dir, "c.yaml"),
	}, files)

	_, err = BuildConfig{FactsDir: filepath.Join(dir, "missing")}.FactsFiles()
	assert.Error(t, err)
}

func TestLoadFrom_DotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("BEANC_PROJECT_NAME=from-dotenv\nBEANC_BUILD_CACHE_SIZE=16\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv("BEANC_PROJECT_NAME")
		os.Unsetenv("BEANC_BUILD_CACHE_SIZE")
	})
	t.Setenv("BEANC_BUILD_CACHE_SIZE", "64")

	cfg, err := LoadFrom(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.ProjectName)
	// the real environment wins over .env
	assert.Equal(t, 64, cfg.Build.CacheSize)
}

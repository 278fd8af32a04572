package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/beanc/internal/cli/config"
	"github.com/conduit-lang/beanc/internal/compiler/driver"
	"github.com/conduit-lang/beanc/internal/compiler/errors"
)

const serviceFacts = `beans:
  - type: com.acme.Service
    singleton: true
    declarations:
      - constructor:
          params:
            - name: repo
              type: com.acme.Repo
      - injection:
          kind: field-value
          declaring_type: com.acme.Service
          type: java.lang.String
          name: name
          optional: true
      - executable:
          declaring_type: com.acme.Service
          return_type: void
          name: run
  - type: com.acme.Repo
    declarations:
      - constructor: {}
`

const brokenFacts = `beans:
  - type: com.acme.Broken
    declarations:
      - constructor: {}
      - constructor: {}
  - type: com.acme.Fine
`

// setupProject creates a project with the given facts files under beans/
// and makes it the working directory
func setupProject(t *testing.T, facts map[string]string) string {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "beans"), 0755))
	for name, content := range facts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "beans", name), []byte(content), 0644))
	}

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })
	return dir
}

func runCommand(args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCompileCommand_WritesArtifacts(t *testing.T) {
	setupProject(t, map[string]string{"service.yml": serviceFacts})

	stdout, _, err := runCommand("compile")
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ Compiled 2 bean(s)")
	assert.Contains(t, stdout, "Artifacts: build/beans")
	assert.FileExists(t, filepath.Join("build", "beans", "com.acme.$ServiceDefinition.json"))
	assert.FileExists(t, filepath.Join("build", "beans", "com.acme.$RepoDefinition.json"))
}

func TestCompileCommand_Verbose(t *testing.T) {
	setupProject(t, map[string]string{"service.yml": serviceFacts})

	stdout, stderr, err := runCommand("compile", "--verbose")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Compiling 1 facts file(s)...")
	assert.Contains(t, stdout, "com.acme.Service → "+filepath.Join("build", "beans", "com.acme.$ServiceDefinition.json"))
	assert.Contains(t, stderr, "bean sealed")
}

func TestCompileCommand_OutputAndCompress(t *testing.T) {
	setupProject(t, map[string]string{"service.yml": serviceFacts})

	_, _, err := runCommand("compile", "--compress", "-o", "dist")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join("dist", "com.acme.$ServiceDefinition.json.gz"))
	assert.NoDirExists(t, filepath.Join("build", "beans"))
}

func TestCompileCommand_ExplicitFiles(t *testing.T) {
	dir := setupProject(t, nil)
	path := filepath.Join(dir, "elsewhere.yml")
	require.NoError(t, os.WriteFile(path, []byte(serviceFacts), 0644))

	stdout, _, err := runCommand("compile", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Compiled 2 bean(s)")
}

func TestCompileCommand_ReportsFailures(t *testing.T) {
	setupProject(t, map[string]string{"broken.yml": brokenFacts})

	stdout, stderr, err := runCommand("compile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation failed with 1 error(s)")

	assert.Contains(t, stderr, "COMPILATION FAILED: 1 error(s) in 1 file(s)")
	assert.Contains(t, stderr, "[USE101]")
	assert.Contains(t, stderr, "com.acme.Broken")
	assert.Contains(t, stdout, "Compiled 1 bean(s)")
}

func TestCompileCommand_JSONReport(t *testing.T) {
	setupProject(t, map[string]string{
		"a_service.yml": serviceFacts,
		"b_broken.yml":  brokenFacts,
	})

	stdout, _, err := runCommand("compile", "--json")
	require.Error(t, err)

	var report compileReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))

	assert.False(t, report.Success)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Metrics.Files)
	assert.Equal(t, 3, report.Metrics.FilesWritten)

	require.Len(t, report.Artifacts, 3)
	assert.Equal(t, "com.acme.Service", report.Artifacts[0].Bean)
	assert.Equal(t, "com.acme.$ServiceDefinition", report.Artifacts[0].Definition)
	assert.Len(t, report.Artifacts[0].Digest, 64)

	require.Len(t, report.Failures, 1)
	failure := report.Failures[0]
	assert.Equal(t, "com.acme.Broken", failure.Bean)
	assert.Equal(t, filepath.Join("beans", "b_broken.yml"), failure.File)
	require.NotEmpty(t, failure.Errors)
	assert.Equal(t, errors.ErrDuplicateConstructor, failure.Errors[0].Code)
}

func TestFailedIgnoresWarnings(t *testing.T) {
	warning := &errors.CompilerError{Code: errors.ErrEmitFailed, Severity: errors.SeverityWarning}
	problem := &errors.CompilerError{Code: errors.ErrEmitFailed, Severity: errors.SeverityError}

	assert.False(t, failed(&driver.Result{}))
	assert.False(t, failed(&driver.Result{Failures: []driver.Failure{{File: "a.yml", Err: warning}}}))
	assert.True(t, failed(&driver.Result{Failures: []driver.Failure{
		{File: "a.yml", Err: warning},
		{File: "b.yml", Err: errors.ErrorList{problem}},
	}}))
	assert.True(t, failed(&driver.Result{Failures: []driver.Failure{{File: "c.yml", Err: os.ErrNotExist}}}))
}

func TestCompileCommand_NoFactsFiles(t *testing.T) {
	setupProject(t, nil)

	_, _, err := runCommand("compile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no facts files found in beans")
}

func TestCompileCommand_MissingFactsDir(t *testing.T) {
	dir := setupProject(t, nil)
	require.NoError(t, os.Remove(filepath.Join(dir, "beans")))

	_, _, err := runCommand("compile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read facts directory")
}

func TestCompileCommand_InvalidConfig(t *testing.T) {
	dir := setupProject(t, map[string]string{"service.yml": serviceFacts})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beanc.yml"), []byte("build:\n  parallelism: 0\n"), 0644))

	_, stderr, err := runCommand("compile")
	require.Error(t, err)
	assert.Contains(t, stderr, "CONFIGURATION ERROR")
	assert.Contains(t, stderr, "build.parallelism")
}

func TestDriverConfig(t *testing.T) {
	cfg := &config.Config{Build: config.BuildConfig{
		OutputDir:   "out",
		Compress:    true,
		Parallelism: 3,
		CacheSize:   7,
	}}

	dc := driverConfig(cfg)
	assert.Equal(t, "out", dc.OutputDir)
	assert.True(t, dc.Compress)
	assert.Equal(t, 3, dc.Parallelism)
	assert.Equal(t, 7, dc.CacheSize)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger(&buf, config.LogConfig{Level: "warn", Format: "json"}, false)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, logger.Sync())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger, err = newLogger(&buf, config.LogConfig{Level: "warn", Format: "console"}, true)
	require.NoError(t, err)
	logger.Debug("debug line")
	assert.Contains(t, buf.String(), "debug line")

	_, err = newLogger(&buf, config.LogConfig{Level: "loud"}, false)
	assert.Error(t, err)
}

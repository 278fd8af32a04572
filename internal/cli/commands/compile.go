package commands

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/beanc/internal/cli/config"
	"github.com/conduit-lang/beanc/internal/cli/ui"
	"github.com/conduit-lang/beanc/internal/compiler/driver"
	"github.com/conduit-lang/beanc/internal/compiler/errors"
)

var (
	compileJSON     bool
	compileVerbose  bool
	compileOutput   string
	compileCompress bool
)

// NewCompileCommand creates the compile command
func NewCompileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [facts files...]",
		Short: "Compile analyzer facts into bean definition artifacts",
		Long: `Compile facts documents into one artifact per declared bean.

With no arguments every .yml, .yaml and .json file in the configured facts
directory (build.facts_dir, default beans/) is compiled.

For each bean:
  1. Replay - feed the recorded declarations into a definition builder
  2. Seal - validate the definition and freeze it
  3. Extract - build the artifact document and its digest
  4. Write - emit <definition>.json (or .json.gz) to the output directory`,
		Example: `  # Compile the facts directory
  beanc compile

  # Compile specific files with debug logging
  beanc compile --verbose beans/services.yml

  # Report failures as JSON (useful for tooling)
  beanc compile --json

  # Write gzip-compressed artifacts to a custom directory
  beanc compile --compress -o dist/beans`,
		RunE: runCompile,
	}

	cmd.Flags().BoolVar(&compileJSON, "json", false, "Output the compilation report in JSON format")
	cmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "Show detailed compile output")
	cmd.Flags().StringVarP(&compileOutput, "output", "o", "", "Artifact output directory (default: build.output_dir)")
	cmd.Flags().BoolVar(&compileCompress, "compress", false, "Write gzip-compressed artifacts")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	infoColor := color.New(color.FgCyan)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(errOut, ui.ConfigError(err.Error(), false))
		return err
	}
	if compileOutput != "" {
		cfg.Build.OutputDir = compileOutput
	}
	if compileCompress {
		cfg.Build.Compress = true
	}

	files := args
	if len(files) == 0 {
		files, err = cfg.Build.FactsFiles()
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no facts files found in %s", cfg.Build.FactsDir)
		}
	}

	logger, err := newLogger(errOut, cfg.Log, compileVerbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	d, err := driver.New(driverConfig(cfg), logger)
	if err != nil {
		return err
	}

	if compileVerbose && !compileJSON {
		infoColor.Fprintf(out, "Compiling %d facts file(s)...\n", len(files))
	}

	result, err := d.Compile(cmd.Context(), files)
	if err != nil {
		return err
	}

	if compileJSON {
		if err := writeReportJSON(out, result); err != nil {
			return err
		}
	} else {
		writeReportTerminal(out, errOut, result, cfg.Build.OutputDir, compileVerbose)
	}

	if failed(result) {
		return fmt.Errorf("compilation failed with %d error(s)", len(result.Failures))
	}
	return nil
}

// failed reports whether any failure is error-level. Failures carrying no
// compiler error, such as unreadable files, always count.
func failed(result *driver.Result) bool {
	var list errors.ErrorList
	for _, f := range result.Failures {
		errs := compilerErrors(f)
		if len(errs) == 0 {
			return true
		}
		list = append(list, errs...)
	}
	return list.HasErrors()
}

// driverConfig maps the build section onto driver settings
func driverConfig(cfg *config.Config) driver.Config {
	return driver.Config{
		OutputDir:   cfg.Build.OutputDir,
		Compress:    cfg.Build.Compress,
		Parallelism: cfg.Build.Parallelism,
		CacheSize:   cfg.Build.CacheSize,
	}
}

type compileReport struct {
	Success   bool             `json:"success"`
	RunID     string           `json:"run_id"`
	Artifacts []artifactReport `json:"artifacts"`
	Failures  []failureReport  `json:"failures"`
	Metrics   metricsReport    `json:"metrics"`
}

type artifactReport struct {
	Bean       string `json:"bean"`
	Definition string `json:"definition"`
	Source     string `json:"source"`
	Path       string `json:"path"`
	Digest     string `json:"digest"`
	Cached     bool   `json:"cached"`
}

type failureReport struct {
	File    string                  `json:"file"`
	Bean    string                  `json:"bean,omitempty"`
	Message string                  `json:"message"`
	Errors  []*errors.CompilerError `json:"errors,omitempty"`
}

type metricsReport struct {
	Files         int     `json:"files"`
	BeansCompiled int     `json:"beans_compiled"`
	BeansFailed   int     `json:"beans_failed"`
	FilesWritten  int     `json:"files_written"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
	DurationMS    int64   `json:"duration_ms"`
}

func newCompileReport(result *driver.Result) compileReport {
	report := compileReport{
		Success:   !failed(result),
		RunID:     result.RunID,
		Artifacts: make([]artifactReport, 0, len(result.Outputs)),
		Failures:  make([]failureReport, 0, len(result.Failures)),
		Metrics: metricsReport{
			Files:         result.Metrics.TotalFiles,
			BeansCompiled: result.Metrics.BeansCompiled,
			BeansFailed:   result.Metrics.BeansFailed,
			FilesWritten:  result.Metrics.FilesWritten,
			CacheHitRate:  result.Metrics.CacheHitRate(),
			DurationMS:    result.Metrics.TotalDuration.Milliseconds(),
		},
	}

	for _, o := range result.Outputs {
		report.Artifacts = append(report.Artifacts, artifactReport{
			Bean:       o.Artifact.BeanType,
			Definition: o.Artifact.Definition,
			Source:     o.Source,
			Path:       o.Path,
			Digest:     o.Artifact.Digest,
			Cached:     o.Cached,
		})
	}
	for _, f := range result.Failures {
		report.Failures = append(report.Failures, failureReport{
			File:    f.File,
			Bean:    f.Bean,
			Message: f.Error(),
			Errors:  compilerErrors(f),
		})
	}
	return report
}

func writeReportJSON(w io.Writer, result *driver.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newCompileReport(result))
}

func writeReportTerminal(out, errOut io.Writer, result *driver.Result, outputDir string, verbose bool) {
	infoColor := color.New(color.FgCyan)

	if verbose {
		for _, o := range result.Outputs {
			suffix := ""
			if o.Cached {
				suffix = " (cached)"
			}
			fmt.Fprintf(out, "  %s → %s%s\n", o.Artifact.BeanType, o.Path, suffix)
		}
	}

	if result.Failed() {
		details := failureDetails(result.Failures)
		fmt.Fprintln(errOut)
		fmt.Fprint(errOut, ui.BuildError(fmt.Sprintf("%d error(s) in %d file(s)", len(details), countFiles(result.Failures)), details, false))
		fmt.Fprintln(errOut)
	}

	m := result.Metrics
	if m.FilesWritten > 0 || !result.Failed() {
		ui.WriteSuccess(out, fmt.Sprintf("Compiled %d bean(s) in %.2fs", m.FilesWritten, m.TotalDuration.Seconds()), false)
		infoColor.Fprintf(out, "  Artifacts: %s\n", outputDir)
		infoColor.Fprintf(out, "  Cache: %d/%d file(s) reused\n", m.CacheHits, m.TotalFiles)
	}
}

// failureDetails flattens failures into one line per compiler error
func failureDetails(failures []driver.Failure) []string {
	var details []string
	for _, f := range failures {
		errs := compilerErrors(f)
		if len(errs) == 0 {
			details = append(details, fmt.Sprintf("%s: %v", f.File, f.Err))
			continue
		}
		for _, e := range errs {
			details = append(details, errors.FormatCompact(e))
		}
	}
	return details
}

func countFiles(failures []driver.Failure) int {
	seen := make(map[string]bool)
	for _, f := range failures {
		seen[f.File] = true
	}
	return len(seen)
}

// compilerErrors returns the structured errors carried by err, if any
func compilerErrors(err error) []*errors.CompilerError {
	var list errors.ErrorList
	if stderrors.As(err, &list) {
		return list
	}
	var single *errors.CompilerError
	if stderrors.As(err, &single) {
		return []*errors.CompilerError{single}
	}
	return nil
}

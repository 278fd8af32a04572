// Package driver compiles facts documents into artifact files. Each declared
// type gets its own builder; files are processed in parallel.
package driver

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/conduit-lang/beanc/internal/compiler/cache"
	"github.com/conduit-lang/beanc/internal/compiler/errors"
	"github.com/conduit-lang/beanc/internal/compiler/facts"
	"github.com/conduit-lang/beanc/internal/compiler/metadata"
)

// Config controls where and how artifacts are produced
type Config struct {
	OutputDir   string
	Compress    bool
	Parallelism int
	CacheSize   int
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		OutputDir:   filepath.Join("build", "beans"),
		Parallelism: 4,
		CacheSize:   cache.DefaultSize,
	}
}

// Metrics tracks performance metrics for one run
type Metrics struct {
	TotalFiles    int
	CacheHits     int
	CacheMisses   int
	BeansCompiled int
	BeansFailed   int
	FilesWritten  int
	TotalDuration time.Duration
	StartTime     time.Time
	EndTime       time.Time
}

// CacheHitRate returns the cache hit rate as a percentage
func (m Metrics) CacheHitRate() float64 {
	if m.TotalFiles == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(m.TotalFiles) * 100.0
}

// Output is one artifact written to disk
type Output struct {
	Source   string
	Path     string
	Artifact *metadata.Artifact
	Cached   bool
}

// Failure is a facts file or bean that could not be compiled. Bean is empty
// when the whole file failed.
type Failure struct {
	File string
	Bean string
	Err  error
}

func (f Failure) Error() string {
	return f.Err.Error()
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result is the outcome of a Compile call
type Result struct {
	RunID    string
	Outputs  []Output
	Failures []Failure
	Metrics  Metrics
}

// Failed reports whether any file or bean failed
func (r *Result) Failed() bool {
	return len(r.Failures) > 0
}

// Driver compiles facts files. It keeps an artifact cache across runs and is
// safe for concurrent use.
type Driver struct {
	cfg    Config
	logger *zap.Logger
	cache  *cache.ArtifactCache

	mu      sync.Mutex
	written map[string][]string // facts path -> artifact paths last written for it
}

// New creates a driver
func New(cfg Config, logger *zap.Logger) (*Driver, error) {
	if cfg.Parallelism < 1 {
		return nil, fmt.Errorf("parallelism must be at least 1, got %d", cfg.Parallelism)
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}
	artifactCache, err := cache.NewArtifactCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		cfg:     cfg,
		logger:  logger,
		cache:   artifactCache,
		written: make(map[string][]string),
	}, nil
}

// CacheStats reports the artifact cache counters
func (d *Driver) CacheStats() cache.Stats {
	return d.cache.Stats()
}

// Forget drops everything compiled from the facts file at path: its cache
// entries and the artifacts written for it. Artifacts another facts file has
// since claimed are kept. It returns the deleted artifact paths.
func (d *Driver) Forget(path string) ([]string, error) {
	path = filepath.Clean(path)

	targets := make(map[string]bool)
	for _, entry := range d.cache.InvalidatePath(path) {
		for _, a := range entry.Artifacts {
			targets[d.outputPath(a)] = true
		}
	}

	d.mu.Lock()
	for _, target := range d.written[path] {
		targets[target] = true
	}
	delete(d.written, path)
	for _, others := range d.written {
		for _, target := range others {
			delete(targets, target)
		}
	}
	d.mu.Unlock()

	var deleted []string
	var errs []error
	for target := range targets {
		if err := os.Remove(target); err != nil {
			if !os.IsNotExist(err) {
				errs = append(errs, fmt.Errorf("failed to delete artifact %s: %w", target, err))
			}
			continue
		}
		deleted = append(deleted, target)
	}
	sort.Strings(deleted)

	d.logger.Info("facts forgotten", zap.String("file", path), zap.Strings("deleted", deleted))
	return deleted, stderrors.Join(errs...)
}

// fileOutcome is what compiling one facts file produced
type fileOutcome struct {
	path      string
	hash      string
	cached    bool
	artifacts []*metadata.Artifact
	failures  []Failure
}

// Compile compiles every facts file in paths and writes the artifacts of the
// beans that sealed. Failures of individual files or beans are collected in
// the result. The returned error is non-nil only when ctx is done.
func (d *Driver) Compile(ctx context.Context, paths []string) (*Result, error) {
	result := &Result{
		RunID: uuid.NewString(),
		Metrics: Metrics{
			TotalFiles: len(paths),
			StartTime:  time.Now(),
		},
	}
	logger := d.logger.With(zap.String("run_id", result.RunID))
	logger.Info("compilation started", zap.Int("files", len(paths)), zap.Int("parallelism", d.cfg.Parallelism))

	outcomes := make([]*fileOutcome, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Parallelism)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome := d.compileFile(path, logger)

			mu.Lock()
			outcomes[i] = outcome
			if outcome.cached {
				result.Metrics.CacheHits++
			} else {
				result.Metrics.CacheMisses++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("compilation cancelled", zap.Error(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.write(result, outcomes, logger)

	result.Metrics.EndTime = time.Now()
	result.Metrics.TotalDuration = result.Metrics.EndTime.Sub(result.Metrics.StartTime)
	logger.Info("compilation finished",
		zap.Int("beans", result.Metrics.BeansCompiled),
		zap.Int("failed", result.Metrics.BeansFailed),
		zap.Int("written", result.Metrics.FilesWritten),
		zap.Float64("cache_hit_rate", result.Metrics.CacheHitRate()),
		zap.Duration("duration", result.Metrics.TotalDuration),
	)
	return result, nil
}

// compileFile compiles a single facts file with caching
func (d *Driver) compileFile(path string, logger *zap.Logger) *fileOutcome {
	out := &fileOutcome{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		out.failures = append(out.failures, Failure{File: path, Err: fmt.Errorf("failed to read facts: %w", err)})
		return out
	}
	out.hash = cache.HashContent(data)
	key := cache.Key(out.hash, metadata.SchemaVersion)
	log := logger.With(zap.String("file", path), zap.String("hash", out.hash[:12]))

	if entry, ok := d.cache.Get(key); ok {
		out.cached = true
		out.artifacts = entry.Artifacts
		log.Debug("facts unchanged", zap.Bool("cached", true), zap.Int("beans", len(entry.Artifacts)))
		return out
	}

	doc, err := facts.Parse(data)
	if err != nil {
		out.failures = append(out.failures, Failure{File: path, Err: withFile(err, path)})
		log.Warn("facts rejected", zap.Error(err))
		return out
	}
	log.Debug("facts loaded", zap.Bool("cached", false), zap.Int("beans", len(doc.Beans)))

	extractor := metadata.NewExtractor(metadata.SchemaVersion)
	extractor.SetSourceHash(out.hash)

	for _, bean := range doc.Beans {
		descriptor, err := facts.Compile(bean)
		if err != nil {
			out.failures = append(out.failures, Failure{File: path, Bean: bean.Type, Err: withFile(err, path)})
			log.Warn("bean rejected", zap.String("bean", bean.Type), zap.Error(err))
			continue
		}

		artifact, err := extractor.Extract(descriptor)
		if err != nil {
			emitErr := errors.NewEmitFailed(descriptor.DefinitionName(), err.Error()).WithBean(bean.Type).WithFile(path)
			out.failures = append(out.failures, Failure{File: path, Bean: bean.Type, Err: emitErr})
			continue
		}
		out.artifacts = append(out.artifacts, artifact)
		log.Debug("bean sealed", zap.String("bean", bean.Type), zap.String("definition", artifact.Definition))
	}

	// partially failed files are recompiled next time so failures stay visible
	if len(out.failures) == 0 {
		d.cache.Set(key, path, out.artifacts)
	}
	return out
}

// write emits artifacts in input order. A definition produced by more than
// one bean is written once; later producers are reported as failures.
func (d *Driver) write(result *Result, outcomes []*fileOutcome, logger *zap.Logger) {
	producers := make(map[string]string)

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, outcome := range outcomes {
		var targets []string
		result.Failures = append(result.Failures, outcome.failures...)
		for _, f := range outcome.failures {
			if f.Bean != "" {
				result.Metrics.BeansFailed++
			}
		}

		for _, a := range outcome.artifacts {
			result.Metrics.BeansCompiled++

			if source, taken := producers[a.Definition]; taken {
				err := errors.NewEmitFailed(a.Definition, "definition already produced by "+source).
					WithBean(a.BeanType).WithFile(outcome.path)
				result.Failures = append(result.Failures, Failure{File: outcome.path, Bean: a.BeanType, Err: err})
				result.Metrics.BeansFailed++
				continue
			}
			producers[a.Definition] = outcome.path

			target := d.outputPath(a)
			var err error
			if d.cfg.Compress {
				err = metadata.WriteCompressedToFile(a, target)
			} else {
				err = metadata.WriteToFile(a, target)
			}
			if err != nil {
				emitErr := errors.NewEmitFailed(a.Definition, err.Error()).WithBean(a.BeanType).WithFile(outcome.path)
				result.Failures = append(result.Failures, Failure{File: outcome.path, Bean: a.BeanType, Err: emitErr})
				result.Metrics.BeansFailed++
				continue
			}

			result.Metrics.FilesWritten++
			targets = append(targets, target)
			result.Outputs = append(result.Outputs, Output{
				Source:   outcome.path,
				Path:     target,
				Artifact: a,
				Cached:   outcome.cached,
			})
			logger.Debug("artifact written", zap.String("bean", a.BeanType), zap.String("file", target))
		}
		d.written[filepath.Clean(outcome.path)] = targets
	}
}

// outputPath returns where the artifact for a definition is written
func (d *Driver) outputPath(a *metadata.Artifact) string {
	name := a.Definition + ".json"
	if d.cfg.Compress {
		name += ".gz"
	}
	return filepath.Join(d.cfg.OutputDir, name)
}

// withFile stamps the facts path on compiler errors
func withFile(err error, path string) error {
	switch e := err.(type) {
	case *errors.CompilerError:
		return e.WithFile(path)
	case errors.ErrorList:
		return e.WithFile(path)
	}
	return err
}

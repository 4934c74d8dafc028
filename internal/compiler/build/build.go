// Package build runs derive_where over item description files in batches:
// it loads every file, expands its items, and writes one Rust file per
// description into the output directory. Files are processed concurrently;
// items within a file are expanded in order.
package build

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/conduit-lang/derivewhere/internal/compiler/cache"
	"github.com/conduit-lang/derivewhere/internal/compiler/codegen"
	"github.com/conduit-lang/derivewhere/internal/compiler/errors"
	"github.com/conduit-lang/derivewhere/internal/compiler/schema"
	"github.com/conduit-lang/derivewhere/internal/compiler/traits"
	"github.com/conduit-lang/derivewhere/internal/format"
	utilstrings "github.com/conduit-lang/derivewhere/internal/util/strings"
)

// manifestMaxAge drops cache entries for descriptions not seen in a month,
// which covers deleted and renamed sources
const manifestMaxAge = 30 * 24 * time.Hour

// Options configures a Builder
type Options struct {
	Traits    traits.Options
	Format    *format.Config
	Root      string // sources are mirrored relative to Root
	OutputDir string
	Extension string
	Workers   int
	Check     bool // generate and compare, never write
	Force     bool // ignore the cache

	// Progress is called once per finished file. Calls never overlap.
	Progress func(*FileResult)
}

// FileResult is the outcome for one item description file
type FileResult struct {
	Source      string
	Output      string
	Code        string
	Items       int
	Impls       int
	Written     bool
	Cached      bool
	Stale       bool // check mode: the output on disk differs
	Diff        *format.DiffResult
	Diagnostics errors.ErrorList
}

// Result is the outcome of one run
type Result struct {
	RunID    string
	Files    []*FileResult
	Duration time.Duration
}

// Diagnostics returns the diagnostics of every file in order
func (r *Result) Diagnostics() errors.ErrorList {
	var all errors.ErrorList
	for _, f := range r.Files {
		all = append(all, f.Diagnostics...)
	}
	return all
}

// HasErrors reports whether any file produced diagnostics
func (r *Result) HasErrors() bool {
	return r.Diagnostics().HasErrors()
}

// Stale returns the files whose output is out of date (check mode)
func (r *Result) Stale() []*FileResult {
	var stale []*FileResult
	for _, f := range r.Files {
		if f.Stale {
			stale = append(stale, f)
		}
	}
	return stale
}

// Builder expands item description files
type Builder struct {
	opts     Options
	expander *codegen.Expander
	cache    *cache.OutputCache
	hasher   *cache.FileHasher
	logger   *zap.Logger
}

// New creates a Builder. A nil logger disables logging.
func New(opts Options, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Extension == "" {
		opts.Extension = ".rs"
	}
	if opts.Root == "" {
		opts.Root = "."
	}

	return &Builder{
		opts:     opts,
		expander: codegen.NewExpander(opts.Traits, codegen.WithLogger(logger), codegen.WithFormat(opts.Format)),
		cache:    cache.NewOutputCache(),
		hasher:   cache.NewFileHasher(),
		logger:   logger,
	}
}

// OutputPath maps a source file to its generated file. The file name is
// converted to snake_case so it can serve as a Rust module name.
func (b *Builder) OutputPath(source string) string {
	rel, err := filepath.Rel(b.opts.Root, source)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(source)
	}
	dir, name := filepath.Split(strings.TrimSuffix(rel, schema.Extension))
	return filepath.Join(b.opts.OutputDir, dir, utilstrings.ToSnakeCase(name)+b.opts.Extension)
}

// Build processes paths. Diagnostics are reported per file in the result;
// the returned error is reserved for I/O failures and cancellation.
func (b *Builder) Build(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID: uuid.NewString(),
		Files: make([]*FileResult, len(paths)),
	}
	logger := b.logger.With(zap.String("run_id", result.RunID))
	logger.Info("build started", zap.Int("files", len(paths)), zap.Int("workers", b.opts.Workers))

	manifest := filepath.Join(b.opts.OutputDir, cache.ManifestName)
	if !b.opts.Check && !b.opts.Force {
		loaded, err := cache.Load(manifest)
		if err != nil {
			logger.Warn("ignoring unreadable cache", zap.Error(err))
		} else {
			b.cache = loaded
			if pruned := b.cache.Prune(manifestMaxAge); pruned > 0 {
				logger.Debug("pruned cache entries", zap.Int("entries", pruned))
			}
		}
	}

	var progressMu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, err := b.buildFile(path, logger)
			if err != nil {
				return err
			}
			result.Files[i] = file
			if b.opts.Progress != nil {
				progressMu.Lock()
				b.opts.Progress(file)
				progressMu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !b.opts.Check {
		if err := b.cache.Save(manifest); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	logger.Info("build finished",
		zap.Duration("duration", result.Duration),
		zap.Int("diagnostics", len(result.Diagnostics())),
	)
	return result, nil
}

// buildFile expands one file. A diagnostic in any item leaves the output
// untouched.
func (b *Builder) buildFile(path string, logger *zap.Logger) (*FileResult, error) {
	file := &FileResult{Source: path, Output: b.OutputPath(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	sourceHash := b.hasher.HashContent(data)
	optionsHash := b.optionsHash()
	if !b.opts.Check && !b.opts.Force && b.cache.Fresh(path, sourceHash, optionsHash) {
		logger.Debug("output up to date", zap.String("source", path))
		file.Cached = true
		return file, nil
	}

	loaded, err := schema.Parse(path, data)
	if err != nil {
		return b.fail(file, err, logger)
	}
	file.Items = len(loaded.Items)

	var code strings.Builder
	fmt.Fprintf(&code, "// Generated by derivewhere from %s. DO NOT EDIT.\n", filepath.ToSlash(filepath.Base(path)))

	for _, decl := range loaded.Items {
		out, err := b.expander.Expand(decl)
		if err != nil {
			if _, ok := errors.As(err); !ok {
				return nil, err
			}
			b.fail(file, err, logger)
			continue
		}
		file.Impls += len(out.Impls)
		code.WriteString("\n")
		code.WriteString(out.String())
	}

	if len(file.Diagnostics) > 0 {
		return file, nil
	}
	file.Code = code.String()

	if b.opts.Check {
		existing, err := os.ReadFile(file.Output)
		if err != nil && !stderrors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		file.Diff = format.Diff(string(existing), file.Code)
		file.Stale = file.Diff.Changed
		return file, nil
	}

	file.Written, err = cache.WriteIfChanged(file.Output, []byte(file.Code))
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", file.Output, err)
	}
	b.cache.Set(path, sourceHash, optionsHash, file.Output, []byte(file.Code))

	logger.Debug("generated",
		zap.String("source", path),
		zap.String("output", file.Output),
		zap.Int("impls", file.Impls),
		zap.Bool("written", file.Written),
	)
	return file, nil
}

func (b *Builder) fail(file *FileResult, err error, logger *zap.Logger) (*FileResult, error) {
	ce, ok := errors.As(err)
	if !ok {
		return nil, err
	}
	if ce.File == "" {
		ce.WithFile(file.Source)
	}
	logger.Debug("diagnostic", zap.String("source", file.Source), zap.String("code", string(ce.Code)))
	file.Diagnostics = append(file.Diagnostics, ce)
	b.cache.Invalidate(file.Source)
	return file, nil
}

// optionsHash keys the cache on every option that changes the output
func (b *Builder) optionsHash() string {
	opts := b.expander.Options()
	indent := format.DefaultConfig()
	if b.opts.Format != nil {
		indent = b.opts.Format
	}
	return b.hasher.HashParts(
		string(opts.Strategy),
		fmt.Sprint(opts.Features.Zeroize),
		fmt.Sprint(opts.Features.ZeroizeOnDrop),
		fmt.Sprint(indent.IndentSize),
		fmt.Sprint(indent.UseTabs),
		b.opts.Extension,
	)
}

package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/derivewhere/internal/compiler/build"
	"github.com/conduit-lang/derivewhere/internal/compiler/schema"
	"github.com/conduit-lang/derivewhere/internal/utils"
)

// Builder regenerates a set of item description files
type Builder interface {
	Build(ctx context.Context, paths []string) (*build.Result, error)
}

// Regenerator rebuilds item descriptions as they change
type Regenerator struct {
	builder Builder
	roots   []string
	report  func(*build.Result)
	logger  *zap.Logger

	mu          sync.Mutex
	lastBuild   time.Time
	generations int
}

// NewRegenerator creates a Regenerator. report receives the result of every
// successful run and may be nil.
func NewRegenerator(builder Builder, roots []string, report func(*build.Result), logger *zap.Logger) *Regenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Regenerator{builder: builder, roots: roots, report: report, logger: logger}
}

// FullBuild regenerates every description below the roots
func (r *Regenerator) FullBuild(ctx context.Context) (*build.Result, error) {
	var paths []string
	for _, root := range r.roots {
		found, err := utils.FindItemFiles(root)
		if err != nil {
			return nil, fmt.Errorf("failed to find item descriptions: %w", err)
		}
		paths = append(paths, found...)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s files found", schema.Extension)
	}
	return r.run(ctx, paths)
}

// IncrementalBuild regenerates the changed descriptions. Other files in
// the change set are ignored.
func (r *Regenerator) IncrementalBuild(ctx context.Context, changed []string) (*build.Result, error) {
	paths := make([]string, 0, len(changed))
	for _, file := range changed {
		if utils.IsItemFile(file) {
			paths = append(paths, file)
		}
	}
	if len(paths) == 0 {
		return &build.Result{}, nil
	}
	return r.run(ctx, paths)
}

// OnChange adapts IncrementalBuild to a FileWatcher callback
func (r *Regenerator) OnChange(ctx context.Context) func([]string) error {
	return func(files []string) error {
		_, err := r.IncrementalBuild(ctx, files)
		return err
	}
}

// Generations counts the completed runs
func (r *Regenerator) Generations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations
}

// LastBuild is the time the last run completed
func (r *Regenerator) LastBuild() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastBuild
}

func (r *Regenerator) run(ctx context.Context, paths []string) (*build.Result, error) {
	// the builder's cache is not shared across concurrent runs
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.builder.Build(ctx, paths)
	if err != nil {
		return nil, err
	}

	r.generations++
	r.lastBuild = time.Now()
	r.logger.Info("regenerated",
		zap.Int("files", len(paths)),
		zap.Int("diagnostics", len(result.Diagnostics())),
		zap.Duration("duration", result.Duration),
	)

	if r.report != nil {
		r.report(result)
	}
	return result, nil
}

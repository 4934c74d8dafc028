package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conduit-lang/derivewhere/internal/cli/config"
	"github.com/conduit-lang/derivewhere/internal/compiler/build"
	"github.com/conduit-lang/derivewhere/internal/compiler/schema"
	"github.com/conduit-lang/derivewhere/internal/utils"
)

// project is the configuration in effect for a command together with the
// directory it was found in
type project struct {
	root   string
	config *config.Config
}

// loadProject finds derivewhere.yml above the working directory. Without
// one the working directory is the root and the defaults apply.
func loadProject() (*project, error) {
	dir := workDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}

	root, err := config.FindRoot(dir)
	if err != nil {
		root, err = filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, &configError{err: err}
	}
	return &project{root: root, config: cfg}, nil
}

// configError marks a configuration that failed to load
type configError struct {
	err error
}

func (e *configError) Error() string { return "invalid configuration: " + e.err.Error() }

func (e *configError) Unwrap() error { return e.err }

// resolve makes a configured path absolute against the project root
func (p *project) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.root, path)
}

// relative shortens path for display when it lies below the root
func (p *project) relative(path string) string {
	rel, err := filepath.Rel(p.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// relativeList joins paths for display
func (p *project) relativeList(paths []string) string {
	short := make([]string, len(paths))
	for i, path := range paths {
		short[i] = p.relative(path)
	}
	return strings.Join(short, ", ")
}

// sourceRoots returns the configured source directories
func (p *project) sourceRoots() []string {
	roots := make([]string, len(p.config.Sources))
	for i, src := range p.config.Sources {
		roots[i] = p.resolve(src)
	}
	return roots
}

// itemFiles expands args, or the configured sources when args is empty,
// into item description files
func (p *project) itemFiles(args []string) ([]string, error) {
	roots := args
	if len(roots) == 0 {
		roots = p.sourceRoots()
	}

	var files []string
	for _, root := range roots {
		found, err := utils.FindItemFiles(root)
		if err != nil {
			return nil, fmt.Errorf("failed to find item descriptions: %w", err)
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found", schema.Extension)
	}
	return files, nil
}

// buildOptions returns the batch builder options of the project
func (p *project) buildOptions() build.Options {
	format := p.config.Format
	return build.Options{
		Traits:    p.config.TraitOptions(),
		Format:    &format,
		Root:      p.root,
		OutputDir: p.resolve(p.config.Output.Dir),
		Extension: p.config.Output.Extension,
		Workers:   p.config.Workers,
	}
}

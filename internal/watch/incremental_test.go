package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/derivewhere/internal/compiler/build"
)

type recordingBuilder struct {
	calls [][]string
	err   error
}

func (b *recordingBuilder) Build(_ context.Context, paths []string) (*build.Result, error) {
	b.calls = append(b.calls, paths)
	if b.err != nil {
		return nil, b.err
	}
	return &build.Result{RunID: "run"}, nil
}

func TestRegenerator_IncrementalBuild(t *testing.T) {
	builder := &recordingBuilder{}
	var reported []*build.Result
	r := NewRegenerator(builder, nil, func(res *build.Result) { reported = append(reported, res) }, nil)

	_, err := r.IncrementalBuild(context.Background(), []string{"notes.txt", "a.dw.yaml", "b.dw.yaml"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a.dw.yaml", "b.dw.yaml"}}, builder.calls)
	assert.Len(t, reported, 1)
	assert.Equal(t, 1, r.Generations())
	assert.False(t, r.LastBuild().IsZero())

	result, err := r.IncrementalBuild(context.Background(), []string{"notes.txt"})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Len(t, builder.calls, 1, "nothing to regenerate")
}

func TestRegenerator_FullBuild(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.dw.yaml"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), nil, 0o644))

	builder := &recordingBuilder{}
	r := NewRegenerator(builder, []string{dir}, nil, nil)

	_, err := r.FullBuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{filepath.Join(dir, "a.dw.yaml")}}, builder.calls)

	empty := NewRegenerator(builder, []string{t.TempDir()}, nil, nil)
	_, err = empty.FullBuild(context.Background())
	assert.ErrorContains(t, err, "no .dw.yaml files found")
}

func TestRegenerator_BuildError(t *testing.T) {
	builder := &recordingBuilder{err: errors.New("disk full")}
	r := NewRegenerator(builder, nil, nil, nil)

	err := r.OnChange(context.Background())([]string{"a.dw.yaml"})
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 0, r.Generations())
}

func TestRegenerator_WithBuilder(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "wrapper.dw.yaml")
	require.NoError(t, os.WriteFile(source, []byte(`items:
  - name: Wrapper
    generics: [T]
    attrs: ["derive_where(Debug)"]
    fields:
      - {name: inner, type: T}
`), 0o644))

	builder := build.New(build.Options{Root: dir, OutputDir: filepath.Join(dir, "gen")}, nil)
	r := NewRegenerator(builder, []string{dir}, nil, nil)

	result, err := r.FullBuild(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.True(t, result.Files[0].Written)

	code, err := os.ReadFile(filepath.Join(dir, "gen", "wrapper.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "impl<T> ::core::fmt::Debug for Wrapper<T>")
}

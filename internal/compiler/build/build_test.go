package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/conduit-lang/derivewhere/internal/compiler/cache"
	"github.com/conduit-lang/derivewhere/internal/compiler/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const validSource = `items:
  - name: Wrapper
    generics: [T]
    attrs: ["derive_where(Clone; T)"]
    fields:
      - {name: inner, type: "PhantomData<T>"}
`

const invalidSource = `items:
  - name: Marker
    attrs: ["derive_where(Clone)"]
`

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newBuilder(root string, mutate func(*Options)) *Builder {
	opts := Options{Root: root, OutputDir: filepath.Join(root, "gen"), Workers: 4}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts, nil)
}

func TestOutputPath(t *testing.T) {
	b := newBuilder("/src", nil)
	assert.Equal(t, filepath.Join("/src/gen", "models", "user.rs"), b.OutputPath("/src/models/user.dw.yaml"))
	assert.Equal(t, filepath.Join("/src/gen", "other.rs"), b.OutputPath("/elsewhere/other.dw.yaml"))
	assert.Equal(t, filepath.Join("/src/gen", "HTTP", "user_account.rs"), b.OutputPath("/src/HTTP/UserAccount.dw.yaml"))
}

func TestBuildWritesOutput(t *testing.T) {
	root := t.TempDir()
	source := writeSource(t, root, "items/wrapper.dw.yaml", validSource)

	result, err := newBuilder(root, nil).Build(context.Background(), []string{source})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.HasErrors())

	file := result.Files[0]
	assert.True(t, file.Written)
	assert.Equal(t, 1, file.Items)
	assert.Equal(t, 1, file.Impls)

	written, err := os.ReadFile(filepath.Join(root, "gen", "items", "wrapper.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(written), "// Generated by derivewhere from wrapper.dw.yaml. DO NOT EDIT.")
	assert.Contains(t, string(written), "impl<T> ::core::clone::Clone for Wrapper<T>\nwhere T: ::core::clone::Clone\n{")

	_, err = os.Stat(filepath.Join(root, "gen", cache.ManifestName))
	assert.NoError(t, err)
}

func TestBuildUsesCache(t *testing.T) {
	root := t.TempDir()
	source := writeSource(t, root, "wrapper.dw.yaml", validSource)

	_, err := newBuilder(root, nil).Build(context.Background(), []string{source})
	require.NoError(t, err)

	result, err := newBuilder(root, nil).Build(context.Background(), []string{source})
	require.NoError(t, err)
	assert.True(t, result.Files[0].Cached)
	assert.False(t, result.Files[0].Written)

	forced, err := newBuilder(root, func(o *Options) { o.Force = true }).Build(context.Background(), []string{source})
	require.NoError(t, err)
	assert.False(t, forced.Files[0].Cached)
	assert.False(t, forced.Files[0].Written, "identical output is not rewritten")
}

func TestBuildReportsDiagnostics(t *testing.T) {
	root := t.TempDir()
	good := writeSource(t, root, "good.dw.yaml", validSource)
	bad := writeSource(t, root, "bad.dw.yaml", invalidSource)

	result, err := newBuilder(root, nil).Build(context.Background(), []string{good, bad})
	require.NoError(t, err)
	require.Len(t, result.Files, 2)

	assert.Empty(t, result.Files[0].Diagnostics)
	assert.True(t, result.HasErrors())

	diagnostics := result.Files[1].Diagnostics
	require.Len(t, diagnostics, 1)
	assert.Equal(t, errors.ErrUnitStruct, diagnostics[0].Code)
	assert.Equal(t, bad, diagnostics[0].File)
	assert.False(t, result.Files[1].Written)

	_, err = os.Stat(filepath.Join(root, "gen", "bad.rs"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildCheck(t *testing.T) {
	root := t.TempDir()
	source := writeSource(t, root, "wrapper.dw.yaml", validSource)

	check := func() *Result {
		result, err := newBuilder(root, func(o *Options) { o.Check = true }).Build(context.Background(), []string{source})
		require.NoError(t, err)
		return result
	}

	before := check()
	require.Len(t, before.Stale(), 1)
	assert.NotNil(t, before.Files[0].Diff)
	_, err := os.Stat(filepath.Join(root, "gen"))
	assert.True(t, os.IsNotExist(err), "check never writes")

	_, err = newBuilder(root, nil).Build(context.Background(), []string{source})
	require.NoError(t, err)
	assert.Empty(t, check().Stale())
}

func TestBuildMissingFile(t *testing.T) {
	root := t.TempDir()
	_, err := newBuilder(root, nil).Build(context.Background(), []string{filepath.Join(root, "missing.dw.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestBuildCancelled(t *testing.T) {
	root := t.TempDir()
	source := writeSource(t, root, "wrapper.dw.yaml", validSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newBuilder(root, nil).Build(ctx, []string{source})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildManyFiles(t *testing.T) {
	root := t.TempDir()
	var paths []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		paths = append(paths, writeSource(t, root, name+".dw.yaml", validSource))
	}

	var reported []string
	result, err := newBuilder(root, func(o *Options) {
		o.Workers = 2
		o.Progress = func(f *FileResult) { reported = append(reported, f.Source) }
	}).Build(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, result.Files, len(paths))
	for i, file := range result.Files {
		assert.Equal(t, paths[i], file.Source, "results keep input order")
		assert.True(t, file.Written)
	}
	assert.ElementsMatch(t, paths, reported)
}

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/derivewhere/internal/cli/config"
)

const wrapperSource = `items:
  - name: Wrapper
    generics: [T]
    attrs: ["derive_where(Clone, Debug; T)"]
    fields:
      - {name: inner, type: T}
`

const plainSource = `items:
  - name: Plain
    attrs: ["derive_where(Clone)"]
    fields:
      - {name: id, type: u32}
`

const orderedSource = `items:
  - name: Level
    kind: enum
    generics: [T]
    attrs: ["derive_where(PartialOrd, PartialEq; T)"]
    variants:
      - name: Low
        fields:
          - {type: T}
      - name: High
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, dir, "init", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Created derivewhere.yml")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ordinal", cfg.Strategy)
	assert.Equal(t, "generated", cfg.Output.Dir)

	_, _, err = execute(t, dir, "init", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, dir, "init", "--yes", "--force")
	assert.NoError(t, err)
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "items/Wrapper.dw.yaml", wrapperSource)

	out, errOut, err := execute(t, dir, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "Written:    1")
	assert.Contains(t, out, "✓ Generated 1 description")
	assert.Contains(t, errOut, "100%")

	code, err := os.ReadFile(filepath.Join(dir, "generated", "items", "wrapper.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "impl<T> ::core::fmt::Debug for Wrapper<T>")

	out, _, err = execute(t, dir, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "Up to date: 1")

	out, _, err = execute(t, dir, "generate", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Up to date: 0")
}

func TestGenerateCommandDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plain.dw.yaml", plainSource)

	out, _, err := execute(t, dir, "generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 diagnostic(s) reported")
	assert.Contains(t, out, "ITM100")
	assert.Contains(t, out, "Failed:     1")

	_, statErr := os.Stat(filepath.Join(dir, "generated", "plain.rs"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateCommandJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plain.dw.yaml", plainSource)

	out, errOut, err := execute(t, dir, "generate", "--json", path)
	require.Error(t, err)
	assert.NotContains(t, errOut, "%", "no progress bar in JSON mode")

	var diagnostics []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &diagnostics))
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "ITM100", diagnostics[0]["code"])
	assert.Equal(t, path, diagnostics[0]["file"])
}

func TestGenerateCommandStrategy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "level.dw.yaml", orderedSource)

	_, _, err := execute(t, dir, "generate", "--strategy", "pairwise")
	require.NoError(t, err)

	code, err := os.ReadFile(filepath.Join(dir, "generated", "level.rs"))
	require.NoError(t, err)
	assert.NotContains(t, string(code), "unsafe")

	_, _, err = execute(t, dir, "generate", "--strategy", "lexical")
	require.Error(t, err)
	var cfgErr *configError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestGenerateCommandNoFiles(t *testing.T) {
	_, _, err := execute(t, t.TempDir(), "generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .dw.yaml files found")
}

func TestGenerateCommandUsesConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.FileName, "sources: [models]\noutput:\n  dir: src/derived\n")
	writeFile(t, dir, "models/wrapper.dw.yaml", wrapperSource)
	writeFile(t, dir, "ignored/plain.dw.yaml", plainSource)

	nested := filepath.Join(dir, "models")
	_, _, err := execute(t, nested, "generate")
	require.NoError(t, err, "the project root is found above the working directory")

	_, err = os.Stat(filepath.Join(dir, "src", "derived", "models", "wrapper.rs"))
	assert.NoError(t, err)
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.FileName, "workers: 0\n")

	_, _, err := execute(t, dir, "generate")
	require.Error(t, err)
	var cfgErr *configError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "workers must be positive")
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrapper.dw.yaml", wrapperSource)

	out, errOut, err := execute(t, dir, "check", "--diff")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 generated file out of date")
	assert.Contains(t, errOut, "OUT OF DATE")
	assert.Contains(t, errOut, filepath.Join("generated", "wrapper.rs"))
	assert.Contains(t, out, "+++ b/generated/wrapper.rs")

	_, statErr := os.Stat(filepath.Join(dir, "generated"))
	assert.True(t, os.IsNotExist(statErr), "check never writes")

	_, _, err = execute(t, dir, "generate")
	require.NoError(t, err)

	out, _, err = execute(t, dir, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "1 generated file up to date")
}

func TestCheckCommandDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plain.dw.yaml", plainSource)

	out, _, err := execute(t, dir, "check")
	require.Error(t, err)
	assert.Contains(t, out, "ITM100")
}

func TestTraitsCommand(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, dir, "traits")
	require.NoError(t, err)
	assert.Contains(t, out, "Derivable traits")
	assert.Contains(t, out, "::core::cmp::PartialOrd")
	assert.NotContains(t, out, "Zeroize")

	out, _, err = execute(t, dir, "traits", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "::zeroize::ZeroizeOnDrop")

	out, _, err = execute(t, dir, "traits", "Hash")
	require.NoError(t, err)
	assert.Contains(t, out, "Path:    ::core::hash::Hash")
	assert.Contains(t, out, "Skip:    yes")

	_, errOut, err := execute(t, dir, "traits", "Clnoe")
	require.Error(t, err)
	assert.Contains(t, errOut, "Did you mean: Clone")
}

func TestTraitsCommandZeroizeFeature(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.FileName, "features:\n  zeroize: true\n")

	out, _, err := execute(t, dir, "traits", "Zeroize")
	require.NoError(t, err)
	assert.Contains(t, out, "Feature: zeroize")
}

func TestWatchProject(t *testing.T) {
	dir := t.TempDir()
	source := writeFile(t, dir, "wrapper.dw.yaml", wrapperSource)
	output := filepath.Join(dir, "generated", "wrapper.rs")

	workDir = dir
	defer func() { workDir = "" }()
	p, err := loadProject()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cmd := &cobra.Command{}
	var out syncBuffer
	cmd.SetOut(&out)

	done := make(chan error, 1)
	go func() { done <- watchProject(ctx, cmd, p) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(output)
		return err == nil && strings.Contains(out.String(), "Watching")
	}, 5*time.Second, 20*time.Millisecond)

	updated := strings.Replace(wrapperSource, "Clone, Debug", "Clone, Debug, PartialEq", 1)
	require.NoError(t, os.WriteFile(source, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		code, err := os.ReadFile(output)
		return err == nil && strings.Contains(string(code), "::core::cmp::PartialEq for Wrapper<T>")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Contains(t, out.String(), "Stopped after")
}

// syncBuffer is a bytes.Buffer safe for the watcher's reporting goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

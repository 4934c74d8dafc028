package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var (
	testBinary     string
	testBinaryOnce sync.Once
	testBinaryErr  error
)

// buildTestBinary builds the derivewhere binary once for all tests
func buildTestBinary() (string, error) {
	testBinaryOnce.Do(func() {
		tmpBinary := filepath.Join(os.TempDir(), "derivewhere-test")
		cmd := exec.Command("go", "build", "-o", tmpBinary, ".")
		if out, err := cmd.CombinedOutput(); err != nil {
			testBinaryErr = err
			testBinary = string(out)
			return
		}
		testBinary = tmpBinary
	})

	if testBinaryErr != nil {
		return "", testBinaryErr
	}
	return testBinary, nil
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	binary, err := buildTestBinary()
	if err != nil {
		t.Fatalf("failed to build test binary: %v", err)
	}

	cmd := exec.Command(binary, append([]string{"--no-color"}, args...)...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func TestVersionCommand(t *testing.T) {
	output, err := run(t, t.TempDir(), "version")
	if err != nil {
		t.Fatalf("version command failed: %v\nOutput: %s", err, output)
	}

	for _, exp := range []string{"derivewhere version:", "Git commit:", "Build date:", "Go version:"} {
		if !strings.Contains(output, exp) {
			t.Errorf("expected output to contain %q, got:\n%s", exp, output)
		}
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	dir := t.TempDir()

	if output, err := run(t, dir, "init", "--yes"); err != nil {
		t.Fatalf("init failed: %v\nOutput: %s", err, output)
	}

	source := `items:
  - name: Pair
    generics: [K, V]
    attrs: ["derive_where(Clone; K)"]
    fields:
      - {name: key, type: K}
      - {name: value, type: "std::rc::Rc<V>"}
`
	if err := os.WriteFile(filepath.Join(dir, "Pair.dw.yaml"), []byte(source), 0644); err != nil {
		t.Fatal(err)
	}

	if output, err := run(t, dir, "check"); err == nil {
		t.Fatalf("expected check to fail before generating, got:\n%s", output)
	}

	output, err := run(t, dir, "generate")
	if err != nil {
		t.Fatalf("generate failed: %v\nOutput: %s", err, output)
	}

	code, err := os.ReadFile(filepath.Join(dir, "generated", "pair.rs"))
	if err != nil {
		t.Fatalf("expected generated file: %v", err)
	}
	if !strings.Contains(string(code), "impl<K, V> ::core::clone::Clone for Pair<K, V>") {
		t.Errorf("unexpected generated code:\n%s", code)
	}

	if output, err := run(t, dir, "check"); err != nil {
		t.Errorf("expected check to pass after generating: %v\nOutput: %s", err, output)
	}
}

func TestGenerateReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	source := "items:\n  - name: Plain\n    attrs: [\"derive_where(Clone)\"]\n    fields:\n      - {name: id, type: u32}\n"
	if err := os.WriteFile(filepath.Join(dir, "plain.dw.yaml"), []byte(source), 0644); err != nil {
		t.Fatal(err)
	}

	output, err := run(t, dir, "generate")
	if err == nil {
		t.Fatalf("expected generate to fail, got:\n%s", output)
	}
	if !strings.Contains(output, "ITM100") {
		t.Errorf("expected ITM100 in output, got:\n%s", output)
	}
}

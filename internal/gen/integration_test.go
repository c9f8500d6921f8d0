package gen_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestIntegration_Shapes generates parsers for a copy of examples/shapes
// with the CLI and compiles the result.
func TestIntegration_Shapes(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the go tool")
	}

	repoRoot, err := filepath.Abs(filepath.Join("..", ".."))
	require.NoError(t, err)

	// The copy must live inside the module so that it can import parsekit.
	testdata := filepath.Join(repoRoot, "internal", "gen", "testdata")
	require.NoError(t, os.MkdirAll(testdata, 0o755))

	work, err := os.MkdirTemp(testdata, "shapes-")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(work) })

	copySources(t, filepath.Join(repoRoot, "examples", "shapes"), work)

	pkg := "./" + filepath.ToSlash(mustRel(t, repoRoot, work))

	goTool(t, repoRoot, "run", "./cmd/parsegen", "gen", pkg)

	generated, err := os.ReadFile(filepath.Join(work, "parsegen_gen.go"))
	if err != nil {
		t.Fatalf("no generated file: %v", err)
	}

	t.Logf("generated:\n%s", generated)

	goTool(t, repoRoot, "vet", pkg)
	goTool(t, repoRoot, "run", "./cmd/parsegen", "check", pkg)
}

// copySources copies the non-test, non-generated Go files of src to dst.
func copySources(t *testing.T, src, dst string) {
	t.Helper()

	entries, err := os.ReadDir(src)
	require.NoError(t, err)

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") ||
			strings.HasSuffix(name, "_test.go") || strings.HasSuffix(name, "_gen.go") {
			continue
		}

		b, err := os.ReadFile(filepath.Join(src, name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dst, name), b, 0o600))
	}
}

func mustRel(t *testing.T, base, target string) string {
	t.Helper()

	rel, err := filepath.Rel(base, target)
	require.NoError(t, err)

	return rel
}

func goTool(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.CommandContext(t.Context(), "go", args...)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
}

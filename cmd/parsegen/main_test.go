package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rectSchema = `
package: shapes
types:
  - name: Rectangle
    pattern: '^(?P<width>\d+)x(?P<height>\d+)$'
    fields:
      - Width int
      - Height int
  - name: Meters
    pattern: '^(?P<0>\d+)m$'
    newtype: uint32
`

// isolate keeps configuration files of the machine out of the test.
func isolate(t *testing.T) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--no-color"}, args...))

	err := root.Execute()

	return stdout.String(), stderr.String(), err
}

func writeSchema(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestNormalize(t *testing.T) {
	isolate(t)

	out, stderr, err := run(t, "normalize", `^(?P<0>\d+)-(?P<end>\d+)$`)
	require.NoError(t, err)
	assert.Equal(t, "^(?P<__0>\\d+)-(?P<end>\\d+)$\n", out)
	assert.Contains(t, stderr, "renamed group 0 to __0")

	out, _, err = run(t, "normalize", "--groups", `^(?P<0>\d+)-(?P<end>\d+)$`)
	require.NoError(t, err)
	assert.Equal(t, "^(?P<__0>\\d+)-(?P<end>\\d+)$\n1\t__0\n2\tend\n", out)

	_, _, err = run(t, "normalize", `(?P<a>x`)
	require.Error(t, err)
}

func TestNormalize_Match(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "normalize",
		"--match", "move 3", "--match", "quit", "--match", "jump",
		`^move (?P<0>-?\d+)$`, `^quit$`, `^(?P<text>\w+ ?\d*)$`)
	require.NoError(t, err)
	assert.Equal(t, "^move (?P<__0>-?\\d+)$\n"+
		"^quit$\n"+
		"^(?P<text>\\w+ ?\\d*)$\n"+
		"\"move 3\": first 0, matches 0,2\n"+
		"\"quit\": first 1, matches 1,2\n"+
		"\"jump\": first 2, matches 2\n", out)

	out, _, err = run(t, "normalize", "--match", "jump", `^quit$`)
	require.NoError(t, err)
	assert.Equal(t, "^quit$\n\"jump\": no match\n", out)
}

func TestRewrite(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "rewrite", "width * height: u32")
	require.NoError(t, err)
	assert.Equal(t, "$width * $height:u32\n", out)

	out, _, err = run(t, "rewrite", "--captures", "width,height", "(width, height)")
	require.NoError(t, err)
	assert.Equal(t, "($width, $height)\n", out)

	out, _, err = run(t, "rewrite", "--dump", "width + 1")
	require.NoError(t, err)
	assert.Contains(t, out, "expr.Capture")
	assert.Contains(t, out, `Name: (string) (len=5) "width"`)
}

func TestRewrite_Errors(t *testing.T) {
	isolate(t)

	_, stderr, err := run(t, "rewrite", "--captures", "width", "widht + 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "width"`)
	assert.Contains(t, stderr, "  widht + 1\n  ^ unknown_capture")

	_, stderr, err = run(t, "rewrite", "a +")
	require.Error(t, err)
	assert.Contains(t, stderr, "expression_syntax")
}

func TestVersion(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "parsegen "))
}

func TestGenAndCheck(t *testing.T) {
	isolate(t)

	path := writeSchema(t, rectSchema)
	target := filepath.Join(filepath.Dir(path), "parsegen_gen.go")

	_, _, err := run(t, "gen", "--schema", path)
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "package shapes\n")
	assert.Contains(t, string(content), "func ParseRectangle(s string) (Rectangle, error) {")
	assert.Contains(t, string(content), "func ParseMeters(s string) (Meters, error) {")

	_, _, err = run(t, "check", "--schema", path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(target, append(content, "\n// edited\n"...), 0o600))

	out, _, err := run(t, "check", "--schema", path)
	require.ErrorIs(t, err, errStale)
	assert.Contains(t, out, "--- "+target)
	assert.Contains(t, out, "-// edited\n")

	require.NoError(t, os.Remove(target))

	out, _, err = run(t, "check", "--schema", path)
	require.ErrorIs(t, err, errStale)
	assert.Contains(t, out, target+": missing")
}

func TestGen_OutputFlags(t *testing.T) {
	isolate(t)

	path := writeSchema(t, rectSchema)
	out := filepath.Join(t.TempDir(), "nested", "dir")

	_, _, err := run(t, "gen", "--schema", path, "--out", out, "--file", "parsers.go", "--package", "other")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(out, "parsers.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "package other\n")
}

func TestGen_ConfigAndEnv(t *testing.T) {
	isolate(t)

	path := writeSchema(t, rectSchema)
	cfg := filepath.Join(t.TempDir(), "parsegen.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("generate:\n  comments: true\n"), 0o600))

	t.Setenv("PARSEGEN_GENERATE_FILENAME", "env_gen.go")

	_, _, err := run(t, "--config", cfg, "gen", "--schema", path)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(filepath.Dir(path), "env_gen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "binding: group width -> Width int")
}

func TestGen_Diagnostics(t *testing.T) {
	isolate(t)

	path := writeSchema(t, `
package: shapes
types:
  - name: Rectangle
    pattern: '^(?P<width>\d+)x(?P<height>\d+)$'
    fields:
      - Widht int
      - Height int
`)

	_, stderr, err := run(t, "gen", "--schema", path)
	require.ErrorIs(t, err, errDiagnostics)
	assert.Contains(t, stderr, "error: ")
	assert.Contains(t, stderr, "[unbound_field]")
	assert.Contains(t, stderr, "did you mean width?")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(path), "parsegen_gen.go"))
}

func TestGen_Partial(t *testing.T) {
	isolate(t)

	path := writeSchema(t, `
package: shapes
types:
  - name: Meters
    pattern: '^(?P<0>\d+m$'
    newtype: uint32
  - name: Leg
    pattern: '^(?P<from>\w+)-(?P<to>\w+) (?P<length>\d+m)$'
    fields:
      - From string
      - To string
      - Length Meters
  - name: Point
    pattern: '^(?P<x>\d+),(?P<y>\d+)$'
    fields:
      - X int
      - Y int
`)
	out := filepath.Join(filepath.Dir(path), "parsegen_gen.go")

	_, _, err := run(t, "gen", "--schema", path)
	require.ErrorIs(t, err, errDiagnostics)
	assert.NoFileExists(t, out)

	_, _, err = run(t, "gen", "--strict", "--partial", "--schema", path)
	require.ErrorIs(t, err, errDiagnostics)
	assert.NoFileExists(t, out)

	_, stderr, err := run(t, "gen", "--partial", "--schema", path)
	require.ErrorIs(t, err, errDiagnostics)
	assert.Contains(t, stderr, "[pattern_invalid]")
	assert.Contains(t, stderr, "[dependency_failed]")

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "func ParsePoint(s string) (Point, error) {")
	assert.NotContains(t, string(content), "ParseMeters")
	assert.NotContains(t, string(content), "ParseLeg")
}

func TestGen_Strict(t *testing.T) {
	isolate(t)

	path := writeSchema(t, `
package: shapes
types:
  - name: Pair
    pattern: '^(?P<a>\d+),(?P<b>\d+)$'
    fields:
      - A int
`)

	_, stderr, err := run(t, "gen", "--schema", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning: ")
	assert.Contains(t, stderr, "[unused_capture]")

	_, _, err = run(t, "gen", "--strict", "--schema", path)
	require.ErrorIs(t, err, errDiagnostics)
}

func TestGen_RejectsBadConfig(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "gen", "--schema", writeSchema(t, rectSchema), "--file", "gen_test.go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}

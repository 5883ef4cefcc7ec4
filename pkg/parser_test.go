package jackc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixture "jackc/internal/test"
)

// stubJackOS writes a minimal standard library into a temp directory: an empty Array class and
// a Memory class declaring only deAlloc, the two JackOS names the fixtures refer to.
func stubJackOS(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Array.jack"), []byte("class Array {\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Memory.jack"),
		[]byte("class Memory {\n\tfunction void deAlloc(Array o) {\n\t\treturn;\n\t}\n}\n"), 0o644))
	return dir
}

// compileSource writes src to a temp "Main.jack" (or the class's own name), compiles it against
// the stub JackOS, and returns the resulting Session result and any error.
func compileSource(t *testing.T, class, src string) (*Result, error) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, class+".jack")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	sess := NewSession(Config{Input: path, JackOSDir: stubJackOS(t)}, os.Stderr)
	return sess.Run()
}

func TestParser_EndToEnd(t *testing.T) {
	cases := []struct {
		name    string
		class   string
		src     string
		wantErr bool
	}{
		{"minimal", "Main", fixture.Minimal, false},
		{"arithmetic", "Main", fixture.Arithmetic, false},
		{"array usage", "Main", fixture.ArrayUsage, false},
		{"undeclared variable", "Main", fixture.UndeclaredVariable, true},
		{"missing return", "Main", fixture.MissingReturn, true},
		{"unreachable code", "A", fixture.UnreachableCode, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := compileSource(t, c.class, c.src)
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParser_EmitsVMFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.jack")
	require.NoError(t, os.WriteFile(path, []byte(fixture.Minimal), 0o644))

	sess := NewSession(Config{Input: path}, os.Stderr)
	_, err := sess.Run()
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "function Main.main 0")
	assert.Contains(t, string(out), "return")
}

func TestParser_ConstructorPrologue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Point.jack")
	require.NoError(t, os.WriteFile(path, []byte(fixture.FieldsAndConstructor), 0o644))

	sess := NewSession(Config{Input: path, JackOSDir: stubJackOS(t)}, os.Stderr)
	_, err := sess.Run()
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "Point.vm"))
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "push constant 2") // two fields
	assert.Contains(t, text, "call Memory.alloc 1")
	assert.Contains(t, text, "pop pointer 0")
}

func TestParser_MethodPrologueSetsPointer0(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Point.jack")
	require.NoError(t, os.WriteFile(path, []byte(fixture.FieldsAndConstructor), 0o644))

	sess := NewSession(Config{Input: path, JackOSDir: stubJackOS(t)}, os.Stderr)
	_, err := sess.Run()
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "Point.vm"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "function Point.getX 0")
	assert.Contains(t, string(out), "function Point.getX 0\npush argument 0\npop pointer 0\n")
}

func TestParser_CrossClassResolutionAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Point.jack"), []byte(fixture.FieldsAndConstructor), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Main.jack"), []byte(fixture.CrossClassCall), 0o644))

	sess := NewSession(Config{Input: dir, JackOSDir: stubJackOS(t)}, os.Stderr)
	_, err := sess.Run()
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "call Point.new 2")
	assert.Contains(t, string(out), "call Point.dispose 1")
}

func TestParser_UnreachableCodeAfterReturn(t *testing.T) {
	_, err := compileSource(t, "A", fixture.UnreachableCode)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unreachable code.")
	assert.Contains(t, err.Error(), "line 4")
}

func TestParser_LabelsAreUniquePerSubroutine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.jack")
	require.NoError(t, os.WriteFile(path, []byte(fixture.Arithmetic), 0o644))

	_, err := NewSession(Config{Input: path}, os.Stderr).Run()
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "label ") {
			assert.False(t, seen[line], "duplicate %q", line)
			seen[line] = true
		}
	}
	assert.NotEmpty(t, seen)
}

func TestParser_ArrayWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.jack")
	require.NoError(t, os.WriteFile(path, []byte(fixture.ArrayUsage), 0o644))

	sess := NewSession(Config{Input: path, JackOSDir: stubJackOS(t)}, os.Stderr)
	_, err := sess.Run()
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "pop pointer 1")
	assert.Contains(t, text, "pop that 0")
	assert.Contains(t, text, "pop temp 0\npop pointer 1\npush temp 0\npop that 0\n")
}

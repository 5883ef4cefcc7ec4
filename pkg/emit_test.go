package jackc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRBuffer_EmitAccumulates(t *testing.T) {
	buf := NewIRBuffer("Main")
	buf.Emit("function Main.main 0")
	buf.Emit("push constant 0")
	buf.Emit("return")

	assert.Equal(t, 3, buf.Len())
	assert.Equal(t, "push constant 0", buf.Lines[1])
}

func TestEmitter_WriteAllSkipsDiscarded(t *testing.T) {
	dir := t.TempDir()

	kept := NewIRBuffer("Main")
	kept.Emit("return")

	discarded := NewIRBuffer("Memory")
	discarded.Emit("return")
	discarded.Discard = true

	require.NoError(t, NewEmitter(dir).WriteAll([]*IRBuffer{kept, discarded}))

	_, err := os.Stat(filepath.Join(dir, "Main.vm"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "Memory.vm"))
	assert.True(t, os.IsNotExist(err))
}

func TestEmitter_WriteAllOneInstructionPerLine(t *testing.T) {
	dir := t.TempDir()

	buf := NewIRBuffer("Main")
	buf.Emit("function Main.main 0")
	buf.Emit("push constant 0")
	buf.Emit("return")

	require.NoError(t, NewEmitter(dir).WriteAll([]*IRBuffer{buf}))

	out, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
	require.NoError(t, err)
	assert.Equal(t, "function Main.main 0\npush constant 0\nreturn\n", string(out))
}

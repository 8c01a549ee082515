package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	ctx := context.Background()
	exec := New()

	out, err := exec.Execute(ctx, "sh", "-c", "printf hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestExecuteIncludesStderr(t *testing.T) {
	ctx := context.Background()
	exec := New()

	_, err := exec.Execute(ctx, "sh", "-c", "echo broken pipe >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command 'sh' failed")
	assert.Contains(t, err.Error(), "broken pipe")
}

func TestExecuteInDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	out, err := New().ExecuteInDir(ctx, dir, "sh", "-c", "pwd")
	require.NoError(t, err)
	assert.Contains(t, out, dir)
}

func TestLookPathMissing(t *testing.T) {
	_, err := New().LookPath("definitely-not-a-real-binary-name")
	assert.Error(t, err)
}

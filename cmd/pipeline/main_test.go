package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/context-flow/internal/artifact"
	"github.com/nguyentantai21042004/context-flow/internal/config"
	"github.com/nguyentantai21042004/context-flow/internal/logger"
	"github.com/nguyentantai21042004/context-flow/internal/store"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"VIDEOS_DIR", "CONTEXT_DIR", "SPECIFIC_VIDEO_PATH", "WHISPER_MODEL_SIZE", "TRANSCRIBER_BACKEND", "INDEX_BACKEND", "LOG_FILE"} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := newRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "input", "watch", "schedule", "list", "export", "config"})
}

func TestConfigCommand(t *testing.T) {
	clearEnv(t)
	out, err := execute(t, "", "config", "--videos", "/srv/videos", "--model-size", "small")
	require.NoError(t, err)
	assert.Contains(t, out, "LOCAL_VIDEO_TRANSCRIPTION")
	assert.Contains(t, out, "/srv/videos")
	assert.Contains(t, out, "whisper (small)")
}

func TestConfigCommandRejectsBadModelSize(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "", "config", "--model-size", "huge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model_size")
}

func TestRunWithoutSource(t *testing.T) {
	clearEnv(t)
	out, err := execute(t, "", "run", "--context", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")
}

func TestRunMissingVideo(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "", "run", filepath.Join(t.TempDir(), "missing.mp4"), "--context", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestInputIgnoresUnusableLines(t *testing.T) {
	clearEnv(t)
	stdin := "not json\n42\n{\"video\":\"x.mp4\"}\n\n\"/nowhere/clip.mp4\"\n"
	out, err := execute(t, stdin, "input", "--context", t.TempDir())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "ignored\t"), line)
	}
}

func TestListCommand(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	out, err := execute(t, "", "list", "--context", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No transcripts in")

	cfg := &config.Config{Paths: config.PathsConfig{Context: dir}}
	require.NoError(t, cfg.Validate())
	st, err := store.New(cfg, logger.Nop())
	require.NoError(t, err)
	mod := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	_, err = st.Save(context.Background(), artifact.New(artifact.Source{
		Path: "/videos/clip_a.mp4", Size: 2048, ModTime: mod,
	}, "base", "hello world again", mod))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err = execute(t, "", "list", "--context", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "context-20240301100000.json")
	assert.Contains(t, out, "clip_a.mp4")
	assert.Contains(t, out, "2.0 KiB")
}

func TestAcquireLock(t *testing.T) {
	dir := t.TempDir()
	lock, err := acquireLock(dir)
	require.NoError(t, err)
	defer lock.Unlock()

	_, err = acquireLock(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

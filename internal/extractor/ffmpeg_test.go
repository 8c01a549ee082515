package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/context-flow/internal/config"
	"github.com/nguyentantai21042004/context-flow/internal/logger"
)

type fakeExecutor struct {
	args    []string
	payload []byte
	err     error
	lookErr error
}

func (f *fakeExecutor) Execute(_ context.Context, _ string, args ...string) (string, error) {
	f.args = args
	if f.err != nil {
		return "", f.err
	}
	return "", os.WriteFile(args[len(args)-1], f.payload, 0644)
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, _ string, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func (f *fakeExecutor) LookPath(name string) (string, error) {
	if f.lookErr != nil {
		return "", f.lookErr
	}
	return "/usr/bin/" + name, nil
}

func newTestExtractor(exec *fakeExecutor) Extractor {
	return New(config.FFmpegConfig{BinaryPath: "ffmpeg", SampleRate: 16000}, exec, logger.Nop())
}

func TestExtractMonoAudio(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	exec := &fakeExecutor{payload: []byte("RIFF....WAVE")}

	got, err := newTestExtractor(exec).ExtractMonoAudio(ctx, "/videos/a.mp4", dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "audio.wav"), got)
	assert.Contains(t, exec.args, "/videos/a.mp4")
	assert.Subset(t, exec.args, []string{"-ac", "1", "-ar", "16000", "-vn"})
}

func TestExtractMonoAudioFailures(t *testing.T) {
	tests := []struct {
		name string
		exec *fakeExecutor
	}{
		{"ffmpeg missing", &fakeExecutor{lookErr: errors.New("not found")}},
		{"ffmpeg fails", &fakeExecutor{err: errors.New("invalid data found when processing input")}},
		{"empty output", &fakeExecutor{payload: nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestExtractor(tt.exec).ExtractMonoAudio(context.Background(), "/videos/a.mkv", t.TempDir())
			assert.Error(t, err)
		})
	}
}

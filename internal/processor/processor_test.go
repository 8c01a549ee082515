package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/context-flow/internal/config"
	"github.com/nguyentantai21042004/context-flow/internal/events"
	"github.com/nguyentantai21042004/context-flow/internal/logger"
	"github.com/nguyentantai21042004/context-flow/internal/store"
	"github.com/nguyentantai21042004/context-flow/internal/transcriber"
)

// fakeExtractor writes the video's base name as the "audio" so the fake
// transcriber can tell inputs apart.
type fakeExtractor struct {
	mu      sync.Mutex
	calls   []string
	scratch []string
	err     error
	failFor map[string]error
}

func (f *fakeExtractor) ExtractMonoAudio(_ context.Context, videoPath, destDir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, filepath.Base(videoPath))
	f.scratch = append(f.scratch, destDir)
	if f.err != nil {
		return "", f.err
	}
	if err := f.failFor[filepath.Base(videoPath)]; err != nil {
		return "", err
	}
	out := filepath.Join(destDir, "audio.wav")
	return out, os.WriteFile(out, []byte(filepath.Base(videoPath)), 0o644)
}

type fakeTranscriber struct {
	mu      sync.Mutex
	results map[string]string
	errs    map[string]error
	panics  map[string]bool
	calls   []string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", err
	}
	name := string(data)

	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if f.panics[name] {
		panic("decoder crashed")
	}
	if err := f.errs[name]; err != nil {
		return "", err
	}
	if text, ok := f.results[name]; ok {
		return text, nil
	}
	return "transcript of " + name, nil
}

func (f *fakeTranscriber) Model() string { return "base" }

type harness struct {
	cfg       *config.Config
	proc      Processor
	store     store.Store
	extractor *fakeExtractor
	model     *fakeTranscriber

	loads    int
	loadErr  error
	onStatus func(msg string)

	mu       sync.Mutex
	statuses []string
	ticks    [][2]int
	events   []events.Event
}

func newHarness(t *testing.T, mutate func(cfg *config.Config)) *harness {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Paths: config.PathsConfig{
			Videos:  filepath.Join(root, "videos"),
			Context: filepath.Join(root, "context"),
			Temp:    filepath.Join(root, "tmp"),
		},
	}
	require.NoError(t, os.MkdirAll(cfg.Paths.Videos, 0o755))
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	st, err := store.New(cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	h := &harness{
		cfg:       cfg,
		store:     st,
		extractor: &fakeExtractor{},
		model:     &fakeTranscriber{},
	}
	h.proc = New(cfg, Deps{
		Extractor: h.extractor,
		Store:     st,
		Logger:    logger.Nop(),
		Loader: func(context.Context) (transcriber.Transcriber, error) {
			h.loads++
			if h.loadErr != nil {
				return nil, h.loadErr
			}
			return h.model, nil
		},
		Sink: events.Funcs{
			OnStatus: func(_, msg string) {
				h.mu.Lock()
				h.statuses = append(h.statuses, msg)
				h.mu.Unlock()
				if h.onStatus != nil {
					h.onStatus(msg)
				}
			},
			OnProgress: func(_ string, total, processed int, _ time.Duration) {
				h.mu.Lock()
				h.ticks = append(h.ticks, [2]int{total, processed})
				h.mu.Unlock()
			},
			OnUpdate: func(ev events.Event) {
				h.mu.Lock()
				h.events = append(h.events, ev)
				h.mu.Unlock()
			},
		},
	})
	return h
}

func (h *harness) writeVideo(t *testing.T, name, content string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(h.cfg.Paths.Videos, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return path
}

func (h *harness) artifacts(t *testing.T) []store.Entry {
	t.Helper()
	entries, err := h.store.List(context.Background())
	require.NoError(t, err)
	return entries
}

func (h *harness) summaries() []events.TranscriptionSummary {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []events.TranscriptionSummary
	for _, ev := range h.events {
		if s, ok := ev.(events.TranscriptionSummary); ok {
			out = append(out, s)
		}
	}
	return out
}

var (
	older = time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	newer = time.Date(2024, 3, 2, 9, 30, 0, 0, time.Local)
)

func TestRunBatchExampleScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	h.writeVideo(t, "clip_a.mp4", "video a", older)
	h.writeVideo(t, "clip_b.mkv", "video b", newer)
	h.writeVideo(t, "notes.txt", "not a video", newer)

	summary, err := h.proc.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, h.cfg.Paths.Context, summary.ContextDir)
	assert.NotEmpty(t, summary.RunID)

	// newest first
	assert.Equal(t, []string{"clip_b.mkv", "clip_a.mp4"}, h.extractor.calls)

	entries := h.artifacts(t)
	require.Len(t, entries, 2)
	assert.Equal(t, "context-20240301100000.json", filepath.Base(entries[0].Path))
	assert.Equal(t, "clip_a.mp4", entries[0].Artifact.VideoFilename)
	assert.Equal(t, "transcript of clip_a.mp4", entries[0].Artifact.Transcription)
	assert.Equal(t, "base", entries[0].Artifact.WhisperModel)
	assert.Equal(t, "2024-03-01T10:00:00", entries[0].Artifact.VideoRecordingTime)
	assert.NotEmpty(t, entries[0].Artifact.VideoHash)
	assert.Equal(t, "context-20240302093000.json", filepath.Base(entries[1].Path))

	assert.Equal(t, []string{
		"Starting video transcription process",
		"Loading transcription model (base)",
		"Processing video 1/2: clip_b.mkv",
		"Processing video 2/2: clip_a.mp4",
		"Transcription complete. Processed: 2, Skipped: 0",
	}, h.statuses)
	assert.Equal(t, [][2]int{{2, 1}, {2, 2}}, h.ticks)

	var transcribed []events.VideoTranscription
	for _, ev := range h.events {
		if v, ok := ev.(events.VideoTranscription); ok {
			transcribed = append(transcribed, v)
		}
	}
	require.Len(t, transcribed, 2)
	assert.Equal(t, "clip_b.mkv", transcribed[0].VideoFilename)
	assert.Equal(t, entries[1].Path, transcribed[0].OutputPath)
	assert.Equal(t, []events.TranscriptionSummary{{
		Type:           events.TypeTranscriptionSummary,
		ProcessedCount: 2,
		TotalFiles:     2,
		ContextDir:     h.cfg.Paths.Context,
	}}, h.summaries())
}

func TestRunBatchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	h.writeVideo(t, "clip_a.mp4", "video a", older)
	h.writeVideo(t, "clip_b.mkv", "video b", newer)

	_, err := h.proc.RunBatch(ctx)
	require.NoError(t, err)
	before := h.artifacts(t)

	summary, err := h.proc.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 2, summary.Skipped)
	assert.Len(t, h.extractor.calls, 2, "second run must not extract again")
	assert.Equal(t, before, h.artifacts(t))
	assert.Equal(t, 1, h.loads, "model is loaded once per process")
}

func TestRunBatchToleratesRenames(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	path := h.writeVideo(t, "clip_a.mp4", "video a", older)

	_, err := h.proc.RunBatch(ctx)
	require.NoError(t, err)

	renamed := filepath.Join(h.cfg.Paths.Videos, "renamed.mp4")
	require.NoError(t, os.Rename(path, renamed))

	summary, err := h.proc.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Processed)
	assert.Len(t, h.artifacts(t), 1)
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	h.writeVideo(t, "clip_a.mp4", "video a", older)
	h.writeVideo(t, "clip_b.mkv", "video b", newer)
	h.model.errs = map[string]error{"clip_b.mkv": errors.New("decoder error")}

	summary, err := h.proc.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)
	require.Len(t, h.artifacts(t), 1)
	assert.Equal(t, "clip_a.mp4", h.artifacts(t)[0].Artifact.VideoFilename)

	// The failed video is retried on the next run.
	h.model.errs = nil
	summary, err = h.proc.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Len(t, h.artifacts(t), 2)
}

func TestRunBatchIsolatesExtractionFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.writeVideo(t, "one.mp4", "1", older)
	h.writeVideo(t, "two.mp4", "2", older.Add(time.Hour))
	h.writeVideo(t, "three.mp4", "3", newer)
	h.extractor.failFor = map[string]error{"two.mp4": errors.New("no audio stream")}

	summary, err := h.proc.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed+summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []string{"three.mp4", "one.mp4"}, h.model.calls, "transcription is not attempted after a failed extraction")

	var names []string
	for _, e := range h.artifacts(t) {
		names = append(names, e.Artifact.VideoFilename)
	}
	assert.ElementsMatch(t, []string{"one.mp4", "three.mp4"}, names)
}

func TestRunBatchRecoversPanics(t *testing.T) {
	h := newHarness(t, nil)
	h.writeVideo(t, "clip_a.mp4", "video a", older)
	h.writeVideo(t, "clip_b.mkv", "video b", newer)
	h.model.panics = map[string]bool{"clip_b.mkv": true}

	summary, err := h.proc.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunBatchEmptyTranscript(t *testing.T) {
	h := newHarness(t, nil)
	h.writeVideo(t, "silent.mp4", "silence", older)
	h.model.results = map[string]string{"silent.mp4": "  \n "}

	summary, err := h.proc.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, h.artifacts(t))
}

func TestRunBatchExtractionFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.writeVideo(t, "clip_a.mp4", "video a", older)
	h.extractor.err = errors.New("no audio stream")

	summary, err := h.proc.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, h.model.calls)
	assert.Empty(t, h.artifacts(t))
}

func TestRunBatchRemovesScratch(t *testing.T) {
	h := newHarness(t, nil)
	h.writeVideo(t, "clip_a.mp4", "video a", older)
	h.writeVideo(t, "clip_b.mkv", "video b", newer)
	h.model.errs = map[string]error{"clip_a.mp4": errors.New("boom")}

	_, err := h.proc.RunBatch(context.Background())
	require.NoError(t, err)

	require.Len(t, h.extractor.scratch, 2)
	for _, dir := range h.extractor.scratch {
		assert.NoDirExists(t, dir)
	}
	left, err := os.ReadDir(h.cfg.Paths.Temp)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRunBatchNoCandidates(t *testing.T) {
	h := newHarness(t, nil)

	summary, err := h.proc.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Equal(t, []string{
		"Starting video transcription process",
		"No video files found to process",
	}, h.statuses)
	assert.Empty(t, h.summaries())
	assert.Zero(t, h.loads)
}

func TestRunBatchWaitsWithoutSource(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.Paths.Videos = "" })

	summary, err := h.proc.RunBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Waiting)
	assert.Empty(t, h.ticks)
	assert.Empty(t, h.summaries())
}

func TestRunBatchConfigurationErrors(t *testing.T) {
	root := t.TempDir()
	video := filepath.Join(root, "clip.avi")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0o644))
	notDir := filepath.Join(root, "file.mp4")
	require.NoError(t, os.WriteFile(notDir, []byte("x"), 0o644))

	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		want   error
	}{
		{
			name:   "missing videos dir",
			mutate: func(cfg *config.Config) { cfg.Paths.Videos = filepath.Join(root, "nope") },
			want:   ErrFileNotFound,
		},
		{
			name:   "videos path is a file",
			mutate: func(cfg *config.Config) { cfg.Paths.Videos = notDir },
			want:   ErrFileNotFound,
		},
		{
			name:   "missing specific video",
			mutate: func(cfg *config.Config) { cfg.Paths.SpecificVideo = filepath.Join(root, "gone.mp4") },
			want:   ErrFileNotFound,
		},
		{
			name:   "unsupported specific video",
			mutate: func(cfg *config.Config) { cfg.Paths.SpecificVideo = video },
			want:   ErrUnsupportedFormat,
		},
		{
			name:   "context dir blocked by a file",
			mutate: func(cfg *config.Config) { cfg.Paths.SpecificVideo = notDir; cfg.Paths.Context = video },
			want:   ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.mutate)
			_, err := h.proc.RunBatch(context.Background())
			require.ErrorIs(t, err, tt.want)
			last := h.statuses[len(h.statuses)-1]
			assert.True(t, strings.HasPrefix(last, "Error during video transcription: "), last)
		})
	}
}

func TestRunBatchSpecificVideo(t *testing.T) {
	h := newHarness(t, nil)
	h.writeVideo(t, "clip_a.mp4", "video a", older)
	path := h.writeVideo(t, "clip_b.mkv", "video b", newer)
	h.cfg.Paths.SpecificVideo = path

	summary, err := h.proc.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, []string{"clip_b.mkv"}, h.extractor.calls)
}

func TestRunBatchModelLoadFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	h.writeVideo(t, "clip_a.mp4", "video a", older)
	h.loadErr = errors.New("model file missing")

	_, err := h.proc.RunBatch(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file missing")

	// A failed load is not cached.
	h.loadErr = nil
	summary, err := h.proc.RunBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, h.loads)
}

func TestRunBatchCancelsBetweenItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness(t, nil)
	h.writeVideo(t, "clip_a.mp4", "video a", older)
	h.writeVideo(t, "clip_b.mkv", "video b", newer)
	h.onStatus = func(msg string) {
		if msg == "Processing video 1/2: clip_b.mkv" {
			cancel()
		}
	}

	summary, err := h.proc.RunBatch(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Processed, "the started item completes")
	assert.Equal(t, []string{"clip_b.mkv"}, h.extractor.calls)
}

func TestRunOne(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	path := h.writeVideo(t, "clip_a.mp4", "video a", older)

	assert.Equal(t, OutcomeProcessed, h.proc.RunOne(ctx, path))
	assert.Equal(t, OutcomeSkipped, h.proc.RunOne(ctx, path))
	assert.Len(t, h.artifacts(t), 1)
	assert.Contains(t, h.statuses, "Context file already exists for clip_a.mp4, skipping")

	h.model.errs = map[string]error{"clip_b.mkv": errors.New("boom")}
	other := h.writeVideo(t, "clip_b.mkv", "video b", newer)
	assert.Equal(t, OutcomeFailed, h.proc.RunOne(ctx, other))
}

func TestProcessInput(t *testing.T) {
	tests := []struct {
		name    string
		payload func(path string) any
		want    Outcome
	}{
		{"string", func(p string) any { return p }, OutcomeProcessed},
		{"path key", func(p string) any { return map[string]any{"path": p} }, OutcomeProcessed},
		{"dest_path key", func(p string) any { return map[string]any{"dest_path": p} }, OutcomeProcessed},
		{"file_path key", func(p string) any { return map[string]string{"file_path": p} }, OutcomeProcessed},
		{"path wins over file_path", func(p string) any {
			return map[string]any{"file_path": "/nowhere/x.mp4", "path": p}
		}, OutcomeProcessed},
		{"empty path falls through", func(p string) any {
			return map[string]any{"path": "", "dest_path": p}
		}, OutcomeProcessed},
		{"unknown keys", func(p string) any { return map[string]any{"video": p} }, OutcomeIgnored},
		{"number", func(string) any { return 42 }, OutcomeIgnored},
		{"nil", func(string) any { return nil }, OutcomeIgnored},
		{"unsupported extension", func(p string) any { return strings.TrimSuffix(p, ".mp4") + ".mov" }, OutcomeIgnored},
		{"missing file", func(p string) any { return filepath.Join(filepath.Dir(p), "missing.mp4") }, OutcomeIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			path := h.writeVideo(t, "clip_a.mp4", "video a", older)
			require.NoError(t, os.WriteFile(strings.TrimSuffix(path, ".mp4")+".mov", []byte("x"), 0o644))

			got := h.proc.ProcessInput(context.Background(), tt.payload(path))
			assert.Equal(t, tt.want, got)
			if got == OutcomeIgnored {
				assert.Empty(t, h.statuses)
			}
		})
	}
}

func TestProcess(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	path := h.writeVideo(t, "clip_a.mp4", "video a", older)

	c, err := NewCandidate(path)
	require.NoError(t, err)
	assert.True(t, h.proc.Process(ctx, c))
	entries := h.artifacts(t)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].Artifact.VideoHash, "fingerprint is computed when the probe skipped it")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, h.proc.Process(cancelled, c))
}

func TestDiscoverOrdering(t *testing.T) {
	h := newHarness(t, nil)
	h.writeVideo(t, "b.mp4", "b", older)
	h.writeVideo(t, "a.mp4", "a", older)
	h.writeVideo(t, "c.mkv", "c", newer)
	h.writeVideo(t, "upper.MP4", "u", newer)
	require.NoError(t, os.Mkdir(filepath.Join(h.cfg.Paths.Videos, "dir.mp4"), 0o755))

	got, err := h.proc.(*implProcessor).discover()
	require.NoError(t, err)

	var names []string
	for _, c := range got {
		names = append(names, c.Name())
		assert.True(t, filepath.IsAbs(c.Path))
	}
	assert.Equal(t, []string{"c.mkv", "a.mp4", "b.mp4"}, names)
}

func TestProgressRemaining(t *testing.T) {
	tests := []struct {
		name string
		p    progress
		want time.Duration
	}{
		{"nothing processed", progress{total: 4}, 0},
		{"half way", progress{total: 4, processed: 2, done: 2, elapsed: 10 * time.Second}, 10 * time.Second},
		{"one of three", progress{total: 3, processed: 1, done: 1, elapsed: 6 * time.Second}, 12 * time.Second},
		{"only skipped so far", progress{total: 5, processed: 3}, 0},
		{"skips do not shrink the average", progress{total: 10, processed: 6, done: 1, elapsed: 10 * time.Second}, 40 * time.Second},
		{"done", progress{total: 2, processed: 2, done: 2, elapsed: time.Minute}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.remaining())
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ignored", OutcomeIgnored.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "processed", OutcomeProcessed.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
}

package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/context-flow/internal/config"
	"github.com/nguyentantai21042004/context-flow/internal/logger"
	"github.com/nguyentantai21042004/context-flow/pkg/executor"
)

type whisper struct {
	cfg       config.WhisperConfig
	size      string
	binary    string
	modelPath string
	executor  executor.Executor
	logger    logger.Logger
}

// loadWhisper resolves the whisper.cpp binary and the ggml model file for size.
func loadWhisper(ctx context.Context, cfg config.WhisperConfig, size string, exec executor.Executor, log logger.Logger) (Transcriber, error) {
	bin, err := exec.LookPath(cfg.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("whisper binary: %w", err)
	}

	modelPath := cfg.ModelPath
	if modelPath == "" {
		modelPath = filepath.Join(cfg.ModelDir, "ggml-"+size+".bin")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("whisper model %q: %w", size, err)
	}

	log.Info(ctx, "Loaded Whisper model '%s' (%s)", size, modelPath)
	return &whisper{
		cfg:       cfg,
		size:      size,
		binary:    bin,
		modelPath: modelPath,
		executor:  exec,
		logger:    log,
	}, nil
}

func (w *whisper) Model() string { return w.size }

// Transcribe runs whisper-cli with plain-text output next to the audio file.
func (w *whisper) Transcribe(ctx context.Context, audioPath string) (string, error) {
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	// -otxt: plain text output, -of: output prefix, -np: no progress prints
	args := []string{
		"-m", w.modelPath,
		"-f", audioPath,
		"-otxt",
		"-of", outputPrefix,
		"-l", w.cfg.Language,
		"-t", strconv.Itoa(w.cfg.Threads),
		"-np",
	}
	if w.cfg.Prompt != "" {
		args = append(args, "--prompt", w.cfg.Prompt)
	}

	if _, err := w.executor.Execute(ctx, w.binary, args...); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	data, err := os.ReadFile(outputPrefix + ".txt")
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}

	w.logger.Info(ctx, "Transcribed audio file %s", audioPath)
	return joinSegments(string(data)), nil
}

// joinSegments collapses whisper's one-segment-per-line output into one text.
func joinSegments(raw string) string {
	var parts []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const audioFile = "audio.wav"

// ExtractMonoAudio writes a mono PCM WAV of videoPath to destDir/audio.wav.
// 16 kHz mono s16le is what whisper expects; other backends accept it too.
func (e *implExtractor) ExtractMonoAudio(ctx context.Context, videoPath, destDir string) (string, error) {
	audioPath := filepath.Join(destDir, audioFile)

	bin, err := e.executor.LookPath(e.cfg.BinaryPath)
	if err != nil {
		return "", fmt.Errorf("ffmpeg not available: %w", err)
	}

	e.logger.Debug(ctx, "Extracting audio: %s -> %s", videoPath, audioPath)

	// -vn: drop video, -ac 1: mono, -ar: sample rate, -y: overwrite
	args := []string{
		"-nostdin",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(e.cfg.SampleRate),
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		audioPath,
	}

	if _, err := e.executor.Execute(ctx, bin, args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return "", fmt.Errorf("ffmpeg produced no audio: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("ffmpeg produced empty audio for %s", filepath.Base(videoPath))
	}

	e.logger.Info(ctx, "Extracted audio from %s to %s", videoPath, audioPath)
	return audioPath, nil
}

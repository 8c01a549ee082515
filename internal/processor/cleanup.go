package processor

import (
	"context"
	"fmt"
	"os"
)

// newScratchDir creates a per-item working directory for intermediate audio.
func (p *implProcessor) newScratchDir() (string, error) {
	parent := p.cfg.Paths.Temp
	if parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return "", fmt.Errorf("create temp dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, "transcribe-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	return dir, nil
}

// cleanupScratch removes a scratch directory, logs warning if fails
func (p *implProcessor) cleanupScratch(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup scratch dir %s: %v", dir, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up scratch dir: %s", dir)
	}
}

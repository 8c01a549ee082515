package transcriber

import (
	"context"

	"github.com/nguyentantai21042004/context-flow/internal/config"
	"github.com/nguyentantai21042004/context-flow/internal/logger"
	"github.com/nguyentantai21042004/context-flow/pkg/executor"
)

// NewLoader returns the Loader for the configured backend.
func NewLoader(cfg *config.Config, exec executor.Executor, log logger.Logger) Loader {
	if cfg.Transcriber.Backend == config.BackendGemini {
		return func(ctx context.Context) (Transcriber, error) {
			return loadGemini(ctx, cfg.Gemini, log)
		}
	}
	return func(ctx context.Context) (Transcriber, error) {
		return loadWhisper(ctx, cfg.Whisper, cfg.Transcriber.ModelSize, exec, log)
	}
}

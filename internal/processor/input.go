package processor

import (
	"context"
)

// inputKeys are the notification fields that may carry a video path, in
// priority order.
var inputKeys = []string{"path", "dest_path", "file_path"}

// ProcessInput handles a notification from an upstream stage.
func (p *implProcessor) ProcessInput(ctx context.Context, payload any) Outcome {
	path, ok := inputPath(payload)
	if !ok {
		p.logger.Debug(ctx, "Ignoring pipeline input of type %T", payload)
		return OutcomeIgnored
	}
	return p.RunOne(ctx, path)
}

func inputPath(payload any) (string, bool) {
	switch v := payload.(type) {
	case string:
		return v, v != ""
	case map[string]any:
		for _, key := range inputKeys {
			if s, ok := v[key].(string); ok && s != "" {
				return s, true
			}
		}
	case map[string]string:
		for _, key := range inputKeys {
			if s := v[key]; s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// RunOne processes a single delivered video unless it is unsupported,
// missing or already transcribed.
func (p *implProcessor) RunOne(ctx context.Context, path string) Outcome {
	if !IsSupported(path) {
		p.logger.Debug(ctx, "Ignoring unsupported input: %s", path)
		return OutcomeIgnored
	}
	c, err := NewCandidate(path)
	if err != nil {
		p.logger.Debug(ctx, "Ignoring input: %v", err)
		return OutcomeIgnored
	}

	if err := p.gate.enter(ctx); err != nil {
		p.logger.Debug(ctx, "Input %s dropped: %v", path, err)
		return OutcomeIgnored
	}
	defer p.gate.leave()

	p.status(ctx, "Processing pipeline input: %s", c.Name())

	if err := p.store.Ensure(); err != nil {
		p.status(ctx, "Error during video transcription: %v", err)
		return OutcomeFailed
	}

	if p.alreadyProcessed(ctx, &c) {
		p.status(ctx, "Context file already exists for %s, skipping", c.Name())
		return OutcomeSkipped
	}

	model, err := p.ensureModel(ctx)
	if err != nil {
		p.status(ctx, "Error during video transcription: %v", err)
		return OutcomeFailed
	}

	if !p.process(ctx, model, c) {
		p.status(ctx, "Failed to transcribe %s", c.Name())
		return OutcomeFailed
	}
	p.status(ctx, "Transcribed %s", c.Name())
	return OutcomeProcessed
}

package processor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/context-flow/internal/events"
)

// RunBatch processes every discovered video that has no artifact yet.
func (p *implProcessor) RunBatch(ctx context.Context) (Summary, error) {
	if err := p.gate.enter(ctx); err != nil {
		return Summary{}, err
	}
	defer p.gate.leave()

	summary := Summary{
		RunID:      uuid.NewString(),
		ContextDir: p.store.Dir(),
	}
	p.logger.Debug(ctx, "Batch run %s", summary.RunID)
	p.status(ctx, "Starting video transcription process")

	candidates, err := p.discover()
	if errors.Is(err, ErrMissingSource) {
		p.logger.Info(ctx, "No videos directory or video file configured, waiting for pipeline input")
		summary.Waiting = true
		return summary, nil
	}
	if err != nil {
		return summary, p.fail(ctx, err)
	}
	if len(candidates) == 0 {
		p.status(ctx, "No video files found to process")
		return summary, nil
	}

	summary.Total = len(candidates)
	p.progress = progress{total: len(candidates)}

	if err := p.store.Ensure(); err != nil {
		return summary, p.fail(ctx, err)
	}

	p.status(ctx, "Loading transcription model (%s)", p.cfg.ModelID())
	model, err := p.ensureModel(ctx)
	if err != nil {
		return summary, p.fail(ctx, err)
	}

	startTime := time.Now()
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(startTime)
			return summary, p.fail(ctx, err)
		}

		c := &candidates[i]
		p.status(ctx, "Processing video %d/%d: %s", i+1, len(candidates), c.Name())

		if p.alreadyProcessed(ctx, c) {
			summary.Skipped++
			p.progress.processed++
			p.reportProgress(ctx)
			continue
		}

		itemStart := time.Now()
		if p.process(ctx, model, *c) {
			summary.Processed++
		} else {
			summary.Failed++
		}
		p.progress.processed++
		p.progress.done++
		p.progress.elapsed += time.Since(itemStart)
		p.reportProgress(ctx)
	}
	summary.Elapsed = time.Since(startTime)
	p.logger.Debug(ctx, "Batch run %s finished in %s", summary.RunID, summary.Elapsed.Round(time.Millisecond))

	p.status(ctx, "Transcription complete. Processed: %d, Skipped: %d", summary.Processed, summary.Skipped)
	p.sink.Publish(ctx, events.TranscriptionSummary{
		Type:           events.TypeTranscriptionSummary,
		ProcessedCount: summary.Processed,
		SkippedCount:   summary.Skipped,
		TotalFiles:     summary.Total,
		ContextDir:     summary.ContextDir,
	})
	return summary, nil
}

// fail reports a fatal batch error and returns it.
func (p *implProcessor) fail(ctx context.Context, err error) error {
	p.status(ctx, "Error during video transcription: %v", err)
	return err
}

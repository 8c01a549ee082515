package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nguyentantai21042004/context-flow/internal/artifact"
	"github.com/nguyentantai21042004/context-flow/internal/events"
	"github.com/nguyentantai21042004/context-flow/internal/fingerprint"
	"github.com/nguyentantai21042004/context-flow/internal/store"
	"github.com/nguyentantai21042004/context-flow/internal/transcriber"
)

// Process runs the pipeline for c, loading the model first if needed.
func (p *implProcessor) Process(ctx context.Context, c Candidate) bool {
	if err := p.gate.enter(ctx); err != nil {
		return false
	}
	defer p.gate.leave()

	if err := p.store.Ensure(); err != nil {
		p.logger.Error(ctx, "Error preparing context directory: %v", err)
		return false
	}
	model, err := p.ensureModel(ctx)
	if err != nil {
		p.logger.Error(ctx, "Error loading transcription model: %v", err)
		return false
	}
	return p.process(ctx, model, c)
}

// process extracts, transcribes and saves one video. Failures are logged and
// reported as false; nothing here aborts a batch.
func (p *implProcessor) process(ctx context.Context, model transcriber.Transcriber, c Candidate) (ok bool) {
	// An item that has started runs to completion.
	ctx = context.WithoutCancel(ctx)
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(ctx, "Error processing video %s: %v", c.Path, r)
			ok = false
		}
	}()

	p.logger.Info(ctx, "Processing video: %s (%s)", c.Path, humanize.IBytes(uint64(max(c.Size, 0))))

	scratch, err := p.newScratchDir()
	if err != nil {
		p.logger.Error(ctx, "Error processing video %s: %v", c.Path, err)
		return false
	}
	defer p.cleanupScratch(ctx, scratch)

	// Step 1: Extract audio
	audioPath, err := p.extractor.ExtractMonoAudio(ctx, c.Path, scratch)
	if err != nil {
		p.logger.Error(ctx, "Failed to extract audio from %s: %v", c.Name(), err)
		return false
	}

	// Step 2: Transcribe
	transcript, err := model.Transcribe(ctx, audioPath)
	if err != nil {
		p.logger.Error(ctx, "Error transcribing %s: %v", c.Name(), err)
		return false
	}
	if strings.TrimSpace(transcript) == "" {
		p.logger.Warn(ctx, "No transcript was generated for %s", c.Name())
		return false
	}
	if lang := transcriber.DetectLanguage(transcript); lang != "" {
		p.logger.Debug(ctx, "Transcript language for %s: %s", c.Name(), lang)
	}

	// Step 3: Save artifact
	if c.Fingerprint == "" {
		c.Fingerprint = p.fingerprint(ctx, c.Path)
	}
	a := artifact.New(artifact.Source{
		Path:        c.Path,
		Size:        c.Size,
		ModTime:     c.ModTime,
		Fingerprint: c.Fingerprint,
	}, model.Model(), transcript, p.now())

	outputPath, err := p.store.Save(ctx, a)
	if err != nil {
		p.logger.Error(ctx, "Error saving transcript for %s: %v", c.Name(), err)
		return false
	}

	p.sink.Publish(ctx, events.VideoTranscription{
		Type:          events.TypeVideoTranscription,
		VideoPath:     a.VideoPath,
		VideoFilename: a.VideoFilename,
		Transcript:    a.Transcription,
		OutputPath:    outputPath,
		Timestamp:     a.TranscriptionTime,
	})

	p.logger.Info(ctx, "Transcript saved to %s (%s)", outputPath, time.Since(startTime).Round(time.Millisecond))
	return true
}

// fingerprint returns the content fingerprint of path, or empty when the
// file cannot be read.
func (p *implProcessor) fingerprint(ctx context.Context, path string) fingerprint.Fingerprint {
	fp, err := fingerprint.Compute(path)
	if err != nil {
		p.logger.Warn(ctx, "Error generating hash for %s: %v", path, err)
		return ""
	}
	return fp
}

// alreadyProcessed fingerprints c and checks the store for a matching
// artifact. A store error counts as no match.
func (p *implProcessor) alreadyProcessed(ctx context.Context, c *Candidate) bool {
	c.Fingerprint = p.fingerprint(ctx, c.Path)

	m, err := p.store.Find(ctx, store.Probe{
		Path:        c.Path,
		Filename:    c.Name(),
		Fingerprint: c.Fingerprint,
	})
	if err != nil {
		p.logger.Warn(ctx, "Error checking existing transcripts for %s: %v", c.Name(), err)
		return false
	}
	if m == nil {
		return false
	}
	p.logger.Info(ctx, "Video %s already transcribed (%s match: %s), skipping", c.Name(), m.Rule, m.ArtifactPath)
	return true
}

// ensureModel loads the transcription model on first use. A failed load is
// retried on the next call.
func (p *implProcessor) ensureModel(ctx context.Context) (transcriber.Transcriber, error) {
	if p.model != nil {
		return p.model, nil
	}
	model, err := p.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transcription model: %w", err)
	}
	p.model = model
	return model, nil
}

// status logs msg under the component name and forwards it to the sink.
func (p *implProcessor) status(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.logger.Info(ctx, "[%s] %s", p.cfg.Name, msg)
	p.sink.Status(ctx, p.cfg.Name, msg)
}

package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportAll reads every stored artifact and writes a transcript document for
// each into destDir, named after the artifact file.
func (e *implExporter) ExportAll(ctx context.Context, destDir string) (Result, error) {
	var res Result

	entries, err := e.store.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list transcripts: %w", err)
	}
	if len(entries) == 0 {
		e.logger.Info(ctx, "No transcripts found in %s", e.store.Dir())
		return res, nil
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return res, fmt.Errorf("create dest dir: %w", err)
	}

	e.logger.Info(ctx, "Found %d transcripts to export", len(entries))

	for i, entry := range entries {
		name := strings.TrimSuffix(filepath.Base(entry.Path), filepath.Ext(entry.Path))
		docPath := filepath.Join(destDir, name+".docx")

		if !e.overwrite {
			if _, err := os.Stat(docPath); err == nil {
				e.logger.Debug(ctx, "[%d/%d] %s already exported", i+1, len(entries), name)
				res.Skipped++
				continue
			}
		}

		e.logger.Info(ctx, "[%d/%d] Exporting: %s", i+1, len(entries), entry.Artifact.VideoFilename)
		if err := transcriptToDocx(entry.Artifact, docPath); err != nil {
			e.logger.Error(ctx, "Failed to write %s: %v", docPath, err)
			res.Failed++
			continue
		}

		e.logger.Info(ctx, "[DONE] %s -> %s", entry.Artifact.VideoFilename, docPath)
		res.Written = append(res.Written, docPath)
	}

	e.logger.Info(ctx, "Export complete: %d written, %d skipped, %d failed", len(res.Written), res.Skipped, res.Failed)
	return res, nil
}

package exporter

import "context"

// Exporter renders stored transcripts as documents.
type Exporter interface {
	// ExportAll writes one .docx per stored artifact into destDir.
	ExportAll(ctx context.Context, destDir string) (Result, error)
}

// Result counts the outcome of an export.
type Result struct {
	Written []string
	Skipped int
	Failed  int
}

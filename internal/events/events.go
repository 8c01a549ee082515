// Package events carries processor lifecycle notifications to subscribers.
package events

const (
	TypeVideoTranscription   = "video_transcription"
	TypeTranscriptionSummary = "transcription_summary"
)

// VideoTranscription is published after an artifact is written.
type VideoTranscription struct {
	Type          string `json:"type"`
	VideoPath     string `json:"video_path"`
	VideoFilename string `json:"video_filename"`
	Transcript    string `json:"transcript"`
	OutputPath    string `json:"output_path"`
	Timestamp     string `json:"timestamp"`
}

func (VideoTranscription) EventType() string { return TypeVideoTranscription }

// TranscriptionSummary is published at the end of a batch run.
type TranscriptionSummary struct {
	Type           string `json:"type"`
	ProcessedCount int    `json:"processed_count"`
	SkippedCount   int    `json:"skipped_count"`
	TotalFiles     int    `json:"total_files"`
	ContextDir     string `json:"context_dir"`
}

func (TranscriptionSummary) EventType() string { return TypeTranscriptionSummary }

package transcriber

import "context"

// Transcriber converts an audio file into text. It may be slow and may fail.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	// Model identifies the model or configuration, as recorded in artifacts.
	Model() string
}

// Loader prepares a Transcriber. Loading is assumed to be expensive, so
// callers keep the result for the lifetime of the process.
type Loader func(ctx context.Context) (Transcriber, error)

package processor

import "context"

// Processor turns discovered or delivered videos into transcript artifacts.
// All methods are serialized: at most one video is processed at a time.
type Processor interface {
	// RunBatch discovers every candidate from configuration and processes the
	// ones without an artifact. Errors are fatal to the run; per-video failures
	// are counted in the Summary instead.
	RunBatch(ctx context.Context) (Summary, error)
	// RunOne processes a single delivered video path.
	RunOne(ctx context.Context, path string) Outcome
	// ProcessInput extracts a path from a pipeline notification and runs it.
	ProcessInput(ctx context.Context, payload any) Outcome
	// Process runs extract, transcribe and save for c without a dedup check.
	Process(ctx context.Context, c Candidate) bool
}

// Outcome is the result of a delivered input.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeSkipped
	OutcomeProcessed
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeProcessed:
		return "processed"
	case OutcomeFailed:
		return "failed"
	default:
		return "ignored"
	}
}

package extractor

import "context"

// Extractor turns a video into a mono audio file inside destDir.
type Extractor interface {
	ExtractMonoAudio(ctx context.Context, videoPath, destDir string) (string, error)
}

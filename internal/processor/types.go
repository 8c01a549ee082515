package processor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/nguyentantai21042004/context-flow/internal/fingerprint"
	"github.com/nguyentantai21042004/context-flow/internal/store"
)

var (
	ErrFileNotFound       = errors.New("file not found")
	ErrUnsupportedFormat  = errors.New("unsupported video format")
	ErrStorageUnavailable = store.ErrUnavailable
	// ErrMissingSource means neither a videos directory nor a specific video
	// is configured. RunBatch treats it as "wait for pipeline input".
	ErrMissingSource = errors.New("no video source configured")
)

// SupportedExtensions are matched case-sensitively.
var SupportedExtensions = []string{".mp4", ".mkv"}

// IsSupported reports whether path has a supported video extension.
func IsSupported(path string) bool {
	return slices.Contains(SupportedExtensions, filepath.Ext(path))
}

// ConnectionType and ConnectionFields describe what a host has to configure.
const ConnectionType = "LOCAL_VIDEO_TRANSCRIPTION"

var ConnectionFields = []string{"videos_dir", "context_dir", "whisper_model_size", "specific_video_path"}

// Candidate is a video file eligible for transcription.
type Candidate struct {
	Path        string
	Size        int64
	ModTime     time.Time
	Fingerprint fingerprint.Fingerprint
}

// Name is the base file name.
func (c Candidate) Name() string {
	return filepath.Base(c.Path)
}

// NewCandidate stats path and returns it as a Candidate with an absolute path.
func NewCandidate(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Candidate{}, fmt.Errorf("%w: video file '%s'", ErrFileNotFound, path)
		}
		return Candidate{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return Candidate{}, fmt.Errorf("%w: '%s' is not a regular file", ErrFileNotFound, path)
	}
	return candidateFromInfo(path, info)
}

func candidateFromInfo(path string, info fs.FileInfo) (Candidate, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	return Candidate{
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Summary reports one batch run.
type Summary struct {
	RunID      string
	Total      int
	Processed  int
	Skipped    int
	Failed     int
	Elapsed    time.Duration
	ContextDir string
	// Waiting is set when no source is configured and the run did nothing.
	Waiting bool
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nguyentantai21042004/context-flow/internal/artifact"
	"github.com/nguyentantai21042004/context-flow/internal/fingerprint"
	"github.com/nguyentantai21042004/context-flow/internal/logger"
)

// dirStore matches candidates by scanning the output directory. Parsed
// metadata is memoized by (name, size, mtime); the listing never is.
type dirStore struct {
	dir    string
	logger logger.Logger

	mu   sync.Mutex
	memo map[string]memoEntry
}

type memoEntry struct {
	size    int64
	modTime time.Time
	meta    meta
	corrupt bool
}

// artifactFile is one *.json entry of the output directory.
type artifactFile struct {
	name    string
	path    string
	size    int64
	modTime time.Time
}

func newDirStore(dir string, log logger.Logger) *dirStore {
	return &dirStore{
		dir:    dir,
		logger: log,
		memo:   make(map[string]memoEntry),
	}
}

func (s *dirStore) Dir() string { return s.dir }

func (s *dirStore) Ensure() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrUnavailable, s.dir, err)
	}
	return nil
}

func (s *dirStore) Close() error { return nil }

func (s *dirStore) Find(ctx context.Context, probe Probe) (*Match, error) {
	files, err := s.listFiles()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(files))
	var found *Match
	for _, f := range files {
		seen[f.name] = struct{}{}
		if found != nil {
			continue
		}
		m, ok := s.loadLocked(ctx, f)
		if !ok {
			continue
		}
		if rule, ok := match(probe, m); ok {
			found = &Match{ArtifactPath: f.path, Rule: rule}
		}
	}
	for name := range s.memo {
		if _, ok := seen[name]; !ok {
			delete(s.memo, name)
		}
	}
	return found, nil
}

func (s *dirStore) loadLocked(ctx context.Context, f artifactFile) (meta, bool) {
	if e, ok := s.memo[f.name]; ok && e.size == f.size && e.modTime.Equal(f.modTime) {
		return e.meta, !e.corrupt
	}
	m, err := readMeta(f.path)
	if err != nil {
		s.logger.Warn(ctx, "Error checking metadata in %s: %v", f.path, err)
	}
	s.memo[f.name] = memoEntry{size: f.size, modTime: f.modTime, meta: m, corrupt: err != nil}
	return m, err == nil
}

func (s *dirStore) Save(ctx context.Context, a artifact.Artifact) (string, error) {
	name := artifact.FileName(mtimeOf(a))
	path := filepath.Join(s.dir, name)

	data, err := artifact.Marshal(a)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		s.logger.Warn(ctx, "Context file %s already exists and will be replaced (same recording time as %s)", path, a.VideoFilename)
	}
	if err := writeFileAtomic(s.dir, name, data); err != nil {
		return "", fmt.Errorf("write context file %s: %w", path, err)
	}
	return path, nil
}

func (s *dirStore) List(ctx context.Context) ([]Entry, error) {
	files, err := s.listFiles()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			s.logger.Warn(ctx, "Skipping unreadable context file %s: %v", f.path, err)
			continue
		}
		a, err := artifact.Unmarshal(data)
		if err != nil {
			s.logger.Warn(ctx, "Skipping corrupt context file %s: %v", f.path, err)
			continue
		}
		entries = append(entries, Entry{Path: f.path, Artifact: a})
	}
	return entries, nil
}

// listFiles returns the artifact files of the output directory sorted by
// name. A missing directory holds no artifacts.
func (s *dirStore) listFiles() ([]artifactFile, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list context dir: %w", err)
	}

	files := make([]artifactFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !artifact.IsArtifactName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, artifactFile{
			name:    e.Name(),
			path:    filepath.Join(s.dir, e.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}

// readMeta decodes only the dedup keys. A key whose value is not a string
// reads as empty, so it never matches, and the other keys still count.
func readMeta(path string) (meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return meta{}, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return meta{}, fmt.Errorf("decode artifact: %w", err)
	}
	return meta{
		VideoPath:     stringField(fields, "video_path"),
		VideoFilename: stringField(fields, "video_filename"),
		VideoHash:     fingerprint.Fingerprint(stringField(fields, "video_hash")),
	}, nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var v string
	if err := json.Unmarshal(fields[key], &v); err != nil {
		return ""
	}
	return v
}

func mtimeOf(a artifact.Artifact) time.Time {
	sec, frac := math.Modf(a.VideoMtime)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

package processor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// discover returns the candidates for a batch run, newest first.
func (p *implProcessor) discover() ([]Candidate, error) {
	if path := p.cfg.Paths.SpecificVideo; path != "" {
		c, err := NewCandidate(path)
		if err != nil {
			return nil, err
		}
		if !IsSupported(path) {
			return nil, fmt.Errorf("%w: '%s' (supported: %v)", ErrUnsupportedFormat, path, SupportedExtensions)
		}
		return []Candidate{c}, nil
	}

	dir := p.cfg.Paths.Videos
	if dir == "" {
		return nil, ErrMissingSource
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: videos directory '%s'", ErrFileNotFound, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: '%s' is not a directory", ErrFileNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read videos directory: %w", err)
	}

	var candidates []Candidate
	for _, entry := range entries {
		if !IsSupported(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		// Stat follows symlinks, unlike entry.Info.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		c, err := candidateFromInfo(path, info)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
		return a.Name() < b.Name()
	})
	return candidates, nil
}

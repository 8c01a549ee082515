package store

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/context-flow/internal/artifact"
	"github.com/nguyentantai21042004/context-flow/internal/fingerprint"
)

// ErrUnavailable reports that the output directory cannot be created or written.
var ErrUnavailable = errors.New("storage unavailable")

// Store is the set of transcript artifacts in the output directory.
type Store interface {
	// Dir is the output directory.
	Dir() string
	// Ensure creates the output directory if it is missing.
	Ensure() error
	// Find returns the first artifact matching probe, or nil. The directory
	// is listed fresh on every call.
	Find(ctx context.Context, probe Probe) (*Match, error)
	// Save persists a and returns the written path.
	Save(ctx context.Context, a artifact.Artifact) (string, error)
	// List returns every readable artifact, sorted by file name.
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

// Probe identifies a candidate video for dedup.
type Probe struct {
	Path        string
	Filename    string
	Fingerprint fingerprint.Fingerprint
}

// Rule names the dedup rule that matched.
type Rule string

const (
	RulePath        Rule = "path"
	RuleFilename    Rule = "filename"
	RuleFingerprint Rule = "fingerprint"
)

type Match struct {
	ArtifactPath string
	Rule         Rule
}

type Entry struct {
	Path     string
	Artifact artifact.Artifact
}

// match applies the dedup rules in priority order.
func match(p Probe, a meta) (Rule, bool) {
	switch {
	case a.VideoPath == p.Path:
		return RulePath, true
	case a.VideoFilename == p.Filename:
		return RuleFilename, true
	case p.Fingerprint != "" && a.VideoHash == p.Fingerprint:
		return RuleFingerprint, true
	}
	return "", false
}

// meta is the part of an artifact the dedup rules look at.
type meta struct {
	VideoPath     string
	VideoFilename string
	VideoHash     fingerprint.Fingerprint
}

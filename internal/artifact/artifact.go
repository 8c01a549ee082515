// Package artifact defines the persisted transcript record and its wire format.
package artifact

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/context-flow/internal/fingerprint"
	"github.com/nguyentantai21042004/context-flow/pkg/jsonenc"
)

const (
	filePrefix = "context-"
	fileExt    = ".json"
	nameLayout = "20060102150405"
	isoLayout  = "2006-01-02T15:04:05"
)

// Artifact is one transcribed video. Field order is the on-disk key order.
type Artifact struct {
	VideoPath          string                  `json:"video_path"`
	VideoFilename      string                  `json:"video_filename"`
	VideoHash          fingerprint.Fingerprint `json:"video_hash"`
	VideoSize          int64                   `json:"video_size"`
	VideoMtime         float64                 `json:"video_mtime"`
	VideoRecordingTime string                  `json:"video_recording_time"`
	TranscriptionTime  string                  `json:"transcription_time"`
	WhisperModel       string                  `json:"whisper_model"`
	Transcription      string                  `json:"transcription"`
}

// Source describes the video an artifact is built from.
type Source struct {
	Path        string
	Size        int64
	ModTime     time.Time
	Fingerprint fingerprint.Fingerprint
}

// New builds an artifact for src transcribed by model at time now.
func New(src Source, model, transcript string, now time.Time) Artifact {
	return Artifact{
		VideoPath:          src.Path,
		VideoFilename:      filepath.Base(src.Path),
		VideoHash:          src.Fingerprint,
		VideoSize:          src.Size,
		VideoMtime:         EpochSeconds(src.ModTime),
		VideoRecordingTime: ISOTime(src.ModTime),
		TranscriptionTime:  ISOTime(now),
		WhisperModel:       model,
		Transcription:      transcript,
	}
}

// FileName returns the artifact file name for a video recorded at modTime.
// Two videos with the same recording second map to the same name.
func FileName(modTime time.Time) string {
	return filePrefix + modTime.Local().Format(nameLayout) + fileExt
}

// IsArtifactName reports whether name is a visible JSON file, the set the
// dedup scan considers.
func IsArtifactName(name string) bool {
	return !strings.HasPrefix(name, ".") && filepath.Ext(name) == fileExt
}

// EpochSeconds converts t to fractional seconds since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// ISOTime formats t in local time without a zone, adding microseconds only
// when they are non-zero.
func ISOTime(t time.Time) string {
	t = t.Local()
	out := t.Format(isoLayout)
	if us := t.Nanosecond() / 1000; us != 0 {
		out += fmt.Sprintf(".%06d", us)
	}
	return out
}

// ParseISOTime reads a timestamp written by ISOTime.
func ParseISOTime(s string) (time.Time, error) {
	return time.ParseInLocation(isoLayout+".999999", s, time.Local)
}

// Marshal renders a as indented JSON, leaving non-ASCII and HTML characters
// unescaped. Invalid UTF-8 in the transcript is written as U+FFFD.
func Marshal(a Artifact) ([]byte, error) {
	data, err := jsonenc.Marshal(a, "  ")
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return data, nil
}

// Unmarshal parses an artifact file's contents.
func Unmarshal(data []byte) (Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return Artifact{}, fmt.Errorf("decode artifact: %w", err)
	}
	return a, nil
}

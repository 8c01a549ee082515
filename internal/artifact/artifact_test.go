package artifact

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileNameUsesRecordingTime(t *testing.T) {
	mod := time.Date(2024, 3, 9, 7, 5, 2, 0, time.Local)
	assert.Equal(t, "context-20240309070502.json", FileName(mod))
}

func TestISOTime(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"whole seconds", time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local), "2024-01-02T03:04:05"},
		{"microseconds", time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.Local), "2024-01-02T03:04:05.123456"},
		{"sub-microsecond dropped", time.Date(2024, 1, 2, 3, 4, 5, 999, time.Local), "2024-01-02T03:04:05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ISOTime(tt.in))
		})
	}
}

func TestNewFillsProvenance(t *testing.T) {
	mod := time.Date(2024, 5, 1, 12, 0, 0, 500000000, time.Local)
	now := time.Date(2024, 5, 2, 9, 30, 0, 0, time.Local)

	a := New(Source{Path: "/videos/standup.mp4", Size: 4096, ModTime: mod, Fingerprint: "abc"}, "base", " hello", now)

	assert.Equal(t, "/videos/standup.mp4", a.VideoPath)
	assert.Equal(t, "standup.mp4", a.VideoFilename)
	assert.EqualValues(t, "abc", a.VideoHash)
	assert.Equal(t, int64(4096), a.VideoSize)
	assert.InDelta(t, float64(mod.Unix())+0.5, a.VideoMtime, 1e-6)
	assert.Equal(t, "2024-05-01T12:00:00.500000", a.VideoRecordingTime)
	assert.Equal(t, "2024-05-02T09:30:00", a.TranscriptionTime)
	assert.Equal(t, "base", a.WhisperModel)
	assert.Equal(t, " hello", a.Transcription)
}

func TestMarshalKeepsTextVerbatim(t *testing.T) {
	a := Artifact{VideoFilename: "réunion.mkv", Transcription: "Xin chào <team> & 日本語"}

	data, err := Marshal(a)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "Xin chào <team> & 日本語")
	assert.Contains(t, out, `"video_filename": "réunion.mkv"`)
	assert.Contains(t, out, `"video_hash": null`)
	assert.True(t, strings.HasPrefix(out, "{\n  \"video_path\""))
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestMarshalKeepsLineSeparators(t *testing.T) {
	lineSep, paraSep := "\xe2\x80\xa8", "\xe2\x80\xa9"
	a := Artifact{Transcription: "line one" + lineSep + "line two" + paraSep + `end \u2028`}

	data, err := Marshal(a)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "line one"+lineSep+"line two"+paraSep)
	assert.Contains(t, out, `end \\u2028`)

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, a.Transcription, back.Transcription)
}

func TestMarshalReplacesInvalidUTF8(t *testing.T) {
	data, err := Marshal(Artifact{Transcription: "bad \xff end"})
	require.NoError(t, err)
	assert.Contains(t, string(data), "bad \xef\xbf\xbd end")
	assert.NotContains(t, string(data), `\ufffd`)
}

func TestMarshalKeyOrder(t *testing.T) {
	data, err := Marshal(Artifact{})
	require.NoError(t, err)

	keys := []string{"video_path", "video_filename", "video_hash", "video_size", "video_mtime",
		"video_recording_time", "transcription_time", "whisper_model", "transcription"}
	last := -1
	for _, k := range keys {
		idx := strings.Index(string(data), `"`+k+`"`)
		require.Greater(t, idx, last, "key %s out of order", k)
		last = idx
	}
}

func TestUnmarshal(t *testing.T) {
	a, err := Unmarshal([]byte(`{"video_path":"/v/a.mp4","video_filename":"a.mp4","video_hash":"ff","transcription":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "/v/a.mp4", a.VideoPath)
	assert.EqualValues(t, "ff", a.VideoHash)

	_, err = Unmarshal([]byte(`{"video_path":`))
	assert.Error(t, err)

	var syntaxErr *json.SyntaxError
	_, err = Unmarshal([]byte(`not json`))
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestIsArtifactName(t *testing.T) {
	assert.True(t, IsArtifactName("context-20240101000000.json"))
	assert.True(t, IsArtifactName("hand-written.json"))
	assert.False(t, IsArtifactName(".context-20240101000000.json.tmp-123"))
	assert.False(t, IsArtifactName(".hidden.json"))
	assert.False(t, IsArtifactName("notes.txt"))
}

func TestParseISOTime(t *testing.T) {
	for _, want := range []time.Time{
		time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local),
		time.Date(2024, 3, 1, 10, 0, 0, 250000000, time.Local),
	} {
		got, err := ParseISOTime(ISOTime(want))
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "%s != %s", got, want)
	}

	_, err := ParseISOTime("yesterday")
	assert.Error(t, err)
}

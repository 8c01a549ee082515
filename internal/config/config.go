package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

// ModelSizes lists the accepted whisper model sizes, fastest first.
var ModelSizes = []string{"tiny", "base", "small", "medium", "large"}

const (
	BackendWhisper = "whisper"
	BackendGemini  = "gemini"

	IndexScan   = "scan"
	IndexSQLite = "sqlite"
)

type Config struct {
	Name        string            `yaml:"name"`
	Paths       PathsConfig       `yaml:"paths"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Index       IndexConfig       `yaml:"index"`
	Watch       WatchConfig       `yaml:"watch"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// PathsConfig locates source videos and transcript artifacts.
// Videos may be empty: the pipeline then waits for delivered input.
type PathsConfig struct {
	Videos        string `yaml:"videos"`
	Context       string `yaml:"context"`
	SpecificVideo string `yaml:"specific_video"`
	Temp          string `yaml:"temp"`
}

type TranscriberConfig struct {
	Backend   string `yaml:"backend"`
	ModelSize string `yaml:"model_size"`
}

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelDir   string `yaml:"model_dir"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	SampleRate int    `yaml:"sample_rate"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
	Prompt  string   `yaml:"prompt"`
}

type IndexConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type WatchConfig struct {
	SettleDelay time.Duration `yaml:"settle_delay"`
	Initial     bool          `yaml:"initial"`
}

type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func (c *Config) Validate() error {
	if c.Name == "" {
		c.Name = "LocalVideoTranscription"
	}
	if c.Paths.Context == "" {
		c.Paths.Context = "context"
	}
	if c.Transcriber.Backend == "" {
		c.Transcriber.Backend = BackendWhisper
	}
	if c.Transcriber.ModelSize == "" {
		c.Transcriber.ModelSize = "base"
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.ModelDir == "" {
		c.Whisper.ModelDir = "models"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 16000
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Index.Backend == "" {
		c.Index.Backend = IndexScan
	}
	if c.Index.Path == "" {
		c.Index.Path = filepath.Join(c.Paths.Context, ".index.db")
	}
	if c.Watch.SettleDelay == 0 {
		c.Watch.SettleDelay = 500 * time.Millisecond
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "@hourly"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	switch c.Transcriber.Backend {
	case BackendWhisper:
		if !slices.Contains(ModelSizes, c.Transcriber.ModelSize) {
			return fmt.Errorf("transcriber.model_size must be one of %s, got %q",
				strings.Join(ModelSizes, ", "), c.Transcriber.ModelSize)
		}
	case BackendGemini:
		if len(c.Gemini.APIKeys) == 0 {
			return fmt.Errorf("gemini.api_keys is required for the gemini backend")
		}
	default:
		return fmt.Errorf("transcriber.backend must be %q or %q, got %q",
			BackendWhisper, BackendGemini, c.Transcriber.Backend)
	}
	if c.Whisper.Language != "auto" {
		if _, err := language.Parse(c.Whisper.Language); err != nil {
			return fmt.Errorf("whisper.language: %w", err)
		}
	}
	if c.Index.Backend != IndexScan && c.Index.Backend != IndexSQLite {
		return fmt.Errorf("index.backend must be %q or %q, got %q", IndexScan, IndexSQLite, c.Index.Backend)
	}
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron: %w", err)
	}

	return nil
}

// ModelID names the model that produced a transcript, as stored in artifacts.
func (c *Config) ModelID() string {
	if c.Transcriber.Backend == BackendGemini {
		return c.Gemini.Model
	}
	return c.Transcriber.ModelSize
}

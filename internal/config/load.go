package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Option sets a per-instance parameter. Options win over the environment.
type Option func(*Config)

func WithVideosDir(dir string) Option {
	return func(c *Config) { c.Paths.Videos = dir }
}

func WithContextDir(dir string) Option {
	return func(c *Config) { c.Paths.Context = dir }
}

func WithSpecificVideo(path string) Option {
	return func(c *Config) { c.Paths.SpecificVideo = path }
}

func WithModelSize(size string) Option {
	return func(c *Config) { c.Transcriber.ModelSize = size }
}

func WithBackend(backend string) Option {
	return func(c *Config) { c.Transcriber.Backend = backend }
}

func WithIndexBackend(backend string) Option {
	return func(c *Config) { c.Index.Backend = backend }
}

func WithLogLevel(level string) Option {
	return func(c *Config) { c.Logging.Level = level }
}

// Load reads a YAML config file and resolves it with options, the environment
// and defaults, in that order of precedence.
func Load(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return resolve(&cfg, opts)
}

// New resolves a config from options, the environment and defaults.
func New(opts ...Option) (*Config, error) {
	return resolve(&Config{}, opts)
}

func resolve(cfg *Config, opts []Option) (*Config, error) {
	for _, opt := range opts {
		opt(cfg)
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills fields that no file or option has set.
func applyEnv(c *Config) {
	fill(&c.Paths.Videos, "VIDEOS_DIR")
	fill(&c.Paths.Context, "CONTEXT_DIR")
	fill(&c.Paths.SpecificVideo, "SPECIFIC_VIDEO_PATH")
	fill(&c.Paths.Temp, "TRANSCRIBE_TEMP_DIR")
	fill(&c.Transcriber.Backend, "TRANSCRIBER_BACKEND")
	fill(&c.Transcriber.ModelSize, "WHISPER_MODEL_SIZE")
	fill(&c.Whisper.BinaryPath, "WHISPER_BINARY")
	fill(&c.Whisper.ModelDir, "WHISPER_MODEL_DIR")
	fill(&c.Whisper.ModelPath, "WHISPER_MODEL_PATH")
	fill(&c.Whisper.Language, "WHISPER_LANGUAGE")
	fill(&c.FFmpeg.BinaryPath, "FFMPEG_BINARY")
	fill(&c.Gemini.Model, "GEMINI_MODEL")
	fill(&c.Index.Backend, "INDEX_BACKEND")
	fill(&c.Schedule.Cron, "SCHEDULE_CRON")
	fill(&c.Logging.Level, "LOG_LEVEL")
	fill(&c.Logging.File, "LOG_FILE")

	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = getEnvInt("WHISPER_THREADS", 0)
	}
	if len(c.Gemini.APIKeys) == 0 {
		for _, key := range strings.Split(getEnvString("GEMINI_API_KEYS", ""), ",") {
			if key = strings.TrimSpace(key); key != "" {
				c.Gemini.APIKeys = append(c.Gemini.APIKeys, key)
			}
		}
	}
}

func fill(field *string, key string) {
	if *field == "" {
		*field = getEnvString(key, "")
	}
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

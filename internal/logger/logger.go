package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

var levelRank = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

var levelColor = map[string]string{
	"debug": "\033[90m",
	"info":  "\033[36m",
	"warn":  "\033[33m",
	"error": "\033[31m",
}

type implLogger struct {
	logger *log.Logger
	level  string
	color  bool
}

// New creates a Logger writing to stdout. Level tags are colored when stdout is a terminal.
func New(level string) Logger {
	fd := os.Stdout.Fd()
	return &implLogger{
		logger: log.New(os.Stdout, "", log.LstdFlags),
		level:  strings.ToLower(level),
		color:  isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
	}
}

// NewWithWriter creates a Logger writing plain lines to w.
func NewWithWriter(level string, w io.Writer) Logger {
	return &implLogger{
		logger: log.New(w, "", log.LstdFlags),
		level:  strings.ToLower(level),
	}
}

// Open creates a Logger that writes to stdout and appends to file.
// The returned closer releases the file.
func Open(level, file string) (Logger, io.Closer, error) {
	if file == "" {
		return New(level), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewWithWriter(level, io.MultiWriter(os.Stdout, f)), f, nil
}

func (l *implLogger) shouldLog(level string) bool {
	currentLevel, ok := levelRank[l.level]
	if !ok {
		currentLevel = 1 // default to info
	}

	targetLevel, ok := levelRank[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

func (l *implLogger) write(level, msg string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	tag := "[" + strings.ToUpper(level) + "] "
	if l.color {
		tag = levelColor[level] + tag + "\033[0m"
	}
	l.logger.Printf(tag+msg, args...)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.write("debug", msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.write("info", msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.write("warn", msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.write("error", msg, args...)
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return NewWithWriter("error", io.Discard)
}

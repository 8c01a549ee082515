package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/context-flow/internal/logger"
)

// Options tune a Watcher.
type Options struct {
	// SettleDelay is how long a file must go without writes before it is handled.
	SettleDelay time.Duration
	// Match selects the files to handle. Nil matches everything.
	Match func(path string) bool
}

// New creates a Watcher over inputDir
func New(inputDir string, handler EventHandler, log logger.Logger, opts Options) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 500 * time.Millisecond
	}
	if opts.Match == nil {
		opts.Match = func(string) bool { return true }
	}

	return &implWatcher{
		inputDir: inputDir,
		handler:  handler,
		logger:   log,
		watcher:  watcher,
		opts:     opts,
		pending:  make(map[string]*time.Timer),
		ready:    make(chan string, 64),
	}, nil
}

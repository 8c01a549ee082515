package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

const lockFile = ".pipeline.lock"

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// acquireLock keeps a second watcher or scheduler off the same context
// directory.
func acquireLock(contextDir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(contextDir, lockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another pipeline instance is already running for " + contextDir)
	}
	return lock, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

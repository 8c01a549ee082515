package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/nguyentantai21042004/context-flow/internal/events"
)

// newProgressSink draws a progress bar on f for batch runs. It returns nil
// when f is not an interactive terminal.
func newProgressSink(f *os.File) events.Sink {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return nil
	}

	var (
		mu  sync.Mutex
		bar *progressbar.ProgressBar
	)
	return events.Funcs{
		OnProgress: func(_ string, total, processed int, remaining time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(f),
					progressbar.OptionShowCount(),
					progressbar.OptionSetPredictTime(false),
					progressbar.OptionClearOnFinish(),
				)
			}
			bar.Describe(fmt.Sprintf("transcribing (eta %s)", remaining.Round(time.Second)))
			_ = bar.Set(processed)
			if processed >= total {
				_ = bar.Finish()
				bar = nil
			}
		},
	}
}

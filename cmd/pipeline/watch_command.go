package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/context-flow/internal/processor"
	"github.com/nguyentantai21042004/context-flow/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var initial bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Transcribe videos as they appear in the videos directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Paths.Videos == "" {
				return errors.New("watch requires a videos directory (--videos or VIDEOS_DIR)")
			}
			log, err := ctx.logger()
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			if err := st.Ensure(); err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Paths.Videos, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", cfg.Paths.Videos, err)
			}

			lock, err := acquireLock(st.Dir())
			if err != nil {
				return err
			}
			defer lock.Unlock()

			runCtx, stop := signalContext(cmd)
			defer stop()

			proc, err := ctx.newProcessor(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if initial || cfg.Watch.Initial {
				if _, err := proc.RunBatch(runCtx); err != nil {
					return err
				}
			}

			handler := func(ctx context.Context, path string) error {
				outcome := proc.RunOne(ctx, path)
				if outcome == processor.OutcomeFailed {
					return errors.New("transcription failed")
				}
				log.Info(ctx, "%s: %s", path, outcome)
				return nil
			}
			w, err := watcher.New(cfg.Paths.Videos, handler, log, watcher.Options{
				SettleDelay: cfg.Watch.SettleDelay,
				Match:       processor.IsSupported,
			})
			if err != nil {
				return err
			}
			defer w.Stop()

			log.Info(runCtx, "Watching %s, context files in %s. Press Ctrl+C to stop", cfg.Paths.Videos, st.Dir())
			if err := w.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info(context.Background(), "Video pipeline stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&initial, "initial", false, "Run a full batch before watching")
	return cmd
}

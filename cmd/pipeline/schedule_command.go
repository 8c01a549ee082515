package main

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/singleflight"

	"github.com/nguyentantai21042004/context-flow/internal/logger"
	"github.com/nguyentantai21042004/context-flow/internal/processor"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run batch transcriptions on a cron schedule",
		Long:  "Runs a batch on every tick of schedule.cron (default @hourly). Overlapping ticks are merged.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
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

			runFunc := scheduledRun(runCtx, proc, log)
			c, err := newScheduler(cfg.Schedule.Cron, runFunc)
			if err != nil {
				return err
			}
			if now {
				runFunc()
			}

			c.Start()
			log.Info(runCtx, "Scheduled transcription runs (%s). Press Ctrl+C to stop", cfg.Schedule.Cron)
			<-runCtx.Done()

			// Wait for a running batch to reach its next item boundary.
			<-c.Stop().Done()
			log.Info(context.Background(), "Scheduler stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "Run a batch immediately before the first tick")
	return cmd
}

// scheduledRun returns the job run on every tick. A tick that fires while a
// batch is still running joins that batch instead of starting another.
func scheduledRun(ctx context.Context, proc processor.Processor, log logger.Logger) func() {
	var group singleflight.Group
	return func() {
		_, _, _ = group.Do("run", func() (any, error) {
			summary, err := proc.RunBatch(ctx)
			if err != nil {
				log.Error(ctx, "Scheduled run failed: %v", err)
				return nil, err
			}
			log.Info(ctx, "Scheduled run %s: processed %d, skipped %d, failed %d",
				summary.RunID, summary.Processed, summary.Skipped, summary.Failed)
			return summary, nil
		})
	}
}

func newScheduler(expr string, run func()) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(expr, run); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", expr, err)
	}
	return c, nil
}

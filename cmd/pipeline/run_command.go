package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/context-flow/internal/config"
	"github.com/nguyentantai21042004/context-flow/internal/processor"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run [video]",
		Short: "Transcribe every new video once and exit",
		Long: "Scan the videos directory, or only the given video file, and write a " +
			"context file for every video that has not been transcribed yet.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			if len(args) == 1 {
				ctx.extra = append(ctx.extra, config.WithSpecificVideo(args[0]))
			}

			runCtx, stop := signalContext(cmd)
			defer stop()

			proc, err := ctx.newProcessor(cmd.OutOrStdout(), newProgressSink(os.Stderr))
			if err != nil {
				return err
			}
			summary, err := proc.RunBatch(runCtx)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func printSummary(w io.Writer, s processor.Summary) {
	if s.Waiting {
		fmt.Fprintln(w, "No videos directory or video file configured; nothing to do.")
		return
	}
	if s.Total == 0 {
		fmt.Fprintln(w, "No video files found to process.")
		return
	}
	rows := [][]string{
		{"Run", s.RunID},
		{"Videos", strconv.Itoa(s.Total)},
		{"Processed", strconv.Itoa(s.Processed)},
		{"Skipped", strconv.Itoa(s.Skipped)},
		{"Failed", strconv.Itoa(s.Failed)},
		{"Elapsed", s.Elapsed.Round(time.Second).String()},
		{"Context dir", s.ContextDir},
	}
	fmt.Fprintln(w, renderTable([]string{"Summary", ""}, rows, nil))
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/context-flow/internal/config"
	"github.com/nguyentantai21042004/context-flow/internal/processor"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the connection fields and their resolved values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Connection: %s (%s)\n", cfg.Name, processor.ConnectionType)
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, configRows(cfg), nil))
			return nil
		},
	}
}

func configRows(cfg *config.Config) [][]string {
	values := map[string]string{
		"videos_dir":          cfg.Paths.Videos,
		"context_dir":         cfg.Paths.Context,
		"whisper_model_size":  cfg.Transcriber.ModelSize,
		"specific_video_path": cfg.Paths.SpecificVideo,
	}
	rows := make([][]string, 0, len(processor.ConnectionFields)+3)
	for _, field := range processor.ConnectionFields {
		rows = append(rows, []string{field, orDash(values[field])})
	}
	rows = append(rows,
		[]string{"transcriber", cfg.Transcriber.Backend + " (" + cfg.ModelID() + ")"},
		[]string{"index", cfg.Index.Backend},
		[]string{"schedule", cfg.Schedule.Cron},
	)
	return rows
}

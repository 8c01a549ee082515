package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/context-flow/internal/exporter"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Export stored transcripts as Word documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			log, err := ctx.logger()
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}

			res, err := exporter.New(st, log, overwrite).ExportAll(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d, skipped %d, failed %d\n", len(res.Written), res.Skipped, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("%d transcripts failed to export", res.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace documents that already exist")
	return cmd
}

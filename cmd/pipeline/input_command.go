package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newInputCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "input",
		Short: "Transcribe videos delivered as JSON lines on stdin",
		Long: "Each stdin line is a JSON string path or an object with a path, dest_path " +
			"or file_path field. One outcome is printed per line.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			runCtx, stop := signalContext(cmd)
			defer stop()

			proc, err := ctx.newProcessor(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
			out := cmd.OutOrStdout()
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				// Undecodable lines reach the processor as nil and are ignored.
				var payload any
				_ = json.Unmarshal([]byte(line), &payload)

				outcome := proc.ProcessInput(runCtx, payload)
				fmt.Fprintf(out, "%s\t%s\n", outcome, line)

				if runCtx.Err() != nil {
					return runCtx.Err()
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		},
	}
}

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/context-flow/internal/artifact"
	"github.com/nguyentantai21042004/context-flow/internal/store"
	"github.com/nguyentantai21042004/context-flow/internal/transcriber"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transcribed videos in the context directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			entries, err := st.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No transcripts in %s\n", st.Dir())
				return nil
			}
			headers := []string{"File", "Video", "Size", "Recorded", "Transcribed", "Model", "Lang", "Words"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
			fmt.Fprintln(out, renderTable(headers, listRows(entries), aligns))
			return nil
		},
	}
}

func listRows(entries []store.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		a := e.Artifact
		transcribed := a.TranscriptionTime
		if t, err := artifact.ParseISOTime(a.TranscriptionTime); err == nil {
			transcribed = humanize.Time(t)
		}
		rows = append(rows, []string{
			filepath.Base(e.Path),
			a.VideoFilename,
			humanize.IBytes(uint64(max(a.VideoSize, 0))),
			orDash(a.VideoRecordingTime),
			orDash(transcribed),
			orDash(a.WhisperModel),
			orDash(transcriber.DetectLanguage(a.Transcription)),
			humanize.Comma(int64(len(strings.Fields(a.Transcription)))),
		})
	}
	return rows
}

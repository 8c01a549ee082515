package main

import (
	"github.com/spf13/cobra"
)

type globalFlags struct {
	config    string
	videos    string
	context   string
	modelSize string
	backend   string
	index     string
	logLevel  string
	events    string
}

func newRootCommand() *cobra.Command {
	var flags globalFlags
	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:           "pipeline",
		Short:         "Transcribe local video recordings into JSON context files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path (YAML)")
	pf.StringVar(&flags.videos, "videos", "", "Directory of video recordings to scan")
	pf.StringVar(&flags.context, "context", "", "Directory for transcript context files")
	pf.StringVar(&flags.modelSize, "model-size", "", "Whisper model size (tiny, base, small, medium, large)")
	pf.StringVar(&flags.backend, "backend", "", "Transcription backend (whisper or gemini)")
	pf.StringVar(&flags.index, "index", "", "Dedup index backend (scan or sqlite)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.events, "events", "", "Append events as JSON lines to this file (- for stdout)")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newInputCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newScheduleCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type runOptions struct {
	configPath string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	options := &runOptions{}

	root := &cobra.Command{
		Use:           "eyebreak",
		Short:         "Reminds you to rest your eyes at regular intervals",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			slog.SetDefault(newLogger(os.Stderr, options.debug))
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGUI(options)
		},
	}
	root.PersistentFlags().StringVar(&options.configPath, "config", "", "settings file path (default: per-user config dir)")
	root.PersistentFlags().BoolVar(&options.debug, "debug", false, "enable debug logging")

	root.AddCommand(newTUICmd(options))
	return root
}

func newTUICmd(options *runOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the break timer in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTerminal(options)
		},
	}
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

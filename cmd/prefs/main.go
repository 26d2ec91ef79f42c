// Command prefs extracts user preferences from a chat transcript file.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/prefsd/internal/config"
	"github.com/MikeSquared-Agency/prefsd/internal/llm"
	"github.com/MikeSquared-Agency/prefsd/internal/provider"
	"github.com/MikeSquared-Agency/prefsd/internal/version"
)

// app holds what every subcommand needs. Tests swap newFactory for a stub.
type app struct {
	cfg        config.Config
	stdout     io.Writer
	stderr     io.Writer
	newFactory func(config.Config) llm.Factory

	verbose bool
}

func main() {
	a := &app{
		cfg:        config.Load(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		newFactory: provider.NewFactory,
	}
	if err := a.rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "prefs",
		Short: "Extract user preferences from chat transcripts",
		Long: `prefs reads a chat transcript and asks a language model which language
the user wants replies in and which standing rules or memories they stated.

Quick Start:
  prefs analyze chat.txt                   # role:\ncontent transcript
  prefs analyze --format jsonl session.jsonl
  prefs languages                          # supported language codes`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", a.cfg.Verbose, "Print prompts, model output and usage")

	root.AddCommand(a.analyzeCmd(), a.languagesCmd(), a.versionCmd())
	return root
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
		},
	}
}

// logger returns a slog.Logger backed by charmbracelet/log on stderr.
func (a *app) logger() *slog.Logger {
	level, err := log.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if a.verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(a.stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "prefs",
	})
	return slog.New(handler)
}

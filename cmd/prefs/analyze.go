package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/prefsd/internal/console"
	"github.com/MikeSquared-Agency/prefsd/internal/extractor"
	"github.com/MikeSquared-Agency/prefsd/internal/llm"
	"github.com/MikeSquared-Agency/prefsd/internal/locale"
	"github.com/MikeSquared-Agency/prefsd/internal/transcript"
)

// Input formats.
const (
	formatText  = "text"
	formatJSON  = "json"
	formatJSONL = "jsonl"
	// Gateway session logs: one {"type":"message"} event per line.
	formatSession = "session"
)

func (a *app) analyzeCmd() *cobra.Command {
	var (
		format string
		output string
		model  string
		width  int
	)
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Extract preferences from a transcript file (\"-\" reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "yaml" {
				return fmt.Errorf("unsupported output %q (want json or yaml)", output)
			}
			msgs, err := readTranscript(args[0], format, cmd.InOrStdin())
			if err != nil {
				return err
			}

			if model == "" {
				model = a.cfg.Model
			}
			logger := a.logger()

			var (
				opts    []extractor.Option
				printer *console.Printer
			)
			if a.verbose {
				printer = console.NewPrinter(a.stderr, console.NewColorRotator(), width)
				opts = append(opts, extractor.WithConsole(printer))
			}
			ext := extractor.New(a.newFactory(a.cfg), model, logger, opts...)

			result, err := ext.Run(cmd.Context(), msgs, llm.Named(model))
			if err != nil {
				return err
			}
			printer.JSONPanel("User Preferences", result.Preferences)

			return writeResult(cmd.OutOrStdout(), output, result)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Input format: text, json, jsonl or session (default: by extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output encoding: json or yaml")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name (default: PREFSD_MODEL)")
	cmd.Flags().IntVar(&width, "width", a.cfg.ConsoleWidth, "Panel width for --verbose")
	return cmd
}

func (a *app) languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported language codes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, l := range locale.Languages() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s %s\n", l, l.Name())
			}
		},
	}
}

// detectFormat picks an input format from the file extension.
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return formatJSONL
	case ".json":
		return formatJSON
	default:
		return formatText
	}
}

func readTranscript(path, format string, stdin io.Reader) ([]transcript.Message, error) {
	if format == "" {
		format = detectFormat(path)
	}

	open := func() (io.ReadCloser, error) {
		if path == "-" {
			return io.NopCloser(stdin), nil
		}
		return os.Open(path)
	}

	switch format {
	case formatJSONL:
		if path == "-" {
			return transcript.ParseJSONL(stdin)
		}
		return transcript.ParseJSONLFile(path)
	case formatSession:
		if path == "-" {
			return transcript.ParseSessionLog(stdin)
		}
		return transcript.ParseSessionLogFile(path)
	case formatJSON:
		f, err := open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return transcript.DecodeJSON(f)
	case formatText:
		f, err := open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read transcript: %w", err)
		}
		return transcript.ParseText(string(data))
	default:
		return nil, fmt.Errorf("unsupported format %q (want text, json, jsonl or session)", format)
	}
}

func writeResult(w io.Writer, output string, result *extractor.Result) error {
	switch output {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}

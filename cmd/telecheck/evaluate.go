package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"telecheck-go/internal/logger"
	"telecheck-go/internal/types"
)

func newEvaluateCommand(log *logger.Logger) *cobra.Command {
	var noSink bool
	var format string

	cmd := &cobra.Command{
		Use:   "evaluate <recording>",
		Short: "Evaluate one call recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "text" {
				return fmt.Errorf("unknown format %q (supported: json, text)", format)
			}
			audio, err := readRecording(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			proc, err := buildProcessor(cmd.Context(), cfg, log, !noSink)
			if err != nil {
				return err
			}

			res, err := proc.Process(cmd.Context(), audio)
			if err != nil {
				return fmt.Errorf("%s: %w", res.Error, err)
			}

			out := cmd.OutOrStdout()
			if format == "text" {
				fmt.Fprint(out, res.Summary.Text())
				fmt.Fprintf(out, "保存: %s\n", res.Sink.Status)
				return nil
			}
			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().BoolVar(&noSink, "no-sink", false, "Do not append the result to the spreadsheet")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or text")
	return cmd
}

func readRecording(path string) (types.Audio, error) {
	ct, ok := audioContentType(path)
	if !ok {
		return types.Audio{}, fmt.Errorf("unsupported file type %q (supported: %s)", filepath.Ext(path), supportedExtensions())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Audio{}, fmt.Errorf("read recording: %w", err)
	}
	if len(data) == 0 {
		return types.Audio{}, fmt.Errorf("recording %s is empty", path)
	}
	return types.Audio{Data: data, Filename: filepath.Base(path), ContentType: ct}, nil
}

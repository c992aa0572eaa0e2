package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/five82/submatch/internal/app"
	"github.com/five82/submatch/internal/matching"
)

type outputFormat string

const (
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

func parseOutputFormat(value string) (outputFormat, error) {
	switch outputFormat(strings.ToLower(strings.TrimSpace(value))) {
	case outputJSON:
		return outputJSON, nil
	case outputYAML, "yml":
		return outputYAML, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want json or yaml)", value)
}

func newSnapshotCmd(root *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch the matching data once and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}

			cfg, logger, closer, err := loadForCommand(cmd, root)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			data, err := app.Snapshot(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return writeSnapshot(cmd.OutOrStdout(), format, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(outputJSON), "output format: json or yaml")
	return cmd
}

func writeSnapshot(w io.Writer, format outputFormat, data *matching.Data) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

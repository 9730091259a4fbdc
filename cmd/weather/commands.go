package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/couchcryptid/tempest-listener/internal/adapter/sqlstore"
	"github.com/couchcryptid/tempest-listener/internal/display"
	"github.com/couchcryptid/tempest-listener/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func newLatestCmd(current func() store) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Print the newest observation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output, outputText, outputJSON, outputYAML); err != nil {
				return err
			}
			rows, err := current().Latest(cmd.Context(), 1)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return sqlstore.ErrNotFound
			}
			return render(cmd.OutOrStdout(), output, rows[0], func(w io.Writer) error {
				return display.Text(w, rows[0].Weather, time.Local)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	return cmd
}

func newRecentCmd(current func() store) *cobra.Command {
	var (
		output string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Print the newest observations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output, outputJSON, outputYAML); err != nil {
				return err
			}
			if limit < 1 {
				return fmt.Errorf("invalid --limit %d: must be at least 1", limit)
			}
			rows, err := current().Latest(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if rows == nil {
				rows = []domain.StoredWeather{}
			}
			return render(cmd.OutOrStdout(), output, rows, nil)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "output format: json or yaml")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of observations")
	return cmd
}

func checkOutput(output string, allowed ...string) error {
	for _, a := range allowed {
		if output == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported --output %q", output)
}

// render writes v in the requested format. text is only valid when a text
// renderer is supplied.
func render(w io.Writer, output string, v any, text func(io.Writer) error) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case outputText:
		if text == nil {
			return errors.New("text output is not supported here")
		}
		return text(w)
	default:
		return fmt.Errorf("unsupported --output %q", output)
	}
}

package main

import (
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which backends and models are available",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				slog.Error("Failed to shut down backends", "error", err)
			}
		}()

		report := a.status.Status(cmd.Context())

		if statusJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		return renderStatus(cmd.OutOrStdout(), report)
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output the report as JSON")

	rootCmd.AddCommand(statusCmd)
}

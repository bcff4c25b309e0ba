package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every logged set as CSV",
		Long:  `Write one CSV row per set (date, movement, weight, unit, reps, intensity, notes) to stdout or a file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, db, err := openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := t.ExportCSV(w); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
			if output != "" && output != "-" {
				log.Info("export written", "file", output, "workouts", len(t.Workouts()))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

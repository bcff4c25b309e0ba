package main

import (
	"fmt"

	"github.com/claude/pocketlifts/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := storage.Open(cfg.Storage.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			v, dirty, err := db.Version()
			if err != nil {
				return fmt.Errorf("reading schema version: %w", err)
			}
			log.Info("migrations applied", "path", db.Path(), "version", v, "dirty", dirty)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d\n", db.Path(), v)
			return err
		},
	}
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/claude/pocketlifts/internal/models"
	"github.com/spf13/cobra"
)

func movementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "Manage the movement catalog",
	}

	cmd.AddCommand(movementsListCmd())
	cmd.AddCommand(movementsAddCmd())
	cmd.AddCommand(movementsDeleteCmd())

	return cmd
}

func movementsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List movements with their last logged set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, db, err := openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tBODY PART\tLAST")
			for _, m := range t.Movements() {
				last := "-"
				if l, ok := t.LastUsed(m.ID); ok {
					last = fmt.Sprintf("%s × %d • %s", t.Formatter().Format(l.Weight, l.Unit), l.Reps, l.Date)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.BodyPart, last)
			}
			return tw.Flush()
		},
	}
}

func movementsAddCmd() *cobra.Command {
	var bodyPart string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, db, err := openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			m, err := t.AddMovement(cmd.Context(), args[0], bodyPart)
			if err != nil {
				return err
			}
			log.Info("movement added", "id", m.ID, "name", m.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&bodyPart, "bodypart", "", "body part, e.g. chest")
	return cmd
}

func movementsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-or-name>",
		Short: "Delete a movement (past workouts keep their sets)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, db, err := openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			m, ok := t.FindMovement(args[0])
			if !ok {
				return fmt.Errorf("movement %q: %w", args[0], models.ErrNotFound)
			}
			if err := t.DeleteMovement(cmd.Context(), m.ID); err != nil {
				return err
			}
			log.Info("movement deleted", "id", m.ID, "name", m.Name)
			return nil
		},
	}
}

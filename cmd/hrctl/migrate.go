package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogurasousui/hr-attendance/internal/platform/db/migrations"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:       "migrate [up|down|drop|version]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "drop", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) > 0 {
				raw = args[0]
			}
			action, err := migrations.ParseAction(raw)
			if err != nil {
				return err
			}

			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			status, err := migrations.Run(action, dir, cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("migration %s failed: %w", action, err)
			}

			out := cmd.OutOrStdout()
			if !status.Applied {
				fmt.Fprintf(out, "migration %s completed: no migrations applied\n", action)
				return nil
			}
			fmt.Fprintf(out, "migration %s completed: version=%d dirty=%t\n", action, status.Version, status.Dirty)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "assets/migrations", "directory containing migration files")
	return cmd
}

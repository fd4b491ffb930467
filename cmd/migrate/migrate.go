// Package migrate implements the schema migration command.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wildwatch/sightings/internal/config"
)

// Command creates the migrate command
func Command(ctx *config.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Enables PostGIS and creates the species and sightings tables with their indexes. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.OpenStore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date")
			return nil
		},
	}
}

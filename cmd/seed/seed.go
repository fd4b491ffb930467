// Package seed implements the command that loads the species catalog and
// demo sightings.
package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wildwatch/sightings/internal/config"
)

// Command creates the seed command
func Command(ctx *config.Context) *cobra.Command {
	var (
		withSightings bool
		migrate       bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default species catalog and demo sightings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.OpenStore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer store.Close()

			if migrate {
				if err := store.Migrate(cmd.Context()); err != nil {
					return err
				}
			}

			result, err := store.Seed(cmd.Context(), withSightings)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d species and %d sightings\n", result.Species, result.Sightings)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withSightings, "sightings", true, "Also insert demo sightings when the sightings table is empty")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply database migrations first")

	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configcmd "github.com/wildwatch/sightings/cmd/config"
	"github.com/wildwatch/sightings/cmd/migrate"
	"github.com/wildwatch/sightings/cmd/seed"
	"github.com/wildwatch/sightings/cmd/serve"
	"github.com/wildwatch/sightings/internal/config"
)

// RootCommand creates and returns the root command
func RootCommand(ctx *config.Context) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "sightings",
		Short:         "Wildlife sighting ingestion and retrieval service",
		Version:       ctx.Build.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := setupFlags(rootCmd, &configFile); err != nil {
		// flag definitions are static, a failure here is a programming error
		panic(err)
	}

	initCmd := configcmd.InitCommand()
	subcommands := []*cobra.Command{
		serve.Command(ctx),
		migrate.Command(ctx),
		seed.Command(ctx),
		configcmd.Command(ctx, initCmd),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// writing a fresh config file must work even when the current one is broken
		if cmd == initCmd {
			return nil
		}
		if err := ctx.Load(configFile); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return ctx.Close()
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configFile *string) error {
	rootCmd.PersistentFlags().StringVarP(configFile, "config", "c", "", "Path to config file (default: search ., $HOME/.config/sightings, /etc/sightings)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

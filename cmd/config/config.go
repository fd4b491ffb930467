// Package config implements the commands that show and create configuration files.
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wildwatch/sightings/internal/conf"
	appconfig "github.com/wildwatch/sightings/internal/config"
)

// Command creates the config command with its show and init subcommands.
// initCmd is created separately so the root command can skip loading the
// configuration for it.
func Command(ctx *appconfig.Context, initCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration",
	}
	cmd.AddCommand(ShowCommand(ctx), initCmd)
	return cmd
}

// ShowCommand prints the effective configuration as YAML.
func ShowCommand(ctx *appconfig.Context) *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := conf.RenderYAML(ctx.Settings, showSecrets)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print the database password instead of redacting it")
	return cmd
}

// InitCommand writes the default configuration file.
func InitCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := targetPath(args)
			if err != nil {
				return err
			}
			if err := conf.WriteDefaultConfig(path, overwrite); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "force", false, "Overwrite an existing file")
	return cmd
}

func targetPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return conf.UserConfigPath()
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/fritzpowerline/internal/config"
	"github.com/muurk/fritzpowerline/internal/ui"
)

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		Long: `Manage the fritzpowerline configuration file.

The file stores the router address, port, user, TLS and timeout settings,
the homeplug service instance and the default output format. The router
password is never stored.`,
		PersistentPreRunE: c.initLogging,
	}

	cmd.AddCommand(c.configInitCmd(), c.configShowCmd(), c.configPathCmd())
	return cmd
}

func (c *cli) configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file from defaults and flags",
		Example: `  # Defaults
  fritzpowerline config init

  # Router at a fixed IP over TLS
  fritzpowerline config init --address 192.168.178.1 --tls --user admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !c.force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to check config file: %w", err)
			}

			if err := c.applyFlags(cmd, config.NewSettings()); err != nil {
				return err
			}
			if err := c.settings.SaveFile(path); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), ui.NewSuccessResult("Configuration written",
				ui.Param{Key: "File", Value: path},
				ui.Param{Key: "Address", Value: c.settings.Address},
				ui.Param{Key: "User", Value: c.settings.Username},
			).Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&c.force, "force", false, "Overwrite an existing configuration file")
	return cmd
}

func (c *cli) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration in effect: the config file (or defaults) with
all flags given on the command line applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(cmd, args); err != nil {
				return err
			}

			data, err := c.settings.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func (c *cli) configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

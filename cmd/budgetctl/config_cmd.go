package main

import (
	"context"

	"budgetpilot/clientconfig"

	"github.com/spf13/cobra"
)

var (
	flagSetServer  string
	flagSetTimeout int
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update client configuration",
		Args:  cobra.NoArgs,
		RunE:  withApp(runConfig),
	}
	configCmd.Flags().StringVar(&flagSetServer, "set-server", "", "Save a new server URL")
	configCmd.Flags().IntVar(&flagSetTimeout, "set-timeout", -1, "Save a request timeout in seconds (0 disables)")
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ context.Context, a *app, _ []string) error {
	if flagSetServer != "" || flagSetTimeout >= 0 {
		cfg, err := clientconfig.LoadFile()
		if err != nil {
			return err
		}
		if flagSetServer != "" {
			cfg.ServerURL = flagSetServer
			a.cfg.ServerURL = flagSetServer
		}
		if flagSetTimeout >= 0 {
			cfg.TimeoutSeconds = flagSetTimeout
			a.cfg.TimeoutSeconds = flagSetTimeout
		}
		if err := clientconfig.Save(cfg); err != nil {
			return err
		}
		a.printf("  Saved.\n\n")
	}

	a.printf("  Config file: %s\n", clientconfig.Path())
	if clientconfig.Exists() {
		a.printf("  Status: loaded\n")
	} else {
		a.printf("  Status: using defaults (no config file)\n")
	}
	a.printf("\n")
	a.printf("  Server:      %s\n", a.cfg.ServerURL)
	a.printf("  Timeout:     %s\n", timeoutLabel(a.cfg.TimeoutSeconds))
	a.printf("  State file:  %s\n", a.cfg.ResolveStatePath())
	if a.cfg.Email != "" {
		a.printf("  Last email:  %s\n", a.cfg.Email)
	}
	return nil
}

func timeoutLabel(secs int) string {
	if secs == 0 {
		return "none"
	}
	return (clientconfig.Config{TimeoutSeconds: secs}).Timeout().String()
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KasumiMercury/primind-focusguard/internal/agent"
)

var testNotificationCmd = &cobra.Command{
	Use:   "test-notification",
	Short: "Ask the server to push a test alert",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := agent.NewAPI(cfg.ServerURL).TestNotification(cmd.Context(), cfg.Username); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testNotificationCmd)
}

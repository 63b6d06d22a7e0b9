package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/KasumiMercury/primind-focusguard/internal/agent"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		list, err := agent.NewAPI(cfg.ServerURL).ListNotifications(cmd.Context(), cfg.Username)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No notifications.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTYPE\tSOUND\tREAD\tMESSAGE")
		for _, n := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
				n.CreatedAt.Local().Format(time.DateTime), n.NotificationType, n.SoundType, n.Read, n.Message)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

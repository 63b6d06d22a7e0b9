package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KasumiMercury/primind-focusguard/internal/agent"
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Print the currently focused window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := agent.DefaultWindowSource().ActiveWindow(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "title:   %s\n", w.Title)
		if w.PID != 0 {
			fmt.Fprintf(out, "pid:     %d\n", w.PID)
		}
		if w.Process != "" {
			fmt.Fprintf(out, "process: %s\n", w.Process)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(windowCmd)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KasumiMercury/primind-focusguard/internal/agent"
)

var (
	monitorTask     string
	monitorKeywords []string
	monitorDuration time.Duration
	monitorInterval time.Duration
	monitorNoLive   bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run a focus session and report window changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		f := cmd.Flags()
		if f.Changed("task") {
			cfg.TaskDescription = monitorTask
		}
		if f.Changed("keywords") {
			cfg.Keywords = monitorKeywords
		}
		if f.Changed("duration") {
			cfg.Duration = monitorDuration
		}
		if f.Changed("interval") {
			cfg.SampleInterval = monitorInterval
		}
		if monitorNoLive {
			cfg.Live = false
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := agent.NewMonitor(cfg, agent.NewAPI(cfg.ServerURL), agent.DefaultWindowSource(), cmd.OutOrStdout())
		_, err = m.Run(ctx)
		return err
	},
}

func init() {
	monitorCmd.Flags().StringVarP(&monitorTask, "task", "t", "", "what you intend to work on")
	monitorCmd.Flags().StringSliceVarP(&monitorKeywords, "keywords", "k", nil, "titles matching these count as on-task")
	monitorCmd.Flags().DurationVarP(&monitorDuration, "duration", "d", 0, "session length")
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "window sampling interval")
	monitorCmd.Flags().BoolVar(&monitorNoLive, "no-live", false, "do not subscribe to pushed alerts")
	rootCmd.AddCommand(monitorCmd)
}

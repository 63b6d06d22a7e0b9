// Command focusagent watches the active desktop window during a focus session.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KasumiMercury/primind-focusguard/internal/agent"
)

var (
	configPath string
	serverURL  string
	username   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "focusagent",
	Short:         "Desktop agent for focusguard sessions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", agent.DefaultConfigPath(), "agent config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "focusguard server URL")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "username to report as")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (agent.Config, error) {
	cfg, err := agent.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("server") {
		cfg.ServerURL = serverURL
	}
	if cmd.Flags().Changed("username") {
		cfg.Username = username
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("focusagent failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

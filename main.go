package main

import (
	"fmt"
	"os"

	"github.com/papyrus/papyrus/backend/notes-api/internal/config"
	"github.com/papyrus/papyrus/backend/notes-api/pkg/logger"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "notes-api",
	Short: "Papyrus notes backend",
	Long: `notes-api serves the Papyrus notes HTTP API backed by MongoDB.
Without MONGODB_URI it keeps notes in memory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger.Init(c.LogLevel)
		logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
		cfg = c
		return nil
	},
	// serve is the default command
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, probeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

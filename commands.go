package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/papyrus/papyrus/backend/notes-api/internal/database"
	"github.com/papyrus/papyrus/backend/notes-api/internal/server"
	"github.com/papyrus/papyrus/backend/notes-api/pkg/logger"
	"github.com/spf13/cobra"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if portFlag > 0 {
			cfg.Server.Port = portFlag
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Infof("config loaded: mongo=%v redis=%v minio=%v rate_limit=%v",
			cfg.MongoDB.URI != "", cfg.Redis.Addr() != "", cfg.MinIO.Endpoint != "", cfg.RateLimit.Enabled)

		srv, err := server.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := srv.Close(context.Background()); err != nil {
				logger.Warnf("close: %v", err)
			}
		}()
		return srv.Run(ctx)
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Print the database probe result and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		res := server.Probe(cmd.Context(), cfg)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		if err := enc.Encode(res.Map()); err != nil {
			return err
		}
		if res.Database != database.StatusConnected {
			return errors.New("database not connected")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", 0, "listen port (overrides PORT)")
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyfacet/internal/server"
)

var serveAddr string

// serveCmd exposes queries and presets over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query and preset API over HTTP",
	Long: `Starts an HTTP server with:
  POST   /api/query             run a query over posted or loaded records
  GET    /api/fields            fields of the loaded records
  GET    /api/fields/operators  operators for ?type=
  GET    /api/presets           list presets, ?q= searches names
  POST   /api/presets           save a preset
  GET    /api/presets/:id       fetch a preset
  DELETE /api/presets/:id       delete a preset
  GET    /metrics               Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		opts := []server.Option{server.WithLogger(logger)}
		if recordsGlob != "" || cfg.General.Records != "" || cfg.General.PostgresDSN != "" {
			records, err := loadRecords(cmd.Context())
			if err != nil {
				return err
			}
			opts = append(opts, server.WithRecords(records))
		}

		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()
		opts = append(opts, server.WithPresets(store))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(cfg, newEngine(), opts...).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr)")
}

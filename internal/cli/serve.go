package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smartshopper/agent/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assistant over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			client, err := newLLMClient(cfg)
			if err != nil {
				return err
			}

			cat := newCatalogClient(cfg)
			loop := newLoop(cfg, client, newTools(cat))

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(
				server.Config{Bind: cfg.Server.Bind, Port: cfg.Server.Port},
				loop,
				log,
				server.WithRetriever(newRetriever(cfg, newEmbedder(cfg), store)),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server.port")
	cmd.Flags().StringVar(&bind, "bind", "", "override server.bind")

	return cmd
}

package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smartshopper/agent/internal/ingest"
)

func newIngestCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Build the retrieval index from the product catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if clear {
				if err := store.Clear(ctx); err != nil {
					return err
				}
				log.Info().Msg("index cleared")
			}

			pipeline := ingest.New(newCatalogClient(cfg), newEmbedder(cfg), store, ingest.Config{
				ChunkWords:   cfg.Ingest.ChunkWords,
				OverlapWords: cfg.Ingest.OverlapWords,
				PageLimit:    cfg.Ingest.PageLimit,
				Concurrency:  cfg.Ingest.Concurrency,
			}, log)

			stats, err := pipeline.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Indexed %d chunks from %d products.\n", stats.Chunks, stats.Products)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "clear the index before ingesting")

	return cmd
}

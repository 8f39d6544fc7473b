// Package ingest builds the retrieval index from the product catalog:
// fetch products page by page, render each one to text, chunk, embed and
// upsert into the vector store.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/smartshopper/agent/internal/catalog"
	"github.com/smartshopper/agent/internal/chunker"
	"github.com/smartshopper/agent/internal/embedding"
	"github.com/smartshopper/agent/internal/logging"
	"github.com/smartshopper/agent/internal/vectorstore"
)

// Config tunes the ingestion pipeline.
type Config struct {
	ChunkWords   int
	OverlapWords int
	PageLimit    int
	Concurrency  int
}

// Stats summarizes a completed ingestion run.
type Stats struct {
	Products int
	Chunks   int
}

// Pipeline ingests the catalog into a vector store.
type Pipeline struct {
	catalog     *catalog.Client
	embedder    embedding.Embedder
	store       vectorstore.Store
	chunker     *chunker.WordChunker
	pageLimit   int
	concurrency int
	log         *logging.Logger
}

// New creates an ingestion pipeline.
func New(cat *catalog.Client, emb embedding.Embedder, store vectorstore.Store, cfg Config, log *logging.Logger) *Pipeline {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 250
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Pipeline{
		catalog:     cat,
		embedder:    emb,
		store:       store,
		chunker:     chunker.New(cfg.ChunkWords, cfg.OverlapWords),
		pageLimit:   cfg.PageLimit,
		concurrency: cfg.Concurrency,
		log:         log.Sub("ingest"),
	}
}

// Run fetches every product, embeds its chunks and upserts them. Chunk IDs
// are derived from the product ID, so re-running replaces stale entries
// instead of duplicating them.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	products, err := p.fetchAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	p.log.Info().Int("products", len(products)).Msg("catalog fetched")

	entries := p.buildEntries(products)
	if len(entries) == 0 {
		return Stats{Products: len(products)}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range entries {
		g.Go(func() error {
			vec, err := p.embedder.Embed(gctx, entries[i].Text)
			if err != nil {
				return fmt.Errorf("embedding chunk %s: %w", entries[i].ID, err)
			}
			entries[i].Vector = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	if err := p.store.Upsert(ctx, entries); err != nil {
		return Stats{}, fmt.Errorf("upserting chunks: %w", err)
	}

	stats := Stats{Products: len(products), Chunks: len(entries)}
	p.log.Info().Int("products", stats.Products).Int("chunks", stats.Chunks).Msg("ingestion complete")
	return stats, nil
}

// fetchAll pages through the catalog until a short page signals the end.
func (p *Pipeline) fetchAll(ctx context.Context) ([]catalog.Product, error) {
	var all []catalog.Product
	for offset := 0; ; offset += p.pageLimit {
		page, err := p.catalog.List(ctx, p.pageLimit, offset)
		if err != nil {
			return nil, fmt.Errorf("listing products at offset %d: %w", offset, err)
		}
		all = append(all, page...)
		if len(page) < p.pageLimit {
			return all, nil
		}
	}
}

// buildEntries renders and chunks every product. Vectors are filled in
// later.
func (p *Pipeline) buildEntries(products []catalog.Product) []vectorstore.Entry {
	var entries []vectorstore.Entry
	for _, prod := range products {
		chunks := p.chunker.Chunk(productText(&prod))
		for i, text := range chunks {
			entries = append(entries, vectorstore.Entry{
				ID:   fmt.Sprintf("%s:%d", prod.ID, i),
				Text: text,
				Meta: vectorstore.Metadata{
					ProductID: prod.ID,
					Title:     prod.Title,
					Handle:    prod.Handle,
					Category:  prod.Category(),
					Source:    "catalog",
				},
			})
		}
		p.log.Debug().Str("product", prod.ID).Int("chunks", len(chunks)).Msg("product chunked")
	}
	return entries
}

// productText renders a product as the text that gets indexed. Prices are
// rendered in their readable form so queries like "under 20 dollars" have
// something to match.
func productText(p *catalog.Product) string {
	var b strings.Builder
	b.WriteString(p.Title)
	if p.Description != "" {
		b.WriteString("\n")
		b.WriteString(p.Description)
	}
	if p.Material != "" {
		b.WriteString("\nMaterial: ")
		b.WriteString(p.Material)
	}
	if len(p.Options) > 0 {
		b.WriteString("\nOptions: ")
		b.WriteString(p.DisplayOptions())
	}
	if len(p.Variants) > 0 {
		titles := make([]string, 0, len(p.Variants))
		for _, v := range p.Variants {
			titles = append(titles, v.Title)
		}
		b.WriteString("\nVariants: ")
		b.WriteString(strings.Join(titles, ", "))
		b.WriteString("\nPrice: ")
		b.WriteString(p.DisplayPrice())
	}
	return b.String()
}

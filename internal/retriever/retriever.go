// Package retriever selects the indexed chunks most relevant to a query.
package retriever

import (
	"context"
	"fmt"

	"github.com/smartshopper/agent/internal/embedding"
	"github.com/smartshopper/agent/internal/logging"
	"github.com/smartshopper/agent/internal/vectorstore"
)

const defaultTopK = 4

// Result is a retrieved chunk with its provenance and distance.
type Result struct {
	ID       string
	Text     string
	Meta     vectorstore.Metadata
	Distance float64
}

// Retriever embeds a query and searches the vector store for the closest
// chunks.
type Retriever struct {
	embedder embedding.Embedder
	store    vectorstore.Store
	topK     int
	log      *logging.Logger
}

// New creates a retriever. topK defaults to 4 when non-positive.
func New(embedder embedding.Embedder, store vectorstore.Store, topK int, log *logging.Logger) *Retriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
		log:      log.Sub("retriever"),
	}
}

// Retrieve returns the topK chunks closest to the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Result, error) {
	return r.RetrieveFiltered(ctx, query, vectorstore.Filter{})
}

// RetrieveFiltered returns the topK closest chunks whose metadata satisfies
// the filter.
func (r *Retriever) RetrieveFiltered(ctx context.Context, query string, filter vectorstore.Filter) ([]Result, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := r.store.Search(ctx, vec, r.topK, filter)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			ID:       m.ID,
			Text:     m.Text,
			Meta:     m.Meta,
			Distance: m.Distance,
		})
	}

	r.log.Debug().Str("query", query).Int("results", len(results)).Msg("retrieved chunks")
	return results, nil
}

// Package embedding turns text into dense vectors for retrieval.
package embedding

import "context"

// Embedder produces dense vectors for text. Implementations must return
// vectors of a stable dimension for a given model, and must be safe for
// concurrent use: ingestion embeds chunks from multiple goroutines and the
// server shares one embedder across requests.
type Embedder interface {
	// Name identifies the embedder implementation.
	Name() string

	// Embed returns an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Dimension returns the dimensionality of produced vectors, or 0 if
	// not yet known (remote embedders learn it on first call).
	Dimension() int
}

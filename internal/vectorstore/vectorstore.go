// Package vectorstore defines the embedding index abstraction and its
// similarity math. Backends live in subpackages.
package vectorstore

import (
	"context"
	"math"
)

// Metadata describes the catalog origin of an indexed chunk. Fields are
// matched exactly when filtering.
type Metadata struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Handle    string `json:"handle,omitempty"`
	Category  string `json:"category,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Entry is one indexed chunk. Upserting an entry with an existing ID
// replaces the previous one.
type Entry struct {
	ID     string
	Text   string
	Meta   Metadata
	Vector []float64
}

// Match is a search hit. Distance is 1 minus cosine similarity, so lower
// means closer.
type Match struct {
	Entry
	Distance float64
}

// Filter restricts search results to chunks whose metadata matches every
// non-empty field exactly.
type Filter struct {
	ProductID string
	Category  string
	Source    string
}

// IsZero reports whether the filter imposes no restriction.
func (f Filter) IsZero() bool {
	return f.ProductID == "" && f.Category == "" && f.Source == ""
}

// Matches reports whether metadata satisfies the filter.
func (f Filter) Matches(m Metadata) bool {
	if f.ProductID != "" && f.ProductID != m.ProductID {
		return false
	}
	if f.Category != "" && f.Category != m.Category {
		return false
	}
	if f.Source != "" && f.Source != m.Source {
		return false
	}
	return true
}

// Store is an embedding index.
type Store interface {
	// Upsert inserts entries, replacing any with the same ID.
	Upsert(ctx context.Context, entries []Entry) error

	// Search returns up to topK entries closest to the query vector,
	// ordered by ascending distance. A zero Filter matches everything.
	Search(ctx context.Context, vector []float64, topK int, filter Filter) ([]Match, error)

	// Count returns the number of indexed entries.
	Count(ctx context.Context) (int, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Cosine returns the cosine similarity of two vectors, or 0 when either has
// zero magnitude or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Distance converts cosine similarity into a distance where lower means
// closer.
func Distance(a, b []float64) float64 {
	return 1 - Cosine(a, b)
}

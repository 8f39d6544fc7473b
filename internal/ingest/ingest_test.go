package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartshopper/agent/internal/catalog"
	"github.com/smartshopper/agent/internal/logging"
	"github.com/smartshopper/agent/internal/retriever"
	"github.com/smartshopper/agent/internal/vectorstore"
	"github.com/smartshopper/agent/internal/vectorstore/memory"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Name() string   { return "stub" }
func (s *stubEmbedder) Dimension() int { return 2 }

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float64{float64(len(text)), 1}, nil
}

func testLogger() *logging.Logger {
	return logging.New(io.Discard, "silent")
}

// catalogServer serves a fixed product list with limit/offset paging.
func catalogServer(t *testing.T, products []catalog.Product) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products", r.URL.Path)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		end := offset + limit
		if offset > len(products) {
			offset = len(products)
		}
		if end > len(products) {
			end = len(products)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"products": products[offset:end]})
	}))
}

func sampleProducts(n int) []catalog.Product {
	out := make([]catalog.Product, n)
	for i := range out {
		out[i] = catalog.Product{
			ID:          fmt.Sprintf("prod_%d", i),
			Title:       fmt.Sprintf("Product %d", i),
			Description: "A cozy item for everyday wear.",
			Variants: []catalog.Variant{
				{Title: "S", Prices: []catalog.Price{{Amount: 1950, CurrencyCode: "usd"}}},
			},
		}
	}
	return out
}

func TestRunIndexesCatalog(t *testing.T) {
	srv := catalogServer(t, sampleProducts(3))
	defer srv.Close()

	store := memory.New()
	p := New(catalog.NewClient(catalog.Config{BaseURL: srv.URL}), &stubEmbedder{}, store, Config{}, testLogger())

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Products)
	assert.Equal(t, 3, stats.Chunks)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Indexed text carries the readable price.
	matches, err := store.Search(context.Background(), []float64{1, 0}, 1, vectorstore.Filter{ProductID: "prod_1"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0].Text, "Price: 19.5 USD")
	assert.Equal(t, "Product 1", matches[0].Meta.Title)
	assert.Equal(t, "catalog", matches[0].Meta.Source)
	assert.Equal(t, "prod_1:0", matches[0].ID)
}

func TestRunPagination(t *testing.T) {
	srv := catalogServer(t, sampleProducts(5))
	defer srv.Close()

	store := memory.New()
	p := New(catalog.NewClient(catalog.Config{BaseURL: srv.URL}), &stubEmbedder{}, store, Config{PageLimit: 2}, testLogger())

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Products)
}

func TestRunIdempotent(t *testing.T) {
	srv := catalogServer(t, sampleProducts(2))
	defer srv.Close()

	store := memory.New()
	p := New(catalog.NewClient(catalog.Config{BaseURL: srv.URL}), &stubEmbedder{}, store, Config{}, testLogger())

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRunEmbedFailureAborts(t *testing.T) {
	srv := catalogServer(t, sampleProducts(2))
	defer srv.Close()

	store := memory.New()
	p := New(catalog.NewClient(catalog.Config{BaseURL: srv.URL}), &stubEmbedder{err: errors.New("quota exceeded")}, store, Config{}, testLogger())

	_, err := p.Run(context.Background())
	require.Error(t, err)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunEmptyCatalog(t *testing.T) {
	srv := catalogServer(t, nil)
	defer srv.Close()

	store := memory.New()
	p := New(catalog.NewClient(catalog.Config{BaseURL: srv.URL}), &stubEmbedder{}, store, Config{}, testLogger())

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Products)
	assert.Zero(t, stats.Chunks)
}

// keywordEmbedder gives texts mentioning the same product words nearby
// vectors, so retrieval after ingestion is meaningful without a real model.
type keywordEmbedder struct{}

func (keywordEmbedder) Name() string   { return "keyword" }
func (keywordEmbedder) Dimension() int { return 3 }

func (keywordEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	lower := strings.ToLower(text)
	return []float64{
		float64(strings.Count(lower, "sweatshirt")),
		float64(strings.Count(lower, "jeans")),
		1,
	}, nil
}

func TestIngestThenRetrieve(t *testing.T) {
	products := []catalog.Product{
		{
			ID:          "prod_sweat",
			Title:       "Sweatshirt",
			Description: "A cozy sweatshirt in maroon cotton.",
			Variants:    []catalog.Variant{{Title: "M", Prices: []catalog.Price{{Amount: 1950, CurrencyCode: "usd"}}}},
		},
		{
			ID:          "prod_jeans",
			Title:       "Jeans",
			Description: "Slim-fit jeans in washed denim.",
			Variants:    []catalog.Variant{{Title: "32", Prices: []catalog.Price{{Amount: 4500, CurrencyCode: "usd"}}}},
		},
	}
	srv := catalogServer(t, products)
	defer srv.Close()

	store := memory.New()
	p := New(catalog.NewClient(catalog.Config{BaseURL: srv.URL}), keywordEmbedder{}, store, Config{}, testLogger())

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.Chunks)

	ret := retriever.New(keywordEmbedder{}, store, 4, testLogger())
	results, err := ret.Retrieve(context.Background(), "a cozy sweatshirt")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The sweatshirt's chunk is the closest hit for its own wording.
	assert.Equal(t, "prod_sweat", results[0].Meta.ProductID)
	assert.Less(t, results[0].Distance, results[1].Distance)
	assert.Contains(t, results[0].Text, "Price: 19.5 USD")
}

func TestProductTextOmitsMissingFields(t *testing.T) {
	text := productText(&catalog.Product{ID: "p", Title: "Bare"})
	assert.Equal(t, "Bare", text)
}

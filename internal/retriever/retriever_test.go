package retriever

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartshopper/agent/internal/logging"
	"github.com/smartshopper/agent/internal/vectorstore"
	"github.com/smartshopper/agent/internal/vectorstore/memory"
)

// stubEmbedder maps known strings to fixed vectors.
type stubEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (s *stubEmbedder) Name() string   { return "stub" }
func (s *stubEmbedder) Dimension() int { return 2 }

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float64{0, 0}, nil
}

func testLogger() *logging.Logger {
	return logging.New(io.Discard, "silent")
}

func seededStore(t *testing.T) vectorstore.Store {
	t.Helper()
	s := memory.New()
	err := s.Upsert(context.Background(), []vectorstore.Entry{
		{ID: "a:0", Text: "cozy red sweatshirt", Meta: vectorstore.Metadata{ProductID: "prod_a", Category: "tops"}, Vector: []float64{1, 0}},
		{ID: "b:0", Text: "slim blue jeans", Meta: vectorstore.Metadata{ProductID: "prod_b", Category: "bottoms"}, Vector: []float64{0, 1}},
		{ID: "c:0", Text: "warm maroon hoodie", Meta: vectorstore.Metadata{ProductID: "prod_c", Category: "tops"}, Vector: []float64{0.8, 0.2}},
	})
	require.NoError(t, err)
	return s
}

func TestRetrieveTopK(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{"sweatshirt": {1, 0}}}
	r := New(emb, seededStore(t), 2, testLogger())

	results, err := r.Retrieve(context.Background(), "sweatshirt")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "cozy red sweatshirt", results[0].Text)
	assert.Equal(t, "prod_a", results[0].Meta.ProductID)
	assert.Less(t, results[0].Distance, results[1].Distance)
}

func TestRetrieveFiltered(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{"something warm": {1, 0}}}
	r := New(emb, seededStore(t), 4, testLogger())

	results, err := r.RetrieveFiltered(context.Background(), "something warm", vectorstore.Filter{Category: "bottoms"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "slim blue jeans", results[0].Text)
}

func TestRetrieveEmbedError(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("upstream down")}
	r := New(emb, seededStore(t), 4, testLogger())

	_, err := r.Retrieve(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding query")
}

func TestNewDefaultsTopK(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{"q": {1, 0}}}
	r := New(emb, seededStore(t), 0, testLogger())
	assert.Equal(t, defaultTopK, r.topK)
}

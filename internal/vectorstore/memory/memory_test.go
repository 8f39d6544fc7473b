package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartshopper/agent/internal/vectorstore"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	err := s.Upsert(context.Background(), []vectorstore.Entry{
		{ID: "a:0", Text: "red sweatshirt", Meta: vectorstore.Metadata{ProductID: "prod_a", Category: "tops"}, Vector: []float64{1, 0}},
		{ID: "b:0", Text: "blue jeans", Meta: vectorstore.Metadata{ProductID: "prod_b", Category: "bottoms"}, Vector: []float64{0, 1}},
		{ID: "c:0", Text: "maroon hoodie", Meta: vectorstore.Metadata{ProductID: "prod_c", Category: "tops"}, Vector: []float64{0.9, 0.1}},
	})
	require.NoError(t, err)
}

func TestSearchOrdersByDistance(t *testing.T) {
	s := New()
	seed(t, s)

	matches, err := s.Search(context.Background(), []float64{1, 0}, 2, vectorstore.Filter{})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a:0", matches[0].ID)
	assert.Equal(t, "c:0", matches[1].ID)
	assert.Less(t, matches[0].Distance, matches[1].Distance)
}

func TestSearchFilter(t *testing.T) {
	s := New()
	seed(t, s)

	matches, err := s.Search(context.Background(), []float64{1, 0}, 10, vectorstore.Filter{Category: "bottoms"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b:0", matches[0].ID)
}

func TestUpsertReplaces(t *testing.T) {
	s := New()
	seed(t, s)

	err := s.Upsert(context.Background(), []vectorstore.Entry{
		{ID: "a:0", Text: "updated text", Vector: []float64{0, 1}},
	})
	require.NoError(t, err)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	matches, err := s.Search(context.Background(), []float64{0, 1}, 1, vectorstore.Filter{})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "updated text", matches[0].Text)
}

func TestClear(t *testing.T) {
	s := New()
	seed(t, s)
	require.NoError(t, s.Clear(context.Background()))

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchEmptyStore(t *testing.T) {
	s := New()
	matches, err := s.Search(context.Background(), []float64{1, 0}, 4, vectorstore.Filter{})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchTopKZero(t *testing.T) {
	s := New()
	seed(t, s)
	matches, err := s.Search(context.Background(), []float64{1, 0}, 0, vectorstore.Filter{})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

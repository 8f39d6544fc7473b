package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartshopper/agent/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

func TestSearchToolOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchFixture))
	}))
	defer srv.Close()

	tool := NewSearchTool(NewClient(Config{BaseURL: srv.URL}), silentLog())
	assert.Equal(t, "search_products", tool.Name())

	out, err := tool.Execute(context.Background(), `{"query": "Sweatshirt"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Found products:")
	assert.Contains(t, out, "- Sweatshirt (ID: prod_1) | price: 19.5 USD")
	assert.Contains(t, out, "- Sweatpants (ID: prod_2) | price: price unavailable")
}

func TestSearchToolEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products": []}`))
	}))
	defer srv.Close()

	tool := NewSearchTool(NewClient(Config{BaseURL: srv.URL}), silentLog())
	out, err := tool.Execute(context.Background(), `{"query": "unicorn"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `no products matched "unicorn"`)
}

func TestSearchToolBackendFailureBecomesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tool := NewSearchTool(NewClient(Config{BaseURL: srv.URL}), silentLog())
	out, err := tool.Execute(context.Background(), `{"query": "x"}`)
	require.NoError(t, err, "backend failures surface as text, not errors")
	assert.Contains(t, out, "Product search failed")
}

func TestSearchToolInvalidInput(t *testing.T) {
	tool := NewSearchTool(NewClient(Config{BaseURL: "http://unused"}), silentLog())

	_, err := tool.Execute(context.Background(), "not json")
	assert.Error(t, err)

	_, err = tool.Execute(context.Background(), `{}`)
	assert.Error(t, err, "query is required")
}

func TestDetailsToolOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"product": {
				"id": "prod_1",
				"title": "Sweatshirt",
				"description": "A cozy sweatshirt.",
				"options": [{"title": "Size", "values": [{"value": "S"}]}]
			}
		}`))
	}))
	defer srv.Close()

	tool := NewDetailsTool(NewClient(Config{BaseURL: srv.URL}), silentLog())
	assert.Equal(t, "get_product_details", tool.Name())

	out, err := tool.Execute(context.Background(), `{"product_id": "prod_1"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Product: Sweatshirt")
	assert.Contains(t, out, "Description: A cozy sweatshirt.")
	// material is absent in the fixture and must render as a placeholder
	assert.Contains(t, out, "Material: unavailable")
	assert.Contains(t, out, "Options: Size: S")
}

func TestDetailsToolNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tool := NewDetailsTool(NewClient(Config{BaseURL: srv.URL}), silentLog())
	out, err := tool.Execute(context.Background(), `{"product_id": "prod_missing"}`)
	require.NoError(t, err)
	assert.Equal(t, "No product found with ID prod_missing.", out)
}

func TestDetailsToolMissingID(t *testing.T) {
	tool := NewDetailsTool(NewClient(Config{BaseURL: "http://unused"}), silentLog())
	_, err := tool.Execute(context.Background(), `{}`)
	assert.Error(t, err)
}

package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolRegistry(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(&fakeTool{
		name:        "search_products",
		description: "Search the catalog",
		schema:      `{"type":"object"}`,
		execute: func(ctx context.Context, input string) (string, error) {
			return "results for " + input, nil
		},
	})

	tool, ok := reg.Get("search_products")
	require.True(t, ok)
	assert.Equal(t, "search_products", tool.Name())

	_, ok = reg.Get("nope")
	assert.False(t, ok)
}

func TestToolRegistryDefinitionsSorted(t *testing.T) {
	reg := NewToolRegistry()
	noop := func(ctx context.Context, input string) (string, error) { return "", nil }
	reg.Register(&fakeTool{name: "search_products", execute: noop})
	reg.Register(&fakeTool{name: "get_product_details", execute: noop})

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "get_product_details", defs[0].Name)
	assert.Equal(t, "search_products", defs[1].Name)
}

func TestToolRegistryInvoke(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(&fakeTool{
		name: "echo",
		execute: func(ctx context.Context, input string) (string, error) {
			return input, nil
		},
	})

	out, err := reg.Invoke(context.Background(), "echo", `{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)

	_, err = reg.Invoke(context.Background(), "missing", "{}")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

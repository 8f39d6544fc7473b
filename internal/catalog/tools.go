package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/smartshopper/agent/internal/logging"
)

// The two tools the agent exposes over the catalog. Both return plain text
// only: the conversation is the single channel back to the LLM, so backend
// failures and empty results are rendered as descriptive sentences, never
// surfaced as raw errors.

// SearchTool searches the catalog by free text.
type SearchTool struct {
	client *Client
	log    *logging.Logger
}

// NewSearchTool creates the search_products tool.
func NewSearchTool(client *Client, log *logging.Logger) *SearchTool {
	return &SearchTool{client: client, log: log.Sub("tool.search_products")}
}

func (t *SearchTool) Name() string { return "search_products" }

func (t *SearchTool) Description() string {
	return "Search the store catalog for products. Returns a list of matching products with title, ID and price. Use when the user asks what products exist."
}

func (t *SearchTool) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Free-text search query"},
			"limit": {"type": "integer", "description": "Maximum number of results (default 5)"}
		},
		"required": ["query"]
	}`
}

func (t *SearchTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if args.Query == "" {
		return "", errors.New("query is required")
	}

	t.log.Debug().Str("query", args.Query).Int("limit", args.Limit).Msg("searching products")

	products, err := t.client.Search(ctx, args.Query, args.Limit)
	if err != nil {
		t.log.Warn().Err(err).Msg("search request failed")
		return fmt.Sprintf("Product search failed: %v", err), nil
	}
	if len(products) == 0 {
		return fmt.Sprintf("The search succeeded but no products matched %q.", args.Query), nil
	}

	var b strings.Builder
	b.WriteString("Found products:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s (ID: %s) | price: %s\n", p.DisplayTitle(), p.ID, p.DisplayPrice())
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// DetailsTool fetches a single product's details.
type DetailsTool struct {
	client *Client
	log    *logging.Logger
}

// NewDetailsTool creates the get_product_details tool.
func NewDetailsTool(client *Client, log *logging.Logger) *DetailsTool {
	return &DetailsTool{client: client, log: log.Sub("tool.get_product_details")}
}

func (t *DetailsTool) Name() string { return "get_product_details" }

func (t *DetailsTool) Description() string {
	return "Get detailed information about a specific product: description, material and available options. Requires the product ID (e.g. prod_01H...). Use when the user asks about material or details."
}

func (t *DetailsTool) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"product_id": {"type": "string", "description": "The product ID, e.g. prod_01H..."}
		},
		"required": ["product_id"]
	}`
}

func (t *DetailsTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		ProductID string `json:"product_id"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if args.ProductID == "" {
		return "", errors.New("product_id is required")
	}

	t.log.Debug().Str("productId", args.ProductID).Msg("fetching product details")

	product, err := t.client.Get(ctx, args.ProductID)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.NotFound() {
			return fmt.Sprintf("No product found with ID %s.", args.ProductID), nil
		}
		t.log.Warn().Err(err).Msg("detail request failed")
		return fmt.Sprintf("Product detail lookup failed: %v", err), nil
	}

	return fmt.Sprintf("Product: %s\nDescription: %s\nMaterial: %s\nOptions: %s",
		product.DisplayTitle(),
		product.DisplayDescription(),
		product.DisplayMaterial(),
		product.DisplayOptions(),
	), nil
}

// Package catalog talks to the store API of the e-commerce backend and
// exposes the product tools built on top of it.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config configures the catalog backend client.
type Config struct {
	BaseURL        string        // e.g. http://localhost:9000/store
	PublishableKey string        // optional, sent as x-publishable-api-key
	Timeout        time.Duration // defaults to 20s
}

// Client is an HTTP client for the catalog's store API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a catalog client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.PublishableKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog backend error (%d): %s", e.StatusCode, e.Body)
}

// NotFound reports whether the error is a backend 404.
func (e *StatusError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// Price is a single price point in integer minor units (1950 = 19.50).
type Price struct {
	Amount       int64  `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// Variant is a purchasable variation of a product.
type Variant struct {
	Title  string  `json:"title"`
	Prices []Price `json:"prices"`
}

// OptionValue is one selectable value of a product option.
type OptionValue struct {
	Value string `json:"value"`
}

// Option is a configurable product axis (size, color, ...).
type Option struct {
	Title  string        `json:"title"`
	Values []OptionValue `json:"values"`
}

// Product is a catalog product as returned by the store API.
type Product struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Handle       string    `json:"handle"`
	Description  string    `json:"description"`
	Material     string    `json:"material"`
	CollectionID string    `json:"collection_id"`
	CategoryID   string    `json:"category_id"`
	Variants     []Variant `json:"variants"`
	Options      []Option  `json:"options"`
}

// Search queries products matching the given text.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 5
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var out struct {
		Products []Product `json:"products"`
	}
	if err := c.getJSON(ctx, "/products?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// List fetches a page of products for ingestion.
func (c *Client) List(ctx context.Context, limit, offset int) ([]Product, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	var out struct {
		Products []Product `json:"products"`
	}
	if err := c.getJSON(ctx, "/products?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// Get fetches a single product by id.
func (c *Client) Get(ctx context.Context, id string) (*Product, error) {
	var out struct {
		Product Product `json:"product"`
	}
	if err := c.getJSON(ctx, "/products/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-publishable-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

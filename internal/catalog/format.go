package catalog

import (
	"strconv"
	"strings"
)

// Unavailable is rendered for any product field the backend did not supply.
// Fields are never omitted silently: the LLM needs to see that a value is
// missing rather than guess.
const Unavailable = "unavailable"

// FormatAmount renders an integer minor-unit amount as a display price:
// 1950, "usd" → "19.5 USD".
func FormatAmount(amount int64, currencyCode string) string {
	value := strconv.FormatFloat(float64(amount)/100, 'f', -1, 64)
	return value + " " + strings.ToUpper(currencyCode)
}

// DisplayPrice renders the product's first variant's first price, or the
// unavailable placeholder when the product carries no price.
func (p *Product) DisplayPrice() string {
	if len(p.Variants) == 0 || len(p.Variants[0].Prices) == 0 {
		return "price " + Unavailable
	}
	price := p.Variants[0].Prices[0]
	return FormatAmount(price.Amount, price.CurrencyCode)
}

// DisplayTitle returns the title or a placeholder.
func (p *Product) DisplayTitle() string {
	if p.Title == "" {
		return Unavailable
	}
	return p.Title
}

// DisplayDescription returns the description or a placeholder.
func (p *Product) DisplayDescription() string {
	if p.Description == "" {
		return Unavailable
	}
	return p.Description
}

// DisplayMaterial returns the material or a placeholder.
func (p *Product) DisplayMaterial() string {
	if p.Material == "" {
		return Unavailable
	}
	return p.Material
}

// DisplayOptions renders option axes as "Size: S, M, L | Color: Black".
func (p *Product) DisplayOptions() string {
	if len(p.Options) == 0 {
		return Unavailable
	}
	parts := make([]string, 0, len(p.Options))
	for _, opt := range p.Options {
		values := make([]string, 0, len(opt.Values))
		for _, v := range opt.Values {
			values = append(values, v.Value)
		}
		parts = append(parts, opt.Title+": "+strings.Join(values, ", "))
	}
	return strings.Join(parts, " | ")
}

// Category returns the best-effort category tag used as retrieval metadata.
func (p *Product) Category() string {
	if p.CollectionID != "" {
		return p.CollectionID
	}
	return p.CategoryID
}

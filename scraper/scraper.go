package scraper

import (
	"context"
	"fmt"

	"adforge/types"
)

// Scraper extracts product data from a store page. Implementations
// register with a Registry and declare which URLs they understand.
type Scraper interface {
	// CanHandle reports whether this scraper recognizes the URL's store
	// platform.
	CanHandle(url string) bool

	// Extract fetches the page and pulls out the product data.
	Extract(ctx context.Context, url string) (*types.ProductData, error)
}

// Registry dispatches a URL to the first scraper that claims it.
type Registry struct {
	scrapers []Scraper
}

// NewRegistry builds a registry; scrapers are probed in the given order,
// so platform-specific scrapers go before the generic fallback.
func NewRegistry(scrapers ...Scraper) *Registry {
	return &Registry{scrapers: scrapers}
}

// Extract finds a scraper for the URL and runs it.
func (r *Registry) Extract(ctx context.Context, url string) (*types.ProductData, error) {
	for _, s := range r.scrapers {
		if s.CanHandle(url) {
			return s.Extract(ctx, url)
		}
	}
	return nil, fmt.Errorf("no scraper can handle %s", url)
}

package scraper

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"

	"adforge/config"
	"adforge/types"
)

// maxDescriptionBytes caps how much page text flows into the script
// prompt.
const maxDescriptionBytes = 2000

// GenericScraper is the last-resort fallback: it runs readability
// extraction over any product page and maps the article fields onto
// product data. It claims every URL, so it must be registered last.
type GenericScraper struct{}

// NewGenericScraper creates the fallback scraper.
func NewGenericScraper() *GenericScraper {
	return &GenericScraper{}
}

func (s *GenericScraper) CanHandle(url string) bool {
	return true
}

// Extract pulls the page's readable content. The description is capped so
// a full article body does not flood the script prompt.
func (s *GenericScraper) Extract(ctx context.Context, url string) (*types.ProductData, error) {
	article, err := readability.FromURL(url, config.ScrapeTimeout)
	if err != nil {
		return nil, fmt.Errorf("readability extraction failed: %w", err)
	}

	if article.Title == "" {
		return nil, fmt.Errorf("no readable content at %s", url)
	}

	description := strings.TrimSpace(article.TextContent)
	if article.Excerpt != "" {
		description = article.Excerpt
	}
	description = truncateDescription(description, maxDescriptionBytes)

	product := &types.ProductData{
		Title:       article.Title,
		Description: description,
		Currency:    "USD",
	}
	if article.Image != "" {
		product.Images = []string{article.Image}
	}
	return product, nil
}

// truncateDescription cuts s to at most max bytes without splitting a
// UTF-8 sequence mid-rune.
func truncateDescription(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

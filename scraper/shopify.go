package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"adforge/config"
	"adforge/types"
)

var (
	shopifyHostPattern = regexp.MustCompile(`\.myshopify\.(com|io|store|co|shop|site|net|app|dev)|shopify\.supply`)
	priceNumberPattern = regexp.MustCompile(`[\d,.]+`)
	currencyPattern    = regexp.MustCompile(`([A-Z]{3}|\$|€|£|¥)`)
	shopifyCDNSize     = regexp.MustCompile(`_\d+x\d+`)
)

var titleSelectors = []string{
	"header h2.text-h2",
	`h2[class*="text-h2"]`,
	"header h2",
	"h1.product-title",
	"h1.product-single__title",
	"h1.product__title",
	"h1.product-name",
	`h1[class*="product"]`,
	`h1[class*="title"]`,
	"h1",
}

var descriptionSelectors = []string{
	"div.product-accordion-panel div.pb-7",
	"div.product-accordion-panel p",
	"div.product-description",
	"div.product-single__description",
	"div.product__description",
	`div[id="product-description"]`,
	`div[class*="description"]`,
}

var priceSelectors = []string{
	"div.flex.items-center span.text-h3",
	"span.text-h3",
	`span[class*="price"]`,
	`div[class*="price"]`,
	"span.product-price",
	"span.product__price",
	"span.price-item--regular",
	"span.price-item--sale",
}

var imageSelectors = []string{
	"div.product-image img",
	"div.product-single__photo img",
	"div.product__photo img",
	"div.product-gallery__image img",
	"div.product-media img",
	`img[class*="product"]`,
	"img",
}

var featureSelectors = []string{
	"ul.product-features li",
	"div.product-features li",
	"div.product__features li",
	`div[class*="features"] li`,
	`div[class*="specifications"] li`,
	`div[class*="details"] li`,
}

var brandSelectors = []string{
	"div.product-brand",
	"span.product-brand",
	"a.product-brand",
	"div.product__brand",
	"span.product__brand",
	`div[class*="brand"]`,
	`span[class*="brand"]`,
}

var availabilitySelectors = []string{
	"span.inline-block span",
	`span[class*="status"]`,
	`span[class*="badge"]`,
	`span[class*="sold-out"]`,
	`span[class*="availability"]`,
	`div[class*="availability"]`,
}

// ShopifyScraper extracts product data from Shopify storefront pages by
// probing the selector chains the common Shopify themes use.
type ShopifyScraper struct {
	client *http.Client
}

// NewShopifyScraper creates a scraper with the standard timeout.
func NewShopifyScraper() *ShopifyScraper {
	return &ShopifyScraper{client: &http.Client{Timeout: config.ScrapeTimeout}}
}

// CanHandle matches Shopify-hosted store domains.
func (s *ShopifyScraper) CanHandle(url string) bool {
	return shopifyHostPattern.MatchString(url)
}

// Extract fetches the product page and probes it with the selector chains.
func (s *ShopifyScraper) Extract(ctx context.Context, url string) (*types.ProductData, error) {
	body, err := fetchPage(ctx, s.client, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse product page: %w", err)
	}

	product := &types.ProductData{
		Title:        firstText(doc, titleSelectors),
		Description:  extractDescription(doc),
		Price:        extractPrice(doc),
		Images:       extractImages(doc),
		Features:     collectText(doc, featureSelectors),
		Brand:        firstText(doc, brandSelectors),
		Currency:     extractCurrency(doc),
		Availability: firstText(doc, availabilitySelectors),
		Videos:       extractVideos(doc),
	}
	if product.Title == "" {
		return nil, fmt.Errorf("no product title found at %s", url)
	}
	return product, nil
}

// firstText returns the first non-empty trimmed text among the selectors.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// collectText gathers unique trimmed texts from every selector match.
func collectText(doc *goquery.Document, selectors []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" && !seen[text] {
				seen[text] = true
				out = append(out, text)
			}
		})
	}
	return out
}

func extractDescription(doc *goquery.Document) string {
	for _, sel := range descriptionSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}

		// Description containers carry paragraphs; join them.
		var paragraphs []string
		container.Find("p").Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, "\n\n")
		}
		if text := strings.TrimSpace(container.Text()); text != "" {
			return text
		}
	}

	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}

func extractPrice(doc *goquery.Document) float64 {
	for _, sel := range priceSelectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if price, ok := parsePrice(text); ok {
			return price
		}
	}
	if content, ok := doc.Find(`meta[property="product:price:amount"]`).Attr("content"); ok {
		if price, parsed := parsePrice(content); parsed {
			return price
		}
	}
	return 0
}

func parsePrice(text string) (float64, bool) {
	match := priceNumberPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

func extractImages(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var images []string
	add := func(url string) {
		if url != "" && !seen[url] {
			seen[url] = true
			images = append(images, url)
		}
	}

	for _, sel := range imageSelectors {
		doc.Find(sel).Each(func(_ int, img *goquery.Selection) {
			if srcset, ok := img.Attr("srcset"); ok {
				if best := bestFromSrcset(srcset); best != "" {
					add(best)
					return
				}
			}
			src, ok := img.Attr("src")
			if !ok {
				return
			}
			add(normalizeImageURL(src))
		})
	}

	if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		add(normalizeImageURL(og))
	}

	// Gallery slides link to full-resolution originals.
	doc.Find("div.swiper-wrapper div.swiper-slide a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "http") && strings.Contains(href, "cdn.shopify.com") {
			add(href)
		}
	})

	return images
}

// bestFromSrcset picks the widest candidate from a srcset attribute.
func bestFromSrcset(srcset string) string {
	best := ""
	maxWidth := 0
	for _, candidate := range strings.Split(srcset, ",") {
		parts := strings.Fields(strings.TrimSpace(candidate))
		switch {
		case len(parts) == 2 && strings.HasSuffix(parts[1], "w"):
			width, err := strconv.Atoi(strings.TrimSuffix(parts[1], "w"))
			if err == nil && width > maxWidth {
				maxWidth = width
				best = parts[0]
			}
		case len(parts) == 1 && best == "":
			best = parts[0]
		}
	}
	return best
}

// normalizeImageURL fixes protocol-relative URLs and strips Shopify CDN
// size suffixes so the original resolution is fetched.
func normalizeImageURL(src string) string {
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	if strings.Contains(src, "cdn.shopify.com") {
		src = shopifyCDNSize.ReplaceAllString(src, "")
	}
	return src
}

func extractCurrency(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="product:price:currency"]`).Attr("content"); ok && content != "" {
		return content
	}
	for _, sel := range []string{`span[class*="text-h3"]`, `span[class*="price"]`, `div[class*="price"]`} {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if match := currencyPattern.FindString(text); match != "" {
			return match
		}
	}
	return "USD"
}

func extractVideos(doc *goquery.Document) []types.VideoMedia {
	var videos []types.VideoMedia
	doc.Find("div.swiper-slide video").Each(func(_ int, v *goquery.Selection) {
		src, ok := v.Find("source").Attr("src")
		if !ok {
			src, ok = v.Attr("src")
		}
		if !ok || src == "" {
			return
		}

		video := types.VideoMedia{URL: src}
		video.Poster, _ = v.Attr("poster")
		if alt, found := v.Attr("alt"); found {
			video.Alt = alt
		} else if heading := strings.TrimSpace(v.Parent().Find("h5").First().Text()); heading != "" {
			video.Alt = heading
		}
		videos = append(videos, video)
	})
	return videos
}

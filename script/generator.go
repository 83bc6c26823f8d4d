package script

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"adforge/types"
)

// Generator produces ad scripts from product data via the Cohere chat API.
type Generator struct {
	client *cohereclient.Client
	model  string
}

const (
	defaultChatModel = "command-r-08-2024"
	systemPreamble   = "You are a professional advertising copywriter specializing in compelling video ad scripts."
)

// NewGenerator creates a Generator with the given API key.
func NewGenerator(apiKey string) *Generator {
	httpClient := &http.Client{Timeout: 60 * time.Second}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &Generator{client: client, model: defaultChatModel}
}

// Generate asks the model for a timestamped 30-second scene script. The
// returned text follows the header/"---"/scenes layout that Parse expects.
func (g *Generator) Generate(ctx context.Context, product *types.ProductData) (string, error) {
	resp, err := g.client.Chat(ctx, &cohere.ChatRequest{
		Model:       &g.model,
		Preamble:    strPtr(systemPreamble),
		Message:     buildPrompt(product),
		Temperature: float64Ptr(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("script generation failed: %w", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("script generation returned empty response")
	}
	return resp.Text, nil
}

func buildPrompt(p *types.ProductData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a compelling 30-second video ad script for the following product:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	fmt.Fprintf(&b, "Description: %s\n", p.Description)
	fmt.Fprintf(&b, "Features: %s\n", strings.Join(p.Features, ", "))
	fmt.Fprintf(&b, "Price: %.2f %s\n", p.Price, p.Currency)
	fmt.Fprintf(&b, "Brand: %s\n\n", p.Brand)
	b.WriteString(`The script should:
1. Be engaging and persuasive
2. Highlight key features and benefits
3. Include a clear call to action
4. Be suitable for a 30-second video
5. Follow this exact format:

First, include a header section with product details:
**Title:** [Product Title]
**Description:** [Product Description]
**Features:** [List of Features]
**Price:** [Price]
**Brand:** [Brand]

Then, after a line with just "---", include the scenes with timestamps:
[0:00] *[Scene description]*
[0:05] *[Next scene description]*
[0:10] *[Next scene description]*
And so on...

Each scene should be 5 seconds long, and the total video should be 30 seconds.
Make sure to use asterisks (*) around scene descriptions.`)
	return b.String()
}

func strPtr(s string) *string { return &s }

func float64Ptr(f float64) *float64 { return &f }

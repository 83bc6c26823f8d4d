package script

import (
	"strings"
	"testing"

	"adforge/types"
)

func TestBuildPromptCarriesProductFields(t *testing.T) {
	prompt := buildPrompt(&types.ProductData{
		Title:    "Aurora Desk Lamp",
		Features: []string{"Touch dimming", "USB-C powered"},
		Price:    149.99,
		Currency: "EUR",
		Brand:    "Aurora Studio",
	})

	for _, want := range []string{
		"Title: Aurora Desk Lamp",
		"Features: Touch dimming, USB-C powered",
		"Price: 149.99 EUR",
		"Brand: Aurora Studio",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// The generator must keep asking for the layout Parse understands.
	if !strings.Contains(prompt, `"---"`) || !strings.Contains(prompt, "[0:00]") {
		t.Error("prompt no longer describes the delimiter/timestamp format")
	}
}

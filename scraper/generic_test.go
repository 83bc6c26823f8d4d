package scraper

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateDescriptionKeepsShortStrings(t *testing.T) {
	if got := truncateDescription("short", 2000); got != "short" {
		t.Errorf("got %q", got)
	}
}

func TestTruncateDescriptionRespectsRuneBoundaries(t *testing.T) {
	// "é" is two bytes; a limit landing inside it must back off to the
	// previous boundary instead of emitting a broken sequence.
	s := strings.Repeat("é", 100)
	for _, max := range []int{2000, 101, 100, 99, 3} {
		got := truncateDescription(s, max)
		if len(got) > max {
			t.Errorf("max %d: truncated to %d bytes", max, len(got))
		}
		if !utf8.ValidString(got) {
			t.Errorf("max %d: result is not valid UTF-8", max)
		}
	}

	if got := truncateDescription("héllo", 2); got != "h" {
		t.Errorf("got %q; want %q", got, "h")
	}
}

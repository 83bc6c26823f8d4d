package types

// VideoMedia describes a product video reference found on a storefront page.
type VideoMedia struct {
	URL    string `json:"url"`
	Poster string `json:"poster,omitempty"`
	Alt    string `json:"alt,omitempty"`
}

// ProductData is the structured result of scraping a product page.
// It is immutable once produced by a scraper.
type ProductData struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Features     []string     `json:"features"`
	Images       []string     `json:"images"`
	Videos       []VideoMedia `json:"videos"`
	Price        float64      `json:"price"`
	Brand        string       `json:"brand"`
	Currency     string       `json:"currency"`
	Availability string       `json:"availability"`
}

// MediaAssetSet holds the local files resolved for one render job.
// All paths live under the job's temp directory and are removed when
// the job reaches a terminal state.
type MediaAssetSet struct {
	// Images is never empty once resolution finishes; a placeholder
	// frame is substituted when every download fails.
	Images []string

	// Videos mirrors the product's video descriptors, in source order.
	Videos []string

	// NarrationTrack is the concatenated TTS audio, empty when narration
	// was skipped or failed entirely.
	NarrationTrack string

	// BackgroundTrack is an optional music file looped under the video.
	BackgroundTrack string
}

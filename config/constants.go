package config

import "time"

const (
	// Canvas and encoding parameters. These are fixed: the service renders
	// exactly one template and callers cannot override them per request.
	CanvasWidth  = 1920
	CanvasHeight = 1080
	FrameRate    = 24
	VideoCodec   = "libx264"
	AudioCodec   = "aac"
	AudioBitrate = "192k"
	VideoPreset  = "fast"
	PixelFormat  = "yuv420p"

	// Scene timing
	DefaultSceneSeconds  = 5 // last scene and fallback slides
	FallbackSceneSeconds = 5

	// Caption layout
	CaptionFontSize   = 56.0
	CaptionPaddingX   = 120
	CaptionPaddingY   = 28
	CaptionLineGap    = 1.35
	CaptionPanelAlpha = 0.7

	// Media resolution
	MaxConcurrentDownloads = 4
	DownloadTimeout        = 10 * time.Second

	// Scraping
	ScrapeTimeout = 30 * time.Second
	MaxRetries    = 3
	UserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"adforge/config"
	"adforge/types"
)

// Fetcher retrieves the raw bytes behind a URL. Satisfied by *http.Client
// via HTTPFetcher; tests substitute their own.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher implements Fetcher with a bounded-timeout HTTP client.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a Fetcher using config.DownloadTimeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: config.DownloadTimeout}}
}

// Get fetches the URL, requiring a 200 response.
func (f *HTTPFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", config.UserAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// Resolver downloads product media into a job's temp directory.
type Resolver struct {
	fetcher Fetcher

	// BackgroundMusic, when set to an existing file, becomes the asset
	// set's background track.
	BackgroundMusic string
}

// NewResolver creates a Resolver backed by the given fetcher.
func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Resolve downloads every referenced image and video into dir. It never
// fails outright: individual download errors are logged and skipped, and
// when no image survives a placeholder frame is synthesized so that frame
// composition always has a background to work with.
func (r *Resolver) Resolve(ctx context.Context, product *types.ProductData, dir string) (*types.MediaAssetSet, error) {
	assets := &types.MediaAssetSet{}

	assets.Images = r.downloadAll(ctx, product.Images, dir, "image", ".jpg", true)

	videoURLs := make([]string, 0, len(product.Videos))
	for _, v := range product.Videos {
		if v.URL != "" {
			videoURLs = append(videoURLs, v.URL)
		}
	}
	assets.Videos = r.downloadAll(ctx, videoURLs, dir, "video", ".mp4", false)

	if len(assets.Images) == 0 {
		log.Printf("No images downloaded, synthesizing placeholder frame")
		placeholder, err := WritePlaceholder(filepath.Join(dir, "placeholder.jpg"))
		if err != nil {
			return nil, fmt.Errorf("failed to create placeholder image: %w", err)
		}
		assets.Images = []string{placeholder}
	}

	if r.BackgroundMusic != "" {
		if _, err := os.Stat(r.BackgroundMusic); err == nil {
			assets.BackgroundTrack = r.BackgroundMusic
		} else {
			log.Printf("Background music %s not readable, skipping: %v", r.BackgroundMusic, err)
		}
	}

	return assets, nil
}

// downloadAll fetches urls concurrently (bounded by MaxConcurrentDownloads)
// and returns the local paths of the successes in the original URL order.
func (r *Resolver) downloadAll(ctx context.Context, urls []string, dir, prefix, defaultExt string, validateImage bool) []string {
	results := make([]string, len(urls))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, config.MaxConcurrentDownloads)

	for i, url := range urls {
		if url == "" {
			continue
		}
		wg.Add(1)

		go func(idx int, url string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			local, err := r.downloadOne(ctx, url, dir, prefix, defaultExt, idx, validateImage)
			if err != nil {
				log.Printf("Skipping %s %d (%s): %v", prefix, idx, url, err)
				return
			}
			results[idx] = local
		}(i, url)
	}
	wg.Wait()

	// Compact, preserving index order so completion timing never reorders.
	paths := make([]string, 0, len(urls))
	for _, p := range results {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (r *Resolver) downloadOne(ctx context.Context, url, dir, prefix, defaultExt string, idx int, validateImage bool) (string, error) {
	data, err := r.fetcher.Get(ctx, url)
	if err != nil {
		return "", err
	}

	if validateImage {
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return "", fmt.Errorf("payload is not a decodable image: %w", err)
		}
	}

	local := filepath.Join(dir, fmt.Sprintf("%s_%d%s", prefix, idx, extFor(url, defaultExt)))
	if err := os.WriteFile(local, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return local, nil
}

// extFor picks a filename extension from the URL path, falling back to the
// media type default.
func extFor(url, defaultExt string) string {
	ext := strings.ToLower(path.Ext(strings.SplitN(url, "?", 2)[0]))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".mp4", ".webm", ".mov":
		return ext
	}
	return defaultExt
}

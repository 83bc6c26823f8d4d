package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"adforge/types"
)

// fakeFetcher serves canned responses keyed by URL.
type fakeFetcher struct {
	responses map[string][]byte
	errors    map[string]error
}

func (f *fakeFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if err, ok := f.errors[url]; ok {
		return nil, err
	}
	if data, ok := f.responses[url]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("no response configured for %s", url)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestResolvePreservesOrderAndSkipsFailures(t *testing.T) {
	img := pngBytes(t)
	fetcher := &fakeFetcher{
		responses: map[string][]byte{
			"https://shop.example/a.png": img,
			"https://shop.example/c.png": img,
		},
		errors: map[string]error{
			"https://shop.example/b.png": fmt.Errorf("connection refused"),
		},
	}

	resolver := NewResolver(fetcher)
	assets, err := resolver.Resolve(context.Background(), &types.ProductData{
		Images: []string{
			"https://shop.example/a.png",
			"https://shop.example/b.png",
			"https://shop.example/c.png",
		},
	}, t.TempDir())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if len(assets.Images) != 2 {
		t.Fatalf("got %d images; want 2", len(assets.Images))
	}
	// Order must follow the original URL list, not completion time.
	if !strings.Contains(filepath.Base(assets.Images[0]), "image_0") {
		t.Errorf("first image = %s; want file for URL index 0", assets.Images[0])
	}
	if !strings.Contains(filepath.Base(assets.Images[1]), "image_2") {
		t.Errorf("second image = %s; want file for URL index 2", assets.Images[1])
	}
}

func TestResolveRejectsUndecodablePayloads(t *testing.T) {
	fetcher := &fakeFetcher{
		responses: map[string][]byte{
			"https://shop.example/not-an-image": []byte("<html>404</html>"),
		},
	}

	resolver := NewResolver(fetcher)
	assets, err := resolver.Resolve(context.Background(), &types.ProductData{
		Images: []string{"https://shop.example/not-an-image"},
	}, t.TempDir())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	// The bad payload is dropped and the placeholder takes its spot.
	if len(assets.Images) != 1 {
		t.Fatalf("got %d images; want 1 placeholder", len(assets.Images))
	}
	if !strings.Contains(assets.Images[0], "placeholder") {
		t.Errorf("image = %s; want synthesized placeholder", assets.Images[0])
	}
}

func TestResolveNeverReturnsEmptyImages(t *testing.T) {
	fetcher := &fakeFetcher{errors: map[string]error{
		"https://shop.example/1.jpg": fmt.Errorf("timeout"),
		"https://shop.example/2.jpg": fmt.Errorf("timeout"),
		"https://shop.example/3.jpg": fmt.Errorf("timeout"),
	}}

	resolver := NewResolver(fetcher)
	assets, err := resolver.Resolve(context.Background(), &types.ProductData{
		Images: []string{
			"https://shop.example/1.jpg",
			"https://shop.example/2.jpg",
			"https://shop.example/3.jpg",
		},
	}, t.TempDir())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(assets.Images) != 1 {
		t.Fatalf("got %d images; want exactly the placeholder", len(assets.Images))
	}
}

func TestResolveDownloadsVideosSeparately(t *testing.T) {
	fetcher := &fakeFetcher{
		responses: map[string][]byte{
			"https://shop.example/p.png":     pngBytes(t),
			"https://shop.example/demo.mp4":  []byte("not really a video"),
			"https://shop.example/demo2.mp4": []byte("also bytes"),
		},
	}

	resolver := NewResolver(fetcher)
	assets, err := resolver.Resolve(context.Background(), &types.ProductData{
		Images: []string{"https://shop.example/p.png"},
		Videos: []types.VideoMedia{
			{URL: "https://shop.example/demo.mp4", Poster: "x"},
			{URL: "https://shop.example/demo2.mp4"},
		},
	}, t.TempDir())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(assets.Videos) != 2 {
		t.Fatalf("got %d videos; want 2", len(assets.Videos))
	}
	if len(assets.Images) != 1 || strings.Contains(assets.Images[0], "placeholder") {
		t.Fatalf("images = %v; want the single real download", assets.Images)
	}
}

func TestNewSolidFrameFillsEveryPixel(t *testing.T) {
	c := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	img := NewSolidFrame(8, 8, c)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := img.RGBAAt(x, y); got != c {
				t.Fatalf("pixel (%d,%d) = %v; want %v", x, y, got, c)
			}
		}
	}
}

package publish

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"adforge/types"
)

// YouTubeUploader publishes finished ads as unlisted YouTube videos using
// a service account. Video metadata is derived from the product being
// advertised.
type YouTubeUploader struct {
	service *youtube.Service
}

// NewYouTubeUploader authenticates with the given service account JSON
// file.
func NewYouTubeUploader(ctx context.Context, serviceAccountFile string) (*YouTubeUploader, error) {
	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}

	service, err := youtube.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &YouTubeUploader{service: service}, nil
}

func (u *YouTubeUploader) Name() string { return "youtube" }

// Upload inserts the video with product-derived metadata and returns its
// watch URL.
func (u *YouTubeUploader) Upload(ctx context.Context, localPath string, product *types.ProductData) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat video file: %w", err)
	}
	log.Printf("Uploading %s to YouTube (%.2f MB)", localPath, float64(info.Size())/(1024*1024))

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       videoTitle(product),
			Description: videoDescription(product),
			Tags:        videoTags(product),
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           "unlisted",
			SelfDeclaredMadeForKids: false,
		},
	}

	call := u.service.Videos.Insert([]string{"snippet", "status"}, video).
		Context(ctx).
		Media(file)
	response, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("upload video: %w", err)
	}

	return "https://youtube.com/watch?v=" + response.Id, nil
}

func videoTitle(product *types.ProductData) string {
	title := product.Title
	if title == "" {
		title = "Product Video"
	}
	if len(title) > 100 {
		title = title[:97] + "..."
	}
	return title
}

func videoDescription(product *types.ProductData) string {
	var b strings.Builder
	b.WriteString(product.Description)
	if len(product.Features) > 0 {
		b.WriteString("\n\n")
		for _, feature := range product.Features {
			fmt.Fprintf(&b, "• %s\n", feature)
		}
	}
	if product.Brand != "" {
		fmt.Fprintf(&b, "\nBy %s", product.Brand)
	}
	return b.String()
}

func videoTags(product *types.ProductData) []string {
	tags := []string{"product", "ad"}
	if product.Brand != "" {
		tags = append(tags, product.Brand)
	}
	return tags
}

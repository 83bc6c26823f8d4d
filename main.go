package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"adforge/api"
	"adforge/config"
	"adforge/events"
	"adforge/jobs"
	"adforge/media"
	"adforge/narration"
	"adforge/publish"
	"adforge/render"
	"adforge/scraper"
	"adforge/script"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := config.FromEnv()
	if cfg.CohereAPIKey == "" {
		log.Fatal("COHERE_API_KEY is required")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory %s: %v", cfg.OutputDir, err)
	}

	store := buildStore(cfg)

	resolver := media.NewResolver(media.NewHTTPFetcher())
	resolver.BackgroundMusic = cfg.BackgroundMusic

	var narrator render.Narrator
	if cfg.TTSAPIKey != "" {
		narrator = narration.NewSynthesizer(
			narration.NewOpenAISpeech(cfg.TTSAPIKey, cfg.TTSBaseURL, cfg.TTSVoice),
		)
	} else {
		log.Println("TTS_API_KEY not set, narration disabled")
	}

	pipeline := render.NewPipeline(
		store,
		resolver,
		narrator,
		render.NewCompositor(cfg.FontPath),
		render.NewFFmpegEncoder(),
		cfg.OutputDir,
	)

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("Failed to connect Kafka producer: %v", err)
		}
		defer publisher.Close()
		pipeline.WithNotifier(publisher)
		log.Printf("Publishing job events to %s", cfg.KafkaTopic)
	}

	if cfg.S3Bucket != "" {
		uploader, err := publish.NewS3Uploader(context.Background(), cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
		if err != nil {
			log.Fatalf("Failed to build S3 uploader: %v", err)
		}
		pipeline.WithUploaders(uploader)
		log.Printf("Uploading completed videos to s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
	}

	if cfg.YouTubeServiceAccount != "" {
		uploader, err := publish.NewYouTubeUploader(context.Background(), cfg.YouTubeServiceAccount)
		if err != nil {
			log.Fatalf("Failed to build YouTube uploader: %v", err)
		}
		pipeline.WithUploaders(uploader)
		log.Println("Publishing completed videos to YouTube")
	}

	registry := scraper.NewRegistry(
		scraper.NewShopifyScraper(),
		scraper.NewGenericScraper(),
	)
	videos := api.NewVideoController(registry, script.NewGenerator(cfg.CohereAPIKey), store, pipeline)

	addr := ":" + cfg.Port
	r := api.NewRouter(videos)
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET  /api/health")
	log.Println("  POST /api/videos")
	log.Println("  GET  /api/videos/:id/status")
	log.Println("  GET  /api/videos/:id/file")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// buildStore selects the job store: Redis when configured, in-memory
// otherwise.
func buildStore(cfg config.Config) jobs.Store {
	if cfg.RedisAddr == "" {
		return jobs.NewMemoryStore()
	}
	store, err := jobs.NewRedisStore(cfg.RedisAddr, cfg.RedisPass)
	if err != nil {
		log.Fatalf("Failed to connect to Redis at %s: %v", cfg.RedisAddr, err)
	}
	log.Printf("Using Redis job store at %s", cfg.RedisAddr)
	return store
}

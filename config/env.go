package config

import (
	"os"
	"strings"
)

// Config holds deployment-level settings read from the environment.
// Fixed render parameters live in constants.go; everything here is a
// knob that differs between environments.
type Config struct {
	Port string

	OutputDir string
	FontPath  string

	// BackgroundMusic is an optional local audio file looped under every
	// render. Empty disables background music.
	BackgroundMusic string

	CohereAPIKey string

	// TTS settings for the OpenAI-compatible speech endpoint. Empty
	// TTSAPIKey disables narration.
	TTSAPIKey  string
	TTSBaseURL string
	TTSVoice   string

	// RedisAddr switches the job store from in-memory to Redis.
	RedisAddr string
	RedisPass string

	// KafkaBrokers enables terminal job event publishing when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// S3Bucket enables upload of completed videos when non-empty.
	S3Bucket string
	S3Region string
	S3Prefix string

	// YouTubeServiceAccount enables YouTube publishing when set.
	YouTubeServiceAccount string
}

// FromEnv builds a Config from environment variables, applying defaults
// where values are unset.
func FromEnv() Config {
	cfg := Config{
		Port:                  getEnvOrDefault("PORT", "8080"),
		OutputDir:             getEnvOrDefault("OUTPUT_DIR", "output"),
		FontPath:              getEnvOrDefault("CAPTION_FONT", "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"),
		BackgroundMusic:       os.Getenv("BACKGROUND_MUSIC"),
		CohereAPIKey:          os.Getenv("COHERE_API_KEY"),
		TTSAPIKey:             os.Getenv("TTS_API_KEY"),
		TTSBaseURL:            getEnvOrDefault("TTS_BASE_URL", "https://api.openai.com/v1"),
		TTSVoice:              getEnvOrDefault("TTS_VOICE", "alloy"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPass:             os.Getenv("REDIS_PASS"),
		KafkaTopic:            getEnvOrDefault("KAFKA_TOPIC", "adforge.jobs"),
		S3Bucket:              os.Getenv("S3_BUCKET"),
		S3Region:              os.Getenv("S3_REGION"),
		S3Prefix:              os.Getenv("S3_PREFIX"),
		YouTubeServiceAccount: os.Getenv("YOUTUBE_SERVICE_ACCOUNT"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings for the gateway. Nothing in
// here is a secret: the transcription credential always arrives with each
// request and is never configured server-side.
type Config struct {
	Port string

	// GeminiModel is the model name used for generation requests.
	GeminiModel string

	// FFmpegPath / FFprobePath pin specific binaries; empty means PATH lookup.
	FFmpegPath  string
	FFprobePath string

	// MaxChunkDuration is the longest audio submitted in a single model
	// request before splitting kicks in.
	MaxChunkDuration time.Duration

	// Rate limit policy for the transcription endpoint.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() Config {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	return Config{
		Port:              envOr("PORT", "8080"),
		GeminiModel:       envOr("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		FFmpegPath:        os.Getenv("FFMPEG_PATH"),
		FFprobePath:       os.Getenv("FFPROBE_PATH"),
		MaxChunkDuration:  envSecondsOr("MAX_CHUNK_SECONDS", 34200),
		RateLimitRequests: envIntOr("RATE_LIMIT_REQUESTS", 5),
		RateLimitWindow:   envSecondsOr("RATE_LIMIT_WINDOW_SECONDS", 300),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envSecondsOr(key string, fallbackSeconds int) time.Duration {
	return time.Duration(envIntOr(key, fallbackSeconds)) * time.Second
}

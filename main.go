package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/Yuki-bach/ditationable/config"
	"github.com/Yuki-bach/ditationable/handlers"
	"github.com/Yuki-bach/ditationable/internal/audio"
	"github.com/Yuki-bach/ditationable/internal/ffmpeg"
	"github.com/Yuki-bach/ditationable/internal/gemini"
	"github.com/Yuki-bach/ditationable/internal/ratelimit"
	"github.com/Yuki-bach/ditationable/internal/transcriber"
	"github.com/Yuki-bach/ditationable/middleware"
)

func main() {
	config.InitLogger()
	cfg := config.Load()

	// Core pipeline: ffmpeg engine -> segmenter -> orchestrator. A fresh
	// provider client is constructed per request, bound to that request's
	// credential.
	engine := ffmpeg.NewEngine(cfg.FFmpegPath, cfg.FFprobePath)
	segmenter := audio.NewSegmenter(engine, "")
	service := transcriber.NewGeminiService(
		config.Log,
		segmenter,
		func(apiKey string) transcriber.Provider {
			return gemini.NewClient(apiKey, gemini.WithModel(cfg.GeminiModel))
		},
		cfg.MaxChunkDuration,
	)

	limiter := ratelimit.NewStore(cfg.RateLimitWindow)
	defer limiter.Stop()

	handler := handlers.NewApplicationHandler(service, limiter, config.Log, handlers.RateLimitPolicy{
		MaxRequests: cfg.RateLimitRequests,
		Window:      cfg.RateLimitWindow,
	})

	app := fiber.New(fiber.Config{
		// Chunk uploads can be large; the provider size policy decides how
		// they are submitted, not the transport.
		BodyLimit: 1024 * 1024 * 1024,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST, OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger())

	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Transcription gateway is healthy",
		})
	})

	app.Post("/transcribe", handler.TranscribeAudio)
	app.Post("/validate-key", handler.ValidateKey)

	log.Printf("Starting transcription gateway on port %s...", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

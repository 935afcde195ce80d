package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumi-backend/internal/config"
	"lumi-backend/internal/handlers"
	"lumi-backend/internal/router"
	"lumi-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Lumi Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Gemini Client ────
	// A missing key is not fatal: the server still boots and reports
	// CONFIG_ERROR per request.
	var geminiService *services.GeminiService
	if cfg.GeminiAPIKey != "" {
		var err error
		geminiService, err = services.NewGeminiService(
			context.Background(),
			cfg.GeminiAPIKey,
			cfg.GeminiModel,
			cfg.GeminiConcurrentReqs,
		)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer geminiService.Close()
		log.Println("✓ Gemini Flash client initialized")
	} else {
		log.Println("⚠ GEMINI_API_KEY not set; generation endpoints will report CONFIG_ERROR")
	}

	// ──── Step 3: Initialize Services ────
	docExtractService := services.NewDocExtractService()
	webPageService := services.NewWebPageService()
	youtubeService := services.NewYouTubeService()
	sourceService := services.NewSourceService(docExtractService, webPageService, youtubeService)
	elevenLabsService := services.NewElevenLabsService(cfg.ElevenLabsAPIKey)

	// ──── Step 4: Probe Provider Credentials ────
	go probeProviders(geminiService, elevenLabsService)

	// ──── Step 5: Initialize Handlers ────
	maxUploadBytes := int64(cfg.MaxUploadMB) << 20
	lessonHandler := handlers.NewLessonHandler(sourceService, geminiService, maxUploadBytes)
	chatHandler := handlers.NewChatHandler(geminiService)
	speechHandler := handlers.NewSpeechHandler(elevenLabsService)
	extractHandler := handlers.NewExtractHandler(docExtractService, maxUploadBytes)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		lessonHandler,
		chatHandler,
		speechHandler,
		extractHandler,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// Generation calls can take a while; give them room.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Lumi Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

// probeProviders checks the configured credentials in the background so
// a bad key shows up in the logs right away instead of on the first
// user request.
func probeProviders(gemini *services.GeminiService, tts *services.ElevenLabsService) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if gemini != nil {
		if err := gemini.Ping(ctx); err != nil {
			log.Printf("⚠ Gemini key check failed: %v", err)
		} else {
			log.Println("✓ Gemini key verified")
		}
	}

	if err := tts.ValidateKey(ctx); err != nil {
		log.Printf("⚠ ElevenLabs key check failed: %v", err)
	} else {
		log.Println("✓ ElevenLabs key verified")
	}
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int

	// ElevenLabs TTS
	ElevenLabsAPIKey string

	// Uploads
	MaxUploadMB int64

	// Frontend
	FrontendURL string
}

// Load reads configuration from the environment. Provider keys are
// optional: the server starts without them and the affected endpoints
// return configuration errors until the keys are set.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		ElevenLabsAPIKey:     os.Getenv("ELEVENLABS_API_KEY"),
		MaxUploadMB:          int64(getEnvAsIntOrDefault("MAX_UPLOAD_MB", 25)),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY is not set. Lesson generation and chat will fail until configured.")
	}
	if cfg.ElevenLabsAPIKey == "" {
		log.Println("Warning: ELEVENLABS_API_KEY is not set. Text-to-speech will fail until configured.")
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

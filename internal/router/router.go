package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"lumi-backend/internal/handlers"
	"lumi-backend/internal/middleware"
)

func New(
	lessonHandler *handlers.LessonHandler,
	chatHandler *handlers.ChatHandler,
	speechHandler *handlers.SpeechHandler,
	extractHandler *handlers.ExtractHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Generation rate limiter (10 req/min per IP)
	generateLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Lesson Routes ────
		r.Route("/lessons", func(r chi.Router) {
			r.Use(generateLimiter.Middleware)
			r.Post("/generate", lessonHandler.Generate)
		})

		// ──── Tutor Chat ────
		r.Post("/chat", chatHandler.Respond)

		// ──── Speech Routes ────
		r.Post("/speech", speechHandler.Synthesize)

		// ──── Extraction Diagnostics ────
		r.Post("/extract/debug", extractHandler.Debug)
	})

	return r
}

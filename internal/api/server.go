package api

import (
	"log/slog"
	"net/http"

	"github.com/booksage/booksage/internal/config"
	"github.com/booksage/booksage/internal/pipeline"
	"github.com/booksage/booksage/internal/summarize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for booksage.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	summarizer   *summarize.Summarizer
	model        string
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, summarizer *summarize.Summarizer, model string, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		summarizer:   summarizer,
		model:        model,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.BooksageAPIKey, s.log))

		r.Post("/api/books", s.handleUpload)
		r.Get("/api/books", s.handleListBooks)
		r.Delete("/api/books/{bookID}", s.handleDeleteBook)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Get("/api/books/{bookID}/chapters", s.handleChapters)
		r.Patch("/api/books/{bookID}/chapters/{chapter}", s.handlePatchChapter)

		r.Get("/api/books/{bookID}/commands", s.handleCommands)
		r.Get("/api/books/{bookID}/commands/{name}", s.handleCommandInfo)
		r.Get("/api/books/{bookID}/chapters/{chapter}/commands", s.handleChapterCommands)

		r.Post("/api/books/{bookID}/chapters/{chapter}/summary", s.handleSummary)
		r.Post("/api/books/{bookID}/chapters/{chapter}/question", s.handleQuestion)

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/classify", s.handleClassify)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

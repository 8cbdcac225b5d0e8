package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/booksage/booksage/internal/category"
	"github.com/booksage/booksage/internal/store"
	"github.com/booksage/booksage/internal/summarize"
	"github.com/go-chi/chi/v5"
)

type summaryRequest struct {
	Depth        string `json:"depth"`
	Instructions string `json:"instructions"`
	Force        bool   `json:"force"`
	Categorize   *bool  `json:"categorize"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	idx, err := chapterIndex(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	depth, err := summarize.ParseDepth(req.Depth)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	categorize := req.Categorize == nil || *req.Categorize

	books := s.orchestrator.Books()
	title, ok := s.chapterTitle(w, r, bookID, idx)
	if !ok {
		return
	}

	// Custom instructions produce one-off output, so the cache only serves
	// plain requests.
	cacheable := req.Instructions == ""
	if cacheable && !req.Force {
		if cached, err := books.LoadSummary(r.Context(), bookID, idx, string(depth)); err == nil {
			s.writeSummary(w, bookID, idx, depth, cached, true)
			return
		}
	}

	text, err := books.LoadChapterText(r.Context(), bookID, idx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "chapter text not available", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load chapter text: "+err.Error(), http.StatusInternalServerError)
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), title, text, depth, req.Instructions, categorize)
	if err != nil {
		jsonError(w, "summarization failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	if cacheable {
		if err := books.SaveSummary(r.Context(), bookID, idx, string(depth), summary); err != nil {
			s.log.Warn("summary cache write failed", "book_id", bookID, "chapter", idx, "error", err)
		}
	}
	s.writeSummary(w, bookID, idx, depth, summary, false)
}

func (s *Server) writeSummary(w http.ResponseWriter, bookID string, idx int, depth summarize.Depth, summary string, cached bool) {
	sections := category.Parse(summary)
	tags := category.ActiveTags(sections)
	if tags == nil {
		tags = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"book_id":     bookID,
		"chapter":     idx,
		"depth":       depth,
		"summary":     summary,
		"sections":    sections,
		"active_tags": tags,
		"cached":      cached,
	})
}

type questionRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	idx, err := chapterIndex(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	title, ok := s.chapterTitle(w, r, bookID, idx)
	if !ok {
		return
	}
	text, err := s.orchestrator.Books().LoadChapterText(r.Context(), bookID, idx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "chapter text not available", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load chapter text: "+err.Error(), http.StatusInternalServerError)
		return
	}

	answer, err := s.summarizer.Ask(r.Context(), title, text, req.Question)
	if err != nil {
		jsonError(w, "question failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"book_id":  bookID,
		"chapter":  idx,
		"question": req.Question,
		"answer":   answer,
	})
}

// chapterTitle resolves the stored title for a chapter index, writing the
// error response itself when the book or index is missing.
func (s *Server) chapterTitle(w http.ResponseWriter, r *http.Request, bookID string, idx int) (string, bool) {
	rec, err := s.orchestrator.Books().LoadChapters(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "book not found", http.StatusNotFound)
		} else {
			jsonError(w, "failed to load chapters: "+err.Error(), http.StatusInternalServerError)
		}
		return "", false
	}
	if idx < 0 || idx >= len(rec.Chapters) {
		jsonError(w, fmt.Sprintf("chapter index out of range: %d", idx), http.StatusNotFound)
		return "", false
	}
	return rec.Chapters[idx].Title, true
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"model": s.model,
		"stats": s.summarizer.Stats().Snapshot(),
	})
}

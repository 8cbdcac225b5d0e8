package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/booksage/booksage/internal/source"
	"github.com/booksage/booksage/internal/store"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !source.IsSupported(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job := s.orchestrator.NewJob(filename, data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"book_id":  job.BookID,
		"status":   job.Status,
		"poll_url": "/api/jobs/" + job.ID,
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	listings, err := s.orchestrator.Books().ListBooks(r.Context())
	if err != nil {
		jsonError(w, "failed to list books: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if listings == nil {
		listings = []store.Listing{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"books": listings})
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	if err := s.orchestrator.Books().DeleteBook(r.Context(), bookID); err != nil {
		jsonError(w, "failed to delete book: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"deleted": bookID})
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	rec, err := s.orchestrator.Books().LoadChapters(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "book not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load chapters: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"book_id":  bookID,
		"filename": rec.Filename,
		"chapters": rec.Chapters,
	})
}

// chapterPatch carries manual corrections to a detected chapter. Pointer
// fields distinguish "not supplied" from zero values.
type chapterPatch struct {
	Title     *string `json:"title"`
	StartPage *int    `json:"start_page"`
	EndPage   *int    `json:"end_page"`
	Verified  *bool   `json:"verified"`
}

func (s *Server) handlePatchChapter(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	idx, err := chapterIndex(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var patch chapterPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	books := s.orchestrator.Books()
	rec, err := books.LoadChapters(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "book not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load chapters: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if idx < 0 || idx >= len(rec.Chapters) {
		jsonError(w, fmt.Sprintf("chapter index out of range: %d", idx), http.StatusNotFound)
		return
	}

	ch := &rec.Chapters[idx]
	if patch.Title != nil {
		ch.Title = *patch.Title
	}
	if patch.StartPage != nil {
		ch.StartPage = *patch.StartPage
	}
	if patch.EndPage != nil {
		ch.EndPage = *patch.EndPage
	}
	if ch.EndPage < ch.StartPage {
		jsonError(w, "end_page must not be below start_page", http.StatusBadRequest)
		return
	}
	if patch.Verified != nil {
		ch.Verified = *patch.Verified
	}

	if err := books.SaveChapters(r.Context(), bookID, rec); err != nil {
		jsonError(w, "failed to save chapters: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"book_id": bookID,
		"chapter": idx,
		"updated": rec.Chapters[idx],
	})
}

func chapterIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "chapter")
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("invalid chapter index: %q", raw)
	}
	return idx, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}

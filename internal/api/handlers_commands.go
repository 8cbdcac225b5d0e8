package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/booksage/booksage/internal/category"
	"github.com/booksage/booksage/internal/command"
	"github.com/booksage/booksage/internal/store"
	"github.com/go-chi/chi/v5"
)

func (s *Server) loadRegistry(w http.ResponseWriter, r *http.Request, bookID string) (command.Snapshot, bool) {
	snap, err := s.orchestrator.Books().LoadRegistry(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "book not found", http.StatusNotFound)
		} else {
			jsonError(w, "failed to load commands: "+err.Error(), http.StatusInternalServerError)
		}
		return command.Snapshot{}, false
	}
	return snap, true
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	snap, ok := s.loadRegistry(w, r, bookID)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"book_id":  bookID,
		"total":    len(snap.Commands),
		"commands": snap.Commands,
	})
}

func (s *Server) handleCommandInfo(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	name := chi.URLParam(r, "name")
	snap, ok := s.loadRegistry(w, r, bookID)
	if !ok {
		return
	}
	entry, found := snap.Commands[name]
	if !found {
		jsonError(w, "command not tracked: "+name, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"command": name,
		"info":    entry,
	})
}

func (s *Server) handleChapterCommands(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	idx, err := chapterIndex(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap, ok := s.loadRegistry(w, r, bookID)
	if !ok {
		return
	}
	reg := command.FromSnapshot(snap)

	newCmds := reg.NewInChapter(idx)

	// Every command appearing in the chapter, introduced or repeated.
	var all []string
	for _, name := range reg.Commands() {
		if entry, found := reg.Info(name); found && entry.Chapters[idx] {
			all = append(all, name)
		}
	}
	if newCmds == nil {
		newCmds = []string{}
	}
	if all == nil {
		all = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"book_id": bookID,
		"chapter": idx,
		"new":     newCmds,
		"all":     all,
	})
}

type extractRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}
	cmds := command.FromText(req.Text)
	if cmds == nil {
		cmds = []command.Extracted{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"total":    len(cmds),
		"commands": cmds,
	})
}

type classifyRequest struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Summary == "" {
		jsonError(w, "summary is required", http.StatusBadRequest)
		return
	}

	sections := category.Parse(req.Summary)
	filtered := category.Filter(sections, req.Tags)
	tags := category.ActiveTags(sections)
	if tags == nil {
		tags = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"sections":    filtered,
		"active_tags": tags,
		"markdown":    category.Rebuild(filtered),
	})
}

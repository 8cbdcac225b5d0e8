package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/booksage/booksage/internal/command"
	"github.com/booksage/booksage/internal/layout"
	"github.com/booksage/booksage/internal/segment"
	"github.com/booksage/booksage/internal/source"
	"github.com/booksage/booksage/internal/store"
)

// Worker analyzes a single uploaded book.
type Worker struct {
	books           *store.Books
	log             *slog.Logger
	maxOutlineLevel int
}

func NewWorker(books *store.Books, log *slog.Logger, maxOutlineLevel int) *Worker {
	return &Worker{
		books:           books,
		log:             log,
		maxOutlineLevel: maxOutlineLevel,
	}
}

// Process runs the full analysis pipeline for a job: parse the document,
// segment it into chapters, extract commands per chapter, and persist
// everything under the job's book ID.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "book_id", job.BookID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	src, err := source.Open(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	defer src.Close()

	// Phase 2: Segment into chapters. Embedded outlines win; otherwise
	// fall back to font-based heading detection.
	job.SetStatus(StatusSegmenting, "segmenting")
	total := src.PageCount()
	all := src.Lines(0, total-1)

	chapters := segment.FromOutline(src.Outline(), total, w.maxOutlineLevel)
	if len(chapters) == 0 {
		chapters = segment.Detect(all, total)
	}
	if len(chapters) == 0 {
		chapters = []segment.Chapter{{Title: "Full Book", StartPage: 0, EndPage: total - 1, Level: 1}}
	}
	job.SetTotalChapters(len(chapters))
	log.Info("segmented book", "chapters", len(chapters), "pages", total)

	if err := w.books.SaveChapters(ctx, job.BookID, store.BookRecord{
		Filename: job.Filename,
		Chapters: chapters,
	}); err != nil {
		log.Error("save chapters failed", "error", err)
		job.AddError(fmt.Sprintf("save chapters: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	// Phase 3: Per-chapter command extraction. The registry has a single
	// owner here, so registration needs no locking.
	job.SetStatus(StatusExtracting, "extracting")
	profile := layout.ComputeProfile(all, layout.DefaultThresholds())
	if profile.LowConfidence() {
		log.Warn("font sample too small, monospace detection limited",
			"total_chars", profile.TotalChars)
	}

	registry := command.NewRegistry()
	hadErrors := false
	for i, ch := range chapters {
		lines := src.Lines(ch.StartPage, ch.EndPage)
		if err := w.books.SaveChapterText(ctx, job.BookID, i, joinText(lines)); err != nil {
			log.Error("cache chapter text failed", "chapter", i, "error", err)
			job.AddError(fmt.Sprintf("chapter %d text: %s", i, err))
			hadErrors = true
		}

		cmds := command.FromBlocks(Blocks(lines, profile))
		registry.Register(cmds, i, ch.Title)
		job.ChapterDone(len(cmds))
	}

	// Phase 4: Persist the command registry.
	job.SetStatus(StatusStoring, "storing")
	if err := w.books.SaveRegistry(ctx, job.BookID, registry.Snapshot()); err != nil {
		log.Error("save registry failed", "error", err)
		job.AddError(fmt.Sprintf("save registry: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}
	log.Info("analysis complete", "commands", registry.Len(), "errors", hadErrors)

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

// Blocks groups consecutive lines that share a page and monospace
// classification into extraction blocks.
func Blocks(lines []layout.Line, profile layout.Profile) []command.Block {
	var blocks []command.Block
	var buf []string
	var cur command.Block

	flush := func() {
		if len(buf) > 0 {
			cur.Text = strings.Join(buf, "\n")
			blocks = append(blocks, cur)
			buf = nil
		}
	}

	for _, ln := range lines {
		text := ln.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		mono := layout.Classify(ln, profile).Monospace
		if len(buf) > 0 && (mono != cur.Mono || ln.Page != cur.Page) {
			flush()
		}
		if len(buf) == 0 {
			cur = command.Block{Mono: mono, Page: ln.Page}
		}
		buf = append(buf, text)
	}
	flush()
	return blocks
}

// joinText flattens lines into the cached chapter text.
func joinText(lines []layout.Line) string {
	parts := make([]string, 0, len(lines))
	for _, ln := range lines {
		parts = append(parts, ln.Text())
	}
	return strings.Join(parts, "\n")
}

package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/booksage/booksage/internal/command"
	"github.com/booksage/booksage/internal/config"
	"github.com/booksage/booksage/internal/store"
)

func testConfig(queueSize int) config.Config {
	return config.Config{
		WorkerCount:     1,
		MaxQueueSize:    queueSize,
		MaxOutlineLevel: 2,
		JobTTL:          time.Hour,
	}
}

// kvFake is a minimal in-memory stand-in for the KV service.
type kvFake struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func newKVFake() (*kvFake, *httptest.Server) {
	f := &kvFake{data: make(map[string]json.RawMessage)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/kv/")
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			var req struct {
				Value json.RawMessage `json:"value"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			f.data[key] = req.Value
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			v, ok := f.data[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"key_path": key, "value": v})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	return f, srv
}

const testBook = `# Getting Started

The terminal awaits. Run ` + "`ls -la`" + ` to look around.

# Working With Files

Copy things using ` + "`cp -r src dst`" + `, and ls still works here.

    $ tar -xvf archive.tar
`

func TestWorkerProcessMarkdownBook(t *testing.T) {
	_, srv := newKVFake()
	defer srv.Close()
	client := store.NewClient(srv.URL, "k")
	defer client.Close()
	books := store.NewBooks(client)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWorker(books, log, 2)

	job := &Job{
		ID:        "job-1",
		BookID:    store.BookID("book.md"),
		Filename:  "book.md",
		Status:    StatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	job.SetFileData([]byte(testBook))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("job status = %q (errors: %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.TotalChapters != 2 {
		t.Fatalf("total chapters = %d, want 2", snap.Progress.TotalChapters)
	}

	ctx := context.Background()
	rec, err := books.LoadChapters(ctx, job.BookID)
	if err != nil {
		t.Fatalf("LoadChapters: %v", err)
	}
	if len(rec.Chapters) != 2 || rec.Chapters[0].Title != "Getting Started" {
		t.Errorf("chapters = %+v", rec.Chapters)
	}

	text, err := books.LoadChapterText(ctx, job.BookID, 1)
	if err != nil {
		t.Fatalf("LoadChapterText: %v", err)
	}
	if !strings.Contains(text, "Working With Files") {
		t.Errorf("chapter 1 text = %q", text)
	}

	snapReg, err := books.LoadRegistry(ctx, job.BookID)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	reg := command.FromSnapshot(snapReg)

	if e, ok := reg.Info("ls"); !ok || e.FirstChapter != 0 {
		t.Errorf("ls entry = %+v, %v", e, ok)
	}
	if e, ok := reg.Info("cp"); !ok || e.FirstChapter != 1 {
		t.Errorf("cp entry = %+v, %v", e, ok)
	}
	if e, ok := reg.Info("tar"); !ok || !e.FlagsByChapter[1]["-xvf"] {
		t.Errorf("tar entry = %+v, %v", e, ok)
	}
	if got := reg.NewInChapter(1); len(got) < 2 {
		t.Errorf("NewInChapter(1) = %v", got)
	}
}

func TestWorkerProcessUnsupportedFile(t *testing.T) {
	_, srv := newKVFake()
	defer srv.Close()
	client := store.NewClient(srv.URL, "k")
	defer client.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWorker(store.NewBooks(client), log, 2)

	job := &Job{ID: "job-2", BookID: "x", Filename: "notes.xyz"}
	job.SetFileData([]byte("whatever"))
	w.Process(context.Background(), job)

	if job.Snapshot().Status != StatusFailed {
		t.Errorf("status = %q, want failed", job.Snapshot().Status)
	}
}

func TestOrchestratorSubmitAndQueueFull(t *testing.T) {
	_, srv := newKVFake()
	defer srv.Close()
	client := store.NewClient(srv.URL, "k")
	defer client.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := NewOrchestrator(testConfig(1), store.NewBooks(client), log)
	// Not started: jobs stay queued so the capacity-1 queue fills up.

	first := o.NewJob("a.md", []byte("# A"))
	if err := o.Submit(first); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if o.GetJob(first.ID) == nil {
		t.Fatal("submitted job not tracked")
	}
	if o.QueueDepth() != 1 {
		t.Errorf("queue depth = %d, want 1", o.QueueDepth())
	}

	second := o.NewJob("b.md", []byte("# B"))
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue-full error")
	}
	if second.Snapshot().Status != StatusFailed {
		t.Errorf("overflow job status = %q", second.Snapshot().Status)
	}
}

func TestOrchestratorProcessesSubmittedJob(t *testing.T) {
	_, srv := newKVFake()
	defer srv.Close()
	client := store.NewClient(srv.URL, "k")
	defer client.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := NewOrchestrator(testConfig(4), store.NewBooks(client), log)
	o.Start(context.Background())

	job := o.NewJob("book.md", []byte(testBook))
	if err := o.Submit(job); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		s := job.Snapshot().Status
		if s == StatusCompleted || s == StatusPartial || s == StatusFailed {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job stuck in status %q", s)
		case <-time.After(10 * time.Millisecond):
		}
	}
	o.Stop()

	if s := job.Snapshot().Status; s != StatusCompleted {
		t.Errorf("status = %q, want completed", s)
	}
}

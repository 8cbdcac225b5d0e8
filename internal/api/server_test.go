package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/booksage/booksage/internal/command"
	"github.com/booksage/booksage/internal/config"
	"github.com/booksage/booksage/internal/pipeline"
	"github.com/booksage/booksage/internal/segment"
	"github.com/booksage/booksage/internal/store"
	"github.com/booksage/booksage/internal/summarize"
)

const testAPIKey = "test-key"

// fakeLLM satisfies summarize.Completer without network calls.
type fakeLLM struct {
	mu       sync.Mutex
	calls    int
	response string
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.response, nil
}

func (f *fakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// kvFake implements enough of the KV service for the handlers: put, get,
// prefix list, and recursive delete.
type kvFake struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func (f *kvFake) handler(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/kv/")
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.Method == http.MethodPut:
		var req struct {
			Value json.RawMessage `json:"value"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		f.data[key] = req.Value
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodGet && strings.HasSuffix(key, "/*"):
		prefix := strings.TrimSuffix(key, "*")
		var nodes []map[string]any
		for k, v := range f.data {
			if strings.HasPrefix(k, prefix) {
				nodes = append(nodes, map[string]any{"key_path": k, "value": v})
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"nodes": nodes})
	case r.Method == http.MethodGet:
		v, ok := f.data[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"key_path": key, "value": v})
	case r.Method == http.MethodDelete:
		if r.URL.Query().Get("children") == "true" {
			for k := range f.data {
				if k == key || strings.HasPrefix(k, key+"/") {
					delete(f.data, k)
				}
			}
		} else {
			delete(f.data, key)
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type testEnv struct {
	srv   *httptest.Server
	books *store.Books
	llm   *fakeLLM
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake := &kvFake{data: make(map[string]json.RawMessage)}
	kvSrv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(kvSrv.Close)

	client := store.NewClient(kvSrv.URL, "k")
	t.Cleanup(func() { client.Close() })
	books := store.NewBooks(client)

	cfg := config.Config{
		BooksageAPIKey:  testAPIKey,
		WorkerCount:     1,
		MaxQueueSize:    4,
		MaxUploadBytes:  1 << 20,
		MaxOutlineLevel: 2,
		JobTTL:          time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, books, log)

	llm := &fakeLLM{response: "## [CMD] Shell Basics\n\nUse `ls -la` to list files."}
	summarizer := summarize.New(llm, summarize.Options{})

	server := NewServer(orch, summarizer, "test-model", log, cfg)
	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, books: books, llm: llm}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", data, err)
		}
	}
	return resp, decoded
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return e.do(t, method, path, bytes.NewReader(data), "application/json")
}

func seedBook(t *testing.T, e *testEnv, filename string) string {
	t.Helper()
	id := store.BookID(filename)
	rec := store.BookRecord{
		Filename: filename,
		Chapters: []segment.Chapter{
			{Title: "Getting Started", StartPage: 0, EndPage: 4, Level: 1},
			{Title: "Working With Files", StartPage: 5, EndPage: 9, Level: 1},
		},
	}
	if err := e.books.SaveChapters(context.Background(), id, rec); err != nil {
		t.Fatalf("seed chapters: %v", err)
	}
	return id
}

func TestHealthIsPublic(t *testing.T) {
	e := newTestEnv(t)
	resp, err := http.Get(e.srv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	resp, err := http.Get(e.srv.URL + "/api/books")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, e.srv.URL+"/api/books", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", resp.StatusCode)
	}
}

func multipartFile(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadQueuesJob(t *testing.T) {
	e := newTestEnv(t)
	body, ct := multipartFile(t, "guide.md", "# Chapter One\n\nHello.\n")

	resp, decoded := e.do(t, http.MethodPost, "/api/books", body, ct)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	jobID, _ := decoded["job_id"].(string)
	if jobID == "" {
		t.Fatal("missing job_id")
	}
	if decoded["book_id"] != store.BookID("guide.md") {
		t.Errorf("book_id = %v", decoded["book_id"])
	}
	if decoded["status"] != "queued" {
		t.Errorf("status = %v, want queued", decoded["status"])
	}

	resp, decoded = e.do(t, http.MethodGet, "/api/jobs/"+jobID, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("job status = %d, want 200", resp.StatusCode)
	}
	if decoded["status"] != "queued" {
		t.Errorf("job status = %v, want queued", decoded["status"])
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	e := newTestEnv(t)
	body, ct := multipartFile(t, "image.png", "not a book")

	resp, _ := e.do(t, http.MethodPost, "/api/books", body, ct)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestJobStatusNotFound(t *testing.T) {
	e := newTestEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/api/jobs/nope", nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListBooks(t *testing.T) {
	e := newTestEnv(t)
	seedBook(t, e, "linux-basics.pdf")

	resp, decoded := e.do(t, http.MethodGet, "/api/books", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	booksList, _ := decoded["books"].([]any)
	if len(booksList) != 1 {
		t.Fatalf("books = %v, want 1 entry", decoded["books"])
	}
	entry := booksList[0].(map[string]any)
	if entry["filename"] != "linux-basics.pdf" {
		t.Errorf("filename = %v", entry["filename"])
	}
	if entry["chapters"] != float64(2) {
		t.Errorf("chapters = %v, want 2", entry["chapters"])
	}
}

func TestChaptersAndPatch(t *testing.T) {
	e := newTestEnv(t)
	id := seedBook(t, e, "book.md")

	resp, decoded := e.do(t, http.MethodGet, "/api/books/"+id+"/chapters", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	chapters, _ := decoded["chapters"].([]any)
	if len(chapters) != 2 {
		t.Fatalf("chapters = %d, want 2", len(chapters))
	}

	resp, _ = e.doJSON(t, http.MethodPatch, "/api/books/"+id+"/chapters/1", map[string]any{
		"title":    "Files and Directories",
		"end_page": 11,
		"verified": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status = %d, want 200", resp.StatusCode)
	}

	rec, err := e.books.LoadChapters(context.Background(), id)
	if err != nil {
		t.Fatalf("load chapters: %v", err)
	}
	ch := rec.Chapters[1]
	if ch.Title != "Files and Directories" || ch.EndPage != 11 || !ch.Verified {
		t.Errorf("chapter after patch = %+v", ch)
	}
	// Untouched fields survive.
	if ch.StartPage != 5 {
		t.Errorf("start_page = %d, want 5", ch.StartPage)
	}
}

func TestPatchChapterRejectsInvertedRange(t *testing.T) {
	e := newTestEnv(t)
	id := seedBook(t, e, "book.md")

	resp, _ := e.doJSON(t, http.MethodPatch, "/api/books/"+id+"/chapters/0", map[string]any{
		"end_page": -3,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestChaptersNotFound(t *testing.T) {
	e := newTestEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/api/books/deadbeef/chapters", nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func seedRegistry(t *testing.T, e *testEnv, id string) {
	t.Helper()
	reg := command.NewRegistry()
	reg.Register([]command.Extracted{
		{Command: "ls", Flags: []string{"-la"}},
		{Command: "grep", Flags: []string{"-r"}},
	}, 0, "Getting Started")
	reg.Register([]command.Extracted{
		{Command: "ls"},
		{Command: "tar", Flags: []string{"-xvf"}},
	}, 1, "Working With Files")
	if err := e.books.SaveRegistry(context.Background(), id, reg.Snapshot()); err != nil {
		t.Fatalf("seed registry: %v", err)
	}
}

func TestCommandQueries(t *testing.T) {
	e := newTestEnv(t)
	id := seedBook(t, e, "book.md")
	seedRegistry(t, e, id)

	resp, decoded := e.do(t, http.MethodGet, "/api/books/"+id+"/commands", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if decoded["total"] != float64(3) {
		t.Errorf("total = %v, want 3", decoded["total"])
	}

	resp, decoded = e.do(t, http.MethodGet, "/api/books/"+id+"/commands/ls", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("info status = %d, want 200", resp.StatusCode)
	}
	info := decoded["info"].(map[string]any)
	if info["first_chapter"] != float64(0) {
		t.Errorf("first_chapter = %v, want 0", info["first_chapter"])
	}

	resp, _ = e.do(t, http.MethodGet, "/api/books/"+id+"/commands/rsync", nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown command status = %d, want 404", resp.StatusCode)
	}
}

func TestChapterCommands(t *testing.T) {
	e := newTestEnv(t)
	id := seedBook(t, e, "book.md")
	seedRegistry(t, e, id)

	resp, decoded := e.do(t, http.MethodGet, "/api/books/"+id+"/chapters/1/commands", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	newCmds, _ := decoded["new"].([]any)
	if len(newCmds) != 1 || newCmds[0] != "tar" {
		t.Errorf("new = %v, want [tar]", decoded["new"])
	}
	all, _ := decoded["all"].([]any)
	if len(all) != 2 {
		t.Errorf("all = %v, want [ls tar]", decoded["all"])
	}
}

func TestExtractEndpoint(t *testing.T) {
	e := newTestEnv(t)
	resp, decoded := e.doJSON(t, http.MethodPost, "/api/extract", map[string]any{
		"text": "Run `sudo apt-get -y install curl` to get started.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	// apt-get from the backticked fragment, sudo and curl as lexicon
	// mentions in the surrounding text.
	cmds, _ := decoded["commands"].([]any)
	if len(cmds) != 3 {
		t.Fatalf("commands = %v, want 3 entries", decoded["commands"])
	}
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.(map[string]any)["command"].(string)] = true
	}
	for _, want := range []string{"apt-get", "curl", "sudo"} {
		if !names[want] {
			t.Errorf("missing command %q in %v", want, names)
		}
	}
}

func TestClassifyEndpoint(t *testing.T) {
	e := newTestEnv(t)
	summary := "## [CMD] Shell Commands\n\nUse the terminal.\n\n## [NET] Networking\n\nPorts and sockets."
	resp, decoded := e.doJSON(t, http.MethodPost, "/api/classify", map[string]any{
		"summary": summary,
		"tags":    []string{"NET"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	sections, _ := decoded["sections"].([]any)
	if len(sections) != 1 {
		t.Fatalf("sections = %v, want 1 after filter", decoded["sections"])
	}
	tags, _ := decoded["active_tags"].([]any)
	if len(tags) != 2 {
		t.Errorf("active_tags = %v, want both tags", decoded["active_tags"])
	}
	md, _ := decoded["markdown"].(string)
	if !strings.Contains(md, "[NET]") || strings.Contains(md, "[CMD]") {
		t.Errorf("markdown = %q", md)
	}
}

func TestSummaryCachesPerDepth(t *testing.T) {
	e := newTestEnv(t)
	id := seedBook(t, e, "book.md")
	if err := e.books.SaveChapterText(context.Background(), id, 0, "The shell is where it all happens."); err != nil {
		t.Fatalf("seed text: %v", err)
	}

	path := "/api/books/" + id + "/chapters/0/summary"
	resp, decoded := e.doJSON(t, http.MethodPost, path, map[string]any{"depth": "brief"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if decoded["cached"] != false {
		t.Errorf("cached = %v, want false on first call", decoded["cached"])
	}
	tags, _ := decoded["active_tags"].([]any)
	if len(tags) != 1 || tags[0] != "CMD" {
		t.Errorf("active_tags = %v, want [CMD]", decoded["active_tags"])
	}
	if e.llm.Calls() != 1 {
		t.Fatalf("llm calls = %d, want 1", e.llm.Calls())
	}

	// Second identical request comes from the cache.
	resp, decoded = e.doJSON(t, http.MethodPost, path, map[string]any{"depth": "brief"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if decoded["cached"] != true {
		t.Errorf("cached = %v, want true on repeat", decoded["cached"])
	}
	if e.llm.Calls() != 1 {
		t.Errorf("llm calls = %d, want 1 after cache hit", e.llm.Calls())
	}

	// A different depth misses the cache.
	resp, _ = e.doJSON(t, http.MethodPost, path, map[string]any{"depth": "detailed"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if e.llm.Calls() != 2 {
		t.Errorf("llm calls = %d, want 2 after depth change", e.llm.Calls())
	}

	// Force bypasses the cache.
	resp, _ = e.doJSON(t, http.MethodPost, path, map[string]any{"depth": "brief", "force": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if e.llm.Calls() != 3 {
		t.Errorf("llm calls = %d, want 3 after force", e.llm.Calls())
	}
}

func TestSummaryMissingText(t *testing.T) {
	e := newTestEnv(t)
	id := seedBook(t, e, "book.md")

	resp, _ := e.doJSON(t, http.MethodPost, "/api/books/"+id+"/chapters/0/summary", map[string]any{"depth": "brief"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestQuestionEndpoint(t *testing.T) {
	e := newTestEnv(t)
	id := seedBook(t, e, "book.md")
	if err := e.books.SaveChapterText(context.Background(), id, 1, "cp copies files, mv moves them."); err != nil {
		t.Fatalf("seed text: %v", err)
	}
	e.llm.response = "Use cp to copy."

	resp, decoded := e.doJSON(t, http.MethodPost, "/api/books/"+id+"/chapters/1/question", map[string]any{
		"question": "How do I copy a file?",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if decoded["answer"] != "Use cp to copy." {
		t.Errorf("answer = %v", decoded["answer"])
	}
}

func TestDeleteBook(t *testing.T) {
	e := newTestEnv(t)
	id := seedBook(t, e, "book.md")
	seedRegistry(t, e, id)

	resp, _ := e.do(t, http.MethodDelete, "/api/books/"+id, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodGet, "/api/books/"+id+"/chapters", nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("chapters after delete = %d, want 404", resp.StatusCode)
	}
}

func TestLLMStats(t *testing.T) {
	e := newTestEnv(t)
	resp, decoded := e.do(t, http.MethodGet, "/api/stats/llm", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if decoded["model"] != "test-model" {
		t.Errorf("model = %v, want test-model", decoded["model"])
	}
	if _, ok := decoded["stats"].(map[string]any); !ok {
		t.Errorf("stats = %v, want object", decoded["stats"])
	}
}

package summarize

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeLLM struct {
	mu       sync.Mutex
	calls    []string
	systems  []string
	response func(user string) (string, error)
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, user)
	f.systems = append(f.systems, system)
	f.mu.Unlock()
	if f.response != nil {
		return f.response(user)
	}
	return "## [OVERVIEW] Summary\n\n- point", nil
}

func TestSummarizeSingleChunk(t *testing.T) {
	llm := &fakeLLM{}
	s := New(llm, Options{})

	out, err := s.Summarize(context.Background(), "The Shell", "Short chapter text.", DepthBrief, "", true)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if out == "" {
		t.Fatal("empty summary")
	}
	if len(llm.calls) != 1 {
		t.Fatalf("made %d calls, want 1", len(llm.calls))
	}
	user := llm.calls[0]
	if !strings.Contains(user, "BRIEF") {
		t.Error("depth instruction missing from prompt")
	}
	if !strings.Contains(user, "**The Shell**") {
		t.Error("chapter title missing from prompt")
	}
	if !strings.Contains(llm.systems[0], "[CMD]") {
		t.Error("category tag instruction missing from system prompt")
	}
}

func TestSummarizeWithoutCategories(t *testing.T) {
	llm := &fakeLLM{}
	s := New(llm, Options{})
	if _, err := s.Summarize(context.Background(), "", "text", DepthStandard, "", false); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if strings.Contains(llm.systems[0], "[CMD]") {
		t.Error("category instruction present despite categorize=false")
	}
}

func TestSummarizeChunksAndCombines(t *testing.T) {
	llm := &fakeLLM{response: func(user string) (string, error) {
		if strings.Contains(user, "consecutive parts") {
			return "combined summary", nil
		}
		return "part summary", nil
	}}
	s := New(llm, Options{ChunkChars: 100})

	para := strings.Repeat("Sentence about shells. ", 10) // ~230 chars
	text := para + "\n\n" + para + "\n\n" + para
	out, err := s.Summarize(context.Background(), "Long Chapter", text, DepthStandard, "", true)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if out != "combined summary" {
		t.Errorf("out = %q, want the combine-pass result", out)
	}
	if len(llm.calls) < 3 {
		t.Fatalf("made %d calls, want at least 2 parts + combine", len(llm.calls))
	}
	last := llm.calls[len(llm.calls)-1]
	if !strings.Contains(last, "Part 1 of") {
		t.Error("combine prompt missing part summaries")
	}
}

func TestSummarizeEmptyText(t *testing.T) {
	s := New(&fakeLLM{}, Options{})
	if _, err := s.Summarize(context.Background(), "t", "   ", DepthBrief, "", true); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestCompleteRetriesTransientErrors(t *testing.T) {
	var n int
	llm := &fakeLLM{response: func(string) (string, error) {
		n++
		if n < 3 {
			return "", &RetryableError{StatusCode: 529, Message: "overloaded"}
		}
		return "ok", nil
	}}
	s := New(llm, Options{})

	out, err := s.Ask(context.Background(), "t", "text", "q?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if out != "ok" || n != 3 {
		t.Errorf("out = %q after %d attempts", out, n)
	}
	if s.Stats().Snapshot().Count != 3 {
		t.Errorf("stats recorded %d samples, want 3", s.Stats().Snapshot().Count)
	}
}

func TestCompleteDoesNotRetryPermanentErrors(t *testing.T) {
	var n int
	llm := &fakeLLM{response: func(string) (string, error) {
		n++
		return "", errors.New("invalid api key")
	}}
	s := New(llm, Options{})
	if _, err := s.Ask(context.Background(), "t", "text", "q?"); err == nil {
		t.Fatal("expected error")
	}
	if n != 1 {
		t.Errorf("made %d attempts, want 1", n)
	}
}

func TestParseDepth(t *testing.T) {
	cases := []struct {
		in   string
		want Depth
		ok   bool
	}{
		{"", DepthStandard, true},
		{"brief", DepthBrief, true},
		{"COMPREHENSIVE", DepthComprehensive, true},
		{"medium", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDepth(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Errorf("ParseDepth(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestSplitChunks(t *testing.T) {
	if got := SplitChunks("short", 100); len(got) != 1 || got[0] != "short" {
		t.Errorf("short text = %v", got)
	}
	if got := SplitChunks("  ", 100); got != nil {
		t.Errorf("blank text = %v", got)
	}

	para := strings.Repeat("word ", 30) // ~150 chars
	text := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)
	chunks := SplitChunks(text, 200)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %v", len(chunks), chunks)
	}
	for _, c := range chunks {
		if len(c) > 200 {
			t.Errorf("chunk exceeds limit: %d chars", len(c))
		}
	}

	// One giant paragraph falls back to sentence splitting.
	giant := strings.Repeat("A sentence here. ", 40)
	chunks = SplitChunks(giant, 100)
	if len(chunks) < 2 {
		t.Fatalf("giant paragraph produced %d chunks", len(chunks))
	}
}

func TestStatsSnapshot(t *testing.T) {
	s := NewStats(time.Hour)
	if got := s.Snapshot(); got.Count != 0 {
		t.Errorf("empty snapshot = %+v", got)
	}
	for _, ms := range []int64{10, 20, 30, 40} {
		s.Record(time.Duration(ms) * time.Millisecond)
	}
	snap := s.Snapshot()
	if snap.Count != 4 || snap.MinMs != 10 || snap.MaxMs != 40 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.AvgMs != 25 {
		t.Errorf("avg = %v, want 25", snap.AvgMs)
	}
	if snap.P50Ms != 25 {
		t.Errorf("p50 = %v, want 25", snap.P50Ms)
	}
}

func TestStatsWindowPrunes(t *testing.T) {
	s := NewStats(time.Millisecond)
	s.Record(5 * time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if got := s.Snapshot(); got.Count != 0 {
		t.Errorf("expired sample survived: %+v", got)
	}
}

package summarize

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const (
	summaryMaxTokens  = 8192
	questionMaxTokens = 4096
	maxAttempts       = 3
)

// Options tunes a Summarizer. Zero values get defaults.
type Options struct {
	ChunkChars int
	Stats      *Stats
}

// Summarizer turns chapter text into category-tagged Markdown summaries.
type Summarizer struct {
	llm        Completer
	stats      *Stats
	chunkChars int
}

func New(llm Completer, opts Options) *Summarizer {
	if opts.ChunkChars <= 0 {
		opts.ChunkChars = DefaultChunkChars
	}
	if opts.Stats == nil {
		opts.Stats = NewStats(time.Hour)
	}
	return &Summarizer{
		llm:        llm,
		stats:      opts.Stats,
		chunkChars: opts.ChunkChars,
	}
}

// Stats exposes the latency tracker for the stats endpoint.
func (s *Summarizer) Stats() *Stats {
	return s.stats
}

// Summarize produces a Markdown summary of chapter text at the given
// depth. Long chapters are summarized in parts and merged in a final
// pass. Category tags in headings are requested unless categorize is
// false.
func (s *Summarizer) Summarize(ctx context.Context, title, text string, depth Depth, custom string, categorize bool) (string, error) {
	chunks := SplitChunks(text, s.chunkChars)
	if len(chunks) == 0 {
		return "", errors.New("nothing to summarize")
	}

	system := summarySystemPrompt(categorize)
	if len(chunks) == 1 {
		return s.complete(ctx, system, summaryUserPrompt(title, depth, custom, chunks[0]), summaryMaxTokens)
	}

	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		partTitle := fmt.Sprintf("%s (part %d of %d)", title, i+1, len(chunks))
		part, err := s.complete(ctx, system, summaryUserPrompt(partTitle, depth, custom, chunk), summaryMaxTokens)
		if err != nil {
			return "", fmt.Errorf("summarize part %d: %w", i+1, err)
		}
		parts[i] = part
	}
	return s.complete(ctx, system, combineUserPrompt(title, depth, parts), summaryMaxTokens)
}

// Ask answers a question grounded in the chapter text.
func (s *Summarizer) Ask(ctx context.Context, title, text, question string) (string, error) {
	return s.complete(ctx, questionSystem, questionUserPrompt(title, text, question), questionMaxTokens)
}

// complete calls the LLM, recording latency and retrying transient
// failures with jittered backoff.
func (s *Summarizer) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff(attempt - 1)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		start := time.Now()
		out, err := s.llm.Complete(ctx, system, user, maxTokens)
		s.stats.Record(time.Since(start))
		if err == nil {
			return out, nil
		}
		lastErr = err
		var retryErr *RetryableError
		if !errors.As(err, &retryErr) {
			return "", err
		}
	}
	return "", fmt.Errorf("llm call failed after %d attempts: %w", maxAttempts, lastErr)
}

// backoff returns a duration for attempt n (0-indexed) with jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	return base + time.Duration(rand.Int63n(int64(base)/2))
}

package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/booksage/booksage/internal/command"
	"github.com/booksage/booksage/internal/segment"
)

// BookID derives a stable store key from a filename.
func BookID(filename string) string {
	sum := sha256.Sum256([]byte(filename))
	return hex.EncodeToString(sum[:])[:12]
}

// BookRecord is the persisted chapter structure of one book.
type BookRecord struct {
	Filename string            `json:"filename"`
	Chapters []segment.Chapter `json:"chapters"`
}

// Listing is one entry of the book library.
type Listing struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Chapters int    `json:"chapters"`
}

// Books wraps the KV client with the key layout used for book data:
//
//	books/{id}/chapters            chapter structure + filename
//	books/{id}/commands            command registry snapshot
//	books/{id}/text/{n}            cached chapter text
//	books/{id}/summary/{n}/{depth} cached summaries
type Books struct {
	kv *Client
}

func NewBooks(kv *Client) *Books {
	return &Books{kv: kv}
}

func (b *Books) SaveChapters(ctx context.Context, id string, rec BookRecord) error {
	return b.kv.Put(ctx, "books/"+id+"/chapters", rec)
}

func (b *Books) LoadChapters(ctx context.Context, id string) (BookRecord, error) {
	var rec BookRecord
	err := b.kv.Get(ctx, "books/"+id+"/chapters", &rec)
	return rec, err
}

func (b *Books) SaveRegistry(ctx context.Context, id string, snap command.Snapshot) error {
	return b.kv.Put(ctx, "books/"+id+"/commands", snap)
}

func (b *Books) LoadRegistry(ctx context.Context, id string) (command.Snapshot, error) {
	var snap command.Snapshot
	err := b.kv.Get(ctx, "books/"+id+"/commands", &snap)
	return snap, err
}

func (b *Books) SaveChapterText(ctx context.Context, id string, chapter int, text string) error {
	return b.kv.Put(ctx, fmt.Sprintf("books/%s/text/%d", id, chapter), text)
}

func (b *Books) LoadChapterText(ctx context.Context, id string, chapter int) (string, error) {
	var text string
	err := b.kv.Get(ctx, fmt.Sprintf("books/%s/text/%d", id, chapter), &text)
	return text, err
}

func (b *Books) SaveSummary(ctx context.Context, id string, chapter int, depth, summary string) error {
	return b.kv.Put(ctx, fmt.Sprintf("books/%s/summary/%d/%s", id, chapter, depth), summary)
}

func (b *Books) LoadSummary(ctx context.Context, id string, chapter int, depth string) (string, error) {
	var summary string
	err := b.kv.Get(ctx, fmt.Sprintf("books/%s/summary/%d/%s", id, chapter, depth), &summary)
	return summary, err
}

// ListBooks scans the library and returns one listing per stored book,
// sorted by filename. Nodes that are not chapter records are skipped.
func (b *Books) ListBooks(ctx context.Context) ([]Listing, error) {
	nodes, err := b.kv.List(ctx, "books", 0)
	if err != nil {
		return nil, err
	}
	var out []Listing
	for _, n := range nodes {
		parts := strings.Split(n.Key, "/")
		if len(parts) != 3 || parts[0] != "books" || parts[2] != "chapters" {
			continue
		}
		var rec BookRecord
		if err := json.Unmarshal(n.Value, &rec); err != nil {
			continue
		}
		out = append(out, Listing{
			ID:       parts[1],
			Filename: rec.Filename,
			Chapters: len(rec.Chapters),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

// DeleteBook removes everything stored for a book.
func (b *Books) DeleteBook(ctx context.Context, id string) error {
	return b.kv.Delete(ctx, "books/"+id, true)
}

// Package segment infers chapter and section boundaries for a paged
// document, either from table-of-contents metadata or from font-size
// statistics and textual patterns when no outline exists.
package segment

// Chapter is a contiguous page range of the document. Page indices are
// 0-based and inclusive; EndPage is never below StartPage.
type Chapter struct {
	Title     string `json:"title"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
	Level     int    `json:"level"`
	Verified  bool   `json:"verified"`
}

// Section is a heading-delimited slice of a chapter. Ephemeral: recomputed
// from the chapter's line stream, never persisted on its own.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Page  int    `json:"page"`
}

// OutlineEntry is one externally supplied table-of-contents row. Page is
// 1-based, as outline metadata conventionally is.
type OutlineEntry struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// DefaultMaxLevel is the outline depth retained by default: top-level
// chapters plus one level of sections.
const DefaultMaxLevel = 2

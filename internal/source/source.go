// Package source turns document bytes into font-attributed lines for
// layout analysis. PDF input carries real font metrics; markup formats
// (Markdown, HTML, DOCX) get synthetic metrics derived from their
// structure so the same downstream pipeline applies.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/booksage/booksage/internal/layout"
	"github.com/booksage/booksage/internal/segment"
)

// Source is a parsed document ready for layout analysis. Pages are
// 0-based; markup formats use virtual pages, one per top-level heading.
type Source interface {
	PageCount() int
	// Outline returns embedded structure with 1-based pages, or nil
	// when the format carries none.
	Outline() []segment.OutlineEntry
	// Lines returns the lines on pages start..end inclusive (0-based).
	Lines(start, end int) []layout.Line
	Close() error
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// Open parses r into a Source, picking the format from the filename.
func Open(r io.Reader, filename string) (Source, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return openPDF(r)
	case ".md", ".markdown":
		return openMarkdown(r)
	case ".html", ".htm":
		return openHTML(r)
	case ".docx":
		return openDOCX(r)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// IsSupported checks if a file extension is supported.
func IsSupported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Synthetic metrics for markup formats: body text sits at 10pt and each
// heading level clears the heading thresholds over it, so the layout
// heuristics behave the same as on a real PDF.
const (
	bodyFontName = "Georgia"
	bodyFontSize = 10
	headingFont  = "Georgia-Bold"
	codeFontName = "Courier"
	codeFontSize = 9.5
)

var headingSizes = [...]float64{18, 15, 13, 12, 11.5, 11}

func headingSize(level int) float64 {
	if level < 1 || level > len(headingSizes) {
		return bodyFontSize
	}
	return headingSizes[level-1]
}

// document is the in-memory Source shared by every format. Parsing is
// eager, so Close has nothing to release.
type document struct {
	pages   int
	outline []segment.OutlineEntry
	lines   []layout.Line
}

func (d *document) PageCount() int                  { return d.pages }
func (d *document) Outline() []segment.OutlineEntry { return d.outline }
func (d *document) Close() error                    { return nil }

func (d *document) Lines(start, end int) []layout.Line {
	var out []layout.Line
	for _, ln := range d.lines {
		if ln.Page >= start && ln.Page <= end {
			out = append(out, ln)
		}
	}
	return out
}

// docBuilder accumulates lines for markup formats, starting a new
// virtual page at every top-level heading.
type docBuilder struct {
	doc  document
	page int
}

func newDocBuilder() *docBuilder {
	return &docBuilder{doc: document{pages: 1}}
}

func (b *docBuilder) heading(level int, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if level == 1 && len(b.doc.lines) > 0 {
		b.page++
		b.doc.pages = b.page + 1
	}
	if level <= segment.DefaultMaxLevel {
		b.doc.outline = append(b.doc.outline, segment.OutlineEntry{
			Level: level,
			Title: text,
			Page:  b.page + 1,
		})
	}
	b.doc.lines = append(b.doc.lines,
		layout.NewLine(text, headingFont, headingSize(level), b.page))
}

func (b *docBuilder) body(text string) {
	b.text(text, bodyFontName, bodyFontSize)
}

func (b *docBuilder) code(text string) {
	b.text(text, codeFontName, codeFontSize)
}

func (b *docBuilder) text(text, font string, size float64) {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.doc.lines = append(b.doc.lines, layout.NewLine(line, font, size, b.page))
	}
}

func (b *docBuilder) build() *document {
	return &b.doc
}

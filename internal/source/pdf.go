package source

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/booksage/booksage/internal/layout"
)

// Vertical distance within which glyph runs count as the same line.
const lineYTolerance = 2.0

// openPDF extracts font-attributed lines from a PDF. Glyph runs are
// regrouped into reading-order lines by their Y coordinate, with runs
// sharing font and size merged into a single span. PDF outlines are not
// reported: the library exposes no page targets for outline items, so
// structure comes from an external outline or the font heuristics.
func openPDF(r io.Reader) (Source, error) {
	// The PDF reader needs a ReadSeeker+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "booksage-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	doc := &document{pages: reader.NumPage()}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		doc.lines = append(doc.lines, pageLines(page.Content().Text, i-1)...)
	}
	return doc, nil
}

// pageLines groups one page's glyph runs into lines.
func pageLines(texts []pdflib.Text, page int) []layout.Line {
	if len(texts) == 0 {
		return nil
	}
	// Top of page first, then left to right.
	sorted := make([]pdflib.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(a, b int) bool {
		if math.Abs(sorted[a].Y-sorted[b].Y) > lineYTolerance {
			return sorted[a].Y > sorted[b].Y
		}
		return sorted[a].X < sorted[b].X
	})

	var lines []layout.Line
	var cur layout.Line
	curY := math.Inf(1)

	flush := func() {
		if len(cur.Spans) > 0 {
			lines = append(lines, cur)
		}
		cur = layout.Line{Page: page}
	}

	for _, t := range sorted {
		if math.Abs(t.Y-curY) > lineYTolerance {
			flush()
			curY = t.Y
		}
		n := len(cur.Spans)
		if n > 0 && cur.Spans[n-1].Font == t.Font && cur.Spans[n-1].Size == t.FontSize {
			cur.Spans[n-1].Text += t.S
			continue
		}
		cur.Spans = append(cur.Spans, layout.Span{
			Text: t.S,
			Font: t.Font,
			Size: t.FontSize,
		})
	}
	flush()
	return lines
}

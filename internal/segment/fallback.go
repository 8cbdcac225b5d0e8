package segment

import (
	"regexp"

	"github.com/booksage/booksage/internal/layout"
)

var (
	chapterPattern  = regexp.MustCompile(`(?i)^(chapter|part|section|unit)\s+\d+`)
	numberedPattern = regexp.MustCompile(`^\d+[.)]\s+\w+`)
)

// Size and length bounds for the numbered-heading fallback rule. Absolute
// rather than body-relative: this path runs before any profile exists.
const (
	fallbackMinSize = 16.0
	fallbackMaxLen  = 100
)

// Detect scans every line of the document for chapter boundaries when no
// outline exists. A line marks a chapter if it matches a chapter/part/
// section/unit prefix, or if it is large, short, and numbered like a
// heading. End pages are backfilled from the following chapter's start.
// Produces nil when nothing matches; the caller must then offer manual
// entry.
func Detect(lines []layout.Line, totalPages int) []Chapter {
	var chapters []Chapter
	for _, line := range lines {
		text := trimmed(line)
		if text == "" {
			continue
		}
		if !isChapterHeading(text, line.MaxSize()) {
			continue
		}
		chapters = append(chapters, Chapter{
			Title:     text,
			StartPage: line.Page,
			EndPage:   line.Page, // backfilled below
			Level:     1,
			Verified:  false,
		})
	}

	for i := range chapters {
		if i+1 < len(chapters) {
			chapters[i].EndPage = chapters[i+1].StartPage - 1
		} else {
			chapters[i].EndPage = totalPages - 1
		}
		if chapters[i].EndPage < chapters[i].StartPage {
			chapters[i].EndPage = chapters[i].StartPage
		}
	}
	return chapters
}

func isChapterHeading(text string, size float64) bool {
	if chapterPattern.MatchString(text) {
		return true
	}
	return size > fallbackMinSize && len(text) < fallbackMaxLen && numberedPattern.MatchString(text)
}

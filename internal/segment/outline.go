package segment

import "strings"

// FromOutline derives chapters from table-of-contents entries. Entries
// deeper than maxLevel are dropped. Each chapter runs from its own entry's
// page to just before the next retained entry at the same or a shallower
// level, or to the document's last page. Returns nil for an empty outline;
// callers should then fall back to Detect.
func FromOutline(outline []OutlineEntry, totalPages, maxLevel int) []Chapter {
	if len(outline) == 0 {
		return nil
	}
	if maxLevel <= 0 {
		maxLevel = DefaultMaxLevel
	}

	var retained []OutlineEntry
	for _, e := range outline {
		if e.Level <= maxLevel {
			retained = append(retained, e)
		}
	}

	chapters := make([]Chapter, 0, len(retained))
	for i, e := range retained {
		startPage := e.Page - 1

		endPage := totalPages - 1
		for j := i + 1; j < len(retained); j++ {
			if retained[j].Level <= e.Level {
				endPage = retained[j].Page - 2
				break
			}
		}
		if endPage < startPage {
			endPage = startPage
		}

		chapters = append(chapters, Chapter{
			Title:     strings.TrimSpace(e.Title),
			StartPage: startPage,
			EndPage:   endPage,
			Level:     e.Level,
			Verified:  false,
		})
	}
	return chapters
}

package segment

import (
	"strings"

	"github.com/booksage/booksage/internal/layout"
)

// minSectionBody is the trimmed body length below which a heading is
// treated as decorative rather than a true section.
const minSectionBody = 50

// SplitSections segments a chapter's line stream into sub-sections at
// heading candidates. With fewer than two headings the whole chapter is one
// section; bodies at or under minSectionBody chars are dropped; text before
// the first heading becomes an "Introduction" section when substantial.
func SplitSections(lines []layout.Line, th layout.Thresholds) []Section {
	if len(lines) == 0 {
		return nil
	}

	profile := layout.ComputeProfile(lines, th)
	if profile.BodySize == 0 {
		return []Section{wholeChapter(lines, "Full Chapter")}
	}

	var headings []int
	for i, line := range lines {
		if layout.Classify(line, profile).HeadingCandidate {
			headings = append(headings, i)
		}
	}

	if len(headings) < 2 {
		title := "Full Chapter"
		if len(headings) == 1 {
			title = trimmed(lines[headings[0]])
		}
		return []Section{wholeChapter(lines, title)}
	}

	var sections []Section
	for pos, h := range headings {
		end := len(lines)
		if pos+1 < len(headings) {
			end = headings[pos+1]
		}
		body := joinLines(lines[h+1 : end])
		if len(body) > minSectionBody {
			sections = append(sections, Section{
				Title: trimmed(lines[h]),
				Body:  body,
				Page:  lines[h].Page,
			})
		}
	}

	// Everything filtered out: the headings were decorative after all.
	if len(sections) == 0 {
		return []Section{wholeChapter(lines, "Full Chapter")}
	}

	if headings[0] > 0 {
		intro := joinLines(lines[:headings[0]])
		if len(intro) > minSectionBody {
			sections = append([]Section{{
				Title: "Introduction",
				Body:  intro,
				Page:  lines[0].Page,
			}}, sections...)
		}
	}

	return sections
}

func wholeChapter(lines []layout.Line, title string) Section {
	return Section{
		Title: title,
		Body:  joinLines(lines),
		Page:  lines[0].Page,
	}
}

func joinLines(lines []layout.Line) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if t := trimmed(line); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func trimmed(line layout.Line) string {
	return strings.TrimSpace(line.Text())
}

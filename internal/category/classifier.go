package category

import (
	"regexp"
	"strings"
)

// Section is one categorized slice of a summary. Content keeps the
// heading line so rebuilding the summary loses nothing.
type Section struct {
	Tag        string `json:"tag"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	RawHeading string `json:"raw_heading,omitempty"`
}

// Tagged headings look like "## [CMD] The ls Command".
var tagPattern = regexp.MustCompile(`^##\s+\[([A-Z]+)\]\s+(.+)$`)

const fallbackScanChars = 500

// Parse splits summary markdown into categorized sections. Level-two
// headings delimit sections; a leading chunk with no heading becomes an
// OVERVIEW "Introduction". Headings carrying a valid [TAG] are taken at
// their word, anything else goes through keyword scoring.
func Parse(summary string) []Section {
	var out []Section
	for _, chunk := range splitSections(summary) {
		text := strings.TrimSpace(chunk)
		if text == "" {
			continue
		}
		firstLine, _, _ := strings.Cut(text, "\n")
		firstLine = strings.TrimSpace(firstLine)

		if !strings.HasPrefix(firstLine, "## ") {
			out = append(out, Section{
				Tag:     "OVERVIEW",
				Title:   "Introduction",
				Content: text,
			})
			continue
		}

		var tag, title string
		if m := tagPattern.FindStringSubmatch(firstLine); m != nil {
			tag = m[1]
			title = strings.TrimSpace(m[2])
			if _, ok := byTag[tag]; !ok {
				tag = classify(title, text)
			}
		} else {
			title = strings.TrimSpace(firstLine[3:])
			tag = classify(title, text)
		}

		out = append(out, Section{
			Tag:        tag,
			Title:      title,
			Content:    text,
			RawHeading: firstLine,
		})
	}
	return out
}

// splitSections cuts the text before every line that begins a level-two
// heading. Deeper headings (###) stay inside their section.
func splitSections(text string) []string {
	lines := strings.Split(text, "\n")
	var chunks []string
	var cur []string
	for _, line := range lines {
		if strings.HasPrefix(line, "## ") && len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, "\n"))
			cur = cur[:0]
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, "\n"))
	}
	return chunks
}

// classify scores every category's keywords against the heading plus the
// leading slice of the body. Heading hits are worth triple (the heading
// text is scanned both in the combined text and on its own). Priority
// breaks ties only between categories that matched at least one keyword;
// with no hits at all the section is CONCEPT.
func classify(heading, content string) string {
	h := strings.ToLower(heading)
	body := strings.ToLower(content)
	if len(body) > fallbackScanChars {
		body = body[:fallbackScanChars]
	}
	search := h + " " + h + " " + body

	bestTag := "CONCEPT"
	bestScore := 0.0
	for _, cat := range Categories {
		hits := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(search, kw) {
				hits++
				if strings.Contains(h, kw) {
					hits += 2
				}
			}
		}
		if hits == 0 {
			continue
		}
		score := float64(hits) + float64(15-cat.Priority)*0.1
		if score > bestScore {
			bestScore = score
			bestTag = cat.Tag
		}
	}
	return bestTag
}

// ActiveTags returns the distinct tags present in sections, in first
// appearance order.
func ActiveTags(sections []Section) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range sections {
		if !seen[s.Tag] {
			seen[s.Tag] = true
			out = append(out, s.Tag)
		}
	}
	return out
}

// Filter keeps only sections whose tag is in selected. An empty
// selection keeps everything.
func Filter(sections []Section, selected []string) []Section {
	if len(selected) == 0 {
		return sections
	}
	want := make(map[string]bool, len(selected))
	for _, tag := range selected {
		want[tag] = true
	}
	var out []Section
	for _, s := range sections {
		if want[s.Tag] {
			out = append(out, s)
		}
	}
	return out
}

// Rebuild reassembles summary markdown from sections.
func Rebuild(sections []Section) string {
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.Content
	}
	return strings.Join(parts, "\n\n")
}

// TagPrompt builds the instruction block asking a summarizer to prefix
// every section heading with one of the category tags.
func TagPrompt() string {
	var b strings.Builder
	b.WriteString("IMPORTANT: Prefix EVERY `## ` heading with a category tag in square brackets. ")
	b.WriteString("Choose the most appropriate tag from this list:\n")
	for _, cat := range Categories {
		_, name, _ := strings.Cut(cat.Label, " ")
		b.WriteString("  - `[" + cat.Tag + "]` - " + name + "\n")
	}
	b.WriteString("\nExample headings:\n")
	b.WriteString("  ## [CMD] The `ls` Command - Listing Files\n")
	b.WriteString("  ## [CONCEPT] Understanding File Permissions\n")
	b.WriteString("  ## [SCRIPT] Writing a Backup Script\n")
	b.WriteString("  ## [IO] Pipes and Redirection\n")
	b.WriteString("  ## [OVERVIEW] Chapter Summary\n\n")
	b.WriteString("Every section MUST have exactly one tag. Pick the best fit.")
	return b.String()
}

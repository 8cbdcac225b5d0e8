package summarize

import "strings"

// DefaultChunkChars caps single-request text size. Chapters longer than
// this are summarized in parts and merged.
const DefaultChunkChars = 12000

// SplitChunks breaks text into pieces of at most maxChars, preferring
// paragraph boundaries and falling back to sentences when one paragraph
// alone exceeds the limit.
func SplitChunks(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultChunkChars
	}
	text = strings.TrimSpace(text)
	if len(text) <= maxChars {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}
	appendPart := func(part, sep string) {
		if cur.Len() > 0 && cur.Len()+len(sep)+len(part) > maxChars {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString(sep)
		}
		cur.WriteString(part)
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= maxChars {
			appendPart(para, "\n\n")
			continue
		}
		for _, sent := range splitSentences(para) {
			appendPart(sent, " ")
		}
	}
	flush()
	return chunks
}

// splitSentences does basic sentence splitting on terminal punctuation
// followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder
	for i, r := range text {
		cur.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

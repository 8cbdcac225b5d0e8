// Package layout computes font-usage statistics over positioned text spans
// and classifies individual lines as body, bold, monospace, or heading
// candidates. It operates purely on in-memory values supplied by a span
// source; it never touches the rendering backend.
package layout

import "strings"

// Span is a run of text sharing one font and size on one line.
type Span struct {
	Text string
	Font string
	Size float64
}

// Line is an ordered sequence of spans on one physical line.
type Line struct {
	Spans []Span
	Page  int // 0-based page index
}

// NewLine builds a single-span line. Convenience for sources and tests.
func NewLine(text, font string, size float64, page int) Line {
	return Line{Spans: []Span{{Text: text, Font: font, Size: size}}, Page: page}
}

// Text returns the concatenated span text.
func (l Line) Text() string {
	if len(l.Spans) == 1 {
		return l.Spans[0].Text
	}
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// MaxSize returns the largest font size among the line's spans.
func (l Line) MaxSize() float64 {
	var max float64
	for _, s := range l.Spans {
		if s.Size > max {
			max = s.Size
		}
	}
	return max
}

// Bold reports whether any span's font name carries a bold marker.
func (l Line) Bold() bool {
	for _, s := range l.Spans {
		if strings.Contains(strings.ToLower(s.Font), "bold") {
			return true
		}
	}
	return false
}

// Fonts returns the distinct font names used on the line, in span order.
func (l Line) Fonts() []string {
	seen := make(map[string]bool, len(l.Spans))
	var fonts []string
	for _, s := range l.Spans {
		if !seen[s.Font] {
			seen[s.Font] = true
			fonts = append(fonts, s.Font)
		}
	}
	return fonts
}

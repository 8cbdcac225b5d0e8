package layout

import "strings"

// Class is the per-line classification result.
type Class struct {
	Bold             bool
	Monospace        bool
	HeadingCandidate bool
}

// Classify decides bold/monospace/heading flags for one line against a
// profile. Each predicate is independent; any one firing is sufficient for
// its flag.
func Classify(line Line, p Profile) Class {
	text := strings.TrimSpace(line.Text())
	if text == "" {
		return Class{}
	}

	c := Class{Bold: line.Bold()}

	for _, span := range line.Spans {
		if IsMonoFont(span.Font) {
			c.Monospace = true
			break
		}
		if p.MinorityFonts[span.Font] && strings.TrimSpace(span.Text) != "" {
			c.Monospace = true
			break
		}
	}

	c.HeadingCandidate = isHeading(line, c.Bold, p)
	return c
}

// isHeading applies the three heading rules, ORed: clearly larger than
// body, bold and slightly larger, or much larger (chapter titles). All
// require a short line.
func isHeading(line Line, bold bool, p Profile) bool {
	if p.BodySize == 0 {
		return false
	}
	th := p.thresholds
	size := line.MaxSize()
	if len(line.Text()) >= th.MaxHeadingLen {
		return false
	}
	switch {
	case size > p.BodySize+th.HeadingMargin:
		return true
	case bold && size > p.BodySize+th.BoldHeadingMargin:
		return true
	case size > p.BodySize*th.HeadingRatio:
		return true
	}
	return false
}

package layout

import "strings"

// Substrings that identify well-known monospace / code fonts. Matching is
// case-insensitive and ignores spaces and hyphens.
var monoFontHints = []string{
	"mono", "courier", "consola", "menlo", "monaco", "inconsolata",
	"typewriter", "fixedsys", "firacode", "jetbrains", "pragmata",
	"lucidaconsole", "lucidasanstypewriter", "anonymous",
	"notomono", "robotomono", "ubuntumono", "ibmplexmono",
	"dejavusansmono", "droidsansmono", "sourcecode", "sourcecodepro",
	"cmu typewriter", "cmtt", "nimbusmono", "freemono", "tlwg mono",
	"go mono", "spacemono", "overpass mono", "oxygen mono",
	"pt mono", "share tech mono", "b612 mono",
}

// Thresholds are the tunable constants behind the font heuristics. The
// defaults are empirically chosen margins above the statistically dominant
// body text, not absolute values, so the same rules hold across documents
// with different base font sizes.
type Thresholds struct {
	// MinorityShare is the character-share ceiling below which a non-body
	// font counts as a minority (likely code) font.
	MinorityShare float64
	// MinSampleChars is the minimum total character count before the
	// minority-font heuristic applies at all.
	MinSampleChars int
	// HeadingMargin is the size delta over body text that alone marks a
	// heading candidate.
	HeadingMargin float64
	// BoldHeadingMargin is the smaller delta that suffices when the line
	// is bold.
	BoldHeadingMargin float64
	// HeadingRatio marks much-larger text (chapter titles) regardless of
	// boldness.
	HeadingRatio float64
	// MaxHeadingLen excludes long lines from heading candidacy.
	MaxHeadingLen int
	// MinVoteLen excludes short lines from body-size voting.
	MinVoteLen int
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinorityShare:     0.15,
		MinSampleChars:    100,
		HeadingMargin:     1.0,
		BoldHeadingMargin: 0.3,
		HeadingRatio:      1.3,
		MaxHeadingLen:     120,
		MinVoteLen:        10,
	}
}

// Profile summarizes font usage over a sampled range of lines.
type Profile struct {
	// CharsByFont maps font name to total non-whitespace character count.
	CharsByFont map[string]int
	// TotalChars is the sum over CharsByFont.
	TotalChars int
	// BodyFont is the font carrying the most characters.
	BodyFont string
	// BodyFontChars is BodyFont's character count.
	BodyFontChars int
	// BodySize is the dominant font size among lines long enough to vote.
	BodySize float64
	// MinorityFonts are fonts with a small character share whose base name
	// differs from the body font's. A proxy for code/command formatting
	// when explicit monospace names are unavailable.
	MinorityFonts map[string]bool

	thresholds Thresholds
}

// ComputeProfile builds a Profile from the given lines in a single pass.
// Character counts use trimmed span text; zero-length spans contribute
// nothing. Lines shorter than MinVoteLen do not vote on the body size.
func ComputeProfile(lines []Line, th Thresholds) Profile {
	p := Profile{
		CharsByFont:   make(map[string]int),
		MinorityFonts: make(map[string]bool),
		thresholds:    th,
	}

	sizeVotes := make(map[float64]int)
	for _, line := range lines {
		for _, span := range line.Spans {
			n := len(strings.TrimSpace(span.Text))
			if n == 0 {
				continue
			}
			p.CharsByFont[span.Font] += n
			p.TotalChars += n
		}
		if len(line.Text()) > th.MinVoteLen {
			sizeVotes[roundSize(line.MaxSize())]++
		}
	}

	for font, count := range p.CharsByFont {
		if count > p.BodyFontChars {
			p.BodyFont = font
			p.BodyFontChars = count
		}
	}

	var bestVotes int
	for size, votes := range sizeVotes {
		if votes > bestVotes || (votes == bestVotes && size < p.BodySize) {
			p.BodySize = size
			bestVotes = votes
		}
	}

	// Minority fonts are only meaningful with enough sample text; on short
	// excerpts the heuristic produces false positives.
	if p.TotalChars > th.MinSampleChars {
		bodyBase := stripVariant(p.BodyFont)
		for font, count := range p.CharsByFont {
			if font == p.BodyFont {
				continue
			}
			if float64(count)/float64(p.TotalChars) < th.MinorityShare && stripVariant(font) != bodyBase {
				p.MinorityFonts[font] = true
			}
		}
	}

	return p
}

// LowConfidence reports that the sample was too small for the minority-font
// heuristic to apply. Callers should surface this rather than silently
// trusting the classification.
func (p Profile) LowConfidence() bool {
	return p.TotalChars <= p.thresholds.MinSampleChars
}

// IsMonoFont reports whether a font name matches a known monospace font.
func IsMonoFont(name string) bool {
	flat := flatten(name)
	for _, hint := range monoFontHints {
		if strings.Contains(flat, flatten(hint)) {
			return true
		}
	}
	return false
}

// stripVariant lowercases a font name and removes bold/italic markers, so
// that style variants of the body font are not mistaken for code fonts.
func stripVariant(font string) string {
	s := strings.ToLower(font)
	s = strings.ReplaceAll(s, "bold", "")
	s = strings.ReplaceAll(s, "italic", "")
	return strings.Trim(s, " -,")
}

func flatten(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}

// roundSize normalizes sizes to one decimal so near-identical renderer
// outputs vote together.
func roundSize(size float64) float64 {
	return float64(int(size*10+0.5)) / 10
}

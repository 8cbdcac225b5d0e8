package command

import (
	"regexp"
	"sort"
	"strings"
)

// Block is a font-classified run of text handed over by the layout stage.
type Block struct {
	Text string
	Mono bool
	Page int
}

var (
	backtickPattern = regexp.MustCompile("`([^`]+)`")
	// Flag-shaped tokens. The leading group keeps hyphenated words like
	// "read-only" from matching mid-word; the flag itself is group 2.
	flagPattern = regexp.MustCompile(`(^|[^\w])(-{1,2}[a-zA-Z][\w-]*)`)
	wordPattern = regexp.MustCompile(`[a-zA-Z][\w.-]*`)
)

const (
	proseFlagWindow = 50 // chars after a prose mention scanned for flags
	proseContext    = 80 // chars of context kept on each side
	maxProseFlags   = 10
)

// FromText extracts commands from plain text using three independent
// passes: backtick fragments, prompt/indented code lines, and lexicon
// mentions in prose. Hits are unioned first-wins and sorted by name.
func FromText(text string) []Extracted {
	seen := make(map[string]bool)
	var out []Extracted

	add := func(e Extracted) {
		if !seen[e.Command] {
			seen[e.Command] = true
			out = append(out, e)
		}
	}

	// Pass 1: backtick-wrapped fragments like `ls -la`.
	for _, m := range backtickPattern.FindAllStringSubmatch(text, -1) {
		if e, ok := Parse(m[1]); ok {
			add(e)
		}
	}

	// Pass 2: shell-prompt and indented code lines.
	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		stripped := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(stripped, "$ ") || strings.HasPrefix(stripped, "# "):
			e, ok := Parse(stripped[2:])
			if !ok || seen[e.Command] {
				continue
			}
			start := max(0, i-1)
			end := min(len(lines), i+2)
			e.Context = strings.Join(lines[start:end], "\n")
			add(e)
		case (strings.HasPrefix(raw, "    ") || strings.HasPrefix(raw, "\t")) && stripped != "":
			first, _, _ := strings.Cut(stripped, " ")
			if Known(first) {
				if e, ok := Parse(stripped); ok {
					add(e)
				}
			}
		}
	}

	// Pass 3: lexicon commands mentioned in prose, first occurrence only.
	for name := range lexicon {
		if seen[name] {
			continue
		}
		idx := standaloneIndex(text, name)
		if idx < 0 {
			continue
		}
		after := text[idx+len(name):]
		if len(after) > proseFlagWindow {
			after = after[:proseFlagWindow]
		}
		var flags []string
		for _, m := range flagPattern.FindAllStringSubmatch(after, -1) {
			if len(m[2]) <= maxFlagLen {
				flags = append(flags, m[2])
			}
			if len(flags) == maxProseFlags {
				break
			}
		}
		start := max(0, idx-proseContext)
		end := min(len(text), idx+len(name)+proseContext)
		add(Extracted{
			Command: name,
			Flags:   flags,
			Context: strings.TrimSpace(text[start:end]),
			Page:    -1,
		})
	}

	sortByName(out)
	return out
}

// FromBlocks extracts commands from font-classified blocks. Monospace
// blocks are parsed line by line; prose blocks contribute only backtick
// fragments. All entries carry the block's page.
func FromBlocks(blocks []Block) []Extracted {
	seen := make(map[string]bool)
	var out []Extracted

	add := func(e Extracted, page int) {
		if !seen[e.Command] {
			seen[e.Command] = true
			e.Page = page
			out = append(out, e)
		}
	}

	for _, b := range blocks {
		if b.Mono {
			extractMonoBlock(b, seen, add)
			continue
		}
		for _, m := range backtickPattern.FindAllStringSubmatch(b.Text, -1) {
			if e, ok := Parse(m[1]); ok {
				add(e, b.Page)
			} else {
				// Partial parse failed: still catch lexicon words inside
				// the backticks.
				for _, w := range wordPattern.FindAllString(m[1], -1) {
					if Known(w) {
						add(Extracted{Command: w}, b.Page)
					}
				}
			}
		}
	}

	sortByName(out)
	return out
}

func extractMonoBlock(b Block, seen map[string]bool, add func(Extracted, int)) {
	trimmedBlock := strings.TrimSpace(b.Text)
	// A bare lexicon word rendered in code font is a command mention.
	if !strings.Contains(trimmedBlock, " ") && Known(trimmedBlock) {
		add(Extracted{Command: trimmedBlock}, b.Page)
	}

	for _, raw := range strings.Split(b.Text, "\n") {
		line := stripPrompt(strings.TrimSpace(raw))
		if line == "" {
			continue
		}
		if e, ok := Parse(line); ok {
			add(e, b.Page)
			continue
		}
		// Fall back to scanning identifier-shaped words against the
		// lexicon, scraping flags from the whole line.
		var flags []string
		for _, m := range flagPattern.FindAllStringSubmatch(line, -1) {
			if len(m[2]) <= maxFlagLen {
				flags = append(flags, m[2])
			}
		}
		for _, w := range wordPattern.FindAllString(line, -1) {
			if Known(w) {
				add(Extracted{Command: w, Flags: flags, Context: line}, b.Page)
			}
		}
	}
}

var promptPrefixes = []string{"$ ", "# ", "% ", "> "}

func stripPrompt(line string) string {
	for _, p := range promptPrefixes {
		if strings.HasPrefix(line, p) {
			return strings.TrimSpace(line[len(p):])
		}
	}
	return line
}

// standaloneIndex finds name as a whole word in text, or -1.
func standaloneIndex(text, name string) int {
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], name)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(name)
		beforeOK := i == 0 || !isWordByte(text[i-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return i
		}
		from = i + 1
	}
	return -1
}

func isWordByte(b byte) bool {
	return b == '_' || b == '-' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func sortByName(cmds []Extracted) {
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Command < cmds[j].Command })
}

package summarize

import (
	"fmt"
	"strings"

	"github.com/booksage/booksage/internal/category"
)

// Depth selects how much detail a summary carries.
type Depth string

const (
	DepthBrief         Depth = "brief"
	DepthStandard      Depth = "standard"
	DepthDetailed      Depth = "detailed"
	DepthComprehensive Depth = "comprehensive"
)

// ParseDepth validates a depth string, defaulting to standard when empty.
func ParseDepth(s string) (Depth, error) {
	switch Depth(strings.ToLower(s)) {
	case "":
		return DepthStandard, nil
	case DepthBrief:
		return DepthBrief, nil
	case DepthStandard:
		return DepthStandard, nil
	case DepthDetailed:
		return DepthDetailed, nil
	case DepthComprehensive:
		return DepthComprehensive, nil
	}
	return "", fmt.Errorf("unknown summary depth %q", s)
}

var depthPrompts = map[Depth]string{
	DepthBrief: "Provide a BRIEF summary with only the 3-5 most important key takeaways. " +
		"Keep it concise, one sentence per point.",
	DepthStandard: "Provide a STANDARD summary covering all main points with brief explanations. " +
		"Include key concepts, important terms, and notable examples. " +
		"Use bullet points organized by topic.",
	DepthDetailed: "Provide a DETAILED summary covering ALL main points AND supporting details. " +
		"Include: key concepts with explanations, important terms and definitions, " +
		"examples and use cases, any commands/syntax/code mentioned, and relationships " +
		"between concepts. Organize with clear headings and sub-bullets.",
	DepthComprehensive: "Provide an EXHAUSTIVE, COMPREHENSIVE summary that captures EVERYTHING in this text. " +
		"Include: every main point and sub-point, all definitions and explanations, " +
		"every example and use case mentioned, all commands/flags/syntax with descriptions, " +
		"tips/warnings/notes, relationships and comparisons between concepts, " +
		"and any practical advice given. Miss NOTHING, even small details matter. " +
		"Organize with clear headings, sub-headings, and nested bullet points.",
}

const assistantRole = "You are BookSage, an expert study assistant. Your job is to create " +
	"clear, well-organized summaries of book chapters that help students " +
	"learn and review material efficiently.\n\n" +
	"Format your response in clean Markdown with:\n" +
	"- Clear headings (##, ###)\n" +
	"- Bullet points for lists\n" +
	"- **Bold** for key terms and commands\n" +
	"- `code formatting` for commands, syntax, file paths\n" +
	"- Numbered lists for sequential steps or processes"

func summarySystemPrompt(categorize bool) string {
	if !categorize {
		return assistantRole
	}
	return assistantRole + "\n\n" + category.TagPrompt()
}

func summaryUserPrompt(title string, depth Depth, custom, text string) string {
	var sb strings.Builder
	sb.WriteString(depthPrompts[depth])
	sb.WriteString("\n\n")
	if title != "" {
		fmt.Fprintf(&sb, "Chapter: **%s**\n\n", title)
	}
	if custom != "" {
		fmt.Fprintf(&sb, "Additional instructions: %s\n\n", custom)
	}
	sb.WriteString("Text to summarize:\n\n")
	sb.WriteString(text)
	return sb.String()
}

func combineUserPrompt(title string, depth Depth, parts []string) string {
	var sb strings.Builder
	sb.WriteString("The following are summaries of consecutive parts of one chapter. ")
	sb.WriteString("Merge them into a single coherent summary, removing duplication ")
	sb.WriteString("and keeping the section structure. ")
	sb.WriteString(depthPrompts[depth])
	sb.WriteString("\n\n")
	if title != "" {
		fmt.Fprintf(&sb, "Chapter: **%s**\n\n", title)
	}
	for i, part := range parts {
		fmt.Fprintf(&sb, "--- Part %d of %d ---\n%s\n\n", i+1, len(parts), part)
	}
	return sb.String()
}

const questionSystem = "You are BookSage, an expert study assistant. Answer the user's question " +
	"based ONLY on the provided chapter text. If the answer isn't in the text, " +
	"say so clearly. Use Markdown formatting for clarity.\n" +
	"Cite specific parts of the text when possible."

func questionUserPrompt(title, text, question string) string {
	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "Chapter: **%s**\n\n", title)
	}
	fmt.Fprintf(&sb, "Chapter text:\n%s\n\n", text)
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}

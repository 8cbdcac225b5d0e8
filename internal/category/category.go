// Package category assigns topical categories to sections of a chapter
// summary. Sections carry either an explicit [TAG] in their heading or
// fall back to keyword scoring over the heading and body.
package category

// Category describes one content category: the tag used in headings,
// display strings, and the keywords driving fallback classification.
type Category struct {
	Tag      string
	Label    string
	Icon     string
	Keywords []string
	Priority int // lower wins on ambiguous matches
}

// Categories in tie-break order. The tag keys are what summaries embed
// in their headings, e.g. "## [CMD] The ls Command".
var Categories = []Category{
	{
		Tag:   "CMD",
		Label: "🖥️ Commands & Utilities",
		Icon:  "🖥️",
		Keywords: []string{
			"command", "utility", "flag", "option", "syntax",
			"usage", "the `", "arguments", "switches",
		},
		Priority: 1,
	},
	{
		Tag:   "SCRIPT",
		Label: "📜 Shell Scripting",
		Icon:  "📜",
		Keywords: []string{
			"script", "bash", "shell script", "shebang", "#!/",
			"loop", "for loop", "while loop", "if statement",
			"case statement", "function", "shell function",
			"control flow", "variable", "shell variable",
		},
		Priority: 2,
	},
	{
		Tag:   "PROG",
		Label: "🐍 Programming",
		Icon:  "🐍",
		Keywords: []string{
			"python", "program", "programming", "code", "class",
			"import", "module", "library", "api", "compile",
			"interpreter", "debug", "algorithm",
		},
		Priority: 3,
	},
	{
		Tag:   "FS",
		Label: "📁 File System",
		Icon:  "📁",
		Keywords: []string{
			"file", "directory", "folder", "path", "permission",
			"owner", "group", "link", "symlink", "mount", "inode",
			"filesystem", "file system", "rwx", "chmod", "chown",
		},
		Priority: 4,
	},
	{
		Tag:   "NET",
		Label: "🌐 Networking",
		Icon:  "🌐",
		Keywords: []string{
			"network", "ip address", "port", "socket", "http",
			"ssh", "dns", "tcp", "udp", "firewall", "protocol",
			"remote", "download", "upload", "url", "ftp",
		},
		Priority: 5,
	},
	{
		Tag:   "SYS",
		Label: "⚙️ System Admin",
		Icon:  "⚙️",
		Keywords: []string{
			"process", "service", "daemon", "systemd", "cron",
			"user account", "package", "install", "boot", "kernel",
			"system", "admin", "root", "sudo",
			"scheduling", "startup", "environment",
		},
		Priority: 6,
	},
	{
		Tag:   "IO",
		Label: "🔄 I/O & Redirection",
		Icon:  "🔄",
		Keywords: []string{
			"redirect", "pipe", "stdin", "stdout", "stderr",
			"input", "output", "stream", "tee", "> ", ">>",
			"piping", "redirection", "standard input",
			"standard output", "standard error",
		},
		Priority: 7,
	},
	{
		Tag:   "TEXT",
		Label: "📝 Text Processing",
		Icon:  "📝",
		Keywords: []string{
			"regex", "regular expression", "pattern matching",
			"sed", "awk", "grep", "text processing", "filter",
			"sort", "string", "search", "replace", "transform",
		},
		Priority: 8,
	},
	{
		Tag:   "EXAMPLE",
		Label: "📋 Examples",
		Icon:  "📋",
		Keywords: []string{
			"example", "demonstration", "practice", "exercise",
			"walkthrough", "step-by-step", "tutorial", "hands-on",
			"try this", "let's",
		},
		Priority: 9,
	},
	{
		Tag:   "TIP",
		Label: "💎 Tips & Notes",
		Icon:  "💎",
		Keywords: []string{
			"tip", "trick", "best practice", "warning", "caution",
			"note", "remember", "important", "gotcha", "common mistake",
			"pro tip", "avoid",
		},
		Priority: 10,
	},
	{
		Tag:   "CONCEPT",
		Label: "💡 Concepts & Theory",
		Icon:  "💡",
		Keywords: []string{
			"concept", "theory", "overview", "introduction",
			"understanding", "what is", "definition", "principle",
			"architecture", "design", "philosophy", "history",
			"how it works",
		},
		Priority: 11,
	},
	{
		Tag:   "OVERVIEW",
		Label: "📖 Overview",
		Icon:  "📖",
		Keywords: []string{
			"chapter overview", "summary", "recap", "review",
			"key takeaway", "conclusion", "introduction",
		},
		Priority: 12,
	},
}

var byTag = func() map[string]Category {
	m := make(map[string]Category, len(Categories))
	for _, c := range Categories {
		m[c.Tag] = c
	}
	return m
}()

// Lookup returns the category for a tag, or false for unknown tags.
func Lookup(tag string) (Category, bool) {
	c, ok := byTag[tag]
	return c, ok
}

// Display returns the label for a tag, with a fallback for unknown tags.
func Display(tag string) string {
	if c, ok := byTag[tag]; ok {
		return c.Label
	}
	return "❓ " + tag
}

// IconFor returns the emoji icon for a tag.
func IconFor(tag string) string {
	if c, ok := byTag[tag]; ok {
		return c.Icon
	}
	return "❓"
}

// Tags lists every valid tag in definition order.
func Tags() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = c.Tag
	}
	return out
}

// Package command recognizes shell command invocations in book text,
// normalizes them into command names plus flags, and maintains a
// persistent index of which chapter first introduced which command.
package command

import (
	"regexp"
	"strings"
)

// Extracted is one recognized command with its flags and provenance.
type Extracted struct {
	Command string   `json:"command"`
	Flags   []string `json:"flags,omitempty"`
	Context string   `json:"context,omitempty"`
	Page    int      `json:"page"` // -1 when unknown
}

const (
	maxCommandLen = 30
	maxFlagLen    = 25
)

var namePattern = regexp.MustCompile(`^[a-zA-Z_][\w.-]*$`)

// Redirect operators, longest first so "2>" wins over ">".
var redirects = []string{">>>", ">>", "2>", "&>", ">", "<<<", "<<", "<"}

// Chain separators: everything after the first command is ignored.
var chains = []string{"&&", "||", ";"}

// Prefixes that wrap a command without being the command.
var skipPrefixes = map[string]bool{
	"sudo": true, "env": true, "time": true, "nice": true, "nohup": true,
}

// Parse normalizes a shell fragment like "sudo tar -xvf a.tar | grep x"
// into a single command name plus flag tokens. The second return is false
// when the fragment is not a command (assignment, comment, empty, or an
// invalid name).
func Parse(fragment string) (Extracted, bool) {
	s := strings.TrimSpace(fragment)
	if s == "" {
		return Extracted{}, false
	}

	// Keep only the first pipeline segment.
	if i := strings.Index(s, "|"); i >= 0 {
		s = s[:i]
	}
	// Cut at the first redirect.
	for _, r := range redirects {
		if i := strings.Index(s, r); i >= 0 {
			s = s[:i]
		}
	}
	// Cut at the first chain separator.
	for _, c := range chains {
		if i := strings.Index(s, c); i >= 0 {
			s = s[:i]
		}
	}

	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return Extracted{}, false
	}

	first := tokens[0]
	if strings.Contains(first, "=") || strings.HasPrefix(first, "#") {
		return Extracted{}, false
	}

	for skipPrefixes[first] && len(tokens) > 1 {
		tokens = tokens[1:]
		first = tokens[0]
	}

	// /usr/bin/ls -> ls
	name := first
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if len(name) > maxCommandLen || !namePattern.MatchString(name) {
		return Extracted{}, false
	}

	var flags []string
	for _, tok := range tokens[1:] {
		if strings.HasPrefix(tok, "-") && len(tok) <= maxFlagLen {
			flags = append(flags, tok)
		}
	}

	return Extracted{Command: name, Flags: flags, Page: -1}, true
}

package layout

import "testing"

func bodyLines(n int) []Line {
	var lines []Line
	for i := 0; i < n; i++ {
		lines = append(lines, NewLine("the quick brown fox jumps over", "Georgia", 10, 0))
	}
	return lines
}

func TestClassifyHeadingRules(t *testing.T) {
	p := ComputeProfile(bodyLines(20), DefaultThresholds())

	tests := []struct {
		name string
		line Line
		want bool
	}{
		{"larger than body", NewLine("Section Title", "Georgia", 11.5, 0), true},
		{"bold slightly larger", NewLine("Bold Heading", "Georgia-Bold", 10.4, 0), true},
		{"much larger", NewLine("CHAPTER ONE", "Georgia", 13.5, 0), true},
		{"body size", NewLine("plain paragraph text", "Georgia", 10, 0), false},
		{"bold at body size", NewLine("inline bold text", "Georgia-Bold", 10, 0), false},
	}
	for _, tt := range tests {
		if got := Classify(tt.line, p).HeadingCandidate; got != tt.want {
			t.Errorf("%s: heading=%v, want %v", tt.name, got, tt.want)
		}
	}

	// Long lines never qualify no matter the size.
	long := make([]byte, 130)
	for i := range long {
		long[i] = 'x'
	}
	if Classify(NewLine(string(long), "Georgia", 14, 0), p).HeadingCandidate {
		t.Error("a 130-char line must not be a heading candidate")
	}
}

func TestClassifyMonospace(t *testing.T) {
	lines := bodyLines(20)
	lines = append(lines, NewLine("grep -v foo bar.txt", "StrangeCodeFace", 10, 0))
	p := ComputeProfile(lines, DefaultThresholds())

	// Known monospace font name fires regardless of statistics.
	if !Classify(NewLine("ls -la", "Courier", 10, 0), p).Monospace {
		t.Error("known mono font must classify as monospace")
	}
	// Minority font fires on statistics alone.
	if !Classify(NewLine("grep -v foo", "StrangeCodeFace", 10, 0), p).Monospace {
		t.Error("minority font must classify as monospace")
	}
	// Body font does not.
	if Classify(NewLine("plain prose", "Georgia", 10, 0), p).Monospace {
		t.Error("body font must not classify as monospace")
	}
	// Whitespace-only minority span does not fire.
	ws := Line{Spans: []Span{
		{Text: "prose text", Font: "Georgia", Size: 10},
		{Text: "   ", Font: "StrangeCodeFace", Size: 10},
	}}
	if Classify(ws, p).Monospace {
		t.Error("whitespace-only minority span must not mark the line monospace")
	}
}

func TestClassifyUniformDocumentHasNoHeadings(t *testing.T) {
	lines := bodyLines(15)
	p := ComputeProfile(lines, DefaultThresholds())
	for _, line := range lines {
		if Classify(line, p).HeadingCandidate {
			t.Fatal("single-size document must produce no heading candidates")
		}
	}
}

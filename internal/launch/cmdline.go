package launch

import "strings"

// IndentWidth is the number of spaces per depth level in the preview.
const IndentWidth = 4

// Line is a group of words shown on one preview line.
type Line struct {
	Depth int
	Words []string
}

// CommandLine is an argv grouped into lines for display.
type CommandLine struct {
	lines []Line
}

// Add appends a line at depth. Empty words are dropped, and a line left
// with no words is not added.
func (c *CommandLine) Add(depth int, words ...string) {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return
	}
	c.lines = append(c.lines, Line{Depth: depth, Words: kept})
}

// Words flattens the lines into an argv.
func (c *CommandLine) Words() []string {
	var out []string
	for _, l := range c.lines {
		out = append(out, l.Words...)
	}
	return out
}

func (c *CommandLine) String() string {
	var b strings.Builder
	for _, l := range c.lines {
		b.WriteString(strings.Repeat(" ", l.Depth*IndentWidth))
		b.WriteString(strings.Join(l.Words, " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// Package resolve locates shard regions in file text by anchor matching.
//
// Resolution is text-based on purpose: anchors survive edits above and
// below the region, and the fallback ladder (direct match, function hint,
// indentation block, fixed window) degrades gracefully instead of failing
// hard. Line numbers stored at creation time are display hints only and
// play no part here.
package resolve

import (
	"strings"
	"unicode"

	"github.com/dadukhankevin/Glance/internal/model"
)

// Options bounds the fallback searches during resolution.
type Options struct {
	// HintRadius is how many lines before a hinted function the FromText
	// rescan begins when the direct scan misses.
	HintRadius int
	// BlockScan caps how far past the start line the indentation scan
	// looks for the end of a definition block.
	BlockScan int
	// BlockCap is the block length assumed when no dedent shows up
	// within BlockScan lines.
	BlockCap int
	// Window is the last-resort region length when no end can be
	// determined at all.
	Window int
}

// DefaultOptions returns the standard search bounds.
func DefaultOptions() Options {
	return Options{HintRadius: 5, BlockScan: 200, BlockCap: 50, Window: 20}
}

// Region is a resolved shard location. Lines are 1-indexed and inclusive.
type Region struct {
	Content   string `json:"content"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Construct string `json:"construct,omitempty"`
}

// Resolve locates the region described by anchor inside text.
// Returns nil when no start line can be found; every found start yields a
// region, with progressively cruder end estimates when ToText is gone.
func Resolve(text string, anchor model.Anchor, opts Options) *Region {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	start := findText(lines, anchor.FromText, 0)
	if start < 0 && anchor.FunctionHint != "" {
		if hintLine := findConstruct(lines, anchor.FunctionHint); hintLine >= 0 {
			from := hintLine - opts.HintRadius
			if from < 0 {
				from = 0
			}
			start = findText(lines, anchor.FromText, from)
			if start < 0 {
				start = hintLine
			}
		}
	}
	if start < 0 {
		return nil
	}

	end := findText(lines, anchor.ToText, start)
	if end < 0 {
		end = blockEnd(lines, start, opts)
	}
	if end < 0 || end < start {
		end = min(start+opts.Window, len(lines)-1)
	}

	construct := anchor.FunctionHint
	if construct == "" {
		construct = DetectConstruct(lines[start])
	}

	return &Region{
		Content:   strings.Join(lines[start:end+1], "\n"),
		StartLine: start + 1,
		EndLine:   end + 1,
		Construct: construct,
	}
}

// findText returns the first line index at or after from where needle
// appears, or -1. Matching is whitespace-tolerant: the trimmed needle is
// looked up in the trimmed line, then in the raw line.
func findText(lines []string, needle string, from int) int {
	needle = strings.TrimSpace(needle)
	for i := from; i < len(lines); i++ {
		if strings.Contains(strings.TrimSpace(lines[i]), needle) {
			return i
		}
		if strings.Contains(lines[i], needle) {
			return i
		}
	}
	return -1
}

// findConstruct returns the line index defining the named function, or -1.
func findConstruct(lines []string, name string) int {
	for i, line := range lines {
		if DetectConstruct(line) == name {
			return i
		}
	}
	return -1
}

// blockEnd infers where the definition block opened at start ends, by
// indentation. Works well for Python, reasonably for brace languages.
// Returns -1 when the start line is not a detected definition.
func blockEnd(lines []string, start int, opts Options) int {
	if DetectConstruct(lines[start]) == "" {
		return -1
	}

	indent := indentWidth(lines[start])
	limit := min(start+opts.BlockScan, len(lines))
	for i := start + 1; i < limit; i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		// Back at the opening indent means the body ended on the line above.
		if indentWidth(lines[i]) <= indent {
			return i - 1
		}
	}
	return min(start+opts.BlockCap, len(lines)-1)
}

func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
}

// splitLines splits text the way editors count lines: a trailing newline
// does not produce a final empty line, and empty text has no lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

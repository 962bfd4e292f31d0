package resolve

import "regexp"

// constructPatterns match function and method definition lines across the
// language families shards get anchored in. Order matters: the first
// pattern to match wins. Each pattern captures exactly one group, the
// definition's name. Supporting another language means appending a pattern.
var constructPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(?:async\s+)?def\s+(\w+)\s*\(`),                                   // Python
	regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s+(\w+)\s*\(`),                // JavaScript / TypeScript
	regexp.MustCompile(`^\s*(?:pub\s+)?(?:async\s+)?fn\s+(\w+)\s*[(<]`),                       // Rust
	regexp.MustCompile(`^\s*(?:public|private|protected|static|\s)+[\w<>\[\]]+\s+(\w+)\s*\(`), // Java / C#
	regexp.MustCompile(`^\s*func\s+(\w+)\s*\(`),                                               // Go
}

// DetectConstruct extracts the function name from a line that looks like a
// definition. Returns "" when no pattern matches.
func DetectConstruct(line string) string {
	for _, p := range constructPatterns {
		if m := p.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

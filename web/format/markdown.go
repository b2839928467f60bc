package format

import (
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
)

var numberedListPattern = regexp.MustCompile(`^\d+\.\s`)

// ToHTML renders assistant markdown as HTML for clients that do not run
// their own markdown renderer.
func ToHTML(text string) string {
	normalized := normalizeMarkdownLists(text)
	return strings.TrimSpace(string(markdown.ToHTML([]byte(normalized), nil, nil)))
}

// normalizeMarkdownLists ensures list items have proper spacing for markdown
// parsing. Markdown requires a blank line before lists, but LLMs often
// forget this.
func normalizeMarkdownLists(text string) string {
	lines := strings.Split(text, "\n")
	var result []string

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if isListItem(strings.TrimSpace(line)) && i > 0 {
			prev := strings.TrimSpace(lines[i-1])
			if prev != "" && !isListItem(prev) {
				result = append(result, "")
			}
		}

		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

func isListItem(line string) bool {
	return strings.HasPrefix(line, "- ") ||
		strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "+ ") ||
		numberedListPattern.MatchString(line)
}

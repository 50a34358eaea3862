package render

import (
	"strings"

	"github.com/russross/blackfriday"
)

// ToHTML converts markdown to HTML using the common extension set.
func ToHTML(markdown string) string {
	return strings.TrimSpace(string(blackfriday.MarkdownCommon([]byte(markdown))))
}

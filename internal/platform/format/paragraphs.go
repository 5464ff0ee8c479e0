package format

import (
	"html/template"
	"regexp"
	"strings"
)

var (
	paragraphBreak = regexp.MustCompile(`(?:\r\n|\r|\n){2,}`)
	lineBreak      = regexp.MustCompile(`\r\n|\r|\n`)
)

// RenderParagraphs turns plain text into escaped HTML paragraphs.
// Blank lines separate paragraphs and single line breaks become <br>.
// The text is escaped before any markup is added.
func RenderParagraphs(text string) template.HTML {
	escaped := template.HTMLEscapeString(text)

	parts := paragraphBreak.Split(escaped, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, "<p>"+lineBreak.ReplaceAllString(p, "<br>\n")+"</p>")
	}
	return template.HTML(strings.Join(out, "\n\n"))
}

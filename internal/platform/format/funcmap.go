package format

import "html/template"

// FuncMap returns the template functions registered on the HTML renderer.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"date":     FormatDate,
		"datetime": FormatDatetime,
		"duration": FormatDuration,
		"nl2br":    RenderParagraphs,
	}
}

// Package web embeds the HTML templates and static assets of the calendar UI.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"appt_calendar/internal/platform/format"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page with the display helpers registered.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(format.FuncMap()).ParseFS(templateFS, "templates/*.html")
}

// MustTemplates is Templates for program start-up.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// Static serves the stylesheet and the delete script.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

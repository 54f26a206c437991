package dataview

import (
	"embed"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html templates/**/*.html
var tableTemplates embed.FS

// NewTemplateRenderer returns a renderer for the table and state partial templates.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(tableTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}

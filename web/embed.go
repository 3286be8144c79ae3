package web

import "embed"

var (
	//go:embed templates
	TemplateFS embed.FS

	//go:embed static
	StaticFS embed.FS
)

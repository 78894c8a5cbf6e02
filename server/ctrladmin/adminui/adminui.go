package adminui

import "embed"

//go:embed components.tmpl pages/*.tmpl
var TemplatesFS embed.FS

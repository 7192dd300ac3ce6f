package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/components/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded template bundle. Replacement bundles
// passed to WithTemplatesFS use the same file names.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

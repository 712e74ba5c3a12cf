package printing

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

var rollerTemplate = template.Must(template.ParseFS(templatesFS, "templates/roller.html"))

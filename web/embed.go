package web

import (
	"embed"
	"io/fs"
)

//go:embed emails/*.html
var emailFS embed.FS

// EmailTemplates returns the embedded invitation email templates. Files are named
// invite.<locale>.html and sit at the root of the returned FS.
func EmailTemplates() (fs.FS, error) {
	return fs.Sub(emailFS, "emails")
}

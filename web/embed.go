// Package web holds the HTML templates and static assets, embedded into the binary
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static
var static embed.FS

// Templates parses every page template. Pages are looked up by file name,
// e.g. "login.html".
func Templates() (*template.Template, error) {
	return template.ParseFS(templates, "templates/*.html")
}

func Static() http.FileSystem {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}

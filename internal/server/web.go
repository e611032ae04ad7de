package server

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed web/templates/*.html web/static/*
var webFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(webFS, "web/templates/*.html")
}

func staticFS() fs.FS {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	return sub
}

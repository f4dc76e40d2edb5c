package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFiles embed.FS

type Templates struct {
	fs   fs.FS
	base *template.Template
}

// NewTemplates parses the layout from fsys. A nil fsys uses the embedded set.
func NewTemplates(fsys fs.FS) (*Templates, error) {
	if fsys == nil {
		fsys = templateFiles
	}
	base, err := template.ParseFS(fsys, "templates/layout.html")
	if err != nil {
		return nil, err
	}
	return &Templates{fs: fsys, base: base}, nil
}

func (t *Templates) Render(w http.ResponseWriter, name string, data any) error {
	tmpl, err := t.base.Clone()
	if err != nil {
		return err
	}
	if _, err := tmpl.ParseFS(t.fs, "templates/"+name); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "layout", data)
}

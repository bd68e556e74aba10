package util

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"
)

// Renderer writes a named page template with its context.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data any) error
}

// Templates holds one parsed set per page: the layout, the shared
// partials under includes/, and the page itself.
type Templates struct {
	pages map[string]*template.Template
}

// LoadTemplates parses every page under root in fsys. Page names are paths
// relative to root, e.g. "posts/index.html".
func LoadTemplates(fsys fs.FS, root string, funcs template.FuncMap) (*Templates, error) {
	funcs = mergeFuncs(funcs)
	layout := path.Join(root, "layout.html")
	includes := path.Join(root, "includes", "*.html")

	t := &Templates{pages: make(map[string]*template.Template)}
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || p == layout || !strings.HasSuffix(p, ".html") ||
			strings.HasPrefix(p, path.Join(root, "includes")+"/") {
			return nil
		}
		tmpl, err := template.New(path.Base(p)).Funcs(funcs).ParseFS(fsys, layout, includes, p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		t.pages[strings.TrimPrefix(p, root+"/")] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("no template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func mergeFuncs(extra template.FuncMap) template.FuncMap {
	funcs := template.FuncMap{
		"fmtDate":  func(t time.Time) string { return t.Format("2 Jan 2006 15:04") },
		"truncate": truncate,
		"mediaURL": func(rel string) string { return "/media/" + rel },
	}
	for k, v := range extra {
		funcs[k] = v
	}
	return funcs
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}

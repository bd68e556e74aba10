package util

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFS = fstest.MapFS{
	"t/layout.html":         {Data: []byte(`{{define "base"}}<title>{{block "title" .}}Default{{end}}</title>{{template "content" .}}{{end}}`)},
	"t/includes/shout.html": {Data: []byte(`{{define "shout"}}<b>{{.}}</b>{{end}}`)},
	"t/pages/hello.html":    {Data: []byte(`{{define "title"}}Hello{{end}}{{define "content"}}{{template "shout" .Name}} {{truncate .Name 3}} {{mediaURL "posts/a.gif"}}{{end}}`)},
	"t/pages/plain.html":    {Data: []byte(`{{define "content"}}plain{{end}}`)},
}

func TestTemplatesRender(t *testing.T) {
	tmpl, err := LoadTemplates(testFS, "t", template.FuncMap{
		"mediaURL": func(rel string) string { return "https://cdn.example.com/" + rel },
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, tmpl.Render(w, http.StatusTeapot, "pages/hello.html", map[string]string{"Name": "Gopher"}))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<title>Hello</title><b>Gopher</b> Gop… https://cdn.example.com/posts/a.gif", w.Body.String())

	w = httptest.NewRecorder()
	require.NoError(t, tmpl.Render(w, http.StatusOK, "pages/plain.html", nil))
	assert.Equal(t, "<title>Default</title>plain", w.Body.String())
}

func TestRenderUnknownPage(t *testing.T) {
	tmpl, err := LoadTemplates(testFS, "t", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	assert.Error(t, tmpl.Render(w, http.StatusOK, "pages/missing.html", nil))
	assert.Zero(t, w.Body.Len(), "nothing is written on failure")
}

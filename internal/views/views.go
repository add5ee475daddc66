// Package views renders the users page and its edit partial from
// templates embedded in the binary.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
)

const (
	ListView = "index"
	EditView = "partials/edit"
)

//go:embed templates/*.html templates/partials/*.html
var templatesFS embed.FS

// Renderer executes named templates into HTTP responses.
type Renderer struct {
	templates *template.Template
}

var funcMap = template.FuncMap{
	"userPath": userPath,
}

// userPath builds "<base>/<action>/<id>" with the id path-escaped.
func userPath(basePath, action, userID string) string {
	return strings.TrimRight(basePath, "/") + "/" + action + "/" + url.PathEscape(userID)
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(
		templatesFS,
		"templates/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("in internal/views/views.go/New(): error while `template.ParseFS()` calling: %w", err)
	}

	return &Renderer{templates: tmpl}, nil
}

// Render executes the named template with data and writes it with status.
// Nothing is written when execution fails, so the caller can still answer with an error page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("in internal/views/views.go/Render(): error while executing %q: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)

	return err
}

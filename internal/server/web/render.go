package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/dmitrijs2005/pagekeeper/internal/server/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const layout = "templates/layout.html"

var pageTemplates = map[string][]string{
	"home.html":        {layout, "templates/home.html"},
	"login.html":       {layout, "templates/login.html"},
	"register.html":    {layout, "templates/register.html"},
	"create_page.html": {layout, "templates/create_page.html"},
	"pages.html":       {layout, "templates/pages.html"},
	"page.html":        {layout, "templates/page.html"},
	"invites.html":     {layout, "templates/invites.html"},
	"error.html":       {layout, "templates/error.html"},
}

type PageRenderer struct {
	Templates map[string]*template.Template
}

func NewPageRenderer(fsys fs.FS, mapping map[string][]string) (*PageRenderer, error) {
	templates := make(map[string]*template.Template, len(mapping))
	for name, files := range mapping {
		t, err := template.ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = t
	}
	return &PageRenderer{Templates: templates}, nil
}

func (p *PageRenderer) RenderTemplate(w io.Writer, name string, data any) error {
	t, ok := p.Templates[name]
	if !ok {
		return fmt.Errorf("template %s is missing", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

type viewData struct {
	Title    string
	UserName string
	Email    string
	Flashes  []string
	PageID   int64
}

// render writes a full page. Flashes are popped here, so the session
// cookie is rewritten before the body goes out.
func (s *HTTPServer) render(w http.ResponseWriter, r *http.Request, status int, name string, data viewData) {
	st, ok := session.FromContext(r.Context())
	if !ok {
		st = s.sessions.Load(r)
	}
	if st.Authenticated() {
		data.UserName = st.UserName
	}

	flashes, err := s.sessions.Flashes(w, r)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	data.Flashes = flashes

	var buf bytes.Buffer
	if err := s.renderer.RenderTemplate(&buf, name, data); err != nil {
		s.internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *HTTPServer) forbiddenPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusForbidden, "error.html", viewData{Title: "Forbidden"})
}

package html

import (
	"embed"
	"html/template"
	"io"
	"strings"
	"time"

	"portfolio/internal/db"
	"portfolio/internal/services"
	"portfolio/internal/types"
)

//go:embed *.html
var files embed.FS

const diskDir = "web/static/html/"

var funcs = template.FuncMap{
	"date": func(t any) string {
		switch v := t.(type) {
		case time.Time:
			return v.Format("Jan 2, 2006")
		case *time.Time:
			if v != nil {
				return v.Format("Jan 2, 2006")
			}
		}
		return ""
	},
	"join": strings.Join,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"add": func(a, b int) int { return a + b },
}

// Renderer executes the site pages. In dev mode templates are re-read from
// disk on every render so edits show up without a rebuild.
type Renderer struct {
	dev bool
}

func New(dev bool) *Renderer {
	return &Renderer{dev: dev}
}

func (r *Renderer) parse(file string) (*template.Template, error) {
	t := template.New("layout.html").Funcs(funcs)
	if r.dev {
		return t.ParseFiles(diskDir+"layout.html", diskDir+file)
	}
	return t.ParseFS(files, "layout.html", file)
}

func (r *Renderer) render(w io.Writer, file string, data any) error {
	t, err := r.parse(file)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}

type HomeData struct {
	Featured []db.Project
	Posts    []db.PostSummary
}

type ProjectsData struct {
	Projects   []db.Project
	Categories []string
	Category   string
}

type BlogData struct {
	Posts      []db.PostSummary
	Tags       []string
	Tag        string
	Pagination services.Pagination
}

type PostData struct {
	Post    *db.BlogPost
	Content template.HTML
	Related []db.PostSummary
}

type ContactData struct {
	Name    string
	Email   string
	Subject string
	Message string
	Errors  []types.FieldError
	Error   string
	Sent    bool
}

type ErrorData struct {
	Status  int
	Message string
}

func (r *Renderer) Home(w io.Writer, data HomeData) error {
	return r.render(w, "home.html", data)
}

func (r *Renderer) Projects(w io.Writer, data ProjectsData) error {
	return r.render(w, "projects.html", data)
}

func (r *Renderer) Project(w io.Writer, p *db.Project) error {
	return r.render(w, "project.html", p)
}

func (r *Renderer) Blog(w io.Writer, data BlogData) error {
	return r.render(w, "blog.html", data)
}

func (r *Renderer) Post(w io.Writer, data PostData) error {
	return r.render(w, "post.html", data)
}

func (r *Renderer) Contact(w io.Writer, data ContactData) error {
	return r.render(w, "contact.html", data)
}

func (r *Renderer) Error(w io.Writer, data ErrorData) error {
	return r.render(w, "error.html", data)
}

package server

import (
	"bytes"
	"html/template"
	"io"
	"net/http"
	"strings"

	"portfolio/internal/db"
	"portfolio/internal/types"
	"portfolio/internal/upload"
	"portfolio/internal/validation"
	"portfolio/pkg/utils/markdown"
	"portfolio/web/static/html"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const homeSize = 3

// page renders into a buffer first so a template error still yields a clean
// error page instead of half a document.
func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.log.Error("render page", zap.String("path", r.URL.Path), zap.Error(err))
		s.errorPage(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages.Error(w, html.ErrorData{Status: status, Message: message}); err != nil {
		s.log.Error("render error page", zap.Error(err))
	}
}

// pageFail is fail for HTML routes.
func (s *Server) pageFail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.log.Error("page failed", zap.String("path", r.URL.Path), zap.Error(err))
		s.errorPage(w, r, apiErr.Status, "Something went wrong")
		return
	}
	s.errorPage(w, r, apiErr.Status, apiErr.Message)
}

func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	featured := true
	projects, err := s.projects.List(db.ProjectFilter{Featured: &featured, Limit: homeSize})
	if err != nil {
		s.pageFail(w, r, err)
		return
	}
	posts, err := s.blog.Latest(homeSize)
	if err != nil {
		s.pageFail(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, func(out io.Writer) error {
		return s.pages.Home(out, html.HomeData{Featured: projects, Posts: posts})
	})
}

func (s *Server) projectsPage(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if !validCategory(category) {
		category = ""
	}
	projects, err := s.projects.List(db.ProjectFilter{Category: category})
	if err != nil {
		s.pageFail(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, func(out io.Writer) error {
		return s.pages.Projects(out, html.ProjectsData{
			Projects:   projects,
			Categories: db.Categories,
			Category:   category,
		})
	})
}

func (s *Server) projectPage(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		s.pageFail(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, func(out io.Writer) error {
		return s.pages.Project(out, p)
	})
}

func (s *Server) blogPage(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	result, err := s.blog.List(db.PostFilter{
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 10),
		Tag:    tag,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		s.pageFail(w, r, err)
		return
	}
	tags, err := s.blog.Tags()
	if err != nil {
		s.pageFail(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, func(out io.Writer) error {
		return s.pages.Blog(out, html.BlogData{
			Posts:      result.Posts,
			Tags:       tags,
			Tag:        tag,
			Pagination: result.Pagination,
		})
	})
}

func (s *Server) postPage(w http.ResponseWriter, r *http.Request) {
	post, related, err := s.blog.View(chi.URLParam(r, "slug"))
	if err != nil {
		s.pageFail(w, r, err)
		return
	}
	content, err := markdown.ParseMD(post.Content)
	if err != nil {
		s.pageFail(w, r, errors.Wrap(err, "render post"))
		return
	}
	s.page(w, r, http.StatusOK, func(out io.Writer) error {
		return s.pages.Post(out, html.PostData{
			Post: post,
			// markdown output is trusted, only the admin writes posts
			Content: template.HTML(content),
			Related: related,
		})
	})
}

func (s *Server) contactPage(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, func(out io.Writer) error {
		return s.pages.Contact(out, html.ContactData{})
	})
}

// contactSubmitPage is the no-JavaScript path for the contact form.
func (s *Server) contactSubmitPage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.errorPage(w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}
	req := validation.CreateContact{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Email:   strings.TrimSpace(r.PostFormValue("email")),
		Subject: strings.TrimSpace(r.PostFormValue("subject")),
		Message: strings.TrimSpace(r.PostFormValue("message")),
	}
	data := html.ContactData{Name: req.Name, Email: req.Email, Subject: req.Subject, Message: req.Message}

	status := http.StatusOK
	err := validation.Struct(&req)
	if err == nil {
		_, err = s.contacts.Submit(req)
	}
	var apiErr *types.APIError
	switch {
	case err == nil:
		s.metrics.ContactSubmitted()
		data = html.ContactData{Sent: true}
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		status = apiErr.Status
		data.Error = apiErr.Message
		if fields, ok := apiErr.Details["errors"].([]types.FieldError); ok {
			data.Errors = fields
		}
	default:
		s.pageFail(w, r, err)
		return
	}
	s.page(w, r, status, func(out io.Writer) error {
		return s.pages.Contact(out, data)
	})
}

// serveUpload streams a stored upload. Range and conditional requests are
// handled by http.ServeContent.
func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	obj, info, err := s.uploads.Storage().Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, upload.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.log.Error("open upload", zap.String("key", key), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer obj.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(w, r, key, info.ModTime, obj)
}

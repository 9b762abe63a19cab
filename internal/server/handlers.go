package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"portfolio/internal/db"
	"portfolio/internal/types"
	"portfolio/internal/validation"
	"portfolio/pkg/utils"

	"github.com/go-chi/chi/v5"
)

const tokenCookie = "jwt"

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
		s.fail(w, r, types.NewAPIError(http.StatusNotFound, types.CodeNotFound, "Route not found"))
		return
	}
	s.errorPage(w, r, http.StatusNotFound, "Page not found")
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := s.store.Ping(); err != nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"uptime":    time.Since(s.started).Seconds(),
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.dashboard.Stats()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, st)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := db.ProjectFilter{
		Category: q.Get("category"),
		Featured: utils.ParseBool(q.Get("featured")),
	}
	if f.Category != "" && !validCategory(f.Category) {
		s.fail(w, r, types.Validation("Invalid query parameters", []types.FieldError{
			{Field: "category", Message: "Invalid enum value. Expected ml | fullstack | data"},
		}))
		return
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.fail(w, r, types.Validation("Invalid query parameters", []types.FieldError{
				{Field: "limit", Message: "limit must be a positive integer"},
			}))
			return
		}
		f.Limit = n
	}
	projects, err := s.projects.List(f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	count := len(projects)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: projects, Count: &count})
}

func validCategory(c string) bool {
	for _, v := range db.Categories {
		if v == c {
			return true
		}
	}
	return false
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, p)
}

func queryInt(r *http.Request, name string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return fallback
	}
	return n
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	page, err := s.blog.List(db.PostFilter{
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 10),
		Tag:    r.URL.Query().Get("tag"),
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: page.Posts, Pagination: &page.Pagination})
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.blog.Tags()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, tags)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	post, related, err := s.blog.View(chi.URLParam(r, "slug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: post, Related: related})
}

func (s *Server) submitContact(w http.ResponseWriter, r *http.Request) {
	var req validation.CreateContact
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.contacts.Submit(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.ContactSubmitted()
	created(w, "Your message has been sent successfully! I will get back to you soon.", map[string]any{
		"id":        c.ID,
		"createdAt": c.CreatedAt,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req validation.Login
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	session, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   !s.cfg.IsDev(),
		SameSite: http.SameSiteLaxMode,
	})
	okMessage(w, "Login successful", session)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !s.cfg.IsDev(),
		SameSite: http.SameSiteLaxMode,
	})
	okMessage(w, "Logged out successfully", nil)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	ok(w, adminFrom(r))
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req validation.ChangePassword
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.auth.ChangePassword(adminFrom(r), req.CurrentPassword, req.NewPassword); err != nil {
		s.fail(w, r, err)
		return
	}
	okMessage(w, "Password changed successfully", nil)
}

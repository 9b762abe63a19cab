package server

import (
	"mime/multipart"
	"net/http"

	"portfolio/internal/types"
	"portfolio/internal/validation"
	"portfolio/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// maxMemory bounds the in-memory part of a multipart form; the rest spills to disk.
	maxMemory = 10 << 20
	// formOverhead is the slack allowed on top of the file for multipart framing.
	formOverhead = 1 << 20
)

// parseUpload parses a multipart body capped at the upload limit and returns
// the file in field. An oversize body reports "File too large".
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request, field, missing string) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxBytes()+formOverhead)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, nil, s.uploads.TooLarge()
		}
		return nil, nil, types.BadRequest(missing)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, types.BadRequest(missing)
	}
	return file, header, nil
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := validation.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) adminDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Dashboard()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, d)
}

// projects

func (s *Server) adminListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.ListAll()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	count := len(projects)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: projects, Count: &count})
}

func (s *Server) adminGetProject(w http.ResponseWriter, r *http.Request) {
	id, valid := s.pathID(w, r)
	if !valid {
		return
	}
	p, err := s.projects.Get(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, p)
}

func (s *Server) adminCreateProject(w http.ResponseWriter, r *http.Request) {
	var req validation.CreateProject
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.projects.Create(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	created(w, "Project created successfully", p)
}

func (s *Server) adminUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, valid := s.pathID(w, r)
	if !valid {
		return
	}
	var req validation.UpdateProject
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.projects.Update(id, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	okMessage(w, "Project updated successfully", p)
}

func (s *Server) adminDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, valid := s.pathID(w, r)
	if !valid {
		return
	}
	if err := s.projects.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	okMessage(w, "Project deleted successfully", nil)
}

func (s *Server) adminReorderProjects(w http.ResponseWriter, r *http.Request) {
	var req validation.Reorder
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.projects.Reorder(req); err != nil {
		s.fail(w, r, err)
		return
	}
	okMessage(w, "Projects reordered successfully", nil)
}

// uploadImage stores the multipart "image" field under folder.
func (s *Server) uploadImage(folder string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, header, err := s.parseUpload(w, r, "image", "No image file provided")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		defer file.Close()

		res, err := s.uploads.SaveImage(r.Context(), folder, file, header)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.metrics.Uploaded(folder)
		okMessage(w, "Image uploaded successfully", res)
	}
}

// blog

func (s *Server) adminListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.blog.ListAll()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	count := len(posts)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: posts, Count: &count})
}

func (s *Server) adminGetPost(w http.ResponseWriter, r *http.Request) {
	id, valid := s.pathID(w, r)
	if !valid {
		return
	}
	post, err := s.blog.Get(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, post)
}

func (s *Server) adminCreatePost(w http.ResponseWriter, r *http.Request) {
	var req validation.CreatePost
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	post, err := s.blog.Create(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	created(w, "Blog post created successfully", post)
}

func (s *Server) adminUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, valid := s.pathID(w, r)
	if !valid {
		return
	}
	var req validation.UpdatePost
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	post, err := s.blog.Update(id, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	okMessage(w, "Blog post updated successfully", post)
}

func (s *Server) adminDeletePost(w http.ResponseWriter, r *http.Request) {
	id, valid := s.pathID(w, r)
	if !valid {
		return
	}
	if err := s.blog.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	okMessage(w, "Blog post deleted successfully", nil)
}

// adminImportPost creates a draft (or published post, per frontmatter) from
// an uploaded markdown file in the "markdown" field.
func (s *Server) adminImportPost(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.parseUpload(w, r, "markdown", "No markdown file provided")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer file.Close()

	source, err := s.uploads.ReadMarkdown(file, header)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	post, err := s.blog.ImportMarkdown(header.Filename, source)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	created(w, "Blog post imported successfully", post)
}

func (s *Server) adminPreviewPost(w http.ResponseWriter, r *http.Request) {
	var req validation.Preview
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	rendered, err := s.blog.Preview(req.Content)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, map[string]string{"html": rendered})
}

// contact messages

func (s *Server) adminListContacts(w http.ResponseWriter, r *http.Request) {
	unread := utils.ParseBool(r.URL.Query().Get("unread"))
	contacts, err := s.contacts.List(unread != nil && *unread)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	count := len(contacts)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: contacts, Count: &count})
}

func (s *Server) adminGetContact(w http.ResponseWriter, r *http.Request) {
	id, valid := s.pathID(w, r)
	if !valid {
		return
	}
	c, err := s.contacts.Get(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, c)
}

func (s *Server) adminUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, valid := s.pathID(w, r)
	if !valid {
		return
	}
	var req validation.UpdateContact
	if err := validation.DecodeOptionalJSON(r.Body, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.contacts.SetRead(id, req.Value())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	msg := "Message marked as read"
	if !c.Read {
		msg = "Message marked as unread"
	}
	okMessage(w, msg, c)
}

func (s *Server) adminDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, valid := s.pathID(w, r)
	if !valid {
		return
	}
	if err := s.contacts.Delete(id); err != nil {
		s.fail(w, r, err)
		return
	}
	okMessage(w, "Contact message deleted successfully", nil)
}

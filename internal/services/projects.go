package services

import (
	"context"

	"portfolio/internal/db"
	"portfolio/internal/types"
	"portfolio/internal/upload"
	"portfolio/internal/validation"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const resourceProject = "Project"

type ProjectService struct {
	store   *db.Store
	uploads *upload.Uploader
	log     *zap.Logger
}

func NewProjectService(store *db.Store, uploads *upload.Uploader, log *zap.Logger) *ProjectService {
	return &ProjectService{store: store, uploads: uploads, log: log}
}

func (s *ProjectService) List(f db.ProjectFilter) ([]db.Project, error) {
	return s.store.ListProjects(f)
}

func (s *ProjectService) GetBySlug(slug string) (*db.Project, error) {
	p, err := s.store.GetProjectBySlug(slug)
	return p, lookup(err, resourceProject)
}

func (s *ProjectService) ListAll() ([]db.Project, error) {
	return s.store.ListAllProjects()
}

func (s *ProjectService) Get(id uuid.UUID) (*db.Project, error) {
	p, err := s.store.GetProject(id)
	return p, lookup(err, resourceProject)
}

func (s *ProjectService) checkSlug(slug string, except uuid.UUID) error {
	taken, err := s.store.ProjectSlugTaken(slug, except)
	if err != nil {
		return err
	}
	if taken {
		return types.Conflict("A project with this slug already exists")
	}
	return nil
}

// projectTags cleans tags and rejects a list left empty by the cleanup.
func projectTags(tags []string) ([]string, error) {
	out := cleanTags(tags)
	if len(out) == 0 {
		return nil, types.Validation("Validation failed", []types.FieldError{
			{Field: "tags", Message: "tags must contain at least 1 item(s)"},
		})
	}
	return out, nil
}

func (s *ProjectService) Create(req validation.CreateProject) (*db.Project, error) {
	tags, err := projectTags(req.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.checkSlug(req.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	p := &db.Project{
		Title:           req.Title,
		Slug:            req.Slug,
		Description:     req.Description,
		LongDescription: req.LongDescription,
		Tags:            tags,
		Category:        req.Category,
		Year:            req.Year,
		Featured:        req.Featured,
		ImageURL:        optional(req.ImageURL),
		DemoURL:         optional(req.DemoURL),
		GithubURL:       optional(req.GithubURL),
		Metrics:         toJSONMap(req.Metrics),
		Order:           req.Order,
	}
	if err := persist(s.store.CreateProject(p), resourceProject); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies the non-nil fields of req.
func (s *ProjectService) Update(id uuid.UUID, req validation.UpdateProject) (*db.Project, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if req.Tags != nil {
		if p.Tags, err = projectTags(*req.Tags); err != nil {
			return nil, err
		}
	}
	if req.Slug != nil && *req.Slug != p.Slug {
		if err := s.checkSlug(*req.Slug, p.ID); err != nil {
			return nil, err
		}
		p.Slug = *req.Slug
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.LongDescription != nil {
		p.LongDescription = *req.LongDescription
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Year != nil {
		p.Year = *req.Year
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}
	if req.ImageURL != nil {
		p.ImageURL = optional(req.ImageURL)
	}
	if req.DemoURL != nil {
		p.DemoURL = optional(req.DemoURL)
	}
	if req.GithubURL != nil {
		p.GithubURL = optional(req.GithubURL)
	}
	if req.Metrics != nil {
		p.Metrics = toJSONMap(*req.Metrics)
	}
	if req.Order != nil {
		p.Order = *req.Order
	}
	if err := persist(s.store.SaveProject(p), resourceProject); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the project and, best effort, its uploaded image.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProject(id); err != nil {
		return lookup(err, resourceProject)
	}
	if s.uploads != nil {
		s.uploads.Delete(ctx, p.ImageURL)
	}
	return nil
}

func (s *ProjectService) Reorder(req validation.Reorder) error {
	orders := make([]db.ProjectOrder, 0, len(req.Orders))
	for _, o := range req.Orders {
		id, err := uuid.Parse(o.ID)
		if err != nil {
			return types.Validation("Validation failed", []types.FieldError{{Field: "orders.id", Message: "Invalid ID format"}})
		}
		orders = append(orders, db.ProjectOrder{ID: id, Order: *o.Order})
	}
	err := s.store.ReorderProjects(orders)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NotFound(resourceProject)
	}
	return errors.Wrap(err, "reorder projects")
}

func toJSONMap(m map[string]string) datatypes.JSONMap {
	if len(m) == 0 {
		return nil
	}
	out := make(datatypes.JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

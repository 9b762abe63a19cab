package db

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ProjectFilter struct {
	Category string
	Featured *bool
	Limit    int
}

// ProjectOrder assigns a display position to one project.
type ProjectOrder struct {
	ID    uuid.UUID `json:"id"`
	Order int       `json:"order"`
}

// ListProjects returns projects for the public site, featured first.
func (s *Store) ListProjects(f ProjectFilter) ([]Project, error) {
	q := s.db.Model(&Project{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	projects := []Project{}
	err := q.Order("featured DESC").Order("sort_order ASC").Order("year DESC").Find(&projects).Error
	return projects, errors.Wrap(err, "list projects")
}

// ListAllProjects is the admin listing ordered by display position.
func (s *Store) ListAllProjects() ([]Project, error) {
	projects := []Project{}
	err := s.db.Order("sort_order ASC").Order("created_at DESC").Find(&projects).Error
	return projects, errors.Wrap(err, "list all projects")
}

func (s *Store) GetProject(id uuid.UUID) (*Project, error) {
	var p Project
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProjectBySlug(slug string) (*Project, error) {
	var p Project
	if err := s.db.First(&p, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProject(p *Project) error {
	return s.db.Create(p).Error
}

func (s *Store) SaveProject(p *Project) error {
	return s.db.Save(p).Error
}

func (s *Store) DeleteProject(id uuid.UUID) error {
	res := s.db.Delete(&Project{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReorderProjects applies all positions or none. An unknown id aborts the
// transaction with gorm.ErrRecordNotFound.
func (s *Store) ReorderProjects(orders []ProjectOrder) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			res := tx.Model(&Project{}).Where("id = ?", o.ID).Update("sort_order", o.Order)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

// ProjectSlugTaken reports whether another project already uses slug.
func (s *Store) ProjectSlugTaken(slug string, exceptID uuid.UUID) (bool, error) {
	var n int64
	q := s.db.Model(&Project{}).Where("slug = ?", slug)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, errors.Wrap(err, "check project slug")
	}
	return n > 0, nil
}

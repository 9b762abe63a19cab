// Package seed loads the bundled sample admin, projects and posts. Every
// record is keyed by email or slug and skipped when it already exists, so the
// seed can be run any number of times.
package seed

import (
	_ "embed"

	"portfolio/internal/db"
	"portfolio/internal/services"
	"portfolio/internal/validation"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var data []byte

type project struct {
	Title           string            `yaml:"title"`
	Slug            string            `yaml:"slug"`
	Description     string            `yaml:"description"`
	LongDescription string            `yaml:"long_description"`
	Tags            []string          `yaml:"tags"`
	Category        string            `yaml:"category"`
	Year            int               `yaml:"year"`
	Featured        bool              `yaml:"featured"`
	DemoURL         *string           `yaml:"demo_url"`
	GithubURL       *string           `yaml:"github_url"`
	Metrics         map[string]string `yaml:"metrics"`
	Order           int               `yaml:"order"`
}

type post struct {
	Title     string   `yaml:"title"`
	Slug      string   `yaml:"slug"`
	Excerpt   string   `yaml:"excerpt"`
	Tags      []string `yaml:"tags"`
	Published bool     `yaml:"published"`
	Content   string   `yaml:"content"`
}

type fixtures struct {
	Projects []project `yaml:"projects"`
	Posts    []post    `yaml:"posts"`
}

// Admin is the account the seed makes sure exists.
type Admin struct {
	Email    string
	Password string
	Name     string
}

// Result counts what a run actually inserted.
type Result struct {
	Projects int
	Posts    int
}

type Seeder struct {
	store    *db.Store
	projects *services.ProjectService
	blog     *services.BlogService
	log      *zap.Logger
}

func New(store *db.Store, projects *services.ProjectService, blog *services.BlogService, log *zap.Logger) *Seeder {
	return &Seeder{store: store, projects: projects, blog: blog, log: log}
}

func load() (*fixtures, error) {
	var f fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse seed data")
	}
	return &f, nil
}

func (s *Seeder) Run(admin Admin) (*Result, error) {
	f, err := load()
	if err != nil {
		return nil, err
	}

	a, err := s.store.EnsureAdmin(admin.Email, admin.Password, admin.Name)
	if err != nil {
		return nil, errors.Wrap(err, "seed admin")
	}
	s.log.Info("admin ready", zap.String("email", a.Email))

	res := &Result{}
	for _, p := range f.Projects {
		taken, err := s.store.ProjectSlugTaken(p.Slug, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}
		req := validation.CreateProject{
			Title:           p.Title,
			Slug:            p.Slug,
			Description:     p.Description,
			LongDescription: p.LongDescription,
			Tags:            p.Tags,
			Category:        p.Category,
			Year:            p.Year,
			Featured:        p.Featured,
			DemoURL:         p.DemoURL,
			GithubURL:       p.GithubURL,
			Metrics:         p.Metrics,
			Order:           p.Order,
		}
		if err := validation.Struct(&req); err != nil {
			return nil, errors.Wrapf(err, "seed project %s", p.Slug)
		}
		if _, err := s.projects.Create(req); err != nil {
			return nil, errors.Wrapf(err, "seed project %s", p.Slug)
		}
		res.Projects++
	}

	for _, p := range f.Posts {
		taken, err := s.store.PostSlugTaken(p.Slug, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}
		req := validation.CreatePost{
			Title:     p.Title,
			Slug:      p.Slug,
			Excerpt:   p.Excerpt,
			Content:   p.Content,
			Tags:      p.Tags,
			Published: p.Published,
		}
		if err := validation.Struct(&req); err != nil {
			return nil, errors.Wrapf(err, "seed post %s", p.Slug)
		}
		if _, err := s.blog.Create(req); err != nil {
			return nil, errors.Wrapf(err, "seed post %s", p.Slug)
		}
		res.Posts++
	}

	s.log.Info("seed complete", zap.Int("projects", res.Projects), zap.Int("posts", res.Posts))
	return res, nil
}

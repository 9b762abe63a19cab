package db

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type PostFilter struct {
	Page   int
	Limit  int
	Tag    string
	Search string
}

func (f PostFilter) offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

func (s *Store) published() *gorm.DB {
	return s.db.Model(&BlogPost{}).Where("published = ?", true)
}

// ListPublishedPosts returns one page of published posts, newest first,
// together with the total number of matches.
func (s *Store) ListPublishedPosts(f PostFilter) ([]BlogPost, int64, error) {
	q := s.published()
	if f.Tag != "" {
		q = q.Where(`tags LIKE ? ESCAPE '\'`, tagPattern(f.Tag))
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(excerpt) LIKE ? ESCAPE '\')`, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count posts")
	}

	posts := []BlogPost{}
	err := q.Omit("content").
		Order("published_at DESC").
		Offset(f.offset()).
		Limit(f.Limit).
		Find(&posts).Error
	return posts, total, errors.Wrap(err, "list posts")
}

// LatestPosts returns the n most recently published posts.
func (s *Store) LatestPosts(n int) ([]BlogPost, error) {
	posts := []BlogPost{}
	err := s.published().Omit("content").Order("published_at DESC").Limit(n).Find(&posts).Error
	return posts, errors.Wrap(err, "latest posts")
}

// ListAllPosts is the admin listing, drafts included.
func (s *Store) ListAllPosts() ([]BlogPost, error) {
	posts := []BlogPost{}
	err := s.db.Order("created_at DESC").Find(&posts).Error
	return posts, errors.Wrap(err, "list all posts")
}

func (s *Store) GetPost(id uuid.UUID) (*BlogPost, error) {
	var p BlogPost
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPublishedPostBySlug treats drafts as missing.
func (s *Store) GetPublishedPostBySlug(slug string) (*BlogPost, error) {
	var p BlogPost
	if err := s.published().Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) IncrementViews(id uuid.UUID) error {
	err := s.db.Model(&BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	return errors.Wrap(err, "increment views")
}

// RelatedPosts finds up to limit published posts sharing a tag with post.
func (s *Store) RelatedPosts(post *BlogPost, limit int) ([]BlogPost, error) {
	related := []BlogPost{}
	if len(post.Tags) == 0 {
		return related, nil
	}
	clauses := make([]string, 0, len(post.Tags))
	args := make([]any, 0, len(post.Tags))
	for _, tag := range post.Tags {
		clauses = append(clauses, `tags LIKE ? ESCAPE '\'`)
		args = append(args, tagPattern(tag))
	}
	err := s.published().
		Where("id <> ?", post.ID).
		Where("("+strings.Join(clauses, " OR ")+")", args...).
		Omit("content").
		Order("published_at DESC").
		Limit(limit).
		Find(&related).Error
	return related, errors.Wrap(err, "related posts")
}

// PublishedTags returns every tag used by a published post, sorted.
func (s *Store) PublishedTags() ([]string, error) {
	var rows []Tags
	if err := s.published().Pluck("tags", &rows).Error; err != nil {
		return nil, errors.Wrap(err, "list tags")
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, tags := range rows {
		for _, t := range tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) CreatePost(p *BlogPost) error {
	return s.db.Create(p).Error
}

func (s *Store) SavePost(p *BlogPost) error {
	return s.db.Save(p).Error
}

func (s *Store) DeletePost(id uuid.UUID) error {
	res := s.db.Delete(&BlogPost{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Store) PostSlugTaken(slug string, exceptID uuid.UUID) (bool, error) {
	var n int64
	q := s.db.Model(&BlogPost{}).Where("slug = ?", slug)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, errors.Wrap(err, "check post slug")
	}
	return n > 0, nil
}

package db

import "github.com/pkg/errors"

type Counts struct {
	Projects       int64 `json:"projects"`
	Posts          int64 `json:"posts"`
	PublishedPosts int64 `json:"publishedPosts"`
	Contacts       int64 `json:"contacts"`
	UnreadContacts int64 `json:"unreadContacts"`
}

func (s *Store) Counts() (*Counts, error) {
	var c Counts
	steps := []struct {
		dst   *int64
		model any
		where []any
	}{
		{&c.Projects, &Project{}, nil},
		{&c.Posts, &BlogPost{}, nil},
		{&c.PublishedPosts, &BlogPost{}, []any{"published = ?", true}},
		{&c.Contacts, &Contact{}, nil},
		{&c.UnreadContacts, &Contact{}, []any{"is_read = ?", false}},
	}
	for _, step := range steps {
		q := s.db.Model(step.model)
		if len(step.where) > 0 {
			q = q.Where(step.where[0], step.where[1:]...)
		}
		if err := q.Count(step.dst).Error; err != nil {
			return nil, errors.Wrap(err, "count rows")
		}
	}
	return &c, nil
}

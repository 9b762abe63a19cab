package services

import (
	"time"

	"portfolio/internal/db"

	"github.com/google/uuid"
)

const recentContacts = 5

type PostCounts struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Drafts    int64 `json:"drafts"`
}

type ContactCounts struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

// ContactPreview is a contact without its message body.
type ContactPreview struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Dashboard struct {
	Projects       int64            `json:"projects"`
	BlogPosts      PostCounts       `json:"blogPosts"`
	Contacts       ContactCounts    `json:"contacts"`
	RecentContacts []ContactPreview `json:"recentContacts"`
}

type PublicStats struct {
	Projects  int64 `json:"projects"`
	BlogPosts int64 `json:"blogPosts"`
}

type DashboardService struct {
	store *db.Store
}

func NewDashboardService(store *db.Store) *DashboardService {
	return &DashboardService{store: store}
}

func (s *DashboardService) Dashboard() (*Dashboard, error) {
	c, err := s.store.Counts()
	if err != nil {
		return nil, err
	}
	recent, err := s.store.RecentContacts(recentContacts)
	if err != nil {
		return nil, err
	}
	previews := make([]ContactPreview, 0, len(recent))
	for _, r := range recent {
		previews = append(previews, ContactPreview{
			ID:        r.ID,
			Name:      r.Name,
			Email:     r.Email,
			Subject:   r.Subject,
			Read:      r.Read,
			CreatedAt: r.CreatedAt,
		})
	}
	return &Dashboard{
		Projects: c.Projects,
		BlogPosts: PostCounts{
			Total:     c.Posts,
			Published: c.PublishedPosts,
			Drafts:    c.Posts - c.PublishedPosts,
		},
		Contacts:       ContactCounts{Total: c.Contacts, Unread: c.UnreadContacts},
		RecentContacts: previews,
	}, nil
}

// Stats only counts what the public can see.
func (s *DashboardService) Stats() (*PublicStats, error) {
	c, err := s.store.Counts()
	if err != nil {
		return nil, err
	}
	return &PublicStats{Projects: c.Projects, BlogPosts: c.PublishedPosts}, nil
}

package db

import (
	"path/filepath"
	"testing"
	"time"

	"portfolio/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Config{DBDriver: "sqlite", DBDSN: filepath.Join(t.TempDir(), "test.sqlite")}
	s, err := Connect(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func publishedPost(title, slug string, at time.Time, tags ...string) *BlogPost {
	return &BlogPost{
		Title:       title,
		Slug:        slug,
		Excerpt:     title + " excerpt",
		Content:     "body of " + title,
		Author:      "Tester",
		Tags:        tags,
		Published:   true,
		PublishedAt: &at,
		ReadTime:    1,
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	first, err := s.EnsureAdmin("admin@example.com", "secret-pass", "Admin")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(first.Password), []byte("secret-pass")))

	second, err := s.EnsureAdmin("ADMIN@example.com", "other-pass", "Other")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Admin", second.Name)
}

func TestProjectSlugUniqueIndex(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateProject(&Project{Title: "A", Slug: "dup", Description: "d", Category: CategoryML, Year: 2024, Tags: Tags{"go"}}))

	err := s.CreateProject(&Project{Title: "B", Slug: "dup", Description: "d", Category: CategoryML, Year: 2024, Tags: Tags{"go"}})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	taken, err := s.ProjectSlugTaken("dup", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestListProjectsOrdering(t *testing.T) {
	s := newTestStore(t)
	for _, p := range []*Project{
		{Title: "Old", Slug: "old", Description: "d", Category: CategoryData, Year: 2020, Tags: Tags{"sql"}, Order: 1},
		{Title: "Star", Slug: "star", Description: "d", Category: CategoryML, Year: 2021, Tags: Tags{"py"}, Featured: true, Order: 5},
		{Title: "New", Slug: "new", Description: "d", Category: CategoryData, Year: 2024, Tags: Tags{"go"}, Order: 1},
	} {
		require.NoError(t, s.CreateProject(p))
	}

	all, err := s.ListProjects(ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"star", "new", "old"}, []string{all[0].Slug, all[1].Slug, all[2].Slug})

	data, err := s.ListProjects(ProjectFilter{Category: CategoryData, Limit: 1})
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.Equal(t, "new", data[0].Slug)

	featured := true
	only, err := s.ListProjects(ProjectFilter{Featured: &featured})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, Tags{"py"}, only[0].Tags)
}

func TestReorderProjectsRollsBackOnUnknownID(t *testing.T) {
	s := newTestStore(t)
	p := &Project{Title: "A", Slug: "a", Description: "d", Category: CategoryML, Year: 2024, Tags: Tags{"go"}}
	require.NoError(t, s.CreateProject(p))

	err := s.ReorderProjects([]ProjectOrder{{ID: p.ID, Order: 9}, {ID: uuid.New(), Order: 1}})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := s.GetProject(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Order)

	require.NoError(t, s.ReorderProjects([]ProjectOrder{{ID: p.ID, Order: 3}}))
	got, err = s.GetProject(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Order)
}

func TestPublishedPostQueries(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	a := publishedPost("Go Channels", "go-channels", now.Add(-2*time.Hour), "go", "concurrency")
	b := publishedPost("Rust Ownership", "rust-ownership", now.Add(-time.Hour), "rust")
	c := publishedPost("Go Generics", "go-generics", now, "go")
	draft := &BlogPost{Title: "Draft", Slug: "draft", Excerpt: "x", Content: "x", Author: "T", Tags: Tags{"go"}, ReadTime: 1}
	for _, p := range []*BlogPost{a, b, c, draft} {
		require.NoError(t, s.CreatePost(p))
	}

	posts, total, err := s.ListPublishedPosts(PostFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, posts, 2)
	assert.Equal(t, "go-generics", posts[0].Slug)
	assert.Empty(t, posts[0].Content)

	posts, total, err = s.ListPublishedPosts(PostFilter{Page: 1, Limit: 10, Tag: "go"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, posts, 2)

	posts, _, err = s.ListPublishedPosts(PostFilter{Page: 1, Limit: 10, Search: "RUST"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "rust-ownership", posts[0].Slug)

	_, err = s.GetPublishedPostBySlug("draft")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	related, err := s.RelatedPosts(a, 3)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "go-generics", related[0].Slug)

	tags, err := s.PublishedTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"concurrency", "go", "rust"}, tags)
}

func TestIncrementViews(t *testing.T) {
	s := newTestStore(t)
	p := publishedPost("Hello", "hello", time.Now())
	require.NoError(t, s.CreatePost(p))

	require.NoError(t, s.IncrementViews(p.ID))
	require.NoError(t, s.IncrementViews(p.ID))

	got, err := s.GetPost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)
}

func TestContactsAndCounts(t *testing.T) {
	s := newTestStore(t)
	first := &Contact{Name: "Ann", Email: "ann@example.com", Subject: "Hi", Message: "hello there"}
	second := &Contact{Name: "Bob", Email: "bob@example.com", Subject: "Yo", Message: "hello again"}
	require.NoError(t, s.CreateContact(first))
	require.NoError(t, s.CreateContact(second))
	require.NoError(t, s.SetContactRead(first, true))

	unread, err := s.ListContacts(true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Bob", unread[0].Name)

	counts, err := s.Counts()
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts.Contacts)
	assert.EqualValues(t, 1, counts.UnreadContacts)

	require.NoError(t, s.DeleteContact(second.ID))
	assert.ErrorIs(t, s.DeleteContact(second.ID), gorm.ErrRecordNotFound)
}

package services

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"portfolio/internal/config"
	"portfolio/internal/db"
	"portfolio/internal/mail"
	"portfolio/internal/types"
	"portfolio/internal/upload"
	"portfolio/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newStore(t *testing.T) *db.Store {
	t.Helper()
	cfg := &config.Config{DBDriver: "sqlite", DBDSN: filepath.Join(t.TempDir(), "svc.sqlite")}
	s, err := db.Connect(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func requireAPIError(t *testing.T, err error, status int) *types.APIError {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*types.APIError)
	require.True(t, ok, "expected *types.APIError, got %T: %v", err, err)
	assert.Equal(t, status, apiErr.HTTPStatus())
	return apiErr
}

func projectReq(slug string) validation.CreateProject {
	return validation.CreateProject{
		Title:       "Project " + slug,
		Slug:        slug,
		Description: "A project",
		Tags:        []string{"go", " "},
		Category:    "fullstack",
		Year:        2024,
		Metrics:     map[string]string{"users": "10k"},
	}
}

func TestProjectDuplicateSlug(t *testing.T) {
	svc := NewProjectService(newStore(t), nil, zaptest.NewLogger(t))

	p, err := svc.Create(projectReq("portfolio"))
	require.NoError(t, err)
	assert.Equal(t, db.Tags{"go"}, p.Tags)
	assert.Equal(t, "10k", p.Metrics["users"])

	_, err = svc.Create(projectReq("portfolio"))
	e := requireAPIError(t, err, http.StatusConflict)
	assert.Equal(t, types.CodeDuplicateEntry, e.Code)

	other, err := svc.Create(projectReq("other"))
	require.NoError(t, err)
	slug := "portfolio"
	_, err = svc.Update(other.ID, validation.UpdateProject{Slug: &slug})
	requireAPIError(t, err, http.StatusConflict)
}

func TestProjectBlankTagsRejected(t *testing.T) {
	store := newStore(t)
	svc := NewProjectService(store, nil, zaptest.NewLogger(t))

	req := projectReq("blank")
	req.Tags = []string{"  ", "\t"}
	_, err := svc.Create(req)
	e := requireAPIError(t, err, http.StatusBadRequest)
	assert.Equal(t, types.CodeValidation, e.Code)
	counts, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Projects)

	p, err := svc.Create(projectReq("blank"))
	require.NoError(t, err)
	blank := []string{" "}
	_, err = svc.Update(p.ID, validation.UpdateProject{Tags: &blank})
	requireAPIError(t, err, http.StatusBadRequest)

	got, err := svc.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, db.Tags{"go"}, got.Tags)
}

func TestProjectNotFound(t *testing.T) {
	svc := NewProjectService(newStore(t), nil, zaptest.NewLogger(t))

	_, err := svc.GetBySlug("missing")
	e := requireAPIError(t, err, http.StatusNotFound)
	assert.Equal(t, "Project not found", e.Message)

	_, err = svc.Update(uuid.New(), validation.UpdateProject{})
	requireAPIError(t, err, http.StatusNotFound)

	one := 1
	err = svc.Reorder(validation.Reorder{Orders: []validation.OrderItem{{ID: uuid.NewString(), Order: &one}}})
	requireAPIError(t, err, http.StatusNotFound)
}

func TestProjectPartialUpdate(t *testing.T) {
	svc := NewProjectService(newStore(t), nil, zaptest.NewLogger(t))
	p, err := svc.Create(projectReq("partial"))
	require.NoError(t, err)

	featured := true
	demo := "https://demo.example.com"
	got, err := svc.Update(p.ID, validation.UpdateProject{Featured: &featured, DemoURL: &demo})
	require.NoError(t, err)
	assert.True(t, got.Featured)
	assert.Equal(t, "Project partial", got.Title)
	require.NotNil(t, got.DemoURL)
	assert.Equal(t, demo, *got.DemoURL)
}

func TestProjectDeleteRemovesImage(t *testing.T) {
	store := newStore(t)
	local, err := upload.NewLocal(t.TempDir())
	require.NoError(t, err)
	uploader := upload.NewUploader(local, 5<<20, zaptest.NewLogger(t))
	svc := NewProjectService(store, uploader, zaptest.NewLogger(t))

	ctx := context.Background()
	require.NoError(t, local.Save(ctx, "projects/shot.png", strings.NewReader("png"), 3, "image/png"))
	req := projectReq("with-image")
	url := "/uploads/projects/shot.png"
	req.ImageURL = &url
	p, err := svc.Create(req)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, _, err = local.Open(ctx, "projects/shot.png")
	assert.ErrorIs(t, err, upload.ErrNotFound)

	requireAPIError(t, svc.Delete(ctx, p.ID), http.StatusNotFound)
}

func newBlog(t *testing.T) (*BlogService, *time.Time) {
	t.Helper()
	svc := NewBlogService(newStore(t), nil, "Site Admin", zaptest.NewLogger(t))
	clock := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	return svc, &clock
}

func TestBlogPublishedAtLifecycle(t *testing.T) {
	svc, clock := newBlog(t)

	draft, err := svc.Create(validation.CreatePost{Title: "Draft", Slug: "draft", Content: "<p>Hello <b>world</b></p>"})
	require.NoError(t, err)
	assert.Nil(t, draft.PublishedAt)
	assert.Equal(t, "Site Admin", draft.Author)
	assert.Equal(t, "Hello world", draft.Excerpt)
	assert.Equal(t, 1, draft.ReadTime)

	_, _, err = svc.View("draft")
	requireAPIError(t, err, http.StatusNotFound)

	publish := true
	post, err := svc.Update(draft.ID, validation.UpdatePost{Published: &publish})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	assert.True(t, post.PublishedAt.Equal(*clock))

	unpublish := false
	post, err = svc.Update(draft.ID, validation.UpdatePost{Published: &unpublish})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	assert.False(t, post.Published)
}

func TestBlogViewCountsAndRelated(t *testing.T) {
	svc, _ := newBlog(t)
	for _, req := range []validation.CreatePost{
		{Title: "Go One", Slug: "go-one", Content: "one", Tags: []string{"go"}, Published: true},
		{Title: "Go Two", Slug: "go-two", Content: "two", Tags: []string{"go", "web"}, Published: true},
		{Title: "Rust", Slug: "rust", Content: "three", Tags: []string{"rust"}, Published: true},
	} {
		_, err := svc.Create(req)
		require.NoError(t, err)
	}

	post, related, err := svc.View("go-one")
	require.NoError(t, err)
	assert.Equal(t, 1, post.Views)
	require.Len(t, related, 1)
	assert.Equal(t, "go-two", related[0].Slug)

	post, _, err = svc.View("go-one")
	require.NoError(t, err)
	assert.Equal(t, 2, post.Views)
}

func TestBlogListPagination(t *testing.T) {
	svc, _ := newBlog(t)
	for i := 0; i < 3; i++ {
		_, err := svc.Create(validation.CreatePost{
			Title:     "Post",
			Slug:      "post-" + string(rune('a'+i)),
			Content:   "content",
			Published: true,
		})
		require.NoError(t, err)
	}

	page, err := svc.List(db.PostFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, Pagination{Page: 1, Limit: 2, Total: 3, TotalPages: 2, HasMore: true}, page.Pagination)

	page, err = svc.List(db.PostFilter{Page: 0, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.Pagination.Limit)
	assert.False(t, page.Pagination.HasMore)
}

func TestBlogImportMarkdown(t *testing.T) {
	svc, _ := newBlog(t)

	src := "---\ntitle: Hello, World!\ntags: [go, testing]\n---\n\n# Heading\n\nSome **bold** text."
	post, err := svc.ImportMarkdown("ignored.md", src)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", post.Title)
	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, db.Tags{"go", "testing"}, post.Tags)
	assert.False(t, post.Published)
	assert.Equal(t, "Heading Some bold text.", post.Excerpt)

	post, err = svc.ImportMarkdown("My First Post.md", "plain body")
	require.NoError(t, err)
	assert.Equal(t, "My First Post", post.Title)
	assert.Equal(t, "my-first-post", post.Slug)

	_, err = svc.ImportMarkdown("My First Post.md", "again")
	requireAPIError(t, err, http.StatusConflict)

	_, err = svc.ImportMarkdown("x.md", "---\ntitle: broken\n")
	requireAPIError(t, err, http.StatusBadRequest)
}

func TestBlogPreview(t *testing.T) {
	svc, _ := newBlog(t)
	html, err := svc.Preview("## Sub")
	require.NoError(t, err)
	assert.Contains(t, html, `<h2 id="sub">Sub</h2>`)
}

type fakeQueue struct {
	mu   sync.Mutex
	msgs []mail.ContactMessage
}

func (q *fakeQueue) Enqueue(msg mail.ContactMessage) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return true
}

func TestContactSubmitAndRead(t *testing.T) {
	q := &fakeQueue{}
	svc := NewContactService(newStore(t), q, zaptest.NewLogger(t))

	c, err := svc.Submit(validation.CreateContact{Name: " Ann ", Email: "ann@example.com", Message: "I would like to talk."})
	require.NoError(t, err)
	assert.Equal(t, "Ann", c.Name)
	assert.Equal(t, "Contact Form Submission", c.Subject)
	require.Len(t, q.msgs, 1)
	assert.Equal(t, "ann@example.com", q.msgs[0].Email)

	unread, err := svc.List(true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	got, err := svc.Get(c.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)

	unread, err = svc.List(true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	got, err = svc.SetRead(c.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Read)

	require.NoError(t, svc.Delete(c.ID))
	requireAPIError(t, svc.Delete(c.ID), http.StatusNotFound)
}

func TestAuthLoginAndChangePassword(t *testing.T) {
	store := newStore(t)
	_, err := store.EnsureAdmin("admin@example.com", "correct horse", "Admin")
	require.NoError(t, err)
	key := []byte("test-sign-key")
	svc := NewAuthService(store, key, time.Hour, zaptest.NewLogger(t))

	_, err = svc.Login("admin@example.com", "wrong")
	e := requireAPIError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Invalid email or password", e.Message)
	_, err = svc.Login("nobody@example.com", "correct horse")
	requireAPIError(t, err, http.StatusUnauthorized)

	session, err := svc.Login("admin@example.com", "correct horse")
	require.NoError(t, err)
	tok, err := jwt.Parse(session.Token, func(*jwt.Token) (any, error) { return key, nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, session.Admin.ID.String(), claims["adminId"])

	admin, err := svc.Admin(claims["adminId"].(string))
	require.NoError(t, err)
	_, err = svc.Admin(uuid.NewString())
	e = requireAPIError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Admin not found", e.Message)

	requireAPIError(t, svc.ChangePassword(admin, "nope", "new password"), http.StatusUnauthorized)
	require.NoError(t, svc.ChangePassword(admin, "correct horse", "new password"))
	_, err = svc.Login("admin@example.com", "new password")
	assert.NoError(t, err)
}

func TestDashboardCounts(t *testing.T) {
	store := newStore(t)
	blog := NewBlogService(store, nil, "Admin", zaptest.NewLogger(t))
	_, err := blog.Create(validation.CreatePost{Title: "A", Slug: "a", Content: "x", Published: true})
	require.NoError(t, err)
	_, err = blog.Create(validation.CreatePost{Title: "B", Slug: "b", Content: "x"})
	require.NoError(t, err)
	_, err = NewProjectService(store, nil, zaptest.NewLogger(t)).Create(projectReq("p"))
	require.NoError(t, err)

	dash := NewDashboardService(store)
	d, err := dash.Dashboard()
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.Projects)
	assert.Equal(t, PostCounts{Total: 2, Published: 1, Drafts: 1}, d.BlogPosts)
	assert.Empty(t, d.RecentContacts)

	stats, err := dash.Stats()
	require.NoError(t, err)
	assert.Equal(t, PublicStats{Projects: 1, BlogPosts: 1}, *stats)
}

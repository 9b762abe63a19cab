package services

import (
	"context"
	"strings"
	"time"

	"portfolio/internal/db"
	"portfolio/internal/types"
	"portfolio/internal/upload"
	"portfolio/internal/validation"
	"portfolio/pkg/utils"
	"portfolio/pkg/utils/markdown"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	resourcePost = "Blog post"

	DefaultPageSize = 10
	MaxPageSize     = 50
	relatedCount    = 3
)

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// PostPage is one page of the public blog listing.
type PostPage struct {
	Posts      []db.PostSummary
	Pagination Pagination
}

type BlogService struct {
	store   *db.Store
	uploads *upload.Uploader
	author  string
	log     *zap.Logger
	now     func() time.Time
}

func NewBlogService(store *db.Store, uploads *upload.Uploader, defaultAuthor string, log *zap.Logger) *BlogService {
	return &BlogService{store: store, uploads: uploads, author: defaultAuthor, log: log, now: time.Now}
}

// NormalizePage clamps page to >= 1 and limit to 1..50, defaulting to 10.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func (s *BlogService) List(f db.PostFilter) (*PostPage, error) {
	f.Page, f.Limit = NormalizePage(f.Page, f.Limit)
	posts, total, err := s.store.ListPublishedPosts(f)
	if err != nil {
		return nil, err
	}
	totalPages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return &PostPage{
		Posts: summaries(posts),
		Pagination: Pagination{
			Page:       f.Page,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasMore:    f.Page < totalPages,
		},
	}, nil
}

func (s *BlogService) Latest(n int) ([]db.PostSummary, error) {
	posts, err := s.store.LatestPosts(n)
	if err != nil {
		return nil, err
	}
	return summaries(posts), nil
}

func (s *BlogService) Tags() ([]string, error) {
	return s.store.PublishedTags()
}

// View returns a published post, counts the view and attaches related posts.
func (s *BlogService) View(slug string) (*db.BlogPost, []db.PostSummary, error) {
	post, err := s.store.GetPublishedPostBySlug(slug)
	if err != nil {
		return nil, nil, lookup(err, resourcePost)
	}
	if err := s.store.IncrementViews(post.ID); err != nil {
		return nil, nil, err
	}
	post.Views++
	related, err := s.store.RelatedPosts(post, relatedCount)
	if err != nil {
		return nil, nil, err
	}
	return post, summaries(related), nil
}

func (s *BlogService) ListAll() ([]db.BlogPost, error) {
	return s.store.ListAllPosts()
}

func (s *BlogService) Get(id uuid.UUID) (*db.BlogPost, error) {
	p, err := s.store.GetPost(id)
	return p, lookup(err, resourcePost)
}

func (s *BlogService) checkSlug(slug string, except uuid.UUID) error {
	taken, err := s.store.PostSlugTaken(slug, except)
	if err != nil {
		return err
	}
	if taken {
		return types.Conflict("A blog post with this slug already exists")
	}
	return nil
}

func (s *BlogService) Create(req validation.CreatePost) (*db.BlogPost, error) {
	if err := s.checkSlug(req.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	post := &db.BlogPost{
		Title:           req.Title,
		Slug:            req.Slug,
		Excerpt:         strings.TrimSpace(req.Excerpt),
		Content:         req.Content,
		CoverImage:      optional(req.CoverImage),
		Author:          strings.TrimSpace(req.Author),
		Tags:            cleanTags(req.Tags),
		Published:       req.Published,
		MetaTitle:       optional(req.MetaTitle),
		MetaDescription: optional(req.MetaDescription),
		OgImage:         optional(req.OgImage),
	}
	if post.Author == "" {
		post.Author = s.author
	}
	if req.ReadTime != nil {
		post.ReadTime = *req.ReadTime
	}
	s.derive(post)
	if post.Published {
		now := s.now()
		post.PublishedAt = &now
	}
	if err := persist(s.store.CreatePost(post), resourcePost); err != nil {
		return nil, err
	}
	return post, nil
}

// Update applies the non-nil fields of req. publishedAt is stamped whenever
// the post goes from draft to published and is kept on unpublish.
func (s *BlogService) Update(id uuid.UUID, req validation.UpdatePost) (*db.BlogPost, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if req.Slug != nil && *req.Slug != post.Slug {
		if err := s.checkSlug(*req.Slug, post.ID); err != nil {
			return nil, err
		}
		post.Slug = *req.Slug
	}
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if req.Content != nil && *req.Content != post.Content {
		post.Content = *req.Content
		if req.ReadTime == nil {
			post.ReadTime = 0
		}
	}
	if req.CoverImage != nil {
		post.CoverImage = optional(req.CoverImage)
	}
	if req.Author != nil {
		post.Author = strings.TrimSpace(*req.Author)
	}
	if req.Tags != nil {
		post.Tags = cleanTags(*req.Tags)
	}
	if req.ReadTime != nil {
		post.ReadTime = *req.ReadTime
	}
	if req.MetaTitle != nil {
		post.MetaTitle = optional(req.MetaTitle)
	}
	if req.MetaDescription != nil {
		post.MetaDescription = optional(req.MetaDescription)
	}
	if req.OgImage != nil {
		post.OgImage = optional(req.OgImage)
	}
	if req.Published != nil {
		if *req.Published && !post.Published {
			now := s.now()
			post.PublishedAt = &now
		}
		post.Published = *req.Published
	}
	if post.Author == "" {
		post.Author = s.author
	}
	s.derive(post)
	if err := persist(s.store.SavePost(post), resourcePost); err != nil {
		return nil, err
	}
	return post, nil
}

// derive fills excerpt and read time from the content when they are unset.
func (s *BlogService) derive(post *db.BlogPost) {
	if post.Excerpt != "" && post.ReadTime > 0 {
		return
	}
	rendered, err := markdown.ParseMD(post.Content)
	if err != nil {
		s.log.Warn("failed to render post content", zap.String("slug", post.Slug), zap.Error(err))
		rendered = post.Content
	}
	if post.Excerpt == "" {
		post.Excerpt = utils.GenerateExcerpt(rendered, utils.ExcerptMaxLength)
	}
	if post.ReadTime <= 0 {
		post.ReadTime = utils.CalculateReadTime(rendered, utils.WordsPerMinute)
	}
}

func (s *BlogService) Delete(ctx context.Context, id uuid.UUID) error {
	post, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.DeletePost(id); err != nil {
		return lookup(err, resourcePost)
	}
	if s.uploads != nil {
		s.uploads.Delete(ctx, post.CoverImage)
	}
	return nil
}

// ImportMarkdown creates a post from a markdown file with optional YAML
// frontmatter. Title falls back to the file name, slug to the slugified title.
func (s *BlogService) ImportMarkdown(filename, source string) (*db.BlogPost, error) {
	fm, body, err := markdown.SplitFrontmatter(source)
	if err != nil {
		return nil, types.BadRequest(err.Error())
	}
	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = utils.FormatTitle(filename)
	}
	slug := fm.Slug
	if slug == "" {
		slug = utils.Slugify(title)
	}
	if strings.TrimSpace(body) == "" {
		return nil, types.BadRequest("Markdown file has no content")
	}
	req := validation.CreatePost{
		Title:     title,
		Slug:      slug,
		Excerpt:   fm.Excerpt,
		Content:   body,
		Tags:      fm.Tags,
		Published: fm.Published,
	}
	if fm.CoverImage != "" {
		req.CoverImage = &fm.CoverImage
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.Create(req)
}

func (s *BlogService) Preview(content string) (string, error) {
	html, err := markdown.ParseMD(content)
	return html, errors.Wrap(err, "render preview")
}

func summaries(posts []db.BlogPost) []db.PostSummary {
	return utils.Map(posts, func(p db.BlogPost) db.PostSummary { return p.Summary() })
}

package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CategoryML        = "ml"
	CategoryFullstack = "fullstack"
	CategoryData      = "data"
)

// Categories lists the accepted project categories in display order.
var Categories = []string{CategoryML, CategoryFullstack, CategoryData}

type Project struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string            `gorm:"size:200;not null" json:"title"`
	Slug            string            `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	Description     string            `gorm:"size:500;not null" json:"description"`
	LongDescription string            `gorm:"type:text" json:"longDescription"`
	Tags            Tags              `json:"tags"`
	Category        string            `gorm:"size:20;not null;index" json:"category"`
	Year            int               `gorm:"not null" json:"year"`
	Featured        bool              `gorm:"not null;default:false" json:"featured"`
	ImageURL        *string           `json:"imageUrl"`
	DemoURL         *string           `json:"demoUrl"`
	GithubURL       *string           `json:"githubUrl"`
	Metrics         datatypes.JSONMap `json:"metrics"`
	Order           int               `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

type BlogPost struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string     `gorm:"size:300;not null" json:"title"`
	Slug            string     `gorm:"size:300;not null;uniqueIndex" json:"slug"`
	Excerpt         string     `gorm:"size:500;not null" json:"excerpt"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	CoverImage      *string    `json:"coverImage"`
	Author          string     `gorm:"size:100;not null" json:"author"`
	Tags            Tags       `json:"tags"`
	Published       bool       `gorm:"not null;default:false;index" json:"published"`
	PublishedAt     *time.Time `gorm:"index" json:"publishedAt"`
	Views           int        `gorm:"not null;default:0" json:"views"`
	ReadTime        int        `gorm:"not null;default:5" json:"readTime"`
	MetaTitle       *string    `gorm:"size:70" json:"metaTitle"`
	MetaDescription *string    `gorm:"size:160" json:"metaDescription"`
	OgImage         *string    `json:"ogImage"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// PostSummary is the list projection of a BlogPost; it never carries content.
type PostSummary struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	CoverImage  *string    `json:"coverImage"`
	Author      string     `json:"author"`
	Tags        Tags       `json:"tags"`
	PublishedAt *time.Time `json:"publishedAt"`
	ReadTime    int        `json:"readTime"`
	Views       int        `json:"views"`
}

func (p *BlogPost) Summary() PostSummary {
	return PostSummary{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		CoverImage:  p.CoverImage,
		Author:      p.Author,
		Tags:        p.Tags,
		PublishedAt: p.PublishedAt,
		ReadTime:    p.ReadTime,
		Views:       p.Views,
	}
}

type Contact struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Subject   string    `gorm:"size:200;not null" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"column:is_read;not null;default:false;index" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Admin is the single site operator. Password holds a bcrypt hash.
type Admin struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *BlogPost) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (c *Contact) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (a *Admin) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

package validation

type CreateProject struct {
	Title           string            `json:"title" validate:"required,max=200"`
	Slug            string            `json:"slug" validate:"required,max=200,slug"`
	Description     string            `json:"description" validate:"required,max=500"`
	LongDescription string            `json:"longDescription"`
	Tags            []string          `json:"tags" validate:"required,min=1"`
	Category        string            `json:"category" validate:"required,oneof=ml fullstack data"`
	Year            int               `json:"year" validate:"required,min=2000,max=2100"`
	Featured        bool              `json:"featured"`
	ImageURL        *string           `json:"imageUrl" validate:"omitempty,image"`
	DemoURL         *string           `json:"demoUrl" validate:"omitempty,url"`
	GithubURL       *string           `json:"githubUrl" validate:"omitempty,url"`
	Metrics         map[string]string `json:"metrics"`
	Order           int               `json:"order"`
}

// UpdateProject is a partial CreateProject: nil fields are left unchanged.
type UpdateProject struct {
	Title           *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Slug            *string            `json:"slug" validate:"omitempty,min=1,max=200,slug"`
	Description     *string            `json:"description" validate:"omitempty,min=1,max=500"`
	LongDescription *string            `json:"longDescription"`
	Tags            *[]string          `json:"tags" validate:"omitempty,min=1"`
	Category        *string            `json:"category" validate:"omitempty,oneof=ml fullstack data"`
	Year            *int               `json:"year" validate:"omitempty,min=2000,max=2100"`
	Featured        *bool              `json:"featured"`
	ImageURL        *string            `json:"imageUrl" validate:"omitempty,image"`
	DemoURL         *string            `json:"demoUrl" validate:"omitempty,url"`
	GithubURL       *string            `json:"githubUrl" validate:"omitempty,url"`
	Metrics         *map[string]string `json:"metrics"`
	Order           *int               `json:"order"`
}

type CreatePost struct {
	Title           string   `json:"title" validate:"required,max=300"`
	Slug            string   `json:"slug" validate:"required,max=300,slug"`
	Excerpt         string   `json:"excerpt" validate:"max=500"`
	Content         string   `json:"content" validate:"required"`
	CoverImage      *string  `json:"coverImage" validate:"omitempty,image"`
	Author          string   `json:"author" validate:"max=100"`
	Tags            []string `json:"tags"`
	Published       bool     `json:"published"`
	ReadTime        *int     `json:"readTime" validate:"omitempty,min=1"`
	MetaTitle       *string  `json:"metaTitle" validate:"omitempty,max=70"`
	MetaDescription *string  `json:"metaDescription" validate:"omitempty,max=160"`
	OgImage         *string  `json:"ogImage" validate:"omitempty,image"`
}

type UpdatePost struct {
	Title           *string   `json:"title" validate:"omitempty,min=1,max=300"`
	Slug            *string   `json:"slug" validate:"omitempty,min=1,max=300,slug"`
	Excerpt         *string   `json:"excerpt" validate:"omitempty,max=500"`
	Content         *string   `json:"content" validate:"omitempty,min=1"`
	CoverImage      *string   `json:"coverImage" validate:"omitempty,image"`
	Author          *string   `json:"author" validate:"omitempty,max=100"`
	Tags            *[]string `json:"tags"`
	Published       *bool     `json:"published"`
	ReadTime        *int      `json:"readTime" validate:"omitempty,min=1"`
	MetaTitle       *string   `json:"metaTitle" validate:"omitempty,max=70"`
	MetaDescription *string   `json:"metaDescription" validate:"omitempty,max=160"`
	OgImage         *string   `json:"ogImage" validate:"omitempty,image"`
}

type CreateContact struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type OrderItem struct {
	ID    string `json:"id" validate:"required,uuid"`
	Order *int   `json:"order" validate:"required"`
}

type Reorder struct {
	Orders []OrderItem `json:"orders" validate:"required,min=1,dive"`
}

// UpdateContact marks a message read unless read is explicitly false.
type UpdateContact struct {
	Read *bool `json:"read"`
}

func (u UpdateContact) Value() bool {
	return u.Read == nil || *u.Read
}

type Preview struct {
	Content string `json:"content"`
}

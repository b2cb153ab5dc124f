package content

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/upskillway/crm/core"
)

// Kinds
const (
	KindBlog        = "BLOG"
	KindEbook       = "EBOOK"
	KindVideo       = "VIDEO"
	KindFAQ         = "FAQ"
	KindTestimonial = "TESTIMONIAL"
)

var AllKinds = []string{KindBlog, KindEbook, KindVideo, KindFAQ, KindTestimonial}

// Item is one piece of marketing content. The CMS stores all kinds in a
// single collection; kind-specific fields are optional and validated per kind.
type Item struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Slug      string `json:"slug,omitempty"`
	Body      string `json:"body,omitempty"`
	Author    string `json:"author,omitempty"`
	Published bool   `json:"published"`

	// EBOOK / VIDEO
	FileURL  string `json:"file_url,omitempty"`
	Pages    int    `json:"pages,omitempty"`
	Duration int    `json:"duration,omitempty"` // seconds

	// FAQ
	Answer string `json:"answer,omitempty"`
	Order  int    `json:"order,omitempty"`

	// TESTIMONIAL
	Role   string `json:"role,omitempty"`
	Rating int    `json:"rating,omitempty"` // 1..5

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewItem contains information needed to publish a new content Item.
type NewItem struct {
	Kind      string `json:"kind" validate:"required,contentkind"`
	Title     string `json:"title" validate:"required"`
	Slug      string `json:"slug" validate:"omitempty,alphanum_"`
	Body      string `json:"body"`
	Author    string `json:"author"`
	Published bool   `json:"published"`
	FileURL   string `json:"file_url" validate:"omitempty,url"`
	Pages     int    `json:"pages" validate:"omitempty,min=1"`
	Duration  int    `json:"duration" validate:"omitempty,min=1"`
	Answer    string `json:"answer"`
	Order     int    `json:"order" validate:"omitempty,min=0"`
	Role      string `json:"role"`
	Rating    int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

func (ni *NewItem) Validate(validate *validator.Validate) error {
	ni.Title = core.CleanString(ni.Title)
	ni.Slug = core.CleanString(ni.Slug, true /* lower */)
	return validate.Struct(ni)
}

// UpdateItem defines what information may be provided to modify an existing
// Item. Empty fields are left untouched.
type UpdateItem struct {
	Title     string `json:"title"`
	Slug      string `json:"slug" validate:"omitempty,alphanum_"`
	Body      string `json:"body"`
	Author    string `json:"author"`
	Published *bool  `json:"published"`
	FileURL   string `json:"file_url" validate:"omitempty,url"`
	Pages     int    `json:"pages" validate:"omitempty,min=1"`
	Duration  int    `json:"duration" validate:"omitempty,min=1"`
	Answer    string `json:"answer"`
	Order     *int   `json:"order" validate:"omitempty"`
	Role      string `json:"role"`
	Rating    int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

func (ui *UpdateItem) Validate(validate *validator.Validate) error {
	ui.Title = core.CleanString(ui.Title)
	ui.Slug = core.CleanString(ui.Slug, true /* lower */)
	return validate.Struct(ui)
}

type QueryFilter struct {
	Kind      string
	Search    string // case-insensitive match on Title or Author
	Published *bool
}

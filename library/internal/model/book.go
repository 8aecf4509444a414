package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultBookLanguage = "Indonesian"

type Book struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Title             string    `json:"title" db:"title"`
	Author            string    `json:"author" db:"author"`
	ISBN              string    `json:"isbn" db:"isbn"`
	Publisher         string    `json:"publisher" db:"publisher"`
	PublishYear       int       `json:"publishYear" db:"publish_year"`
	Category          string    `json:"category" db:"category"`
	Genre             []string  `json:"genre" db:"genre"`
	Language          string    `json:"language" db:"language"`
	Pages             int       `json:"pages" db:"pages"`
	Description       string    `json:"description" db:"description"`
	CoverImage        string    `json:"coverImage" db:"cover_image"`
	Location          string    `json:"location" db:"location"`
	Quantity          int       `json:"quantity" db:"quantity"`
	AvailableQuantity int       `json:"availableQuantity" db:"available_quantity"`
	IsActive          bool      `json:"isActive" db:"is_active"`
	AddedDate         time.Time `json:"addedDate" db:"added_date"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

type BookSummary struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

type CreateBookRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Author      string   `json:"author" validate:"required,max=100"`
	ISBN        string   `json:"isbn" validate:"required,isbn"`
	Publisher   string   `json:"publisher" validate:"required,max=100"`
	PublishYear int      `json:"publishYear" validate:"required,min=1800,maxyear"`
	Category    string   `json:"category" validate:"required,max=50"`
	Genre       []string `json:"genre" validate:"required,min=1,dive,required,max=30"`
	Language    string   `json:"language" validate:"omitempty,max=30"`
	Pages       int      `json:"pages" validate:"required,min=1"`
	Description string   `json:"description" validate:"max=1000"`
	CoverImage  string   `json:"coverImage" validate:"omitempty,url"`
	Location    string   `json:"location" validate:"required,max=50"`
	Quantity    int      `json:"quantity" validate:"required,min=1"`
}

// Book builds a catalog entry with every copy on the shelf.
func (r CreateBookRequest) Book() Book {
	lang := r.Language
	if lang == "" {
		lang = DefaultBookLanguage
	}
	return Book{
		Title:             r.Title,
		Author:            r.Author,
		ISBN:              r.ISBN,
		Publisher:         r.Publisher,
		PublishYear:       r.PublishYear,
		Category:          r.Category,
		Genre:             r.Genre,
		Language:          lang,
		Pages:             r.Pages,
		Description:       r.Description,
		CoverImage:        r.CoverImage,
		Location:          r.Location,
		Quantity:          r.Quantity,
		AvailableQuantity: r.Quantity,
		IsActive:          true,
	}
}

type BulkCreateBooksRequest struct {
	Books []CreateBookRequest `json:"books" validate:"required,min=1,max=100,dive"`
}

type UpdateBookRequest struct {
	Title             *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Author            *string  `json:"author" validate:"omitempty,min=1,max=100"`
	ISBN              *string  `json:"isbn" validate:"omitempty,isbn"`
	Publisher         *string  `json:"publisher" validate:"omitempty,min=1,max=100"`
	PublishYear       *int     `json:"publishYear" validate:"omitempty,min=1800,maxyear"`
	Category          *string  `json:"category" validate:"omitempty,min=1,max=50"`
	Genre             []string `json:"genre" validate:"omitempty,min=1,dive,required,max=30"`
	Language          *string  `json:"language" validate:"omitempty,max=30"`
	Pages             *int     `json:"pages" validate:"omitempty,min=1"`
	Description       *string  `json:"description" validate:"omitempty,max=1000"`
	CoverImage        *string  `json:"coverImage" validate:"omitempty,url"`
	Location          *string  `json:"location" validate:"omitempty,min=1,max=50"`
	Quantity          *int     `json:"quantity" validate:"omitempty,min=1"`
	AvailableQuantity *int     `json:"availableQuantity" validate:"omitempty,min=0"`
}

type UpdateBookQuantityRequest struct {
	Quantity          int `json:"quantity" validate:"required,min=1"`
	AvailableQuantity int `json:"availableQuantity" validate:"min=0,ltefield=Quantity"`
}

type BookFilter struct {
	Search    string
	Category  string
	Author    string
	Available *bool
	MinYear   int
	MaxYear   int
	SortBy    string
	SortOrder string
	Paging
}

var BookSortColumns = map[string]string{
	"title":       "title",
	"author":      "author",
	"publishYear": "publish_year",
	"addedDate":   "added_date",
}

type BulkResult struct {
	Created int `json:"created"`
}

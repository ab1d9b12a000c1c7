package dto

import (
	"github.com/articlehub/articlehub/internal/service"
)

// CreateArticleRequest is the body of POST /articles.
type CreateArticleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AuthorID    int64  `json:"authorId"`
}

// Validate checks lengths and the author reference.
func (r *CreateArticleRequest) Validate() error {
	if err := checkLength("title", r.Title, MinTitleLength, MaxTitleLength); err != nil {
		return err
	}
	if err := checkLength("description", r.Description, MinDescriptionLength, MaxDescriptionLength); err != nil {
		return err
	}
	if r.AuthorID <= 0 {
		return invalid("authorId", "must be a positive integer")
	}
	return nil
}

// ToInput converts the request to service input.
func (r *CreateArticleRequest) ToInput() service.CreateArticleInput {
	return service.CreateArticleInput{
		Title:       r.Title,
		Description: r.Description,
		AuthorID:    r.AuthorID,
	}
}

// UpdateArticleRequest is the body of PUT /articles.
// The description is always rewritten, the title only when present.
type UpdateArticleRequest struct {
	ID          *int64  `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description"`
}

// Validate checks the id and the supplied columns.
func (r *UpdateArticleRequest) Validate() error {
	if r.ID == nil || *r.ID <= 0 {
		return invalid("id", "must be a positive integer")
	}
	if r.Title != nil {
		if err := checkLength("title", *r.Title, MinTitleLength, MaxTitleLength); err != nil {
			return err
		}
	}
	if r.Description == nil {
		return invalid("description", "is required")
	}
	return checkLength("description", *r.Description, MinDescriptionLength, MaxDescriptionLength)
}

// ToInput converts the request to service input.
func (r *UpdateArticleRequest) ToInput() service.UpdateArticleInput {
	return service.UpdateArticleInput{
		ID:          *r.ID,
		Title:       r.Title,
		Description: r.Description,
	}
}

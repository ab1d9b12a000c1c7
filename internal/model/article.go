package model

import "time"

// Article is a piece of content written by a user.
type Article struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AuthorID    int64  `json:"authorId"`
	Author      *User  `json:"author,omitempty"`
	Timestamps
}

// ArticleQuery defines a filtered, paginated article listing.
// All set filters are AND-combined.
type ArticleQuery struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	AuthorID    *int64
	// AuthorIDs restricts the listing to these authors when non-nil.
	AuthorIDs []int64
	Limit     int // 0 means no limit
	Offset    int
}

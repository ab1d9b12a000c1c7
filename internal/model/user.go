// Package model defines domain entities for the application.
package model

import "time"

// Timestamps holds the audit columns shared by persisted entities.
// DeletedAt is set when a row is soft-deleted.
type Timestamps struct {
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the row has been soft-deleted.
func (t Timestamps) IsDeleted() bool {
	return t.DeletedAt != nil
}

// User represents an account that can author articles and hold sessions.
type User struct {
	ID           int64   `json:"id"`
	FirstName    string  `json:"firstname"`
	LastName     string  `json:"lastname"`
	Patronymic   *string `json:"patronymic,omitempty"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"` // Never serialize
	Timestamps
}

// Scrubbed returns a copy of the user without the password hash.
func (u *User) Scrubbed() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// NameFilter narrows users by case-insensitive name fragments.
// Empty fields are ignored; non-empty fields are AND-combined.
type NameFilter struct {
	FirstName  string
	LastName   string
	Patronymic string
}

// IsEmpty returns true if no fragment is set.
func (f NameFilter) IsEmpty() bool {
	return f.FirstName == "" && f.LastName == "" && f.Patronymic == ""
}

// UserQuery defines a paginated user listing.
type UserQuery struct {
	// IDs restricts the listing to these users when non-nil.
	IDs    []int64
	Limit  int // 0 means no limit
	Offset int
}

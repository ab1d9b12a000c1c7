package model

import "time"

// Session is the server-side record of an issued session token.
type Session struct {
	ID     int64  `json:"id"`
	Token  string `json:"-"`
	Exp    int    `json:"exp"` // lifetime in seconds
	UserID int64  `json:"userId"`
	Timestamps
}

// ExpiresAt returns the instant after which the session is no longer valid.
func (s *Session) ExpiresAt() time.Time {
	return s.CreatedAt.Add(time.Duration(s.Exp) * time.Second)
}

// IsExpired reports whether the session lifetime has elapsed at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt())
}

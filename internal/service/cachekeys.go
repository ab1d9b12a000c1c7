package service

import (
	"strconv"
)

// Cache key patterns. Keys are request URIs; only '*' is a wildcard.
const (
	articlesListKey     = "/articles"
	articlesListPattern = "/articles?*"
	articlesAllPattern  = "/articles/*"
	usersByQueryPattern = "/users?*"
	usersAllKey         = "/users/all"
	usersAllPattern     = "/users/all?*"
)

func articleKey(id int64) string {
	return "/articles/" + strconv.FormatInt(id, 10)
}

// articleListKeys covers every cached article listing.
func articleListKeys() []string {
	return []string{articlesListKey, articlesListPattern}
}

// userWriteKeys covers every cached read that embeds user rows, including
// article listings filtered by author name.
func userWriteKeys() []string {
	return append([]string{usersByQueryPattern, usersAllKey, usersAllPattern}, articleListKeys()...)
}

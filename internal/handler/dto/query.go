package dto

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/articlehub/articlehub/internal/model"
	"github.com/articlehub/articlehub/internal/service"
)

// dateLayout is accepted next to RFC 3339 for date filters.
const dateLayout = "2006-01-02"

// ParseUserFilter reads GET /users/all query parameters.
func ParseUserFilter(q url.Values) (service.UserFilter, error) {
	limit, skip, err := parsePage(q)
	if err != nil {
		return service.UserFilter{}, err
	}
	return service.UserFilter{
		Names: parseNames(q),
		Limit: limit,
		Skip:  skip,
	}, nil
}

// ParseArticleFilter reads GET /articles query parameters.
func ParseArticleFilter(q url.Values) (service.ArticleFilter, error) {
	limit, skip, err := parsePage(q)
	if err != nil {
		return service.ArticleFilter{}, err
	}

	f := service.ArticleFilter{
		Author: parseNames(q),
		Limit:  limit,
		Skip:   skip,
	}

	if f.StartDate, err = parseDate(q, "startDate"); err != nil {
		return service.ArticleFilter{}, err
	}
	if f.EndDate, err = parseDate(q, "endDate"); err != nil {
		return service.ArticleFilter{}, err
	}

	if raw := q.Get("authorId"); raw != "" {
		id, err := ParseID("authorId", raw)
		if err != nil {
			return service.ArticleFilter{}, err
		}
		f.AuthorID = &id
	}

	return f, nil
}

// ParseIdentity reads GET /users query parameters. An id wins over an email.
func ParseIdentity(q url.Values) (service.Identity, error) {
	if raw := q.Get("id"); raw != "" {
		id, err := ParseID("id", raw)
		if err != nil {
			return service.Identity{}, err
		}
		return service.Identity{ID: id}, nil
	}
	if email := q.Get("email"); email != "" {
		return service.Identity{Email: email}, nil
	}
	return service.Identity{}, invalid("id", "id or email is required")
}

// ParseID parses a positive integer identifier.
func ParseID(field, raw string) (int64, error) {
	if raw == "" {
		return 0, invalid(field, "is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid(field, "must be a positive integer")
	}
	return id, nil
}

func parsePage(q url.Values) (*int, int, error) {
	var limit *int
	if raw := q.Get("limit"); raw != "" {
		n, err := parseBounded("limit", raw, MaxLimit)
		if err != nil {
			return nil, 0, err
		}
		limit = &n
	}

	skip := 0
	if raw := q.Get("skip"); raw != "" {
		n, err := parseBounded("skip", raw, MaxSkip)
		if err != nil {
			return nil, 0, err
		}
		skip = n
	}

	return limit, skip, nil
}

func parseBounded(field, raw string, maxValue int) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, invalid(field, "must be a non-negative integer")
	}
	if n > maxValue {
		return 0, invalid(field, "must be at most %d", maxValue)
	}
	return n, nil
}

func parseNames(q url.Values) model.NameFilter {
	return model.NameFilter{
		FirstName:  strings.TrimSpace(q.Get("firstname")),
		LastName:   strings.TrimSpace(q.Get("lastname")),
		Patronymic: strings.TrimSpace(q.Get("patronymic")),
	}
}

func parseDate(q url.Values, field string) (*time.Time, error) {
	raw := q.Get(field)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, invalid(field, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
	}
	return &t, nil
}

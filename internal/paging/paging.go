package paging

import (
	"net/url"
	"strconv"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type Params struct {
	Page    int
	PerPage int
}

// FromQuery reads page and per_page, falling back to defaults for missing or
// unparsable values.
func FromQuery(q url.Values) Params {
	p := Params{Page: 1, PerPage: DefaultPerPage}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 {
		p.PerPage = min(v, MaxPerPage)
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p Params) Limit() int {
	return p.PerPage
}

// TotalPages is ceil(total / per_page).
func (p Params) TotalPages(total int) int {
	if p.PerPage <= 0 {
		return 1
	}
	return (total + p.PerPage - 1) / p.PerPage
}

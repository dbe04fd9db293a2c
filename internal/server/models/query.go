package models

import (
	"math"
	"strings"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100

	// MaxPage keeps (Page-1)*PerPage within int for any valid PerPage.
	MaxPage = math.MaxInt / MaxPerPage

	DefaultSortBy = "created_at"
)

// Sort orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// sortable lists the columns a listing may be ordered by.
var sortable = map[string]struct{}{
	"created_at": {},
	"updated_at": {},
	"due_date":   {},
	"title":      {},
	"priority":   {},
	"completed":  {},
}

// ListQuery selects one page of a user's todos.
type ListQuery struct {
	Page      int
	PerPage   int
	Completed *bool
	SortBy    string
	Order     string
}

// Normalize coerces out-of-range or unknown values to their defaults
// instead of rejecting them.
func (q ListQuery) Normalize() ListQuery {
	switch {
	case q.Page < 1:
		q.Page = DefaultPage
	case q.Page > MaxPage:
		q.Page = MaxPage
	}
	switch {
	case q.PerPage < 1:
		q.PerPage = 1
	case q.PerPage > MaxPerPage:
		q.PerPage = MaxPerPage
	}
	if _, ok := sortable[q.SortBy]; !ok {
		q.SortBy = DefaultSortBy
	}
	q.Order = strings.ToLower(q.Order)
	if q.Order != OrderAsc && q.Order != OrderDesc {
		q.Order = OrderDesc
	}
	return q
}

// Offset is the number of rows before the requested page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// PageCount is ceil(total/perPage), never less than 1.
func PageCount(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

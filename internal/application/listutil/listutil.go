package listutil

import (
	"net/url"
	"strconv"
)

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 20

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100}

// Page is one window of a paginated admin list.
type Page struct {
	Number  int `json:"page"`    // 1-indexed
	PerPage int `json:"perPage"` // rows per page
	Total   int `json:"total"`   // total matching rows, set by WithTotal
}

// ParsePage extracts page and per_page from URL query values.
// POST: returns a valid Page with defaults applied
func ParsePage(q url.Values) Page {
	n, _ := strconv.Atoi(q.Get("page"))
	if n < 1 {
		n = 1
	}
	per, _ := strconv.Atoi(q.Get("per_page"))
	if !isValidPerPage(per) {
		per = DefaultPerPage
	}
	return Page{Number: n, PerPage: per}
}

// WithTotal records the row count and clamps Number into range.
func (p Page) WithTotal(total int) Page {
	p.Total = total
	if last := p.TotalPages(); p.Number > last {
		p.Number = last
	}
	return p
}

// TotalPages returns ceil(Total / PerPage), at least 1.
func (p Page) TotalPages() int {
	if p.PerPage < 1 {
		return 1
	}
	pages := (p.Total + p.PerPage - 1) / p.PerPage
	if pages < 1 {
		return 1
	}
	return pages
}

// Offset returns the SQL OFFSET for the current page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages()
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}

package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// PageSize is the fixed number of rows per page in every admin list.
const PageSize = 10

// maxPageButtons is the width of the numbered pagination window.
const maxPageButtons = 5

// ViewParams carries the view-state changes submitted by a list form.
type ViewParams struct {
	Action string // "filter", "search", "role", "page", "toggle", "select_all", "clear"
	Search string // free-text search query
	Role   string // role filter; empty clears it
	Page   int    // requested 1-indexed page; 0 when absent
	ID     string // record identity for "toggle"
}

// ParseViewParams extracts a view-state change from submitted form values.
// PRE: none
// POST: returns ViewParams; Page is 0 when absent or non-numeric
func ParseViewParams(q url.Values) ViewParams {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		page = 0
	}
	return ViewParams{
		Action: q.Get("action"),
		Search: q.Get("q"),
		Role:   strings.TrimSpace(q.Get("role")),
		Page:   page,
		ID:     q.Get("id"),
	}
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page (1-indexed)
	PerPage    int // rows per page
	Total      int // total matching rows
	TotalPages int // ceil(Total / PerPage); 0 when Total is 0
}

// NewPageInfo computes pagination metadata for the fixed page size.
// PRE: total >= 0
// POST: TotalPages = ceil(total/PageSize); Page clamped to [1, max(1, TotalPages)]
func NewPageInfo(page, total int) PageInfo {
	if total < 0 {
		total = 0
	}
	totalPages := (total + PageSize - 1) / PageSize
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    PageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// ClampPage clamps a requested page to the valid range for total rows.
// POST: returns a page in [1, max(1, ceil(total/PageSize))]
func ClampPage(page, total int) int {
	return NewPageInfo(page, total).Page
}

// Offset returns the index of the first row on the current page.
// PRE: PageInfo is valid
// POST: Returns (Page-1) * PerPage
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number on the current page.
// PRE: PageInfo is valid
// POST: Returns 0 if Total is 0, otherwise Offset+1
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
// PRE: PageInfo is valid
// POST: Returns min(Offset+PerPage, Total)
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page exists.
func (p PageInfo) HasNext() bool {
	return p.Page < p.TotalPages
}

// PageNumbers returns the page numbers to display in pagination controls.
// Shows at most 5 pages centered around the current page.
// PRE: PageInfo is valid
// POST: Returns slice of at most 5 page numbers centered on current page; empty when TotalPages is 0
func (p PageInfo) PageNumbers() []int {
	if p.TotalPages == 0 {
		return nil
	}
	start := p.Page - maxPageButtons/2
	if start < 1 {
		start = 1
	}
	end := start + maxPageButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - maxPageButtons + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination returns true if pagination controls should be displayed.
// PRE: PageInfo is valid
// POST: Returns true if Total > PerPage
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

// Slice returns the rows of items that fall on the page described by p.
// PRE: p was computed from len(items)
// POST: Returns items[Offset : min(Offset+PerPage, len)]; never panics
func Slice[T any](items []T, p PageInfo) []T {
	start := p.Offset()
	if start >= len(items) || start < 0 {
		return nil
	}
	end := start + p.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

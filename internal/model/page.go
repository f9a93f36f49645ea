package model

// Page is the envelope returned by paginated collection endpoints
// (page/per_page query parameters).
type Page[T any] struct {
	Data       []T `json:"data" validate:"dive"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// DefaultPerPage matches the page size the dashboard requests.
const DefaultPerPage = 10

// PageParams normalizes page and perPage: pages start at 1 and a
// non-positive page size falls back to DefaultPerPage.
func PageParams(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return page, perPage
}

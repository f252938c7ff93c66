package domain

import (
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 30
	MaxPageSize     = 1000
)

// HistoryRecord is one browsing-history entry owned by the search backend.
// The cache layer only stores copies and never mutates them.
type HistoryRecord struct {
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	Domain    string    `json:"domain"`
	Title     string    `json:"title,omitempty"`
}

// Validate checks the fields required for indexing a record.
func (r *HistoryRecord) Validate() error {
	if r.URL == "" {
		return &InvalidQueryError{Reason: "url is required"}
	}
	if _, err := url.Parse(r.URL); err != nil {
		return &InvalidQueryError{Reason: fmt.Sprintf("invalid url: %v", err)}
	}
	if r.Domain == "" {
		return &InvalidQueryError{Reason: "domain is required"}
	}
	if r.Timestamp.IsZero() {
		return &InvalidQueryError{Reason: "timestamp is required"}
	}
	return nil
}

// SearchQuery holds the parameters of a single history search.
// Immutable once constructed; built per request from validated input.
type SearchQuery struct {
	Keyword   string
	Domain    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// NewSearchQuery constructs a query with pagination defaults applied.
func NewSearchQuery(keyword, domain string, startDate, endDate *time.Time, page, pageSize int) SearchQuery {
	if page == 0 {
		page = DefaultPage
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	return SearchQuery{
		Keyword:   keyword,
		Domain:    domain,
		StartDate: startDate,
		EndDate:   endDate,
		Page:      page,
		PageSize:  pageSize,
	}
}

// Validate enforces pagination bounds. Must pass before any cache or
// backend access happens.
func (q SearchQuery) Validate() error {
	if q.Page < 1 {
		return &InvalidQueryError{Reason: fmt.Sprintf("page must be >= 1, got %d", q.Page)}
	}
	if q.PageSize < 1 {
		return &InvalidQueryError{Reason: fmt.Sprintf("pageSize must be >= 1, got %d", q.PageSize)}
	}
	if q.PageSize > MaxPageSize {
		return &InvalidQueryError{Reason: fmt.Sprintf("pageSize must be <= %d, got %d", MaxPageSize, q.PageSize)}
	}
	if q.StartDate != nil && q.EndDate != nil && q.EndDate.Before(*q.StartDate) {
		return &InvalidQueryError{Reason: "endDate must not be before startDate"}
	}
	return nil
}

// Offset returns the zero-based offset into the result set.
func (q SearchQuery) Offset() int64 {
	return int64(q.Page-1) * int64(q.PageSize)
}

// SearchResult is one page of matches plus the total match count.
// Page and PageSize echo the request's pagination.
type SearchResult struct {
	Items    []HistoryRecord `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

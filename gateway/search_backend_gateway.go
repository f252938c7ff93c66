package gateway

import (
	"context"

	"history-server/domain"
	"history-server/driver"
)

// SearchDriver is the search-engine driver consumed by the gateway.
type SearchDriver interface {
	Search(ctx context.Context, req driver.SearchRequestDriver) (*driver.SearchResultDriver, error)
	Insert(ctx context.Context, doc driver.HistoryDocDriver) error
	EnsureIndex(ctx context.Context) error
}

// SearchBackendGateway adapts the search driver to the domain and wraps
// its failures as BackendError.
type SearchBackendGateway struct {
	driver SearchDriver
}

func NewSearchBackendGateway(d SearchDriver) *SearchBackendGateway {
	return &SearchBackendGateway{driver: d}
}

func (g *SearchBackendGateway) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	req := driver.SearchRequestDriver{
		Keyword: query.Keyword,
		Domain:  query.Domain,
		Offset:  query.Offset(),
		Limit:   int64(query.PageSize),
	}
	if query.StartDate != nil {
		req.StartUnix = query.StartDate.Unix()
		req.HasStart = true
	}
	if query.EndDate != nil {
		req.EndUnix = query.EndDate.Unix()
		req.HasEnd = true
	}

	res, err := g.driver.Search(ctx, req)
	if err != nil {
		return nil, &domain.BackendError{Op: "Search", Err: err.Error()}
	}

	items := make([]domain.HistoryRecord, len(res.Hits))
	for i, hit := range res.Hits {
		items[i] = domain.HistoryRecord{
			URL:       hit.URL,
			Timestamp: hit.Timestamp,
			Domain:    hit.Domain,
			Title:     hit.Title,
		}
	}

	return &domain.SearchResult{
		Items:    items,
		Total:    res.Total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

func (g *SearchBackendGateway) Insert(ctx context.Context, record domain.HistoryRecord) error {
	doc := driver.HistoryDocDriver{
		URL:       record.URL,
		Timestamp: record.Timestamp,
		Domain:    record.Domain,
		Title:     record.Title,
	}
	if err := g.driver.Insert(ctx, doc); err != nil {
		return &domain.BackendError{Op: "Insert", Err: err.Error()}
	}
	return nil
}

func (g *SearchBackendGateway) EnsureIndex(ctx context.Context) error {
	if err := g.driver.EnsureIndex(ctx); err != nil {
		return &domain.BackendError{Op: "EnsureIndex", Err: err.Error()}
	}
	return nil
}

package port

import (
	"context"

	"history-server/domain"
)

// SearchBackend is the full-text index behind the cache layer. The cache
// never owns result correctness; anything returned here is authoritative.
type SearchBackend interface {
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error)
	Insert(ctx context.Context, record domain.HistoryRecord) error
	EnsureIndex(ctx context.Context) error
}

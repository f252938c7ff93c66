package usecase

import (
	"context"
	"log/slog"

	"history-server/domain"
	"history-server/normalize"
	"history-server/port"
)

// InsertHistoryUsecase indexes a history record into the search backend.
// The write path bypasses the search cache: new records become visible
// through the backend's own indexing, bounded by the cache TTL.
type InsertHistoryUsecase struct {
	backend    port.SearchBackend
	normalizer *normalize.Normalizer
	logger     *slog.Logger
}

func NewInsertHistoryUsecase(backend port.SearchBackend, normalizer *normalize.Normalizer, logger *slog.Logger) *InsertHistoryUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsertHistoryUsecase{
		backend:    backend,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Execute validates the record, canonicalizes its URL through the
// normalization rules, and indexes it.
func (u *InsertHistoryUsecase) Execute(ctx context.Context, record domain.HistoryRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	if u.normalizer != nil {
		normalized := u.normalizer.Normalize(ctx, record.URL)
		if normalized != record.URL {
			u.logger.Info("url normalized on insert", "original", record.URL, "normalized", normalized)
			record.URL = normalized
		}
	}

	return u.backend.Insert(ctx, record)
}

package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"history-server/domain"
	"history-server/driver"
	"history-server/gateway"
)

// mockSearchBackend counts calls and serves a fixed result.
type mockSearchBackend struct {
	calls  atomic.Int64
	result *domain.SearchResult
	err    error
}

func (m *mockSearchBackend) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	// Echo pagination like the real gateway does.
	result := *m.result
	result.Page = query.Page
	result.PageSize = query.PageSize
	return &result, nil
}

func (m *mockSearchBackend) Insert(ctx context.Context, record domain.HistoryRecord) error {
	return nil
}

func (m *mockSearchBackend) EnsureIndex(ctx context.Context) error {
	return nil
}

// faultyCacheStore fails every operation.
type faultyCacheStore struct {
	setCalls atomic.Int64
}

func (f *faultyCacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, &domain.CacheError{Op: "Get", Err: "connection refused"}
}

func (f *faultyCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.setCalls.Add(1)
	return &domain.CacheError{Op: "Set", Err: "connection refused"}
}

func (f *faultyCacheStore) DeleteMatching(ctx context.Context, prefix string) (int64, error) {
	return 0, &domain.CacheError{Op: "DeleteMatching", Err: "connection refused"}
}

func testConfig() SearchHistoryConfig {
	return SearchHistoryConfig{
		CacheEnabled: true,
		CacheTTL:     2 * time.Minute,
		StoreTimeout: time.Second,
	}
}

func singleItemResult() *domain.SearchResult {
	return &domain.SearchResult{
		Items: []domain.HistoryRecord{
			{
				URL:       "https://example.com/page",
				Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
				Domain:    "example.com",
				Title:     "Example",
			},
		},
		Total: 1,
	}
}

func TestSearchHistoryValidatesBeforeAnyAccess(t *testing.T) {
	tests := []struct {
		name  string
		query domain.SearchQuery
	}{
		{"page zero", domain.SearchQuery{Page: 0, PageSize: 30}},
		{"page size over limit", domain.SearchQuery{Page: 1, PageSize: 1001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockSearchBackend{result: singleItemResult()}
			store := driver.NewMemoryCacheDriver()
			uc := NewSearchHistoryUsecase(backend, gateway.NewCacheStoreGateway(store), testConfig(), nil)

			_, err := uc.Execute(context.Background(), tt.query)

			var invalid *domain.InvalidQueryError
			if !errors.As(err, &invalid) {
				t.Fatalf("Execute() error = %v, want *InvalidQueryError", err)
			}
			if backend.calls.Load() != 0 {
				t.Errorf("backend calls = %d, want 0", backend.calls.Load())
			}
			if store.Len() != 0 {
				t.Errorf("cache entries = %d, want 0", store.Len())
			}
		})
	}
}

func TestSearchHistoryCachesNonEmptyResults(t *testing.T) {
	backend := &mockSearchBackend{result: singleItemResult()}
	store := driver.NewMemoryCacheDriver()
	uc := NewSearchHistoryUsecase(backend, gateway.NewCacheStoreGateway(store), testConfig(), nil)

	query := domain.NewSearchQuery("test", "", nil, nil, 1, 30)

	first, err := uc.Execute(context.Background(), query)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	uc.WaitForPopulation()

	if backend.calls.Load() != 1 {
		t.Fatalf("backend calls after first search = %d, want 1", backend.calls.Load())
	}
	if store.Len() != 1 {
		t.Fatalf("cache entries = %d, want 1", store.Len())
	}

	second, err := uc.Execute(context.Background(), query)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}

	if backend.calls.Load() != 1 {
		t.Errorf("backend calls after cached search = %d, want 1", backend.calls.Load())
	}
	if len(second.Items) != len(first.Items) || second.Total != first.Total {
		t.Errorf("cached result differs: got %+v, want %+v", second, first)
	}
	if second.Items[0].URL != first.Items[0].URL {
		t.Errorf("cached URL = %q, want %q", second.Items[0].URL, first.Items[0].URL)
	}
}

func TestSearchHistoryDistinctPagesCachedIndependently(t *testing.T) {
	backend := &mockSearchBackend{result: singleItemResult()}
	store := driver.NewMemoryCacheDriver()
	uc := NewSearchHistoryUsecase(backend, gateway.NewCacheStoreGateway(store), testConfig(), nil)

	page1 := domain.NewSearchQuery("test", "", nil, nil, 1, 30)
	page2 := domain.NewSearchQuery("test", "", nil, nil, 2, 30)

	if _, err := uc.Execute(context.Background(), page1); err != nil {
		t.Fatalf("page 1 Execute() error = %v", err)
	}
	uc.WaitForPopulation()

	if _, err := uc.Execute(context.Background(), page2); err != nil {
		t.Fatalf("page 2 Execute() error = %v", err)
	}
	uc.WaitForPopulation()

	if backend.calls.Load() != 2 {
		t.Errorf("backend calls = %d, want 2 (each page misses separately)", backend.calls.Load())
	}
	if store.Len() != 2 {
		t.Errorf("cache entries = %d, want 2", store.Len())
	}
}

func TestSearchHistoryNeverCachesEmptyResults(t *testing.T) {
	backend := &mockSearchBackend{result: &domain.SearchResult{Items: []domain.HistoryRecord{}, Total: 0}}
	store := driver.NewMemoryCacheDriver()
	uc := NewSearchHistoryUsecase(backend, gateway.NewCacheStoreGateway(store), testConfig(), nil)

	query := domain.NewSearchQuery("nothing", "", nil, nil, 1, 30)

	for i := 0; i < 2; i++ {
		result, err := uc.Execute(context.Background(), query)
		if err != nil {
			t.Fatalf("Execute() #%d error = %v", i+1, err)
		}
		if len(result.Items) != 0 {
			t.Fatalf("Execute() #%d items = %d, want 0", i+1, len(result.Items))
		}
	}
	uc.WaitForPopulation()

	if store.Len() != 0 {
		t.Errorf("cache entries = %d, want 0 (empty results are never cached)", store.Len())
	}
	if backend.calls.Load() != 2 {
		t.Errorf("backend calls = %d, want 2 (no entry to hit)", backend.calls.Load())
	}
}

func TestSearchHistoryFailsOpenOnStoreFaults(t *testing.T) {
	backend := &mockSearchBackend{result: singleItemResult()}
	store := &faultyCacheStore{}
	uc := NewSearchHistoryUsecase(backend, store, testConfig(), nil)

	query := domain.NewSearchQuery("test", "", nil, nil, 1, 30)

	result, err := uc.Execute(context.Background(), query)
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil (cache faults must be absorbed)", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(result.Items))
	}
	uc.WaitForPopulation()

	if backend.calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls.Load())
	}
	if store.setCalls.Load() != 1 {
		t.Errorf("set attempts = %d, want 1 (population still attempted)", store.setCalls.Load())
	}
}

func TestSearchHistoryTreatsCorruptEntryAsMiss(t *testing.T) {
	backend := &mockSearchBackend{result: singleItemResult()}
	store := driver.NewMemoryCacheDriver()
	uc := NewSearchHistoryUsecase(backend, gateway.NewCacheStoreGateway(store), testConfig(), nil)

	query := domain.NewSearchQuery("test", "", nil, nil, 1, 30)
	key := domain.CacheKey(query)

	if err := store.Set(context.Background(), key, []byte("{not json"), time.Minute); err != nil {
		t.Fatalf("seeding corrupt entry: %v", err)
	}

	result, err := uc.Execute(context.Background(), query)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items = %d, want 1 (from backend)", len(result.Items))
	}
	if backend.calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1 (corrupt entry treated as miss)", backend.calls.Load())
	}
}

func TestSearchHistoryBackendErrorPropagates(t *testing.T) {
	backend := &mockSearchBackend{err: &domain.BackendError{Op: "Search", Err: "engine down"}}
	store := driver.NewMemoryCacheDriver()
	uc := NewSearchHistoryUsecase(backend, gateway.NewCacheStoreGateway(store), testConfig(), nil)

	query := domain.NewSearchQuery("test", "", nil, nil, 1, 30)

	_, err := uc.Execute(context.Background(), query)

	var backendErr *domain.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("Execute() error = %v, want *BackendError", err)
	}
	if store.Len() != 0 {
		t.Errorf("cache entries = %d, want 0", store.Len())
	}
}

func TestSearchHistoryDisabledCacheSkipsStore(t *testing.T) {
	backend := &mockSearchBackend{result: singleItemResult()}
	store := driver.NewMemoryCacheDriver()
	cfg := testConfig()
	cfg.CacheEnabled = false
	uc := NewSearchHistoryUsecase(backend, gateway.NewCacheStoreGateway(store), cfg, nil)

	query := domain.NewSearchQuery("test", "", nil, nil, 1, 30)

	for i := 0; i < 2; i++ {
		if _, err := uc.Execute(context.Background(), query); err != nil {
			t.Fatalf("Execute() #%d error = %v", i+1, err)
		}
	}
	uc.WaitForPopulation()

	if backend.calls.Load() != 2 {
		t.Errorf("backend calls = %d, want 2 (cache disabled)", backend.calls.Load())
	}
	if store.Len() != 0 {
		t.Errorf("cache entries = %d, want 0 (cache disabled)", store.Len())
	}
}

func TestSearchHistoryPopulationSurvivesRequestCancellation(t *testing.T) {
	backend := &mockSearchBackend{result: singleItemResult()}
	store := driver.NewMemoryCacheDriver()
	uc := NewSearchHistoryUsecase(backend, gateway.NewCacheStoreGateway(store), testConfig(), nil)

	query := domain.NewSearchQuery("test", "", nil, nil, 1, 30)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := uc.Execute(ctx, query)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	cancel()
	uc.WaitForPopulation()

	if store.Len() != 1 {
		t.Errorf("cache entries = %d, want 1 (population detached from request)", store.Len())
	}
}

package domain

import (
	"testing"
	"time"
)

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name  string
		query SearchQuery
		want  string
	}{
		{
			name:  "keyword only with default pagination",
			query: NewSearchQuery("test", "", nil, nil, 1, 30),
			want:  "history:search:test::::1:30",
		},
		{
			name:  "all fields set",
			query: NewSearchQuery("test", "example.com", datePtr(2024, 1, 1), datePtr(2024, 12, 31), 1, 30),
			want:  "history:search:test:example.com:2024-01-01:2024-12-31:1:30",
		},
		{
			name:  "no fields set",
			query: NewSearchQuery("", "", nil, nil, 1, 30),
			want:  "history:search:::::1:30",
		},
		{
			name:  "second page",
			query: NewSearchQuery("test", "", nil, nil, 2, 30),
			want:  "history:search:test::::2:30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CacheKey(tt.query); got != tt.want {
				t.Errorf("CacheKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheKeyDistinguishesFieldwiseDifferentQueries(t *testing.T) {
	base := NewSearchQuery("test", "example.com", datePtr(2024, 1, 1), datePtr(2024, 12, 31), 1, 30)

	variants := []struct {
		name  string
		query SearchQuery
	}{
		{"different keyword", NewSearchQuery("other", "example.com", datePtr(2024, 1, 1), datePtr(2024, 12, 31), 1, 30)},
		{"different casing", NewSearchQuery("Test", "example.com", datePtr(2024, 1, 1), datePtr(2024, 12, 31), 1, 30)},
		{"different domain", NewSearchQuery("test", "other.com", datePtr(2024, 1, 1), datePtr(2024, 12, 31), 1, 30)},
		{"different start date", NewSearchQuery("test", "example.com", datePtr(2024, 2, 1), datePtr(2024, 12, 31), 1, 30)},
		{"different end date", NewSearchQuery("test", "example.com", datePtr(2024, 1, 1), datePtr(2024, 11, 30), 1, 30)},
		{"missing start date", NewSearchQuery("test", "example.com", nil, datePtr(2024, 12, 31), 1, 30)},
		{"different page", NewSearchQuery("test", "example.com", datePtr(2024, 1, 1), datePtr(2024, 12, 31), 2, 30)},
		{"different page size", NewSearchQuery("test", "example.com", datePtr(2024, 1, 1), datePtr(2024, 12, 31), 1, 50)},
	}

	baseKey := CacheKey(base)
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			if got := CacheKey(v.query); got == baseKey {
				t.Errorf("CacheKey() = %q, want a key distinct from base", got)
			}
		})
	}
}

func TestCacheKeyEqualQueriesEqualKeys(t *testing.T) {
	a := NewSearchQuery("test", "example.com", datePtr(2024, 1, 1), nil, 3, 50)
	b := NewSearchQuery("test", "example.com", datePtr(2024, 1, 1), nil, 3, 50)

	if CacheKey(a) != CacheKey(b) {
		t.Errorf("field-wise equal queries produced different keys: %q vs %q", CacheKey(a), CacheKey(b))
	}
}

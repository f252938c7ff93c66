package domain

import (
	"errors"
	"testing"
	"time"
)

func TestSearchQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   SearchQuery
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			query:   NewSearchQuery("", "", nil, nil, 0, 0),
			wantErr: false,
		},
		{
			name:    "page size at limit",
			query:   NewSearchQuery("", "", nil, nil, 1, 1000),
			wantErr: false,
		},
		{
			name:    "page below one",
			query:   SearchQuery{Page: 0, PageSize: 30},
			wantErr: true,
		},
		{
			name:    "negative page",
			query:   SearchQuery{Page: -1, PageSize: 30},
			wantErr: true,
		},
		{
			name:    "page size zero",
			query:   SearchQuery{Page: 1, PageSize: 0},
			wantErr: true,
		},
		{
			name:    "page size over limit",
			query:   SearchQuery{Page: 1, PageSize: 1001},
			wantErr: true,
		},
		{
			name: "end date before start date",
			query: NewSearchQuery("", "", datePtr(2024, 6, 1), datePtr(2024, 1, 1), 1, 30),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invalid *InvalidQueryError
				if !errors.As(err, &invalid) {
					t.Errorf("Validate() error type = %T, want *InvalidQueryError", err)
				}
			}
		})
	}
}

func TestNewSearchQueryDefaults(t *testing.T) {
	q := NewSearchQuery("k", "d", nil, nil, 0, 0)

	if q.Page != DefaultPage {
		t.Errorf("Page = %d, want %d", q.Page, DefaultPage)
	}
	if q.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", q.PageSize, DefaultPageSize)
	}
}

func TestSearchQueryOffset(t *testing.T) {
	tests := []struct {
		page     int
		pageSize int
		want     int64
	}{
		{1, 30, 0},
		{2, 30, 30},
		{3, 100, 200},
	}

	for _, tt := range tests {
		q := SearchQuery{Page: tt.page, PageSize: tt.pageSize}
		if got := q.Offset(); got != tt.want {
			t.Errorf("Offset() for page=%d pageSize=%d = %d, want %d", tt.page, tt.pageSize, got, tt.want)
		}
	}
}

func TestHistoryRecordValidate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		record  HistoryRecord
		wantErr bool
	}{
		{
			name:    "valid record",
			record:  HistoryRecord{URL: "https://example.com/page", Timestamp: now, Domain: "example.com"},
			wantErr: false,
		},
		{
			name:    "missing url",
			record:  HistoryRecord{Timestamp: now, Domain: "example.com"},
			wantErr: true,
		},
		{
			name:    "missing domain",
			record:  HistoryRecord{URL: "https://example.com", Timestamp: now},
			wantErr: true,
		},
		{
			name:    "missing timestamp",
			record:  HistoryRecord{URL: "https://example.com", Domain: "example.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package driver

import "time"

// HistoryDocDriver is a history record as stored in the search engine.
type HistoryDocDriver struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Domain    string    `json:"domain"`
	Timestamp time.Time `json:"-"`
	// UnixTime is the indexed form of Timestamp, filterable and sortable.
	UnixTime int64 `json:"timestamp"`
}

// SearchRequestDriver carries a search request at the driver level.
type SearchRequestDriver struct {
	Keyword   string
	Domain    string
	StartUnix int64
	HasStart  bool
	EndUnix   int64
	HasEnd    bool
	Offset    int64
	Limit     int64
}

// SearchHitDriver is one search hit converted back to record shape.
type SearchHitDriver struct {
	URL       string
	Title     string
	Domain    string
	Timestamp time.Time
}

// SearchResultDriver is a page of hits plus the estimated total.
type SearchResultDriver struct {
	Hits  []SearchHitDriver
	Total int64
}

// RuleModel is a normalization rule row from the database.
type RuleModel struct {
	ID          int32
	Pattern     string
	Replacement string
	Enabled     bool
	OrderIndex  int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DriverError represents an error from the driver layer.
type DriverError struct {
	Op  string
	Err string
}

func (e *DriverError) Error() string {
	return e.Op + ": " + e.Err
}

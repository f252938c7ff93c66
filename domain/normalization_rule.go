package domain

import "time"

// NormalizationRule rewrites matching URLs to their canonical form.
// Rules are applied in order_index order; the first matching rule wins.
type NormalizationRule struct {
	ID          int32     `json:"id"`
	Pattern     string    `json:"pattern"`
	Replacement string    `json:"replacement"`
	Enabled     bool      `json:"enabled"`
	OrderIndex  int32     `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizationResult reports how a URL was rewritten.
type NormalizationResult struct {
	OriginalURL   string `json:"original_url"`
	NormalizedURL string `json:"normalized_url"`
	Matched       bool   `json:"matched"`
}

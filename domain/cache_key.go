package domain

import (
	"strconv"
	"strings"
	"time"
)

// CacheKeyPrefix namespaces every search-cache entry. Invalidation deletes
// this prefix wholesale.
const CacheKeyPrefix = "history:search:"

const cacheKeyDateLayout = "2006-01-02"

// CacheKey derives the cache key for a query. Field order is fixed
// (keyword, domain, start_date, end_date, page, page_size) and absent
// optional fields encode as empty segments, so position rather than
// presence disambiguates fields. Two field-wise equal queries always map
// to the same key and any field difference, pagination included, yields a
// different key.
//
// Keyword and domain are taken as-is: differently-cased but otherwise
// equal queries are deliberately cached separately.
func CacheKey(q SearchQuery) string {
	segments := []string{
		q.Keyword,
		q.Domain,
		formatCacheKeyDate(q.StartDate),
		formatCacheKeyDate(q.EndDate),
		strconv.Itoa(q.Page),
		strconv.Itoa(q.PageSize),
	}
	return CacheKeyPrefix + strings.Join(segments, ":")
}

func formatCacheKeyDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(cacheKeyDateLayout)
}

package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const indexTaskTimeout = 15 * time.Second

// MeilisearchDriver talks to the Meilisearch index holding history
// records. Keyword matching runs over url and title; domain and timestamp
// are filterable and results are sorted by recency.
type MeilisearchDriver struct {
	client    meilisearch.ServiceManager
	index     meilisearch.IndexManager
	indexName string
}

func NewMeilisearchDriver(client meilisearch.ServiceManager, indexName string) *MeilisearchDriver {
	return &MeilisearchDriver{
		client:    client,
		index:     client.Index(indexName),
		indexName: indexName,
	}
}

func (d *MeilisearchDriver) Search(ctx context.Context, req SearchRequestDriver) (*SearchResultDriver, error) {
	searchRequest := &meilisearch.SearchRequest{
		Limit:  req.Limit,
		Offset: req.Offset,
		Sort:   []string{"timestamp:desc"},
	}

	if filter := buildFilter(req); filter != "" {
		searchRequest.Filter = filter
	}

	result, err := d.index.SearchWithContext(ctx, req.Keyword, searchRequest)
	if err != nil {
		return nil, &DriverError{Op: "Search", Err: err.Error()}
	}

	hits := make([]SearchHitDriver, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, SearchHitDriver{
			URL:       hitString(hit, "url"),
			Title:     hitString(hit, "title"),
			Domain:    hitString(hit, "domain"),
			Timestamp: time.Unix(hitInt64(hit, "timestamp"), 0).UTC(),
		})
	}

	return &SearchResultDriver{
		Hits:  hits,
		Total: result.EstimatedTotalHits,
	}, nil
}

func (d *MeilisearchDriver) Insert(ctx context.Context, doc HistoryDocDriver) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.UnixTime = doc.Timestamp.Unix()

	task, err := d.index.AddDocumentsWithContext(ctx, []HistoryDocDriver{doc}, nil)
	if err != nil {
		return &DriverError{Op: "Insert", Err: err.Error()}
	}

	if _, err := d.index.WaitForTaskWithContext(ctx, task.TaskUID, indexTaskTimeout); err != nil {
		return &DriverError{Op: "Insert", Err: "failed to wait for indexing task: " + err.Error()}
	}

	return nil
}

func (d *MeilisearchDriver) EnsureIndex(ctx context.Context) error {
	if _, err := d.index.FetchInfoWithContext(ctx); err != nil {
		task, err := d.client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
			Uid:        d.indexName,
			PrimaryKey: "id",
		})
		if err != nil {
			return &DriverError{Op: "EnsureIndex", Err: "failed to create index: " + err.Error()}
		}
		if _, err := d.client.WaitForTaskWithContext(ctx, task.TaskUID, indexTaskTimeout); err != nil {
			return &DriverError{Op: "EnsureIndex", Err: "failed to wait for index creation: " + err.Error()}
		}
	}

	if _, err := d.index.UpdateFilterableAttributesWithContext(ctx, &[]interface{}{"domain", "timestamp"}); err != nil {
		return &DriverError{Op: "EnsureIndex", Err: "failed to set filterable attributes: " + err.Error()}
	}

	if _, err := d.index.UpdateSortableAttributesWithContext(ctx, &[]string{"timestamp"}); err != nil {
		return &DriverError{Op: "EnsureIndex", Err: "failed to set sortable attributes: " + err.Error()}
	}

	return nil
}

// buildFilter assembles the Meilisearch filter expression for the
// structured part of a query.
func buildFilter(req SearchRequestDriver) string {
	var clauses []string

	if req.Domain != "" {
		clauses = append(clauses, fmt.Sprintf(`domain = "%s"`, escapeFilterValue(req.Domain)))
	}
	if req.HasStart {
		clauses = append(clauses, fmt.Sprintf("timestamp >= %d", req.StartUnix))
	}
	if req.HasEnd {
		clauses = append(clauses, fmt.Sprintf("timestamp <= %d", req.EndUnix))
	}

	return strings.Join(clauses, " AND ")
}

func escapeFilterValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}

func hitString(hit meilisearch.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func hitInt64(hit meilisearch.Hit, key string) int64 {
	raw, ok := hit[key]
	if !ok {
		return 0
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return n
}

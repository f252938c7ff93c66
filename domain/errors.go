package domain

// InvalidQueryError means the caller supplied parameters outside the
// validated bounds. Maps to a 400 at the REST boundary; never retried.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return "invalid query: " + e.Reason
}

// BackendError means the search backend failed or timed out. Maps to a
// 500 at the REST boundary. Retries are the backend client's concern.
type BackendError struct {
	Op  string
	Err string
}

func (e *BackendError) Error() string {
	return e.Op + ": " + e.Err
}

// CacheError represents a cache-store fault. It never crosses the service
// boundary: callers of the search usecase see a miss or a no-op write.
type CacheError struct {
	Op  string
	Err string
}

func (e *CacheError) Error() string {
	return e.Op + ": " + e.Err
}

// RepositoryError represents an error from the rule repository layer.
type RepositoryError struct {
	Op  string
	Err string
}

func (e *RepositoryError) Error() string {
	return e.Op + ": " + e.Err
}

package matching

import "errors"

var (
	// ErrCatalogUnavailable fails the turn: no guideline-free reply is produced in its place.
	ErrCatalogUnavailable = errors.New("guideline catalog unavailable")

	ErrEmbeddingUnavailable = errors.New("message embedding unavailable")
	ErrVectorSearchFailed   = errors.New("vector similarity search failed")
)

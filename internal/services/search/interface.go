package search

import (
	"context"

	"github.com/denisAlshanov/ytplatform/internal/models"
)

// Searcher runs a single video search and returns at most limit results in
// the backend's ranking order.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

const watchURLTemplate = "https://www.youtube.com/watch?v=%s"

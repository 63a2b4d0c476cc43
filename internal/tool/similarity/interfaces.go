package similarity

import (
	"context"

	"github.com/Cyclone1070/fraudinv/internal/vectorindex"
)

// searcher is the slice of the vector index the tools need.
type searcher interface {
	Query(ctx context.Context, collection, text string, n int, category string) ([]vectorindex.Match, error)
	Count(ctx context.Context, collection string) (int64, error)
}

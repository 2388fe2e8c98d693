package domain

import (
	"context"
	"time"
)

// CacheRepository is the persistent store of previously resolved products.
// GetByBarcode never performs network I/O and returns stale rows as-is;
// freshness is the resolver's decision.
type CacheRepository interface {
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	Save(ctx context.Context, product *Product) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	History(ctx context.Context) ([]Product, error)
	ByCategory(ctx context.Context, category Category) ([]Product, error)
}

// SourceClient is the uniform lookup capability every external catalog
// exposes. Implementations return ErrProductNotFound when the source
// affirmatively has no record and ErrSourceUnavailable on transport
// failure.
type SourceClient interface {
	FetchByCode(ctx context.Context, barcode string) (*Product, error)
}

// SearchClient is the text-search capability. Hits are provisional
// products: normalized far enough to be scored, not guaranteed complete.
type SearchClient interface {
	Search(ctx context.Context, query string, page, pageSize int) ([]Product, error)
}

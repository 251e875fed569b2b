package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProduceQueryClient defines the interface for the marketplace produce query service
type ProduceQueryClient interface {
	QueryProduce(ctx context.Context, query ProduceQuery) (*ProduceQueryResponse, error)
}

// RecipeGenerator produces a raw recipe response (CSV: / Recipe: sections)
// for a free-text meal query
type RecipeGenerator interface {
	GenerateRecipe(ctx context.Context, query string) (string, error)
}

package query

import (
	"context"

	"github.com/kailas-cloud/contentfinder/internal/domain/content"
	"github.com/kailas-cloud/contentfinder/internal/domain/contextmap"
	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
)

// SemanticSearcher embeds a query and returns the closest rows, ascending by distance.
type SemanticSearcher interface {
	SearchSimilar(ctx context.Context, q content.SimilarQuery) ([]content.Scored, error)
}

// MetadataSearcher looks rows up by their metadata. Every method returns rows
// most recent first.
type MetadataSearcher interface {
	FindBySectionKey(ctx context.Context, key string, limit int) ([]content.Record, error)
	FindByContextSectionKey(ctx context.Context, key string, limit int) ([]content.Record, error)
	FindByMetadataFullText(ctx context.Context, query string, limit int) ([]content.Record, error)
	FindByPageID(ctx context.Context, pageID string, limit int) ([]content.Record, error)
}

// Interpreter produces advisory hints for a message. A nil result means no hints.
type Interpreter interface {
	Interpret(ctx context.Context, message string, reqCtx contextmap.Map) (*criteria.Hints, error)
}

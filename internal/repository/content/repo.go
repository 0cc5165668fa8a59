package content

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/contentfinder/internal/db"
	"github.com/kailas-cloud/contentfinder/internal/domain"
	domcontent "github.com/kailas-cloud/contentfinder/internal/domain/content"
	"github.com/kailas-cloud/contentfinder/internal/domain/locale"
	"github.com/kailas-cloud/contentfinder/internal/domain/search/filter"
)

// maxTextTerms caps the number of terms sent in a metadata full-text query.
const maxTextTerms = 16

// store is the consumer interface for content operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo reads content rows. It implements both the similarity and the
// metadata retrieval contracts of the query service.
type Repo struct {
	store    store
	embedder domain.Embedder
	cfg      IndexConfig
}

// New creates a content repository.
func New(s store, embedder domain.Embedder, cfg IndexConfig) *Repo {
	return &Repo{store: s, embedder: embedder, cfg: cfg}
}

var savedAtDesc = &db.SortBy{Field: FieldSavedAt, Desc: true}

// SearchSimilar embeds q.Text and returns the closest rows, ascending by distance.
func (r *Repo) SearchSimilar(ctx context.Context, q domcontent.SimilarQuery) ([]domcontent.Scored, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, nil
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	emb, err := r.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	filters, err := similarFilters(q)
	if err != nil {
		return nil, fmt.Errorf("similar filters: %w", err)
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.indexName(),
		Filters:      filters,
		Vector:       emb.Embedding,
		K:            q.Limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}

	out := make([]domcontent.Scored, 0, len(sr.Entries))
	for i := range sr.Entries {
		e := &sr.Entries[i]
		if q.DistanceThreshold > 0 && e.Score > q.DistanceThreshold {
			continue
		}
		out = append(out, domcontent.Scored{
			Record:   entryToRecord(e, r.cfg.rowPrefix()),
			Distance: e.Score,
		})
	}

	if q.SectionHint != "" {
		// Stable partition: rows of the hinted section first, distance order kept within each half.
		slices.SortStableFunc(out, func(a, b domcontent.Scored) int {
			return rank(a, q.SectionHint) - rank(b, q.SectionHint)
		})
	}
	return out, nil
}

func rank(s domcontent.Scored, hint string) int {
	if domcontent.SameSection(s.Section, hint) {
		return 0
	}
	return 1
}

// similarFilters builds the KNN pre-filter: role and tenant must match,
// any tag or keyword may match. A TAG match cannot select rows missing the
// field, so role-less rows only arrive through the metadata lookups.
func similarFilters(q domcontent.SimilarQuery) (filter.Expression, error) {
	var must, should []filter.Condition
	if q.Role != "" {
		c, err := filter.NewMatch(FieldRole, q.Role)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, c)
	}
	if q.Tenant != "" {
		c, err := filter.NewMatch(FieldTenant, q.Tenant)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, c)
	}
	if len(q.Tags) > 0 {
		c, err := filter.NewMatch(FieldTags, q.Tags...)
		if err != nil {
			return filter.Expression{}, err
		}
		should = append(should, c)
	}
	if len(q.Keywords) > 0 {
		c, err := filter.NewMatch(FieldKeywords, q.Keywords...)
		if err != nil {
			return filter.Expression{}, err
		}
		should = append(should, c)
	}
	return filter.NewExpression(must, should, nil)
}

// FindBySectionKey returns rows of the given section, most recent first.
func (r *Repo) FindBySectionKey(ctx context.Context, key string, limit int) ([]domcontent.Record, error) {
	return r.findByTag(ctx, FieldSection, key, limit)
}

// FindByContextSectionKey returns rows declaring the section in their context, most recent first.
func (r *Repo) FindByContextSectionKey(ctx context.Context, key string, limit int) ([]domcontent.Record, error) {
	return r.findByTag(ctx, FieldContextSection, key, limit)
}

// FindByPageID returns rows of the given page, most recent first.
func (r *Repo) FindByPageID(ctx context.Context, pageID string, limit int) ([]domcontent.Record, error) {
	return r.findByTag(ctx, FieldPageID, pageID, limit)
}

// FindByMetadataFullText matches any term of query against the metadata text
// field only; body text is never searched. Most recent first.
func (r *Repo) FindByMetadataFullText(ctx context.Context, query string, limit int) ([]domcontent.Record, error) {
	terms := textTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.cfg.indexName(),
		Terms:        terms,
		Fields:       []string{FieldMetadata},
		SortBy:       savedAtDesc,
		Limit:        limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search metadata: %w", err)
	}
	return r.records(sr), nil
}

func (r *Repo) findByTag(ctx context.Context, field, value string, limit int) ([]domcontent.Record, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	cond, err := filter.NewMatch(field, value)
	if err != nil {
		return nil, err
	}
	expr, err := filter.NewExpression([]filter.Condition{cond}, nil, nil)
	if err != nil {
		return nil, err
	}
	sr, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    r.cfg.indexName(),
		Filters:      expr,
		SortBy:       savedAtDesc,
		Limit:        limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("find by %s: %w", field, err)
	}
	return r.records(sr), nil
}

func (r *Repo) records(sr *db.SearchResult) []domcontent.Record {
	if sr == nil {
		return nil
	}
	out := make([]domcontent.Record, 0, len(sr.Entries))
	for i := range sr.Entries {
		out = append(out, entryToRecord(&sr.Entries[i], r.cfg.rowPrefix()))
	}
	return out
}

// textTerms splits a message into distinct folded words of two or more characters.
func textTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(locale.Fold(query)) {
		if len(w) < 2 || slices.Contains(terms, w) {
			continue
		}
		terms = append(terms, w)
		if len(terms) == maxTextTerms {
			break
		}
	}
	return terms
}

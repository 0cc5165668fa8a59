package query

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/contentfinder/internal/domain"
	"github.com/kailas-cloud/contentfinder/internal/domain/content"
	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
	"github.com/kailas-cloud/contentfinder/internal/logger"
)

// Collaborator labels for logs and metrics.
const (
	sourceSemantic       = "semantic"
	sourceMetadata       = "metadata"
	sourceDiscovery      = "discovery"
	sourceInterpretation = "interpretation"
)

const itemsSuffix = "-items"

// retrieval is the raw output of one attempt, before reconciliation.
type retrieval struct {
	semantic []content.Scored
	metadata []content.Record
	// sectionKeys drove metadata retrieval, in the order they were tried.
	sectionKeys []string
}

func (r *retrieval) isEmpty() bool {
	return len(r.semantic) == 0 && len(r.metadata) == 0
}

// retrieve runs semantic and metadata retrieval concurrently, then section
// discovery when both came back empty and a page id is known. Collaborator
// failures count as zero rows; only cancellation is returned.
func (s *Service) retrieve(ctx context.Context, crit criteria.Criteria) (*retrieval, error) {
	out := &retrieval{}
	if key := crit.SectionKey(); key != "" {
		out.sectionKeys = []string{key}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.semantic = s.searchSemantic(gctx, crit)
		return gctx.Err()
	})
	g.Go(func() error {
		if key := crit.SectionKey(); key != "" {
			out.metadata = s.searchSection(gctx, key, crit.Limit())
		} else {
			out.metadata = s.searchFullText(gctx, crit.Message(), crit.Limit())
		}
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if out.isEmpty() && crit.PageID() != "" {
		keys, rows := s.discover(ctx, crit)
		out.sectionKeys = append(out.sectionKeys, keys...)
		out.metadata = rows
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// semanticText is the embedding query: the section key leads when present.
func semanticText(crit criteria.Criteria) string {
	if key := crit.SectionKey(); key != "" {
		return key + " " + crit.Message()
	}
	return crit.Message()
}

func (s *Service) searchSemantic(ctx context.Context, crit criteria.Criteria) []content.Scored {
	start := time.Now()
	rows, err := s.semantic.SearchSimilar(ctx, content.SimilarQuery{
		Text:              semanticText(crit),
		Role:              crit.Filters().Role,
		Limit:             crit.Limit(),
		Tags:              crit.Tags(),
		Keywords:          crit.Keywords(),
		Tenant:            crit.Tenant(),
		DistanceThreshold: crit.MaxDistance(),
		SectionHint:       crit.SectionKey(),
	})
	s.metrics.observe(sourceSemantic, start)
	if err != nil {
		s.degrade(ctx, sourceSemantic, err)
		return nil
	}
	s.metrics.rows(sourceSemantic, len(rows))
	return rows
}

// searchSection queries every related key, then rows declaring the key in their context.
func (s *Service) searchSection(ctx context.Context, key string, limit int) []content.Record {
	var rows []content.Record
	for _, k := range relatedKeys(key) {
		rows = append(rows, s.metadataCall(ctx, func(ctx context.Context) ([]content.Record, error) {
			return s.metadata.FindBySectionKey(ctx, k, limit)
		})...)
	}
	rows = append(rows, s.metadataCall(ctx, func(ctx context.Context) ([]content.Record, error) {
		return s.metadata.FindByContextSectionKey(ctx, key, limit)
	})...)
	return rows
}

func (s *Service) searchFullText(ctx context.Context, message string, limit int) []content.Record {
	return s.metadataCall(ctx, func(ctx context.Context) ([]content.Record, error) {
		return s.metadata.FindByMetadataFullText(ctx, message, limit)
	})
}

// metadataCall runs one metadata lookup, turning failure into zero rows.
func (s *Service) metadataCall(
	ctx context.Context, call func(context.Context) ([]content.Record, error),
) []content.Record {
	if ctx.Err() != nil {
		return nil
	}
	start := time.Now()
	rows, err := call(ctx)
	s.metrics.observe(sourceMetadata, start)
	if err != nil {
		s.degrade(ctx, sourceMetadata, err)
		return nil
	}
	s.metrics.rows(sourceMetadata, len(rows))
	return rows
}

func (s *Service) degrade(ctx context.Context, source string, err error) {
	if ctx.Err() != nil {
		return
	}
	s.metrics.failure(source)
	logger.FromContext(ctx).Warn("Retrieval source unavailable, continuing without it",
		zap.String("source", source),
		zap.Error(err),
		zap.NamedError("kind", domain.ErrUpstreamUnavailable),
	)
}

// relatedKeys expands a section key: the key itself, its base without trailing
// qualifiers, and the "-items" variant of each.
func relatedKeys(key string) []string {
	var out []string
	add := func(k string) {
		if k != "" && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	toggle := func(k string) string {
		if trimmed, ok := strings.CutSuffix(k, itemsSuffix); ok {
			return trimmed
		}
		return k + itemsSuffix
	}

	base := content.SectionBase(key)
	add(key)
	add(base)
	add(toggle(key))
	add(toggle(base))
	return out
}

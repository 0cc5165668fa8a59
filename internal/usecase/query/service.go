// Package query answers natural-language content queries by fusing semantic
// and metadata retrieval, with progressive relaxation of over-specified criteria.
package query

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/contentfinder/internal/domain"
	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
	"github.com/kailas-cloud/contentfinder/internal/domain/locale"
	"github.com/kailas-cloud/contentfinder/internal/domain/search/result"
	"github.com/kailas-cloud/contentfinder/internal/logger"
)

// Defaults for Options fields left zero.
const (
	DefaultDiscoveryScanLimit = 50
	DefaultMaxDiscovered      = 5
	DefaultInterpretTimeout   = 3 * time.Second
)

// Options tune retrieval.
type Options struct {
	DiscoveryScanLimit int           // rows scanned per page id during section discovery
	MaxDiscovered      int           // discovered section keys tried per attempt
	InterpretTimeout   time.Duration // bound on the optional interpretation call
	MaxDistance        float64       // default similarity threshold; 0 means none
}

func (o Options) withDefaults() Options {
	if o.DiscoveryScanLimit <= 0 {
		o.DiscoveryScanLimit = DefaultDiscoveryScanLimit
	}
	if o.MaxDiscovered <= 0 {
		o.MaxDiscovered = DefaultMaxDiscovered
	}
	if o.InterpretTimeout <= 0 {
		o.InterpretTimeout = DefaultInterpretTimeout
	}
	return o
}

// Response is the reconciled answer to one query.
type Response struct {
	Items []result.Record
	Total int
	Stage Stage
}

// Service runs the query pipeline. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	semantic    SemanticSearcher
	metadata    MetadataSearcher
	interpreter Interpreter // optional
	builder     *criteria.Builder
	tables      *locale.Tables
	opts        Options
	metrics     Metrics
}

// New creates a query service. interpreter may be nil.
func New(
	semantic SemanticSearcher,
	metadata MetadataSearcher,
	interpreter Interpreter,
	tables *locale.Tables,
	opts Options,
	metrics Metrics,
) *Service {
	if tables == nil {
		tables = locale.Default()
	}
	return &Service{
		semantic:    semantic,
		metadata:    metadata,
		interpreter: interpreter,
		builder:     criteria.NewBuilder(tables),
		tables:      tables,
		opts:        opts.withDefaults(),
		metrics:     metrics,
	}
}

// Query answers req. An empty result is not an error: it is reported with
// StageEmpty. Only an invalid request or a cancelled context fails the call.
func (s *Service) Query(ctx context.Context, req criteria.Request) (Response, error) {
	// Reject bad input before any collaborator is called.
	if _, err := s.builder.Build(req, nil); err != nil {
		return Response{}, err
	}
	if req.MaxDistance <= 0 {
		req.MaxDistance = s.opts.MaxDistance
	}

	hints := s.interpret(ctx, req)
	crit, err := s.builder.Build(req, hints)
	if err != nil {
		return Response{}, err
	}

	items, stage, err := s.relax(ctx, crit)
	if err != nil {
		return Response{}, err
	}

	s.metrics.stage(stage)
	logger.FromContext(ctx).Info("Query answered",
		zap.String("stage", string(stage)),
		zap.Int("items", len(items)),
		zap.String("section_key", crit.SectionKey()),
	)
	return Response{Items: items, Total: len(items), Stage: stage}, nil
}

// interpret asks the optional interpreter for hints. Any failure yields no hints.
func (s *Service) interpret(ctx context.Context, req criteria.Request) *criteria.Hints {
	if s.interpreter == nil {
		return nil
	}
	ictx, cancel := context.WithTimeout(ctx, s.opts.InterpretTimeout)
	defer cancel()

	start := time.Now()
	hints, err := s.interpreter.Interpret(ictx, req.Message, req.Context)
	s.metrics.observe(sourceInterpretation, start)
	if err != nil {
		s.metrics.interpretation("error")
		logger.FromContext(ctx).Warn("Interpretation unavailable, continuing without hints",
			zap.Error(fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)))
		return nil
	}
	if hints == nil {
		s.metrics.interpretation("empty")
		return nil
	}
	s.metrics.interpretation("ok")
	return hints
}

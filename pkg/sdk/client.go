package contentfinder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/contentfinder/internal/db"
	dbRedis "github.com/kailas-cloud/contentfinder/internal/db/redis"
	"github.com/kailas-cloud/contentfinder/internal/domain"
	"github.com/kailas-cloud/contentfinder/internal/domain/contextmap"
	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
	"github.com/kailas-cloud/contentfinder/internal/domain/search/result"
	budgetrepo "github.com/kailas-cloud/contentfinder/internal/repository/budget"
	contentrepo "github.com/kailas-cloud/contentfinder/internal/repository/content"
	embeddinguc "github.com/kailas-cloud/contentfinder/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/contentfinder/internal/usecase/health"
	queryuc "github.com/kailas-cloud/contentfinder/internal/usecase/query"
	usageuc "github.com/kailas-cloud/contentfinder/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultVectorDimensions = 1536
	defaultHNSWM            = 32
	defaultHNSWEFConstruct  = 400

	budgetDailyTTL   = 48 * time.Hour
	budgetMonthlyTTL = 62 * 24 * time.Hour
)

type queryUseCase interface {
	Query(ctx context.Context, req criteria.Request) (queryuc.Response, error)
}

// Client is the contentfinder SDK entry point.
type Client struct {
	store     db.Store
	querySvc  queryUseCase
	healthSvc healthUseCase
	usageSvc  usageUseCase
	obs       *observer
}

// New creates a Client, connects to Redis and makes sure the content index exists.
// The provided context bounds the readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:        domain.DefaultKeyPrefix,
		vectorDimensions: defaultVectorDimensions,
		hnswM:            defaultHNSWM,
		hnswEFConstruct:  defaultHNSWEFConstruct,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("contentfinder: database address required (use WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("contentfinder: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("contentfinder: database not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	var tracker *embeddinguc.BudgetTracker
	var embedder domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		action := embeddinguc.BudgetActionWarn
		if cfg.rejectOverBudget {
			action = embeddinguc.BudgetActionReject
		}
		tracker = embeddinguc.NewBudgetTracker(embeddinguc.BudgetConfig{
			Provider:     "sdk",
			KeyPrefix:    cfg.keyPrefix,
			DailyLimit:   cfg.dailyTokenLimit,
			MonthlyLimit: cfg.monthlyTokenLimit,
			Action:       action,
		}, nil).WithStore(ctx, budgetrepo.New(store, budgetDailyTTL, budgetMonthlyTTL))
		embedder = embeddinguc.NewInstrumentedEmbedder(&embedderAdapter{inner: cfg.embedder},
			"sdk", "", tracker, nil, nil)
	}

	repo := contentrepo.New(store, embedder, contentrepo.IndexConfig{
		KeyPrefix:   cfg.keyPrefix,
		VectorDim:   cfg.vectorDimensions,
		Algorithm:   db.VectorHNSW,
		Distance:    db.DistanceCosine,
		M:           cfg.hnswM,
		EFConstruct: cfg.hnswEFConstruct,
	})
	if err := repo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("contentfinder: ensure index: %w", err)
	}

	querySvc := queryuc.New(repo, repo, nil, nil, queryuc.Options{MaxDistance: cfg.maxDistance}, queryuc.Metrics{})
	healthSvc := healthuc.New(store, healthuc.Component{Name: "index", Checker: repo})

	// A nil *BudgetTracker must not reach the interface.
	usageSvc := usageuc.New(nil)
	if tracker != nil {
		usageSvc = usageuc.New(tracker)
	}

	return &Client{
		store:     store,
		querySvc:  querySvc,
		healthSvc: healthSvc,
		usageSvc:  usageSvc,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Query answers req. An empty answer is not an error; it comes back with StageEmpty.
func (c *Client) Query(ctx context.Context, req QueryRequest) (_ QueryResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("query", start, err) }()

	var cm contextmap.Map
	if req.Context != nil {
		cm = contextmap.FromAny(req.Context)
	}
	resp, err := c.querySvc.Query(ctx, criteria.Request{
		Message:     req.Message,
		SectionKey:  req.SectionKey,
		Role:        req.Role,
		Locale:      req.Locale,
		Language:    req.Language,
		Country:     req.Country,
		PageID:      req.PageID,
		Tags:        req.Tags,
		Keywords:    req.Keywords,
		Context:     cm,
		Limit:       req.Limit,
		MaxDistance: req.MaxDistance,
	})
	if err != nil {
		return QueryResult{}, fmt.Errorf("query: %w", err)
	}

	items := make([]Record, len(resp.Items))
	for i := range resp.Items {
		items[i] = recordFromDomain(&resp.Items[i])
	}
	return QueryResult{Items: items, Total: resp.Total, Stage: Stage(resp.Stage)}, nil
}

func recordFromDomain(r *result.Record) Record {
	return Record{
		SequenceID:   r.SequenceID,
		Section:      r.Section,
		SectionPath:  r.SectionPath,
		SectionURI:   r.SectionURI,
		CleansedText: r.CleansedText,
		ContentRole:  r.ContentRole,
		Source:       Source(r.Source),
		MatchTerms:   r.MatchTerms,
		Tenant:       r.Tenant,
		PageID:       r.PageID,
		Locale:       r.Locale,
		Country:      r.Country,
		Language:     r.Language,
		LastModified: r.LastModified,
		Distance:     r.Distance,
	}
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder fails every call, so semantic retrieval degrades to empty.
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, ErrEmbedderNotConfigured
}

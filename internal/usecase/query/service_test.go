package query

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/contentfinder/internal/domain"
	"github.com/kailas-cloud/contentfinder/internal/domain/content"
	"github.com/kailas-cloud/contentfinder/internal/domain/contextmap"
	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
	"github.com/kailas-cloud/contentfinder/internal/domain/search/result"
)

func TestQuery_BlankMessage(t *testing.T) {
	corpus := koreaCorpus()
	svc := newTestService(t, corpus, &mockInterpreter{})

	for _, msg := range []string{"", "   \t"} {
		_, err := svc.Query(context.Background(), criteria.Request{Message: msg})
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("message %q: expected ErrInvalidRequest, got %v", msg, err)
		}
	}
	if len(corpus.calls) != 0 {
		t.Errorf("no retrieval expected, got %v", corpus.calls)
	}
}

func TestQuery_KoreaHeadline(t *testing.T) {
	corpus := koreaCorpus()
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{
		Message: "headline for accordion-section for Korea",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != StageStrict {
		t.Errorf("expected strict stage, got %s", resp.Stage)
	}
	if !slices.Equal(sequenceIDs(resp), []string{"cf1", "cf2"}) {
		t.Fatalf("unexpected sequence ids %v", sequenceIDs(resp))
	}
	if resp.Items[0].CleansedText != "iPad Pro" || resp.Items[1].CleansedText != "iPad Prod Test" {
		t.Errorf("unexpected items %+v", resp.Items)
	}
	for _, it := range resp.Items {
		if it.Source != result.SourceSemantic {
			t.Errorf("semantic source must win collisions, got %s", it.Source)
		}
		if !slices.Contains(it.MatchTerms, "accordion-section") || !slices.Contains(it.MatchTerms, "headline") {
			t.Errorf("unexpected match terms %v", it.MatchTerms)
		}
	}
	if resp.Total != 2 {
		t.Errorf("expected total 2, got %d", resp.Total)
	}

	q := corpus.lastSimilar()
	if q.Text != "accordion-section headline for accordion-section for Korea" {
		t.Errorf("unexpected embedding text %q", q.Text)
	}
	if q.Role != "" {
		t.Errorf("advisory role must not filter, got %q", q.Role)
	}
	if q.SectionHint != "accordion-section" {
		t.Errorf("unexpected section hint %q", q.SectionHint)
	}
	if !corpus.called("section:accordion-section") || !corpus.called("section:accordion-section-items") ||
		!corpus.called("context:accordion-section") {
		t.Errorf("expected related section lookups, got %v", corpus.calls)
	}
	if corpus.called("fulltext") {
		t.Error("full-text must not run when a section key is known")
	}
}

func TestQuery_Idempotent(t *testing.T) {
	corpus := koreaCorpus()
	corpus.rows = append(corpus.rows, row("hero-section", "copy", "Supercharged"))
	svc := newTestService(t, corpus, nil)
	req := criteria.Request{Message: "headline for accordion-section for Korea"}

	keys := func() []content.DedupKey {
		resp, err := svc.Query(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := make([]content.DedupKey, len(resp.Items))
		for i, it := range resp.Items {
			out[i] = content.DedupKey{
				SectionPath: it.SectionPath,
				ContentRole: it.ContentRole,
				TextHash:    content.HashText(it.CleansedText),
			}
		}
		return out
	}
	first, second := keys(), keys()
	if !slices.Equal(first, second) {
		t.Errorf("results differ across runs: %v vs %v", first, second)
	}
}

func TestQuery_RoleRelaxed(t *testing.T) {
	corpus := koreaCorpus()
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{
		Message:    "show accordion-section",
		SectionKey: "accordion-section",
		Role:       "subhead",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != StageRoleRelaxed {
		t.Fatalf("expected role_relaxed, got %s", resp.Stage)
	}
	if len(resp.Items) != 2 {
		t.Errorf("expected recovered content, got %d items", len(resp.Items))
	}
	if corpus.lastSimilar().Role != "" {
		t.Error("role filter must be dropped after relaxation")
	}
}

func TestQuery_ContextRelaxed(t *testing.T) {
	corpus := koreaCorpus()
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{
		Message:    "show accordion-section",
		SectionKey: "accordion-section",
		Role:       "subhead",
		Country:    "US",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != StageContextRelaxed {
		t.Fatalf("expected context_relaxed, got %s", resp.Stage)
	}
	if !slices.Equal(sequenceIDs(resp), []string{"cf1", "cf2"}) {
		t.Errorf("unexpected sequence ids %v", sequenceIDs(resp))
	}
}

func TestQuery_ContextRelaxedWithoutRole(t *testing.T) {
	corpus := koreaCorpus()
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{
		Message:    "show accordion-section",
		SectionKey: "accordion-section",
		Locale:     "en_US",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != StageContextRelaxed {
		t.Fatalf("expected context_relaxed, got %s", resp.Stage)
	}
}

func TestQuery_Empty(t *testing.T) {
	svc := newTestService(t, &fakeCorpus{}, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{
		Message: "nothing here",
		Role:    "headline",
		Country: "KR",
	})
	if err != nil {
		t.Fatalf("empty result is not an error: %v", err)
	}
	if resp.Stage != StageEmpty {
		t.Errorf("expected empty stage, got %s", resp.Stage)
	}
	if resp.Items == nil || len(resp.Items) != 0 || resp.Total != 0 {
		t.Errorf("expected empty non-nil items, got %+v", resp.Items)
	}
}

func TestQuery_NoFiltersGoesStraightToEmpty(t *testing.T) {
	corpus := &fakeCorpus{}
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{Message: "nothing here"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != StageEmpty {
		t.Errorf("expected empty stage, got %s", resp.Stage)
	}
	n := 0
	for _, c := range corpus.calls {
		if c == "similar" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("expected a single attempt, got %d", n)
	}
}

func TestQuery_SemanticFailureDegrades(t *testing.T) {
	corpus := koreaCorpus()
	corpus.searchSimilarFn = func(_ context.Context, _ content.SimilarQuery) ([]content.Scored, error) {
		return nil, fmt.Errorf("embed: %w", domain.ErrEmbeddingProviderError)
	}
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_failures_total"}, []string{"source"})
	svc := New(corpus, corpus, nil, nil, Options{}, Metrics{FailuresTotal: failures})

	resp, err := svc.Query(context.Background(), criteria.Request{Message: "show accordion-section"})
	if err != nil {
		t.Fatalf("collaborator failure must not fail the query: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected metadata rows, got %d", len(resp.Items))
	}
	for _, it := range resp.Items {
		if it.Source != result.SourceMetadata {
			t.Errorf("expected metadata source, got %s", it.Source)
		}
	}
	if got := testutil.ToFloat64(failures.WithLabelValues(sourceSemantic)); got != 1 {
		t.Errorf("expected 1 semantic failure, got %v", got)
	}
}

func TestQuery_MetadataFailureDegrades(t *testing.T) {
	corpus := koreaCorpus()
	corpus.metadataErr = errors.New("connection refused")
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{Message: "show accordion-section"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Errorf("expected semantic rows, got %d", len(resp.Items))
	}
}

func TestQuery_Cancelled(t *testing.T) {
	svc := newTestService(t, koreaCorpus(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Query(ctx, criteria.Request{Message: "show accordion-section"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestQuery_FullTextWithoutSectionKey(t *testing.T) {
	corpus := &fakeCorpus{fullText: []content.Record{row("promo-section", "copy", "Trade in")}}
	corpus.searchSimilarFn = func(_ context.Context, _ content.SimilarQuery) ([]content.Scored, error) {
		return nil, nil
	}
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{Message: "trade in offers"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !corpus.called("fulltext") {
		t.Error("expected full-text lookup")
	}
	if len(resp.Items) != 1 || resp.Items[0].Source != result.SourceMetadata {
		t.Errorf("unexpected items %+v", resp.Items)
	}
}

func TestQuery_SectionDiscovery(t *testing.T) {
	hero := row("hero-section", "headline", "Meet iPad Pro")
	hero.PageID = "ipad-pro"
	corpus := &fakeCorpus{rows: []content.Record{hero}}
	corpus.searchSimilarFn = func(_ context.Context, _ content.SimilarQuery) ([]content.Scored, error) {
		return nil, nil
	}
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{
		Message: "what is on the page",
		PageID:  "ipad-pro",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !corpus.called("page:ipad-pro") || !corpus.called("section:hero-section") {
		t.Fatalf("expected discovery lookups, got %v", corpus.calls)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected discovered row, got %d", len(resp.Items))
	}
	if !slices.Equal(resp.Items[0].MatchTerms, []string{"hero-section", "headline", "ipad-pro"}) {
		t.Errorf("unexpected match terms %v", resp.Items[0].MatchTerms)
	}
	if resp.Stage != StageStrict {
		t.Errorf("expected strict stage, got %s", resp.Stage)
	}
}

func TestQuery_DiscoveryStopsAtLimit(t *testing.T) {
	hero := row("hero-section", "headline", "Meet iPad Pro")
	hero.PageID = "ipad-pro"
	promo := row("promo-section", "copy", "Buy now")
	promo.PageID = "ipad-pro"
	corpus := &fakeCorpus{rows: []content.Record{hero, promo}}
	corpus.searchSimilarFn = func(_ context.Context, _ content.SimilarQuery) ([]content.Scored, error) {
		return nil, nil
	}
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{
		Message: "what is on the page",
		PageID:  "ipad-pro",
		Limit:   1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !corpus.called("section:hero-section") {
		t.Fatalf("expected the first discovered key to be tried, got %v", corpus.calls)
	}
	if corpus.called("section:promo-section") {
		t.Errorf("discovery must stop once the limit is reached, got %v", corpus.calls)
	}
	if len(resp.Items) != 1 || resp.Items[0].Section != "hero-section" {
		t.Errorf("unexpected items %+v", resp.Items)
	}
}

func TestQuery_TenantScopesMetadata(t *testing.T) {
	mine := row("hero-section", "headline", "mine")
	mine.Tenant = "acme"
	other := row("hero-section", "headline", "other tenant text")
	other.Tenant = "globex"
	shared := row("hero-section", "headline", "no tenant")
	corpus := &fakeCorpus{rows: []content.Record{mine, other, shared}}
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{
		Message: "show hero-section",
		Context: contextmap.New().With(contextmap.Scalar("acme"), "tenant"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != StageStrict {
		t.Fatalf("expected strict stage, got %s", resp.Stage)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected only the tenant's row, got %+v", resp.Items)
	}
	if it := resp.Items[0]; it.Tenant != "acme" || it.CleansedText != "mine" {
		t.Errorf("unexpected item %+v", it)
	}
	if !corpus.called("section:hero-section") {
		t.Errorf("metadata lookup expected, got %v", corpus.calls)
	}
}

func TestQuery_TenantSurvivesRelaxation(t *testing.T) {
	other := row("accordion-section", "headline", "other tenant text")
	other.Tenant = "globex"
	corpus := &fakeCorpus{rows: []content.Record{other}}
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{
		Message:    "show accordion-section",
		SectionKey: "accordion-section",
		Role:       "subhead",
		Country:    "US",
		Context:    contextmap.New().With(contextmap.Scalar("acme"), "tenant"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != StageEmpty || len(resp.Items) != 0 {
		t.Fatalf("another tenant's row must never surface, got %s %+v", resp.Stage, resp.Items)
	}
	if corpus.lastSimilar().Tenant != "acme" {
		t.Error("tenant pre-filter must stay after context relaxation")
	}
}

func TestQuery_UnrelatedContextKeySkipsContextRelaxation(t *testing.T) {
	corpus := &fakeCorpus{}
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{
		Message: "nothing here",
		Context: contextmap.New().With(contextmap.Scalar("ipad"), "brand"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stage != StageEmpty {
		t.Errorf("expected empty stage, got %s", resp.Stage)
	}
	n := 0
	for _, c := range corpus.calls {
		if c == "similar" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("expected a single attempt, got %d", n)
	}
}

func TestQuery_RolelessRowComesFromMetadata(t *testing.T) {
	corpus := &fakeCorpus{rows: []content.Record{row("hero-section", "", "shared copy")}}
	svc := newTestService(t, corpus, nil)

	resp, err := svc.Query(context.Background(), criteria.Request{
		Message:    "show hero-section",
		SectionKey: "hero-section",
		Role:       "headline",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if corpus.lastSimilar().Role != "headline" {
		t.Error("explicit role must pre-filter the similarity search")
	}
	if resp.Stage != StageStrict || len(resp.Items) != 1 {
		t.Fatalf("expected the role-less row in strict stage, got %s %+v", resp.Stage, resp.Items)
	}
	if resp.Items[0].Source != result.SourceMetadata {
		t.Errorf("expected metadata source, got %s", resp.Items[0].Source)
	}
}

func TestQuery_InterpretationHints(t *testing.T) {
	corpus := koreaCorpus()
	interp := &mockInterpreter{hints: &criteria.Hints{SectionKey: "accordion-section"}}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_interp_total"}, []string{"status"})
	svc := New(corpus, corpus, interp, nil, Options{}, Metrics{InterpretationTotal: outcomes})

	resp, err := svc.Query(context.Background(), criteria.Request{Message: "what does the banner say"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !corpus.called("section:accordion-section") {
		t.Errorf("expected hinted section lookup, got %v", corpus.calls)
	}
	if len(resp.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(resp.Items))
	}
	if got := testutil.ToFloat64(outcomes.WithLabelValues("ok")); got != 1 {
		t.Errorf("expected 1 ok interpretation, got %v", got)
	}
}

func TestQuery_InterpretationFailureIgnored(t *testing.T) {
	corpus := koreaCorpus()
	interp := &mockInterpreter{err: errors.New("rate limited")}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_interp_err_total"}, []string{"status"})
	svc := New(corpus, corpus, interp, nil, Options{}, Metrics{InterpretationTotal: outcomes})

	resp, err := svc.Query(context.Background(), criteria.Request{Message: "show accordion-section"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(resp.Items))
	}
	if got := testutil.ToFloat64(outcomes.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed interpretation, got %v", got)
	}
}

func TestQuery_InterpretationTimeout(t *testing.T) {
	corpus := koreaCorpus()
	interp := &mockInterpreter{delay: time.Second, hints: &criteria.Hints{SectionKey: "hero-section"}}
	svc := New(corpus, corpus, interp, nil, Options{InterpretTimeout: 10 * time.Millisecond}, Metrics{})

	resp, err := svc.Query(context.Background(), criteria.Request{Message: "show accordion-section"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if corpus.called("section:hero-section") {
		t.Error("late hints must be ignored")
	}
	if len(resp.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(resp.Items))
	}
}

func TestQuery_DefaultMaxDistance(t *testing.T) {
	corpus := koreaCorpus()
	svc := New(corpus, corpus, nil, nil, Options{MaxDistance: 0.35}, Metrics{})

	if _, err := svc.Query(context.Background(), criteria.Request{Message: "show accordion-section"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := corpus.lastSimilar().DistanceThreshold; got != 0.35 {
		t.Errorf("expected default threshold 0.35, got %v", got)
	}

	if _, err := svc.Query(context.Background(), criteria.Request{
		Message: "show accordion-section", MaxDistance: 0.5,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := corpus.lastSimilar().DistanceThreshold; got != 0.5 {
		t.Errorf("expected request threshold 0.5, got %v", got)
	}
}

func TestQuery_StageMetric(t *testing.T) {
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_queries_total"}, []string{"stage"})
	svc := New(&fakeCorpus{}, &fakeCorpus{}, nil, nil, Options{}, Metrics{QueriesTotal: queries})

	if _, err := svc.Query(context.Background(), criteria.Request{Message: "x y"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := testutil.ToFloat64(queries.WithLabelValues(string(StageEmpty))); got != 1 {
		t.Errorf("expected 1 empty query, got %v", got)
	}
}

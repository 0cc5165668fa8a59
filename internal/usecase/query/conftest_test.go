package query

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/contentfinder/internal/domain/content"
	"github.com/kailas-cloud/contentfinder/internal/domain/contextmap"
	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
)

// fakeCorpus implements both retrieval contracts over an in-memory row list.
// Similarity order is the row order; rows sharing the section hint come first.
type fakeCorpus struct {
	rows     []content.Record
	fullText []content.Record

	searchSimilarFn func(ctx context.Context, q content.SimilarQuery) ([]content.Scored, error)
	metadataErr     error

	mu    sync.Mutex
	calls []string
	last  content.SimilarQuery
}

func (f *fakeCorpus) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeCorpus) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.calls, call)
}

func (f *fakeCorpus) lastSimilar() content.SimilarQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeCorpus) SearchSimilar(ctx context.Context, q content.SimilarQuery) ([]content.Scored, error) {
	f.record("similar")
	f.mu.Lock()
	f.last = q
	f.mu.Unlock()
	if f.searchSimilarFn != nil {
		return f.searchSimilarFn(ctx, q)
	}
	var hinted, rest []content.Scored
	for i, r := range f.rows {
		if q.Role != "" && r.ContentRole != q.Role {
			continue
		}
		if q.Tenant != "" && r.Tenant != q.Tenant {
			continue
		}
		s := content.Scored{Record: r, Distance: 0.1 * float64(i+1)}
		if content.SameSection(r.Section, q.SectionHint) {
			hinted = append(hinted, s)
		} else {
			rest = append(rest, s)
		}
	}
	out := append(hinted, rest...)
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeCorpus) match(call string, limit int, keep func(r *content.Record) bool) ([]content.Record, error) {
	f.record(call)
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	var out []content.Record
	for i := range f.rows {
		if keep(&f.rows[i]) {
			out = append(out, f.rows[i])
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCorpus) FindBySectionKey(_ context.Context, key string, limit int) ([]content.Record, error) {
	return f.match("section:"+key, limit, func(r *content.Record) bool { return r.Section == key })
}

func (f *fakeCorpus) FindByContextSectionKey(_ context.Context, key string, limit int) ([]content.Record, error) {
	return f.match("context:"+key, limit, func(r *content.Record) bool { return r.ContextSection == key })
}

func (f *fakeCorpus) FindByPageID(_ context.Context, pageID string, limit int) ([]content.Record, error) {
	return f.match("page:"+pageID, limit, func(r *content.Record) bool { return r.PageID == pageID })
}

func (f *fakeCorpus) FindByMetadataFullText(_ context.Context, _ string, limit int) ([]content.Record, error) {
	f.record("fulltext")
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	if len(f.fullText) > limit {
		return f.fullText[:limit], nil
	}
	return f.fullText, nil
}

// mockInterpreter implements Interpreter for tests.
type mockInterpreter struct {
	hints *criteria.Hints
	err   error
	delay time.Duration
}

func (m *mockInterpreter) Interpret(ctx context.Context, _ string, _ contextmap.Map) (*criteria.Hints, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.hints, m.err
}

func newTestService(t *testing.T, corpus *fakeCorpus, interp Interpreter) *Service {
	t.Helper()
	return New(corpus, corpus, interp, nil, Options{}, Metrics{})
}

func row(section, role, text string) content.Record {
	return content.Record{
		Section:      section,
		SectionPath:  "/kr/ipad-pro/" + section,
		CleansedText: text,
		ContentRole:  role,
	}
}

// koreaCorpus holds a current and a stale headline of the same section.
func koreaCorpus() *fakeCorpus {
	current := row("accordion-section", "headline", "iPad Pro")
	current.Country = "KR"
	current.Locale = "ko_KR"
	stale := row("accordion-section", "headline", "iPad Prod Test")
	stale.Country = "KR"
	return &fakeCorpus{rows: []content.Record{current, stale}}
}

func sequenceIDs(resp Response) []string {
	ids := make([]string, len(resp.Items))
	for i, it := range resp.Items {
		ids[i] = it.SequenceID
	}
	return ids
}

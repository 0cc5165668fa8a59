package contentfinder

import (
	"context"
	"time"

	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
	domusage "github.com/kailas-cloud/contentfinder/internal/domain/usage"
	healthuc "github.com/kailas-cloud/contentfinder/internal/usecase/health"
	queryuc "github.com/kailas-cloud/contentfinder/internal/usecase/query"
)

// --- queryUseCase mock ---

type mockQueryUC struct {
	queryFn func(ctx context.Context, req criteria.Request) (queryuc.Response, error)
}

func (m *mockQueryUC) Query(ctx context.Context, req criteria.Request) (queryuc.Response, error) {
	return m.queryFn(ctx, req)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- usageUseCase mock ---

type mockUsageUC struct {
	limit, used int64
}

func (m *mockUsageUC) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	start, end := period.Bounds(time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC))
	return domusage.NewReport(period, start, end, m.limit, m.used, max(m.limit-m.used, 0))
}

// --- Embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

// --- helpers ---

func testClient(q queryUseCase, h healthUseCase, u usageUseCase) *Client {
	return &Client{
		querySvc:  q,
		healthSvc: h,
		usageSvc:  u,
	}
}

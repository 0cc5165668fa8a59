package chi

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/contentfinder/internal/domain"
	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
	domusage "github.com/kailas-cloud/contentfinder/internal/domain/usage"
	healthuc "github.com/kailas-cloud/contentfinder/internal/usecase/health"
	queryuc "github.com/kailas-cloud/contentfinder/internal/usecase/query"
)

type mockQueryService struct {
	mu      sync.Mutex
	resp    queryuc.Response
	err     error
	panicV  any
	calls   int
	lastReq criteria.Request
	tokens  int // reported to the request's usage collector
}

func (m *mockQueryService) Query(ctx context.Context, req criteria.Request) (queryuc.Response, error) {
	if m.tokens > 0 {
		domain.UsageFromContext(ctx).AddTokens(m.tokens)
	}
	m.mu.Lock()
	m.calls++
	m.lastReq = req
	m.mu.Unlock()
	if m.panicV != nil {
		panic(m.panicV)
	}
	return m.resp, m.err
}

func (m *mockQueryService) last() (criteria.Request, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq, m.calls
}

type mockHealthService struct {
	report healthuc.Report
}

func (m *mockHealthService) Check(_ context.Context) healthuc.Report { return m.report }

func healthyReport() healthuc.Report {
	return healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK, "embedding": healthuc.CheckOK},
	}
}

type mockUsageService struct {
	lastPeriod domusage.Period
	limit      int64
	used       int64
}

func (m *mockUsageService) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	m.lastPeriod = period
	start, end := period.Bounds(time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC))
	remaining := int64(-1)
	if m.limit > 0 {
		remaining = max(m.limit-m.used, 0)
	}
	return domusage.NewReport(period, start, end, m.limit, m.used, remaining)
}

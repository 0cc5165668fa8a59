package contentfinder

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/contentfinder/internal/domain/usage"
)

// UsagePeriod is the budget window of a usage report.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport is the embedding token budget for one period.
type UsageReport struct {
	Period          UsagePeriod
	PeriodStart     time.Time
	PeriodEnd       time.Time
	TokensLimit     int64 // 0 = unlimited
	TokensUsed      int64
	TokensRemaining int64 // -1 = unlimited
	IsExhausted     bool
}

// Usage returns the embedding token report for period.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) (_ UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	p, err := domusage.ParsePeriod(string(period))
	if err != nil {
		return UsageReport{}, err
	}
	report := c.usageSvc.GetReport(ctx, p)
	return UsageReport{
		Period:          UsagePeriod(report.Period()),
		PeriodStart:     report.Start(),
		PeriodEnd:       report.End(),
		TokensLimit:     report.TokensLimit(),
		TokensUsed:      report.TokensUsed(),
		TokensRemaining: report.TokensRemaining(),
		IsExhausted:     report.Exhausted(),
	}, nil
}

type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

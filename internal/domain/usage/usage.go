package usage

import (
	"errors"
	"time"
)

// ErrInvalidPeriod is returned by ParsePeriod for an unknown period.
var ErrInvalidPeriod = errors.New("period must be \"day\" or \"month\"")

// Period is the budget window a report covers.
type Period string

// Periods.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates s. An empty string selects PeriodDay.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Bounds returns the UTC window of p that contains t.
func (p Period) Bounds(t time.Time) (start, end time.Time) {
	t = t.UTC()
	if p == PeriodMonth {
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Report is the embedding token budget for one period.
type Report struct {
	period    Period
	start     time.Time
	end       time.Time
	limit     int64
	used      int64
	remaining int64
}

// NewReport creates a report. limit 0 means unlimited and remaining is then -1.
func NewReport(period Period, start, end time.Time, limit, used, remaining int64) Report {
	return Report{
		period:    period,
		start:     start,
		end:       end,
		limit:     limit,
		used:      used,
		remaining: remaining,
	}
}

// Period returns the report window kind.
func (r Report) Period() Period { return r.period }

// Start returns the window start.
func (r Report) Start() time.Time { return r.start }

// End returns the window end, when the counters reset.
func (r Report) End() time.Time { return r.end }

// TokensLimit returns the cap, 0 when unlimited.
func (r Report) TokensLimit() int64 { return r.limit }

// TokensUsed returns tokens spent in the window.
func (r Report) TokensUsed() int64 { return r.used }

// TokensRemaining returns tokens left, -1 when unlimited.
func (r Report) TokensRemaining() int64 { return r.remaining }

// Exhausted reports whether a capped budget is spent.
func (r Report) Exhausted() bool { return r.limit > 0 && r.remaining <= 0 }

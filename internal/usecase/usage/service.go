package usage

import (
	"context"
	"time"
)

// Period selects the reporting window.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// Report is one period's OCR spend snapshot. Dollar amounts; Limit 0 means
// unlimited, Remaining -1 likewise.
type Report struct {
	Period    Period  `json:"period"`
	Start     int64   `json:"start_ms"`
	End       int64   `json:"end_ms"`
	Limit     float64 `json:"limit_dollars"`
	Used      float64 `json:"used_dollars"`
	Remaining float64 `json:"remaining_dollars"`
	Exhausted bool    `json:"exhausted"`
	ResetsAt  int64   `json:"resets_at_ms"`
}

// Service handles usage reporting.
type Service struct {
	br BudgetReader
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br}
}

// GetReport builds a spend report for the given period.
func (s *Service) GetReport(_ context.Context, period Period) Report {
	now := time.Now().UTC()
	var start, end time.Time
	var limit, used, remaining float64

	switch period {
	case PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			remaining = s.br.RemainingMonthly()
		}
	default: // day
		period = PeriodDay
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.Add(24 * time.Hour)
		if s.br != nil {
			limit = s.br.DailyLimit()
			used = s.br.DailyUsed()
			remaining = s.br.RemainingDaily()
		}
	}

	if s.br == nil {
		remaining = -1
	}

	return Report{
		Period:    period,
		Start:     start.UnixMilli(),
		End:       end.UnixMilli(),
		Limit:     limit,
		Used:      used,
		Remaining: remaining,
		Exhausted: limit > 0 && remaining == 0,
		ResetsAt:  end.UnixMilli(),
	}
}

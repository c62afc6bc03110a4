package usage

import (
	"context"
	"testing"
)

// --- Mocks ---

type mockBudgetReader struct {
	dailyLimit, dailyUsed, remainingDaily       float64
	monthlyLimit, monthlyUsed, remainingMonthly float64
}

func (m *mockBudgetReader) DailyLimit() float64       { return m.dailyLimit }
func (m *mockBudgetReader) DailyUsed() float64        { return m.dailyUsed }
func (m *mockBudgetReader) RemainingDaily() float64   { return m.remainingDaily }
func (m *mockBudgetReader) MonthlyLimit() float64     { return m.monthlyLimit }
func (m *mockBudgetReader) MonthlyUsed() float64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingMonthly() float64 { return m.remainingMonthly }

// --- Tests ---

func TestGetReportDay(t *testing.T) {
	svc := New(&mockBudgetReader{dailyLimit: 1, dailyUsed: 0.25, remainingDaily: 0.75})

	r := svc.GetReport(context.Background(), PeriodDay)
	if r.Period != PeriodDay {
		t.Errorf("period = %q, want day", r.Period)
	}
	if r.Limit != 1 || r.Used != 0.25 || r.Remaining != 0.75 {
		t.Errorf("amounts = %v/%v/%v, want 1/0.25/0.75", r.Limit, r.Used, r.Remaining)
	}
	if r.Exhausted {
		t.Error("budget with remaining funds must not be exhausted")
	}
	if r.End-r.Start != 24*60*60*1000 {
		t.Errorf("day window = %dms", r.End-r.Start)
	}
	if r.ResetsAt != r.End {
		t.Error("reset time should be the window end")
	}
}

func TestGetReportMonth(t *testing.T) {
	svc := New(&mockBudgetReader{monthlyLimit: 10, monthlyUsed: 10, remainingMonthly: 0})

	r := svc.GetReport(context.Background(), PeriodMonth)
	if r.Period != PeriodMonth {
		t.Errorf("period = %q, want month", r.Period)
	}
	if !r.Exhausted {
		t.Error("zero remaining with a limit set means exhausted")
	}
}

func TestGetReportUnknownPeriodDefaultsToDay(t *testing.T) {
	svc := New(&mockBudgetReader{dailyLimit: 1, remainingDaily: 1})

	r := svc.GetReport(context.Background(), Period("year"))
	if r.Period != PeriodDay {
		t.Errorf("period = %q, want day fallback", r.Period)
	}
}

func TestGetReportNilReader(t *testing.T) {
	svc := New(nil)

	r := svc.GetReport(context.Background(), PeriodDay)
	if r.Limit != 0 || r.Remaining != -1 {
		t.Errorf("unlimited report = limit %v remaining %v, want 0/-1", r.Limit, r.Remaining)
	}
	if r.Exhausted {
		t.Error("unlimited budget is never exhausted")
	}
}

package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/inkdex/inkdex/internal/domain"
)

type mockBudgetStore struct {
	incrByFn func(ctx context.Context, key string, val int64) error
	getFn    func(ctx context.Context, key string) (int64, error)
}

func (m *mockBudgetStore) IncrBy(ctx context.Context, key string, val int64) error {
	return m.incrByFn(ctx, key, val)
}

func (m *mockBudgetStore) Get(ctx context.Context, key string) (int64, error) {
	return m.getFn(ctx, key)
}

func TestBudgetCheckUnlimited(t *testing.T) {
	b := NewBudgetTracker("inkdex:", 0, 0, BudgetActionReject, zap.NewNop())
	b.Record(1000)
	if err := b.Check(context.Background()); err != nil {
		t.Fatalf("unlimited budget must never reject, got %v", err)
	}
	if got := b.RemainingDaily(); got != -1 {
		t.Errorf("RemainingDaily = %v, want -1 for unlimited", got)
	}
}

func TestBudgetCheckRejectsWhenDailyExceeded(t *testing.T) {
	b := NewBudgetTracker("inkdex:", 0.05, 0, BudgetActionReject, zap.NewNop())

	if err := b.Check(context.Background()); err != nil {
		t.Fatalf("fresh budget must allow, got %v", err)
	}

	b.Record(0.05)
	if err := b.Check(context.Background()); !errors.Is(err, domain.ErrOCRBudgetExceeded) {
		t.Fatalf("expected ErrOCRBudgetExceeded, got %v", err)
	}
}

func TestBudgetCheckRejectsWhenMonthlyExceeded(t *testing.T) {
	b := NewBudgetTracker("inkdex:", 0, 0.10, BudgetActionReject, zap.NewNop())
	b.Record(0.10)
	if err := b.Check(context.Background()); !errors.Is(err, domain.ErrOCRBudgetExceeded) {
		t.Fatalf("expected ErrOCRBudgetExceeded, got %v", err)
	}
}

func TestBudgetCheckWarnAllows(t *testing.T) {
	b := NewBudgetTracker("inkdex:", 0.05, 0, BudgetActionWarn, zap.NewNop())
	b.Record(0.10)
	if err := b.Check(context.Background()); err != nil {
		t.Fatalf("warn action must allow over-budget requests, got %v", err)
	}
}

func TestBudgetRemainingFloorsAtZero(t *testing.T) {
	b := NewBudgetTracker("inkdex:", 0.05, 0.20, BudgetActionReject, zap.NewNop())
	b.Record(0.08)

	if got := b.RemainingDaily(); got != 0 {
		t.Errorf("RemainingDaily = %v, want 0", got)
	}
	if got := b.RemainingMonthly(); got != 0.12 {
		t.Errorf("RemainingMonthly = %v, want 0.12", got)
	}
}

func TestBudgetRecordIgnoresNonPositiveCost(t *testing.T) {
	b := NewBudgetTracker("inkdex:", 1, 0, BudgetActionReject, zap.NewNop())
	b.Record(0)
	b.Record(-0.5)
	if got := b.DailyUsed(); got != 0 {
		t.Errorf("DailyUsed = %v, want 0", got)
	}
}

func TestBudgetRecordAccumulatesExactly(t *testing.T) {
	b := NewBudgetTracker("inkdex:", 1, 1, BudgetActionReject, zap.NewNop())
	for i := 0; i < 10; i++ {
		b.Record(0.01)
	}
	// Micro-dollar counters do not drift the way float accumulation does.
	if got := b.DailyUsed(); got != 0.10 {
		t.Errorf("DailyUsed = %v, want 0.10", got)
	}
	if got := b.MonthlyUsed(); got != 0.10 {
		t.Errorf("MonthlyUsed = %v, want 0.10", got)
	}
}

func TestBudgetDailyRollover(t *testing.T) {
	b := NewBudgetTracker("inkdex:", 0.05, 0, BudgetActionReject, zap.NewNop())
	b.Record(0.05)

	// Pretend the last reset happened yesterday.
	b.mu.Lock()
	b.lastDayReset = b.lastDayReset.AddDate(0, 0, -1)
	b.mu.Unlock()

	if err := b.Check(context.Background()); err != nil {
		t.Fatalf("new day must reset the daily counter, got %v", err)
	}
	if got := b.DailyUsed(); got != 0 {
		t.Errorf("DailyUsed after rollover = %v, want 0", got)
	}
}

func TestBudgetMonthlyRollover(t *testing.T) {
	b := NewBudgetTracker("inkdex:", 0, 0.05, BudgetActionReject, zap.NewNop())
	b.Record(0.05)

	b.mu.Lock()
	b.lastMonthReset = b.lastMonthReset.AddDate(0, -1, 0)
	b.mu.Unlock()

	if err := b.Check(context.Background()); err != nil {
		t.Fatalf("new month must reset the monthly counter, got %v", err)
	}
	if got := b.MonthlyUsed(); got != 0 {
		t.Errorf("MonthlyUsed after rollover = %v, want 0", got)
	}
}

func TestBudgetWithStoreLoadsCounters(t *testing.T) {
	store := &mockBudgetStore{
		getFn: func(_ context.Context, key string) (int64, error) {
			if strings.Contains(key, ":daily:") {
				return 30_000, nil // $0.03
			}
			return 250_000, nil // $0.25
		},
	}

	b := NewBudgetTracker("inkdex:", 1, 1, BudgetActionReject, zap.NewNop()).
		WithStore(context.Background(), store)

	if got := b.DailyUsed(); got != 0.03 {
		t.Errorf("DailyUsed = %v, want 0.03", got)
	}
	if got := b.MonthlyUsed(); got != 0.25 {
		t.Errorf("MonthlyUsed = %v, want 0.25", got)
	}
}

func TestBudgetRecordWritesBehind(t *testing.T) {
	type incr struct {
		key string
		val int64
	}
	var calls []incr
	store := &mockBudgetStore{
		getFn: func(context.Context, string) (int64, error) { return 0, nil },
		incrByFn: func(_ context.Context, key string, val int64) error {
			calls = append(calls, incr{key, val})
			return nil
		},
	}

	b := NewBudgetTracker("inkdex:", 1, 1, BudgetActionReject, zap.NewNop()).
		WithStore(context.Background(), store)
	b.Record(0.02)

	if len(calls) != 2 {
		t.Fatalf("expected 2 IncrBy calls, got %d", len(calls))
	}
	now := time.Now().UTC()
	wantDaily := "inkdex:budget:ocr:daily:" + now.Format("2006-01-02")
	wantMonthly := "inkdex:budget:ocr:monthly:" + now.Format("2006-01")
	if calls[0].key != wantDaily || calls[0].val != 20_000 {
		t.Errorf("daily write = %+v, want key %q val 20000", calls[0], wantDaily)
	}
	if calls[1].key != wantMonthly || calls[1].val != 20_000 {
		t.Errorf("monthly write = %+v, want key %q val 20000", calls[1], wantMonthly)
	}
}

func TestBudgetStoreErrorDoesNotBlockRecord(t *testing.T) {
	store := &mockBudgetStore{
		getFn:    func(context.Context, string) (int64, error) { return 0, errors.New("boom") },
		incrByFn: func(context.Context, string, int64) error { return errors.New("boom") },
	}

	b := NewBudgetTracker("inkdex:", 1, 0, BudgetActionReject, zap.NewNop()).
		WithStore(context.Background(), store)
	b.Record(0.01)

	if got := b.DailyUsed(); got != 0.01 {
		t.Errorf("DailyUsed = %v, want 0.01 despite store failures", got)
	}
}

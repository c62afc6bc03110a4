package ocr

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/metrics"
)

// BudgetAction defines behavior when the spend budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

// BudgetStore is the persistence interface for budget counters.
// Implementations must be idempotent (IncrBy can be called repeatedly).
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// BudgetTracker is an in-memory OCR spend tracker with optional persistence.
// Hot path (Check) is in-memory only, no round-trip. Record updates memory
// first, then write-behind to the store. Counters are micro-dollars.
type BudgetTracker struct {
	mu             sync.Mutex
	dailyUsed      int64
	monthlyUsed    int64
	dailyLimit     int64
	monthlyLimit   int64
	action         BudgetAction
	keyPrefix      string
	lastDayReset   time.Time
	lastMonthReset time.Time
	store          BudgetStore
	logger         *zap.Logger
}

// NewBudgetTracker creates a spend tracker with dollar limits (0 = unlimited).
func NewBudgetTracker(
	keyPrefix string, dailyLimit, monthlyLimit float64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	now := time.Now().UTC()
	return &BudgetTracker{
		dailyLimit:     dollarsToMicros(dailyLimit),
		monthlyLimit:   dollarsToMicros(monthlyLimit),
		action:         action,
		keyPrefix:      keyPrefix,
		lastDayReset:   truncateToDay(now),
		lastMonthReset: truncateToMonth(now),
		logger:         logger,
	}
}

// WithStore attaches a persistence store and loads current counters.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.store = store
	b.loadFromStore(ctx)
	return b
}

func (b *BudgetTracker) loadFromStore(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now().UTC()

	if val, err := b.store.Get(ctx, b.dailyKey(now)); err == nil {
		b.dailyUsed = val
	} else {
		b.logger.Warn("Failed to load daily budget from store", zap.Error(err))
	}

	if val, err := b.store.Get(ctx, b.monthlyKey(now)); err == nil {
		b.monthlyUsed = val
	} else {
		b.logger.Warn("Failed to load monthly budget from store", zap.Error(err))
	}

	b.logger.Info("OCR budget loaded from store",
		zap.Float64("daily_used", microsToDollars(b.dailyUsed)),
		zap.Float64("monthly_used", microsToDollars(b.monthlyUsed)),
	)
}

func (b *BudgetTracker) dailyKey(t time.Time) string {
	return fmt.Sprintf("%sbudget:ocr:daily:%s", b.keyPrefix, t.Format("2006-01-02"))
}

func (b *BudgetTracker) monthlyKey(t time.Time) string {
	return fmt.Sprintf("%sbudget:ocr:monthly:%s", b.keyPrefix, t.Format("2006-01"))
}

// Check verifies the budget allows a new paid request. In-memory only (hot path).
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()

	dailyExceeded := b.dailyLimit > 0 && b.dailyUsed >= b.dailyLimit
	monthlyExceeded := b.monthlyLimit > 0 && b.monthlyUsed >= b.monthlyLimit

	if !dailyExceeded && !monthlyExceeded {
		return nil
	}

	if b.action == BudgetActionReject {
		return domain.ErrOCRBudgetExceeded
	}

	// action=warn: log but allow the request through
	b.logger.Warn("OCR budget exceeded",
		zap.Float64("daily_used", microsToDollars(b.dailyUsed)),
		zap.Float64("daily_limit", microsToDollars(b.dailyLimit)),
		zap.Float64("monthly_used", microsToDollars(b.monthlyUsed)),
		zap.Float64("monthly_limit", microsToDollars(b.monthlyLimit)),
	)
	return nil
}

// Record registers spend after a paid request. Updates in-memory counters,
// then write-behind to store (if attached).
func (b *BudgetTracker) Record(cost float64) {
	micros := dollarsToMicros(cost)
	if micros <= 0 {
		return
	}

	b.mu.Lock()
	b.resetIfNeeded()
	b.dailyUsed += micros
	b.monthlyUsed += micros
	store := b.store
	now := time.Now().UTC()
	dailyKey := b.dailyKey(now)
	monthlyKey := b.monthlyKey(now)
	b.mu.Unlock()

	metrics.OCRBudgetRemaining.WithLabelValues("daily").Set(b.RemainingDaily())
	metrics.OCRBudgetRemaining.WithLabelValues("monthly").Set(b.RemainingMonthly())

	if store == nil {
		return
	}

	// Write-behind: fire-and-forget INCRBY to store.
	// Uses background context so store writes don't block the caller.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := store.IncrBy(ctx, dailyKey, micros); err != nil {
		b.logger.Warn("Failed to persist daily budget", zap.String("key", dailyKey), zap.Error(err))
	}
	if err := store.IncrBy(ctx, monthlyKey, micros); err != nil {
		b.logger.Warn("Failed to persist monthly budget", zap.String("key", monthlyKey), zap.Error(err))
	}
}

// RemainingDaily returns dollars left in the daily budget (-1 if unlimited).
func (b *BudgetTracker) RemainingDaily() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()
	if b.dailyLimit == 0 {
		return -1 // unlimited
	}
	remaining := b.dailyLimit - b.dailyUsed
	if remaining < 0 {
		return 0
	}
	return microsToDollars(remaining)
}

// RemainingMonthly returns dollars left in the monthly budget (-1 if unlimited).
func (b *BudgetTracker) RemainingMonthly() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()
	if b.monthlyLimit == 0 {
		return -1 // unlimited
	}
	remaining := b.monthlyLimit - b.monthlyUsed
	if remaining < 0 {
		return 0
	}
	return microsToDollars(remaining)
}

// DailyLimit returns the daily spend cap in dollars.
func (b *BudgetTracker) DailyLimit() float64 { return microsToDollars(b.dailyLimit) }

// MonthlyLimit returns the monthly spend cap in dollars.
func (b *BudgetTracker) MonthlyLimit() float64 { return microsToDollars(b.monthlyLimit) }

// DailyUsed returns dollars spent today.
func (b *BudgetTracker) DailyUsed() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return microsToDollars(b.dailyUsed)
}

// MonthlyUsed returns dollars spent this month.
func (b *BudgetTracker) MonthlyUsed() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return microsToDollars(b.monthlyUsed)
}

// resetIfNeeded zeroes counters when the day or month rolls over.
func (b *BudgetTracker) resetIfNeeded() {
	now := time.Now().UTC()
	today := truncateToDay(now)
	thisMonth := truncateToMonth(now)

	if today.After(b.lastDayReset) {
		b.dailyUsed = 0
		b.lastDayReset = today
	}
	if thisMonth.After(b.lastMonthReset) {
		b.monthlyUsed = 0
		b.lastMonthReset = thisMonth
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func dollarsToMicros(d float64) int64 {
	return int64(math.Round(d * 1e6))
}

func microsToDollars(m int64) float64 {
	return float64(m) / 1e6
}

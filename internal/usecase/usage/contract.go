package usage

// BudgetReader exposes current OCR spend. All amounts are dollars; a limit
// of 0 means unlimited and remaining is then reported as -1.
type BudgetReader interface {
	DailyLimit() float64
	DailyUsed() float64
	RemainingDaily() float64
	MonthlyLimit() float64
	MonthlyUsed() float64
	RemainingMonthly() float64
}

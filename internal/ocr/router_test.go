package ocr

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/inkdex/inkdex/internal/domain"
)

type mockProvider struct {
	name        string
	costPerPage float64
	recognizeFn func(ctx context.Context, in Input) (domain.OCRResult, error)
}

func (m *mockProvider) Name() string         { return m.name }
func (m *mockProvider) CostPerPage() float64 { return m.costPerPage }

func (m *mockProvider) Recognize(ctx context.Context, in Input) (domain.OCRResult, error) {
	return m.recognizeFn(ctx, in)
}

func fixedProvider(name string, cost, confidence float64) *mockProvider {
	return &mockProvider{
		name:        name,
		costPerPage: cost,
		recognizeFn: func(context.Context, Input) (domain.OCRResult, error) {
			return domain.OCRResult{Text: name + " text", Confidence: confidence}, nil
		},
	}
}

func failingProvider(name string, err error) *mockProvider {
	return &mockProvider{
		name: name,
		recognizeFn: func(context.Context, Input) (domain.OCRResult, error) {
			return domain.OCRResult{}, err
		},
	}
}

func unlimitedBudget() *BudgetTracker {
	return NewBudgetTracker("inkdex:", 0, 0, BudgetActionReject, zap.NewNop())
}

func TestNewRouterRequiresAProvider(t *testing.T) {
	if _, err := NewRouter(nil, nil, nil, zap.NewNop()); !errors.Is(err, domain.ErrNoProviderAvailable) {
		t.Fatalf("expected ErrNoProviderAvailable, got %v", err)
	}
}

func TestNewRouterCloudRequiresBudget(t *testing.T) {
	if _, err := NewRouter(nil, fixedProvider("vision", 0.01, 0.9), nil, zap.NewNop()); err == nil {
		t.Fatal("expected error for cloud provider without budget tracker")
	}
}

func TestRecognizeFastUsesLocal(t *testing.T) {
	cloudCalled := false
	cloud := fixedProvider("vision", 0.01, 0.99)
	cloud.recognizeFn = func(context.Context, Input) (domain.OCRResult, error) {
		cloudCalled = true
		return domain.OCRResult{Confidence: 0.99}, nil
	}

	r, err := NewRouter(fixedProvider("tesseract", 0, 0.4), cloud, unlimitedBudget(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	res, err := r.Recognize(context.Background(), Input{}, QualityFast)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Provider != "tesseract" {
		t.Errorf("provider = %q, want tesseract", res.Provider)
	}
	if res.Cost != 0 {
		t.Errorf("cost = %v, want 0", res.Cost)
	}
	if cloudCalled {
		t.Error("fast mode must not call the paid provider")
	}
}

func TestRecognizeBalancedKeepsConfidentLocalResult(t *testing.T) {
	cloudCalled := false
	cloud := fixedProvider("vision", 0.01, 0.99)
	cloud.recognizeFn = func(context.Context, Input) (domain.OCRResult, error) {
		cloudCalled = true
		return domain.OCRResult{Confidence: 0.99}, nil
	}

	r, err := NewRouter(fixedProvider("tesseract", 0, 0.91), cloud, unlimitedBudget(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	res, err := r.Recognize(context.Background(), Input{}, QualityBalanced)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Provider != "tesseract" {
		t.Errorf("provider = %q, want tesseract", res.Provider)
	}
	if cloudCalled {
		t.Error("confident local result must not escalate")
	}
}

func TestRecognizeBalancedEscalatesOnLowConfidence(t *testing.T) {
	r, err := NewRouter(
		fixedProvider("tesseract", 0, 0.3),
		fixedProvider("vision", 0.01, 0.95),
		unlimitedBudget(), zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	res, err := r.Recognize(context.Background(), Input{}, QualityBalanced)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Provider != "vision" {
		t.Errorf("provider = %q, want vision", res.Provider)
	}
	if res.Cost != 0.01 {
		t.Errorf("cost = %v, want 0.01", res.Cost)
	}
}

func TestRecognizeBalancedKeepsLocalWhenEscalationFails(t *testing.T) {
	r, err := NewRouter(
		fixedProvider("tesseract", 0, 0.3),
		failingProvider("vision", domain.ErrOCRProviderError),
		unlimitedBudget(), zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	res, err := r.Recognize(context.Background(), Input{}, QualityBalanced)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Provider != "tesseract" {
		t.Errorf("provider = %q, want tesseract fallback", res.Provider)
	}
}

func TestRecognizeBalancedSkipsEscalationWhenBudgetRejected(t *testing.T) {
	budget := NewBudgetTracker("inkdex:", 0.005, 0, BudgetActionReject, zap.NewNop())
	budget.Record(0.01) // already over the daily cap

	cloudCalled := false
	cloud := fixedProvider("vision", 0.01, 0.95)
	cloud.recognizeFn = func(context.Context, Input) (domain.OCRResult, error) {
		cloudCalled = true
		return domain.OCRResult{Confidence: 0.95}, nil
	}

	r, err := NewRouter(fixedProvider("tesseract", 0, 0.3), cloud, budget, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	res, err := r.Recognize(context.Background(), Input{}, QualityBalanced)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Provider != "tesseract" {
		t.Errorf("provider = %q, want tesseract", res.Provider)
	}
	if cloudCalled {
		t.Error("exhausted budget must block the paid provider")
	}
}

func TestRecognizePremiumPrefersCloud(t *testing.T) {
	r, err := NewRouter(
		fixedProvider("tesseract", 0, 0.99),
		fixedProvider("vision", 0.01, 0.8),
		unlimitedBudget(), zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	res, err := r.Recognize(context.Background(), Input{}, QualityPremium)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Provider != "vision" {
		t.Errorf("provider = %q, want vision", res.Provider)
	}
}

func TestRecognizePremiumFallsBackToLocal(t *testing.T) {
	r, err := NewRouter(
		fixedProvider("tesseract", 0, 0.6),
		failingProvider("vision", domain.ErrOCRProviderError),
		unlimitedBudget(), zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	res, err := r.Recognize(context.Background(), Input{}, QualityPremium)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Provider != "tesseract" {
		t.Errorf("provider = %q, want tesseract", res.Provider)
	}
}

func TestRecognizePremiumBudgetRejectedWithoutLocal(t *testing.T) {
	budget := NewBudgetTracker("inkdex:", 0.005, 0, BudgetActionReject, zap.NewNop())
	budget.Record(0.01)

	r, err := NewRouter(nil, fixedProvider("vision", 0.01, 0.9), budget, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	if _, err := r.Recognize(context.Background(), Input{}, QualityPremium); !errors.Is(err, domain.ErrOCRBudgetExceeded) {
		t.Fatalf("expected ErrOCRBudgetExceeded, got %v", err)
	}
}

func TestRecognizeRecordsCloudSpend(t *testing.T) {
	budget := NewBudgetTracker("inkdex:", 1, 0, BudgetActionReject, zap.NewNop())

	r, err := NewRouter(nil, fixedProvider("vision", 0.01, 0.9), budget, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := r.Recognize(context.Background(), Input{PageIndex: i}, QualityPremium); err != nil {
			t.Fatalf("Recognize page %d: %v", i, err)
		}
	}
	if got := budget.DailyUsed(); got != 0.03 {
		t.Errorf("DailyUsed = %v, want 0.03", got)
	}
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		in      string
		want    Quality
		wantErr bool
	}{
		{"fast", QualityFast, false},
		{"balanced", QualityBalanced, false},
		{"premium", QualityPremium, false},
		{"", QualityBalanced, false},
		{"turbo", "", true},
	}
	for _, tt := range tests {
		got, err := ParseQuality(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseQuality(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseQuality(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseQuality(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/inkdex/inkdex/internal/config"
	dbRedis "github.com/inkdex/inkdex/internal/db/redis"
	"github.com/inkdex/inkdex/internal/ocr"
	"github.com/inkdex/inkdex/internal/ocr/tesseract"
	"github.com/inkdex/inkdex/internal/ocr/vision"
	budgetrepo "github.com/inkdex/inkdex/internal/repository/budget"
)

// Counter keys outlive their window so late write-behind flushes still land.
const (
	budgetDailyTTL = 48 * time.Hour
	budgetMonthTTL = 62 * 24 * time.Hour
)

func openStore(ctx context.Context, cfg config.Config) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// buildBudget creates the shared spend tracker. store may be nil (one-shot
// commands track in memory only). The router requires a tracker whenever a
// cloud provider exists, so limits of zero still produce an unlimited one.
func buildBudget(ctx context.Context, cfg config.Config, store *dbRedis.Store, logger *zap.Logger) *ocr.BudgetTracker {
	if cfg.OCR.Vision.APIKey == "" {
		return nil
	}

	budgetCfg := cfg.OCR.Budget
	action := ocr.BudgetActionWarn
	if budgetCfg.Action == "reject" {
		action = ocr.BudgetActionReject
	}
	budget := ocr.NewBudgetTracker(
		cfg.Storage.KeyPrefix,
		budgetCfg.DailyCostLimit, budgetCfg.MonthlyCostLimit,
		action, logger,
	)
	if store != nil {
		budget.WithStore(ctx, budgetrepo.New(store, budgetDailyTTL, budgetMonthTTL))
	}
	return budget
}

func buildRouter(cfg config.Config, budget *ocr.BudgetTracker, logger *zap.Logger) (*ocr.Router, error) {
	var local, cloud ocr.Provider
	if cfg.OCR.Tesseract.Enabled {
		local = tesseract.New(cfg.OCR.Tesseract.Languages)
	}
	if cfg.OCR.Vision.APIKey != "" {
		cloud = vision.New(&vision.Config{
			APIKey:      cfg.OCR.Vision.APIKey,
			BaseURL:     cfg.OCR.Vision.BaseURL,
			Model:       cfg.OCR.Vision.Model,
			CostPerPage: cfg.OCR.Vision.CostPerImage,
			Logger:      logger,
		})
	}
	return ocr.NewRouter(local, cloud, budget, logger)
}

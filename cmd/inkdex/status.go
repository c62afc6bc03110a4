package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inkdex/inkdex/internal/config"
	"github.com/inkdex/inkdex/internal/version"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database connectivity and OCR spend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStatus(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command) error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s  %s %s\n",
		dimStyle.Render("inkdex"), titleStyle.Render(version.String()),
		dimStyle.Render("env:"), env,
	)

	dbLine := successStyle.Render("OK")
	store, err := openStore(ctx, cfg)
	if err != nil {
		dbLine = errorStyle.Render("DOWN") + dimStyle.Render(" ("+err.Error()+")")
	} else {
		defer store.Close()
	}
	fmt.Fprintf(out, "%s %s\n", dimStyle.Render("Database:"), dbLine)

	budget := buildBudget(ctx, cfg, store, zap.NewNop())
	if budget == nil {
		fmt.Fprintf(out, "%s %s\n", dimStyle.Render("OCR spend:"), dimStyle.Render("no cloud provider configured"))
		return nil
	}

	fmt.Fprintf(out, "%s %s\n", dimStyle.Render("Daily:"),
		spendLine(budget.DailyUsed(), budget.DailyLimit(), budget.RemainingDaily()))
	fmt.Fprintf(out, "%s %s\n", dimStyle.Render("Monthly:"),
		spendLine(budget.MonthlyUsed(), budget.MonthlyLimit(), budget.RemainingMonthly()))
	return nil
}

func spendLine(used, limit, remaining float64) string {
	if limit <= 0 {
		return fmt.Sprintf("$%.4f used %s", used, dimStyle.Render("(unlimited)"))
	}
	line := fmt.Sprintf("$%.4f of $%.2f", used, limit)
	if remaining == 0 {
		return line + "  " + errorStyle.Render("EXHAUSTED")
	}
	return line
}

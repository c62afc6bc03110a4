// Package inkdex is the embedded SDK for handwritten note ingestion and
// organization. It wires OCR providers, the organization pipeline and
// Redis-backed storage into a single client, without an HTTP server.
package inkdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/inkdex/inkdex/internal/db/redis"
	"github.com/inkdex/inkdex/internal/notefile"
	"github.com/inkdex/inkdex/internal/ocr"
	"github.com/inkdex/inkdex/internal/ocr/tesseract"
	"github.com/inkdex/inkdex/internal/ocr/vision"
	"github.com/inkdex/inkdex/internal/pipeline"
	budgetrepo "github.com/inkdex/inkdex/internal/repository/budget"
	noterepo "github.com/inkdex/inkdex/internal/repository/note"
	ingestuc "github.com/inkdex/inkdex/internal/usecase/ingest"
	organizeuc "github.com/inkdex/inkdex/internal/usecase/organize"
	usageuc "github.com/inkdex/inkdex/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "inkdex:"

	budgetDailyTTL = 48 * time.Hour
	budgetMonthTTL = 62 * 24 * time.Hour
)

// Client is the inkdex SDK entry point.
type Client struct {
	store    *dbRedis.Store
	ingest   *ingestuc.Service
	organize *organizeuc.Service
	usage    *usageuc.Service

	defaultQuality ocr.Quality
}

// New creates an inkdex Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:      defaultKeyPrefix,
		defaultQuality: QualityBalanced,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("inkdex: database address required (use WithRedis)")
	}
	if !cfg.tesseractEnabled && cfg.visionAPIKey == "" {
		return nil, errors.New("inkdex: no OCR provider configured (use WithTesseract or WithVision)")
	}
	quality, err := ocr.ParseQuality(string(cfg.defaultQuality))
	if err != nil {
		return nil, fmt.Errorf("inkdex: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("inkdex: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("inkdex: database not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	c.defaultQuality = quality
	return c, nil
}

func wireClient(ctx context.Context, store *dbRedis.Store, cfg *clientConfig) (*Client, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var local, cloud ocr.Provider
	if cfg.tesseractEnabled {
		local = tesseract.New(cfg.tesseractLanguages)
	}

	var budget *ocr.BudgetTracker
	if cfg.visionAPIKey != "" {
		cloud = vision.New(&vision.Config{
			APIKey:      cfg.visionAPIKey,
			BaseURL:     cfg.visionBaseURL,
			Model:       cfg.visionModel,
			CostPerPage: cfg.visionCostPerPage,
			Logger:      logger,
		})

		action := ocr.BudgetActionWarn
		if cfg.rejectOnLimit {
			action = ocr.BudgetActionReject
		}
		budget = ocr.NewBudgetTracker(cfg.keyPrefix, cfg.dailyLimit, cfg.monthlyLimit, action, logger)
		budget.WithStore(ctx, budgetrepo.New(store, budgetDailyTTL, budgetMonthTTL))
	}

	router, err := ocr.NewRouter(local, cloud, budget, logger)
	if err != nil {
		return nil, fmt.Errorf("inkdex: %w", err)
	}

	pipe, err := pipeline.New(pipeline.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("inkdex: %w", err)
	}

	repo := noterepo.New(store, cfg.keyPrefix)

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}

	return &Client{
		store:    store,
		ingest:   ingestuc.New(repo, ingestuc.DecoderFunc(notefile.Pages), router),
		organize: organizeuc.New(repo, pipe),
		usage:    usageuc.New(budgetReader),
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Ingest runs OCR over a note file (PNG, JPEG or .note) and stores the
// result. An empty quality uses the client default.
func (c *Client) Ingest(ctx context.Context, filename string, data []byte, quality Quality) (Note, error) {
	q := c.defaultQuality
	if quality != "" {
		parsed, err := ocr.ParseQuality(string(quality))
		if err != nil {
			return Note{}, fmt.Errorf("inkdex: %w", err)
		}
		q = parsed
	}
	note, err := c.ingest.Ingest(ctx, filename, data, q)
	if err != nil {
		return Note{}, err
	}
	return noteFromDomain(note), nil
}

// Organize runs the organization pipeline over a stored note and persists
// the analysis.
func (c *Client) Organize(ctx context.Context, noteID string) (Analysis, error) {
	a, err := c.organize.Organize(ctx, noteID)
	if err != nil {
		return Analysis{}, err
	}
	return analysisFromDomain(a), nil
}

// GetNote fetches a stored note with its elements.
func (c *Client) GetNote(ctx context.Context, noteID string) (Note, error) {
	n, err := c.organize.GetNote(ctx, noteID)
	if err != nil {
		return Note{}, err
	}
	return noteFromDomain(n), nil
}

// ListNotes pages through stored notes. An empty cursor starts from the
// beginning; the returned cursor is empty on the last page.
func (c *Client) ListNotes(ctx context.Context, cursor string, limit int) ([]Note, string, error) {
	notes, next, err := c.organize.ListNotes(ctx, cursor, limit)
	if err != nil {
		return nil, "", err
	}
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteFromDomain(n))
	}
	return out, next, nil
}

// DeleteNote removes a note and its analysis.
func (c *Client) DeleteNote(ctx context.Context, noteID string) error {
	return c.organize.DeleteNote(ctx, noteID)
}

// GetAnalysis fetches the stored analysis for a note.
func (c *Client) GetAnalysis(ctx context.Context, noteID string) (Analysis, error) {
	a, err := c.organize.GetAnalysis(ctx, noteID)
	if err != nil {
		return Analysis{}, err
	}
	return analysisFromDomain(a), nil
}

// Export renders one structure as Markdown. An empty structureType exports
// the top-ranked structure.
func (c *Client) Export(ctx context.Context, noteID string, structureType StructureType) (string, error) {
	return c.organize.Export(ctx, noteID, domainStructureType(structureType))
}

// Usage returns the OCR spend report for the given period.
func (c *Client) Usage(ctx context.Context, period SpendPeriod) SpendReport {
	r := c.usage.GetReport(ctx, usageuc.Period(period))
	return SpendReport{
		Period:    SpendPeriod(r.Period),
		Limit:     r.Limit,
		Used:      r.Used,
		Remaining: r.Remaining,
		Exhausted: r.Exhausted,
		ResetsAt:  time.UnixMilli(r.ResetsAt).UTC(),
	}
}

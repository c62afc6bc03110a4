package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inkdex/inkdex/internal/config"
	logpkg "github.com/inkdex/inkdex/internal/logger"
	"github.com/inkdex/inkdex/internal/notefile"
	"github.com/inkdex/inkdex/internal/ocr"
	"github.com/inkdex/inkdex/internal/pipeline"
	noterepo "github.com/inkdex/inkdex/internal/repository/note"
	ingestuc "github.com/inkdex/inkdex/internal/usecase/ingest"
	organizeuc "github.com/inkdex/inkdex/internal/usecase/organize"
	"github.com/inkdex/inkdex/internal/watcher"
)

var (
	watchInterval int
	watchQuality  string
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and process new note files",
	Long: `Watch polls a directory and runs ingestion plus organization over every new
or changed note file. Results are stored in the database; the directory
defaults to watcher.dir from the config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		return runWatch(dir)
	},
}

func init() {
	watchCmd.Flags().IntVarP(&watchInterval, "interval", "i", 0, "Poll interval in seconds (default: watcher.interval_sec)")
	watchCmd.Flags().StringVarP(&watchQuality, "quality", "q", "", "OCR quality mode (default: watcher.quality)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(dir string) error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if dir == "" {
		dir = cfg.Watcher.Dir
	}
	if dir == "" {
		return errors.New("no directory given and watcher.dir is not configured")
	}
	if watchInterval <= 0 {
		watchInterval = cfg.Watcher.IntervalSec
	}
	if watchQuality == "" {
		watchQuality = cfg.Watcher.Quality
	}
	quality, err := ocr.ParseQuality(watchQuality)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	defer store.Close()

	budget := buildBudget(ctx, cfg, store, logger)
	router, err := buildRouter(cfg, budget, logger)
	if err != nil {
		return err
	}
	pipe, err := pipeline.New(cfg.Pipeline)
	if err != nil {
		return err
	}

	repo := noterepo.New(store, cfg.Storage.KeyPrefix)
	ingestSvc := ingestuc.New(repo, ingestuc.DecoderFunc(notefile.Pages), router)
	organizeSvc := organizeuc.New(repo, pipe)

	w := watcher.New(
		dir, time.Duration(watchInterval)*time.Second, quality,
		ingestSvc, organizeSvc, logger,
	)
	logger.Info("Watching directory",
		zap.String("dir", dir),
		zap.Int("interval_sec", watchInterval),
		zap.String("quality", string(quality)),
	)

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Watcher stopped")
	return nil
}
